package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Span 表示一段文本及其样式。
type Span struct {
	Text  string
	Style lipgloss.Style
}

// Line 由多个 Span 组成，可选整体样式。
type Line struct {
	Spans []Span
	Style lipgloss.Style
}

// Plain 构造无样式单 Span 行。
func Plain(text string) Line {
	return Line{Spans: []Span{{Text: text}}}
}

// Styled 构造单 Span 的样式行。
func Styled(text string, style lipgloss.Style) Line {
	return Line{Spans: []Span{{Text: text, Style: style}}}
}

// Text 返回行的未样式化文本。
func (l Line) Text() string {
	var b strings.Builder
	for _, sp := range l.Spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// Width 返回行的显示宽度（忽略样式转义）。
func (l Line) Width() int {
	w := 0
	for _, sp := range l.Spans {
		w += ansi.StringWidth(sp.Text)
	}
	return w
}

// String 渲染为含转义序列的终端字符串。
func (l Line) String() string {
	segments := make([]string, 0, len(l.Spans))
	for _, sp := range l.Spans {
		segments = append(segments, sp.Style.Render(sp.Text))
	}
	return l.Style.Render(strings.Join(segments, ""))
}

// LinesToStrings 将样式化的行转换为字符串列表。
func LinesToStrings(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.String())
	}
	return out
}

// StripANSI 去除终端转义序列，测试与宽度计算使用。
func StripANSI(s string) string {
	return ansi.Strip(s)
}
