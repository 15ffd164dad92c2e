package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// WrapText 按显示宽度做词级换行；超宽单词按 rune 宽度硬切。
// 窄宽度先换行的内容在更宽的宽度下不会产生更多行。
func WrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	lines := []string{}
	for _, raw := range strings.Split(text, "\n") {
		if raw == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapLine(raw, width)...)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// WrapLines 换行并统一应用样式。
func WrapLines(text string, width int, style lipgloss.Style) []Line {
	raw := WrapText(text, width)
	out := make([]Line, 0, len(raw))
	for _, s := range raw {
		out = append(out, Line{Spans: []Span{{Text: s, Style: style}}})
	}
	return out
}

func wrapLine(line string, width int) []string {
	if width <= 0 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	out := []string{}
	current := ""
	for _, word := range strings.Fields(line) {
		if current == "" {
			if runewidth.StringWidth(word) > width {
				out = append(out, breakLongWord(word, width)...)
				continue
			}
			current = word
			continue
		}
		if runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width {
			current += " " + word
			continue
		}
		out = append(out, current)
		if runewidth.StringWidth(word) > width {
			out = append(out, breakLongWord(word, width)...)
			current = ""
			continue
		}
		current = word
	}
	if current != "" {
		out = append(out, current)
	}
	if len(out) == 0 {
		return []string{line}
	}
	return out
}

func breakLongWord(word string, width int) []string {
	if width <= 0 {
		return []string{word}
	}
	out := []string{}
	current := ""
	currentWidth := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if currentWidth+rw > width && current != "" {
			out = append(out, current)
			current = ""
			currentWidth = 0
		}
		current += string(r)
		currentWidth += rw
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

// TruncateToWidth 截断到指定显示宽度。
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	w := 0
	out := make([]rune, 0, len(text))
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			break
		}
		out = append(out, r)
		w += rw
	}
	return string(out)
}
