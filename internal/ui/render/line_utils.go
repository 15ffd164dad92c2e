package render

import "strings"

// CloneLine 深拷贝行，便于安全缓存。
func CloneLine(line Line) Line {
	spans := make([]Span, len(line.Spans))
	copy(spans, line.Spans)
	return Line{Spans: spans, Style: line.Style}
}

// IsBlank 判断行是否为空或仅包含空格。
func IsBlank(line Line) bool {
	if len(line.Spans) == 0 {
		return true
	}
	for _, sp := range line.Spans {
		if strings.Trim(sp.Text, " ") != "" {
			return false
		}
	}
	return true
}

// PrefixLines 为首行/续行添加前缀。
func PrefixLines(lines []Line, initial Span, subsequent Span) []Line {
	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		spans := make([]Span, 0, len(l.Spans)+1)
		if i == 0 {
			spans = append(spans, initial)
		} else {
			spans = append(spans, subsequent)
		}
		spans = append(spans, l.Spans...)
		out = append(out, Line{Spans: spans, Style: l.Style})
	}
	return out
}

// ClampSpans 将 Span 序列截断到指定显示宽度。
func ClampSpans(spans []Span, width int) []Span {
	if width <= 0 {
		return nil
	}
	remaining := width
	out := make([]Span, 0, len(spans))
	for _, sp := range spans {
		if remaining <= 0 {
			break
		}
		tw := sp.width()
		if tw <= remaining {
			out = append(out, sp)
			remaining -= tw
			continue
		}
		text := TruncateToWidth(sp.Text, remaining)
		if text != "" {
			sp.Text = text
			out = append(out, sp)
			remaining = 0
		}
	}
	return out
}

func (sp Span) width() int {
	return Line{Spans: []Span{sp}}.Width()
}
