// Package transcript holds the conversation cells and the streaming
// adapter that mutates them from agent events.
package transcript

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lumen-cli/internal/events"
	"lumen-cli/internal/markdown"
	"lumen-cli/internal/ui/render"
)

var (
	userPrefixStyle      = lipgloss.NewStyle().Faint(true).Bold(true)
	userIndentStyle      = lipgloss.NewStyle().Faint(true)
	assistantPrefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	assistantIndentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	thinkingStyle        = lipgloss.NewStyle().Faint(true).Italic(true)
	toolNameStyle        = lipgloss.NewStyle().Bold(true)
	toolDetailStyle      = lipgloss.NewStyle().Faint(true)
	toolErrorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	toolDoneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
)

// UserCell 渲染一条用户消息，前后各留一空行。
type UserCell struct {
	text strings.Builder
}

func NewUserCell(text string) *UserCell {
	c := &UserCell{}
	c.text.WriteString(text)
	return c
}

func (c *UserCell) Append(text string) {
	c.text.WriteString(text)
}

func (c *UserCell) Text() string { return c.text.String() }

func (c *UserCell) Render(width int) []render.Line {
	wrapWidth := width - 2
	if wrapWidth < 1 {
		wrapWidth = width
	}
	body := render.WrapLines(strings.TrimRight(c.text.String(), "\n"), wrapWidth, lipgloss.Style{})
	prefixed := render.PrefixLines(body,
		render.Span{Text: "› ", Style: userPrefixStyle},
		render.Span{Text: "  ", Style: userIndentStyle})
	lines := make([]render.Line, 0, len(prefixed)+2)
	lines = append(lines, render.Plain(""))
	lines = append(lines, prefixed...)
	lines = append(lines, render.Plain(""))
	return lines
}

// AssistantCell is the streaming assistant text block. Deltas append
// until Seal; content renders as Markdown.
type AssistantCell struct {
	text   strings.Builder
	sealed bool
}

func NewAssistantCell() *AssistantCell { return &AssistantCell{} }

func (c *AssistantCell) Append(text string) {
	if c.sealed {
		return
	}
	c.text.WriteString(text)
}

// Seal freezes the cell; later deltas are ignored.
func (c *AssistantCell) Seal() { c.sealed = true }

func (c *AssistantCell) Sealed() bool { return c.sealed }

func (c *AssistantCell) Text() string { return c.text.String() }

func (c *AssistantCell) Render(width int) []render.Line {
	wrapWidth := width - 2
	if wrapWidth < 1 {
		wrapWidth = width
	}
	body := markdown.ToLines(strings.TrimRight(c.text.String(), "\n"), wrapWidth)
	prefixed := render.PrefixLines(body,
		render.Span{Text: "• ", Style: assistantPrefixStyle},
		render.Span{Text: "  ", Style: assistantIndentStyle})
	if len(prefixed) == 0 {
		prefixed = []render.Line{{Spans: []render.Span{{Text: "• ", Style: assistantPrefixStyle}}}}
	}
	return prefixed
}

// ThinkingCell shows streamed reasoning. Collapsed it is a one-line
// placeholder; verbose it shows the full content dimmed.
type ThinkingCell struct {
	text    strings.Builder
	done    bool
	verbose bool
}

func NewThinkingCell(verbose bool) *ThinkingCell {
	return &ThinkingCell{verbose: verbose}
}

func (c *ThinkingCell) Append(text string) {
	if c.done {
		return
	}
	c.text.WriteString(text)
}

// Freeze marks the block complete; its content no longer changes.
func (c *ThinkingCell) Freeze() { c.done = true }

// SetVerbose flips between collapsed and full display.
func (c *ThinkingCell) SetVerbose(v bool) { c.verbose = v }

func (c *ThinkingCell) Text() string { return c.text.String() }

func (c *ThinkingCell) Render(width int) []render.Line {
	if !c.verbose {
		label := "∴ thinking…"
		if c.done {
			label = "∴ thought"
		}
		return []render.Line{render.Styled(label, thinkingStyle)}
	}
	wrapWidth := width - 2
	if wrapWidth < 1 {
		wrapWidth = width
	}
	body := render.WrapLines(strings.TrimRight(c.text.String(), "\n"), wrapWidth, thinkingStyle)
	return render.PrefixLines(body,
		render.Span{Text: "∴ ", Style: thinkingStyle},
		render.Span{Text: "  ", Style: thinkingStyle})
}

// ToolCell renders one tool invocation purely from its accumulated
// phase log. Every update replaces the whole log; rendering sorts by
// phase rank so replayed or reordered delivery cannot corrupt output.
type ToolCell struct {
	callID string
	name   string
	phases []events.Phase
}

func NewToolCell(callID, name string) *ToolCell {
	return &ToolCell{callID: callID, name: name}
}

func (c *ToolCell) CallID() string { return c.callID }

func (c *ToolCell) Name() string { return c.name }

// Phases returns the normalized log in rank order.
func (c *ToolCell) Phases() []events.Phase {
	return events.SortPhases(c.phases)
}

// SetLog replaces the accumulated phase log, synthesizing a start entry
// when the stream lost the start frame.
func (c *ToolCell) SetLog(log []events.Phase) {
	c.phases = events.NormalizePhases(log, c.name)
}

// Terminal reports whether the call has reached its end or error phase.
func (c *ToolCell) Terminal() bool {
	for _, p := range c.phases {
		if p.Kind.Terminal() {
			return true
		}
	}
	return false
}

func (c *ToolCell) Render(width int) []render.Line {
	sorted := events.SortPhases(c.phases)
	glyph := render.Span{Text: "⚙ ", Style: toolDetailStyle}
	head := c.name
	var tail []render.Line

	wrapWidth := width - 4
	if wrapWidth < 1 {
		wrapWidth = width
	}
	for _, p := range sorted {
		switch p.Kind {
		case events.PhaseStart:
			if p.Detail != "" {
				head = p.Detail
			}
		case events.PhaseUpdate:
			if p.Detail == "" {
				continue
			}
			for _, row := range render.WrapText(p.Detail, wrapWidth) {
				tail = append(tail, render.Line{Spans: []render.Span{
					{Text: "    ", Style: toolDetailStyle},
					{Text: row, Style: toolDetailStyle},
				}})
			}
		case events.PhaseEnd:
			glyph = render.Span{Text: "✓ ", Style: toolDoneStyle}
			if p.Detail != "" {
				for _, row := range render.WrapText(p.Detail, wrapWidth) {
					tail = append(tail, render.Line{Spans: []render.Span{
						{Text: "    ", Style: toolDetailStyle},
						{Text: row, Style: toolDetailStyle},
					}})
				}
			}
		case events.PhaseError:
			glyph = render.Span{Text: "✗ ", Style: toolErrorStyle}
			if p.Detail != "" {
				for _, row := range render.WrapText(p.Detail, wrapWidth) {
					tail = append(tail, render.Line{Spans: []render.Span{
						{Text: "    ", Style: toolErrorStyle},
						{Text: row, Style: toolErrorStyle},
					}})
				}
			}
		}
	}

	lines := make([]render.Line, 0, len(tail)+1)
	lines = append(lines, render.Line{Spans: []render.Span{
		glyph,
		{Text: head, Style: toolNameStyle},
	}})
	lines = append(lines, tail...)
	return lines
}

// ErrorCell 渲染一条回合失败提示。
type ErrorCell struct {
	message string
}

func NewErrorCell(message string) *ErrorCell {
	return &ErrorCell{message: message}
}

func (c *ErrorCell) Render(width int) []render.Line {
	wrapWidth := width - 2
	if wrapWidth < 1 {
		wrapWidth = width
	}
	body := render.WrapLines(c.message, wrapWidth, errorStyle)
	return render.PrefixLines(body,
		render.Span{Text: "✖ ", Style: errorStyle},
		render.Span{Text: "  ", Style: errorStyle})
}
