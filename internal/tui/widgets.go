// Package tui assembles the application: component tree, input wiring,
// chord handlers, and the single-threaded run loop.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"lumen-cli/internal/ui/render"
)

var (
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	hintStyle     = lipgloss.NewStyle().Faint(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	infoKeyStyle  = lipgloss.NewStyle().Faint(true).Bold(true)
	infoStyle     = lipgloss.NewStyle().Faint(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
)

// StatusState 枚举状态指示器的显示状态。
type StatusState int

const (
	StatusIdle StatusState = iota
	StatusWorking
	StatusError
)

// StatusIndicator is the one-line turn progress widget: spinner, header,
// elapsed time, and the interrupt hint. Idle renders nothing.
type StatusIndicator struct {
	state      StatusState
	header     string
	startedAt  time.Time
	animations bool
	clock      func() time.Time
}

func NewStatusIndicator(animations bool, clock func() time.Time) *StatusIndicator {
	if clock == nil {
		clock = time.Now
	}
	return &StatusIndicator{clock: clock, animations: animations}
}

// Start enters the working state and restarts the elapsed timer.
func (w *StatusIndicator) Start(header string) {
	if header == "" {
		header = "Working"
	}
	w.state = StatusWorking
	w.header = header
	w.startedAt = w.clock()
}

// Stop returns to idle; the status line disappears.
func (w *StatusIndicator) Stop() {
	w.state = StatusIdle
}

// Fail switches to the error state, keeping the elapsed time frozen at
// the moment of failure.
func (w *StatusIndicator) Fail(header string) {
	if header == "" {
		header = "Error"
	}
	w.state = StatusError
	w.header = header
}

func (w *StatusIndicator) Working() bool { return w.state == StatusWorking }

// ElapsedSeconds 返回当前回合累计秒数。
func (w *StatusIndicator) ElapsedSeconds() uint64 {
	if w.state == StatusIdle {
		return 0
	}
	return uint64(w.clock().Sub(w.startedAt).Seconds())
}

func (w *StatusIndicator) Render(width int) []render.Line {
	if w == nil || w.state == StatusIdle {
		return nil
	}
	spans := []render.Span{
		{Text: w.spinnerFrame(), Style: statusStyle},
		{Text: " " + w.header, Style: statusStyle},
	}
	hint := fmt.Sprintf(" (%s • esc to interrupt)", fmtElapsedCompact(w.ElapsedSeconds()))
	if w.state == StatusError {
		hint = fmt.Sprintf(" (%s)", fmtElapsedCompact(w.ElapsedSeconds()))
	}
	spans = append(spans, render.Span{Text: hint, Style: hintStyle})
	return []render.Line{{Spans: render.ClampSpans(spans, width)}}
}

func (w *StatusIndicator) spinnerFrame() string {
	if w.state == StatusError {
		return "!"
	}
	if !w.animations {
		return "•"
	}
	frames := []string{"-", "\\", "|", "/"}
	return frames[int(w.clock().UnixMilli()/120)%len(frames)]
}

// fmtElapsedCompact 将秒数格式化为友好字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		return fmt.Sprintf("%dm %02ds", elapsedSecs/60, elapsedSecs%60)
	default:
		return fmt.Sprintf("%dh %02dm %02ds", elapsedSecs/3600, (elapsedSecs%3600)/60, elapsedSecs%60)
	}
}

// Notification is the transient one-line notice above the editor. It
// expires on its own; Tick just needs to trigger repaints.
type Notification struct {
	text     string
	isError  bool
	deadline time.Time
	clock    func() time.Time
}

func NewNotification(clock func() time.Time) *Notification {
	if clock == nil {
		clock = time.Now
	}
	return &Notification{clock: clock}
}

// Show displays text for ttl.
func (n *Notification) Show(text string, ttl time.Duration) {
	n.text = text
	n.isError = false
	n.deadline = n.clock().Add(ttl)
}

// ShowError displays an error-styled notice.
func (n *Notification) ShowError(text string, ttl time.Duration) {
	n.Show(text, ttl)
	n.isError = true
}

// Clear removes the notice immediately.
func (n *Notification) Clear() { n.text = "" }

// Active reports whether a notice is currently visible.
func (n *Notification) Active() bool {
	return n.text != "" && n.clock().Before(n.deadline)
}

func (n *Notification) Render(width int) []render.Line {
	if !n.Active() {
		return nil
	}
	style := noticeStyle
	if n.isError {
		style = errStyle
	}
	return []render.Line{render.Styled(render.TruncateToWidth(n.text, width), style)}
}

// InfoLine is the persistent footer line: model, mode, and a hint when
// the transcript is scrolled away from the bottom.
type InfoLine struct {
	Model    string
	Mode     string
	Scrolled func() bool
}

func (l *InfoLine) Render(width int) []render.Line {
	spans := []render.Span{
		{Text: l.Model, Style: infoKeyStyle},
		{Text: "  " + l.Mode, Style: infoStyle},
	}
	if l.Scrolled != nil && l.Scrolled() {
		spans = append(spans, render.Span{Text: "  (scrolled — end to follow)", Style: infoStyle})
	}
	return []render.Line{{Spans: render.ClampSpans(spans, width)}}
}
