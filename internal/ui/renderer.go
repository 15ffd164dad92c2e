package ui

import (
	"lumen-cli/internal/logger"
	"lumen-cli/internal/term"
	"lumen-cli/internal/ui/render"
)

// Frame 是一次重绘的完整输出：行内容加光标所在逻辑行。
// 只保留上一帧用于差分，不保留历史。
type Frame struct {
	Lines  []string
	Cursor int
}

// Renderer turns the component tree into frames and replays the minimal
// terminal writes to get from the previous frame to the next one. The
// transcript region scrolls; the footer region is pinned to the bottom.
type Renderer struct {
	screen term.Screen
	root   *Container
	footer Component
	log    *logger.LogEntry

	prev      Frame
	prevWidth int
	started   bool

	// offset 自底部计量；0 表示贴底跟随新内容。
	offset    int
	maxOffset int
	viewRows  int

	dirty    bool
	painting bool
}

func NewRenderer(screen term.Screen, root *Container, footer Component) *Renderer {
	return &Renderer{
		screen: screen,
		root:   root,
		footer: footer,
		log:    logger.Named("renderer"),
	}
}

// RequestRender marks the tree dirty. Calls are idempotent and coalesce:
// any number of requests between flushes produce exactly one repaint.
// Requests from within a render pass are deferred, never recursive.
func (r *Renderer) RequestRender() {
	if r == nil {
		return
	}
	r.dirty = true
}

// Dirty reports whether a flush would repaint.
func (r *Renderer) Dirty() bool { return r != nil && r.dirty }

// Invalidate 强制下一次 Flush 全量重绘（宽度变化后缓存的折行全部失效）。
func (r *Renderer) Invalidate() {
	if r == nil {
		return
	}
	r.prevWidth = 0
	r.dirty = true
}

// Flush repaints if dirty. A flush with no tree change writes nothing.
func (r *Renderer) Flush() error {
	if r == nil || !r.dirty || r.painting {
		return nil
	}
	r.painting = true
	defer func() { r.painting = false }()
	r.dirty = false

	width, height := r.screen.Size()
	frame := r.buildFrame(width, height)
	r.apply(frame, width)
	r.prev = frame
	r.prevWidth = width
	r.started = true
	return r.screen.Flush()
}

func (r *Renderer) buildFrame(width, height int) Frame {
	transcript := render.LinesToStrings(r.root.Render(width))
	var footerLines []string
	if r.footer != nil {
		footerLines = render.LinesToStrings(r.footer.Render(width))
	}
	if len(footerLines) > height {
		footerLines = footerLines[len(footerLines)-height:]
	}
	viewRows := height - len(footerLines)
	if viewRows < 0 {
		viewRows = 0
	}
	if viewRows > len(transcript) {
		viewRows = len(transcript)
	}

	r.maxOffset = len(transcript) - viewRows
	if r.offset > r.maxOffset {
		r.offset = r.maxOffset
	}
	if r.offset < 0 {
		r.offset = 0
	}
	r.viewRows = viewRows

	start := len(transcript) - viewRows - r.offset
	if start < 0 {
		start = 0
	}
	visible := transcript[start : start+viewRows]

	lines := make([]string, 0, len(visible)+len(footerLines))
	lines = append(lines, visible...)
	lines = append(lines, footerLines...)
	cursor := len(lines) - 1
	if cursor < 0 {
		cursor = 0
	}
	return Frame{Lines: lines, Cursor: cursor}
}

func (r *Renderer) apply(frame Frame, width int) {
	prev := r.prev.Lines
	if r.started && width != r.prevWidth {
		// Resize: every cached wrap is stale; repaint from a clean screen.
		r.screen.ClearScreen()
		prev = nil
		r.prev = Frame{}
	}

	first := 0
	for first < len(prev) && first < len(frame.Lines) && prev[first] == frame.Lines[first] {
		first++
	}
	if first == len(prev) && first == len(frame.Lines) {
		return
	}
	// Pure shrink: re-anchor on the last surviving row so the leftover
	// rows below it can be cleared.
	if first >= len(frame.Lines) && len(frame.Lines) > 0 {
		first = len(frame.Lines) - 1
	}

	r.screen.HideCursor()
	defer r.screen.ShowCursor()

	// Position on the first differing row.
	if len(prev) > 0 {
		if delta := r.prev.Cursor - first; delta > 0 {
			r.screen.MoveCursorUp(delta)
		} else if delta < 0 {
			r.screen.MoveCursorDown(-delta)
		}
	}
	r.screen.CursorToLineStart()

	if len(frame.Lines) == len(prev) {
		r.patchRows(prev, frame.Lines, first)
	} else {
		r.rewriteFrom(frame.Lines, first)
	}
}

// patchRows 行数不变时只重写发生变化的行。
func (r *Renderer) patchRows(prev, next []string, first int) {
	row := first
	for i := first; i < len(next); i++ {
		if prev[i] == next[i] {
			continue
		}
		if i > row {
			r.screen.MoveCursorDown(i - row)
			r.screen.CursorToLineStart()
		}
		r.screen.ClearLine()
		r.screen.WriteString(next[i])
		r.screen.CursorToLineStart()
		row = i
	}
	if last := len(next) - 1; last > row {
		r.screen.MoveCursorDown(last - row)
		r.screen.CursorToLineStart()
	}
}

// rewriteFrom 行数变化时从首个差异行起顺序重写到底，并清掉其下残留的旧行。
func (r *Renderer) rewriteFrom(next []string, first int) {
	for i := first; i < len(next); i++ {
		if i > first {
			r.screen.WriteString("\r\n")
		}
		r.screen.ClearLine()
		r.screen.WriteString(next[i])
	}
	r.screen.ClearBelow()
}

// --- Transcript scrolling ---

// ScrollUp moves the transcript view up (into history) by n rows.
func (r *Renderer) ScrollUp(n int) {
	r.offset += n
	r.dirty = true
}

// ScrollDown moves the view back toward the newest content.
func (r *Renderer) ScrollDown(n int) {
	r.offset -= n
	if r.offset < 0 {
		r.offset = 0
	}
	r.dirty = true
}

// PageUp / PageDown scroll by one transcript viewport.
func (r *Renderer) PageUp()   { r.ScrollUp(maxInt(1, r.viewRows-1)) }
func (r *Renderer) PageDown() { r.ScrollDown(maxInt(1, r.viewRows-1)) }

// ScrollToTop 跳到最早内容。
func (r *Renderer) ScrollToTop() {
	r.offset = r.maxOffset
	r.dirty = true
}

// ScrollToBottom 恢复贴底跟随。
func (r *Renderer) ScrollToBottom() {
	r.offset = 0
	r.dirty = true
}

// AtBottom reports whether the view is following new content.
func (r *Renderer) AtBottom() bool { return r.offset == 0 }

// ScrollPercent 返回 0~100 的滚动位置（100 为底部）。
func (r *Renderer) ScrollPercent() int {
	if r.maxOffset <= 0 {
		return 100
	}
	return (r.maxOffset - r.offset) * 100 / r.maxOffset
}

// LastFrame returns a copy of the most recent frame, for tests and
// non-interactive capture.
func (r *Renderer) LastFrame() Frame {
	return Frame{Lines: append([]string{}, r.prev.Lines...), Cursor: r.prev.Cursor}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
