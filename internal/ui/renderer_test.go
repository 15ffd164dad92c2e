package ui

import (
	"strings"
	"testing"
)

// fakeScreen records terminal operations instead of writing escapes.
type fakeScreen struct {
	width, height int
	ops           []string
	flushes       int
}

func newFakeScreen(w, h int) *fakeScreen {
	return &fakeScreen{width: w, height: h}
}

func (s *fakeScreen) Size() (int, int)      { return s.width, s.height }
func (s *fakeScreen) WriteString(t string)  { s.ops = append(s.ops, "write:"+t) }
func (s *fakeScreen) MoveCursorUp(n int)    { s.ops = append(s.ops, "up") }
func (s *fakeScreen) MoveCursorDown(n int)  { s.ops = append(s.ops, "down") }
func (s *fakeScreen) CursorToLineStart()    { s.ops = append(s.ops, "cr") }
func (s *fakeScreen) HideCursor()           { s.ops = append(s.ops, "hide") }
func (s *fakeScreen) ShowCursor()           { s.ops = append(s.ops, "show") }
func (s *fakeScreen) ClearLine()            { s.ops = append(s.ops, "clearline") }
func (s *fakeScreen) ClearBelow()           { s.ops = append(s.ops, "clearbelow") }
func (s *fakeScreen) ClearScreen()          { s.ops = append(s.ops, "clearscreen") }
func (s *fakeScreen) Flush() error          { s.flushes++; return nil }
func (s *fakeScreen) reset()                { s.ops = nil }
func (s *fakeScreen) writes() (out []string) {
	for _, op := range s.ops {
		if strings.HasPrefix(op, "write:") {
			out = append(out, strings.TrimPrefix(op, "write:"))
		}
	}
	return out
}

func TestFlushRendersTranscriptAndPinnedFooter(t *testing.T) {
	screen := newFakeScreen(20, 6)
	root := NewContainer(fixedLines{"m1", "m2"})
	footer := fixedLines{"[footer]"}
	r := NewRenderer(screen, root, footer)

	r.RequestRender()
	if err := r.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	frame := r.LastFrame()
	want := []string{"m1", "m2", "[footer]"}
	if len(frame.Lines) != len(want) {
		t.Fatalf("frame lines = %v", frame.Lines)
	}
	for i := range want {
		if frame.Lines[i] != want[i] {
			t.Fatalf("frame[%d] = %q, want %q", i, frame.Lines[i], want[i])
		}
	}
	if frame.Cursor != 2 {
		t.Fatalf("cursor row = %d, want 2", frame.Cursor)
	}
}

func TestRequestRenderCoalescesAndIsIdempotent(t *testing.T) {
	screen := newFakeScreen(20, 6)
	root := NewContainer(fixedLines{"hello"})
	r := NewRenderer(screen, root, nil)

	r.RequestRender()
	r.RequestRender()
	r.RequestRender()
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if screen.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", screen.flushes)
	}
	first := r.LastFrame()

	// Re-request without any tree mutation: no terminal writes at all.
	screen.reset()
	r.RequestRender()
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(screen.writes()) != 0 {
		t.Fatalf("idempotent flush emitted writes: %v", screen.writes())
	}
	second := r.LastFrame()
	if strings.Join(first.Lines, "\n") != strings.Join(second.Lines, "\n") {
		t.Fatalf("frames differ between idempotent flushes")
	}

	// Flush without a request is a no-op entirely.
	screen.reset()
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(screen.ops) != 0 {
		t.Fatalf("undirty flush performed ops: %v", screen.ops)
	}
}

func TestFlushOnlyRewritesChangedSuffix(t *testing.T) {
	screen := newFakeScreen(20, 10)
	root := NewContainer()
	root.AddChild(fixedLines{"one", "two"})
	r := NewRenderer(screen, root, nil)
	r.RequestRender()
	_ = r.Flush()

	screen.reset()
	root.AddChild(fixedLines{"three"})
	r.RequestRender()
	_ = r.Flush()

	writes := screen.writes()
	for _, w := range writes {
		if w == "one" || w == "two" {
			t.Fatalf("unchanged prefix rewritten: %v", writes)
		}
	}
	found := false
	for _, w := range writes {
		if w == "three" {
			found = true
		}
	}
	if !found {
		t.Fatalf("appended line missing from writes: %v", writes)
	}
}

func TestTranscriptScrollsWhenContentExceedsViewport(t *testing.T) {
	screen := newFakeScreen(20, 4)
	root := NewContainer(fixedLines{"l1", "l2", "l3", "l4", "l5", "l6"})
	footer := fixedLines{"[f]"}
	r := NewRenderer(screen, root, footer)

	r.RequestRender()
	_ = r.Flush()
	frame := r.LastFrame()
	// 3 transcript rows + 1 footer row, stuck to bottom.
	want := []string{"l4", "l5", "l6", "[f]"}
	for i := range want {
		if frame.Lines[i] != want[i] {
			t.Fatalf("frame = %v, want %v", frame.Lines, want)
		}
	}
	if !r.AtBottom() {
		t.Fatalf("expected stick-to-bottom")
	}

	r.ScrollUp(2)
	_ = r.Flush()
	frame = r.LastFrame()
	if frame.Lines[0] != "l2" || frame.Lines[2] != "l4" {
		t.Fatalf("scrolled frame = %v", frame.Lines)
	}
	if frame.Lines[3] != "[f]" {
		t.Fatalf("footer not pinned while scrolled: %v", frame.Lines)
	}

	r.ScrollToBottom()
	_ = r.Flush()
	if got := r.LastFrame().Lines[2]; got != "l6" {
		t.Fatalf("bottom line = %q after ScrollToBottom", got)
	}
}

func TestResizeForcesFullRepaint(t *testing.T) {
	screen := newFakeScreen(20, 6)
	root := NewContainer(fixedLines{"a wrapped line here"})
	r := NewRenderer(screen, root, nil)
	r.RequestRender()
	_ = r.Flush()

	screen.reset()
	screen.width = 10
	r.Invalidate()
	_ = r.Flush()

	sawClear := false
	for _, op := range screen.ops {
		if op == "clearscreen" {
			sawClear = true
		}
	}
	if !sawClear {
		t.Fatalf("resize repaint did not clear the screen: %v", screen.ops)
	}
}

func TestScrollPercentClamped(t *testing.T) {
	screen := newFakeScreen(20, 4)
	root := NewContainer(fixedLines{"1", "2", "3", "4", "5", "6", "7", "8"})
	r := NewRenderer(screen, root, nil)
	r.RequestRender()
	_ = r.Flush()
	if got := r.ScrollPercent(); got != 100 {
		t.Fatalf("at bottom percent = %d", got)
	}
	r.ScrollToTop()
	_ = r.Flush()
	if got := r.ScrollPercent(); got != 0 {
		t.Fatalf("at top percent = %d", got)
	}
}
