package editor

import (
	"strings"
	"testing"

	"lumen-cli/internal/input"
	"lumen-cli/internal/ui/render"
)

func typeString(e *Editor, s string) {
	for _, r := range s {
		e.HandleKey(input.Key{Type: input.KeyRune, Rune: r})
	}
}

func renderText(e *Editor, width int) string {
	var b strings.Builder
	for _, line := range e.Render(width) {
		b.WriteString(render.StripANSI(line.String()))
		b.WriteString("\n")
	}
	return b.String()
}

func TestSubmitTrimsAndClears(t *testing.T) {
	e := New("type here")
	var submitted []string
	e.OnSubmit = func(text string) { submitted = append(submitted, text) }

	typeString(e, "  hello  ")
	e.HandleKey(input.Key{Type: input.KeyEnter})
	if len(submitted) != 1 || submitted[0] != "hello" {
		t.Fatalf("submitted = %v", submitted)
	}
	if !e.Empty() {
		t.Fatalf("buffer not cleared after submit")
	}

	// Empty input never submits.
	e.HandleKey(input.Key{Type: input.KeyEnter})
	if len(submitted) != 1 {
		t.Fatalf("empty submit went through")
	}
}

func TestDisabledEditorBlocksSubmitKeepsTyping(t *testing.T) {
	e := New("")
	var submitted []string
	e.OnSubmit = func(text string) { submitted = append(submitted, text) }
	e.SetDisabled(true)

	typeString(e, "queued prompt")
	e.HandleKey(input.Key{Type: input.KeyEnter})
	if len(submitted) != 0 {
		t.Fatalf("disabled editor submitted: %v", submitted)
	}
	if e.Text() != "queued prompt" {
		t.Fatalf("typing lost while disabled: %q", e.Text())
	}

	e.SetDisabled(false)
	e.HandleKey(input.Key{Type: input.KeyEnter})
	if len(submitted) != 1 {
		t.Fatalf("re-enabled editor did not submit")
	}
}

func TestAltEnterInsertsNewline(t *testing.T) {
	e := New("")
	typeString(e, "line1")
	e.HandleKey(input.Key{Type: input.KeyEnter, Alt: true})
	typeString(e, "line2")
	if e.Text() != "line1\nline2" {
		t.Fatalf("Text = %q", e.Text())
	}
}

func TestPasteEventInsertsWholePayload(t *testing.T) {
	e := New("")
	var submitted []string
	e.OnSubmit = func(text string) { submitted = append(submitted, text) }

	e.HandleKey(input.Key{Type: input.KeyPaste, Paste: "a\nb\nc"})
	if e.Text() != "a\nb\nc" {
		t.Fatalf("Text = %q", e.Text())
	}
	if len(submitted) != 0 {
		t.Fatalf("pasted newlines triggered submit")
	}
}

func TestHistoryBrowsingRestoresDraft(t *testing.T) {
	e := New("")
	e.OnSubmit = func(string) {}
	e.SetHistory([]string{"first", "second"})

	typeString(e, "draft")
	e.HandleKey(input.Key{Type: input.KeyUp})
	if e.Text() != "second" {
		t.Fatalf("up = %q", e.Text())
	}
	e.HandleKey(input.Key{Type: input.KeyUp})
	if e.Text() != "first" {
		t.Fatalf("up up = %q", e.Text())
	}
	e.HandleKey(input.Key{Type: input.KeyDown})
	e.HandleKey(input.Key{Type: input.KeyDown})
	if e.Text() != "draft" {
		t.Fatalf("returning to newest lost the draft: %q", e.Text())
	}
}

func TestCompletionPopupAcceptReplacesToken(t *testing.T) {
	e := New("")
	e.CompleteFunc = func(prefix string) []string {
		return []string{"/model", "/mode", "/new"}
	}

	typeString(e, "/mo")
	e.HandleKey(input.Key{Type: input.KeyTab})
	if e.popup == nil {
		t.Fatalf("tab did not open the popup")
	}
	e.HandleKey(input.Key{Type: input.KeyDown})
	e.HandleKey(input.Key{Type: input.KeyEnter})
	if e.popup != nil {
		t.Fatalf("accept left the popup open")
	}
	// fuzzy ranks "/mode" and "/model" ahead of "/new"; the second
	// entry was selected.
	if !strings.HasPrefix(e.Text(), "/mo") {
		t.Fatalf("accepted completion = %q", e.Text())
	}
	if e.Text() == "/mo" {
		t.Fatalf("token not replaced")
	}
}

func TestCompletionPopupEscCloses(t *testing.T) {
	e := New("")
	escapes := 0
	e.OnEscape = func() { escapes++ }
	e.CompleteFunc = func(string) []string { return []string{"/new"} }

	typeString(e, "/n")
	e.HandleKey(input.Key{Type: input.KeyTab})
	e.HandleKey(input.Key{Type: input.KeyEsc})
	if e.popup != nil {
		t.Fatalf("esc did not close the popup")
	}
	if escapes != 0 {
		t.Fatalf("popup esc leaked to the interrupt hook")
	}
}

func TestRenderShowsPlaceholderWhenEmpty(t *testing.T) {
	e := New("ask anything")
	got := renderText(e, 40)
	if !strings.Contains(got, "ask anything") {
		t.Fatalf("placeholder missing:\n%s", got)
	}
	typeString(e, "hi")
	got = renderText(e, 40)
	if strings.Contains(got, "ask anything") {
		t.Fatalf("placeholder shown with content:\n%s", got)
	}
	if !strings.Contains(got, "> hi") {
		t.Fatalf("prompt line missing:\n%s", got)
	}
}

func TestRankCompletionsFuzzyOrder(t *testing.T) {
	got := rankCompletions("mdl", []string{"/help", "/model", "/mode"})
	if len(got) == 0 || got[0] != "/model" {
		t.Fatalf("ranked = %v", got)
	}
	all := rankCompletions("", []string{"/a", "/b"})
	if len(all) != 2 {
		t.Fatalf("empty prefix must keep all candidates: %v", all)
	}
}

func TestCtrlEPassesThroughForGlobalChord(t *testing.T) {
	e := New("")
	typeString(e, "draft")

	// ctrl+e opens the external editor at the app level; the inline
	// editor must decline it so the chord stays reachable.
	if e.HandleKey(input.Key{Type: input.KeyRune, Rune: 'e', Ctrl: true}) {
		t.Fatalf("ctrl+e consumed by the inline editor")
	}
	if e.Text() != "draft" {
		t.Fatalf("buffer changed by declined chord: %q", e.Text())
	}
}
