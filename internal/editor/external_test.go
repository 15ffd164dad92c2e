package editor

import (
	"strings"
	"testing"
)

// passthroughSuspender runs the subprocess without a real terminal.
type passthroughSuspender struct{ calls int }

func (s *passthroughSuspender) Suspend(fn func() error) error {
	s.calls++
	return fn()
}

func TestEditExternalRoundTrip(t *testing.T) {
	s := &passthroughSuspender{}
	// "true" leaves the scratch file untouched, so the initial content
	// comes back verbatim.
	got, err := EditExternal(s, "true", "draft body", ".md")
	if err != nil {
		t.Fatalf("EditExternal: %v", err)
	}
	if got != "draft body" {
		t.Fatalf("content = %q", got)
	}
	if s.calls != 1 {
		t.Fatalf("terminal suspended %d times", s.calls)
	}
}

func TestEditExternalSubprocessFailure(t *testing.T) {
	s := &passthroughSuspender{}
	_, err := EditExternal(s, "false", "body", ".txt")
	if err == nil {
		t.Fatalf("failing editor must surface an error")
	}
	if !strings.Contains(err.Error(), "false") {
		t.Fatalf("error does not name the editor: %v", err)
	}
}

func TestEditExternalNoCommand(t *testing.T) {
	s := &passthroughSuspender{}
	if _, err := EditExternal(s, "", "body", ""); err == nil {
		t.Fatalf("empty command must error")
	}
	if s.calls != 0 {
		t.Fatalf("terminal suspended with no editor configured")
	}
}
