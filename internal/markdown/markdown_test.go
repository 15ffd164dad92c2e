package markdown

import (
	"strings"
	"testing"

	"lumen-cli/internal/ui/render"
)

func plainTexts(lines []render.Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, render.StripANSI(l.String()))
	}
	return out
}

func TestToLinesHeadingAndParagraph(t *testing.T) {
	lines := plainTexts(ToLines("# Title\n\nbody text here", 80))
	if len(lines) < 3 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0] != "Title" {
		t.Fatalf("heading line = %q", lines[0])
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "body text here") {
		t.Fatalf("paragraph missing: %v", lines)
	}
}

func TestToLinesWrapsToWidth(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	for _, line := range plainTexts(ToLines(text, 20)) {
		if w := len([]rune(line)); w > 20 {
			t.Fatalf("line %q exceeds width: %d", line, w)
		}
	}
}

func TestToLinesBulletAndOrderedLists(t *testing.T) {
	lines := plainTexts(ToLines("- first\n- second\n\n1. one\n2. two", 80))
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"- first", "- second", "1. one", "2. two"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in:\n%s", want, joined)
		}
	}
}

func TestToLinesFencedCodeBlockKeepsContent(t *testing.T) {
	src := "before\n\n```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n\nafter"
	lines := plainTexts(ToLines(src, 80))
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"func main() {", `println("hi")`, "before", "after"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in:\n%s", want, joined)
		}
	}
}

func TestToLinesUnknownLanguageFallsBack(t *testing.T) {
	src := "```nosuchlang\nplain payload\n```"
	joined := strings.Join(plainTexts(ToLines(src, 80)), "\n")
	if !strings.Contains(joined, "plain payload") {
		t.Fatalf("code content lost: %s", joined)
	}
}

func TestToLinesBlockquotePrefix(t *testing.T) {
	lines := plainTexts(ToLines("> quoted words", 80))
	found := false
	for _, l := range lines {
		if strings.HasPrefix(l, "│ ") && strings.Contains(l, "quoted words") {
			found = true
		}
	}
	if !found {
		t.Fatalf("quote bar missing: %v", lines)
	}
}

func TestToLinesEmptyInput(t *testing.T) {
	if lines := ToLines("", 80); len(lines) != 0 {
		t.Fatalf("empty input produced %d lines", len(lines))
	}
}

func TestToLinesInlineCodeSurvives(t *testing.T) {
	joined := strings.Join(plainTexts(ToLines("run `go vet` now", 80)), "\n")
	if !strings.Contains(joined, "go vet") {
		t.Fatalf("inline code content lost: %s", joined)
	}
}
