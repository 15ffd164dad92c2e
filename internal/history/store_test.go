package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreAppendAndLoadTexts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.jsonl")
	s := &Store{Path: path}

	if got, err := s.LoadTexts(); err != nil || len(got) != 0 {
		t.Fatalf("LoadTexts on missing file: got=%v err=%v", got, err)
	}

	if err := s.Append("   "); err != nil {
		t.Fatalf("Append whitespace: %v", err)
	}
	if err := s.Append("one"); err != nil {
		t.Fatalf("Append one: %v", err)
	}
	if err := s.Append("two"); err != nil {
		t.Fatalf("Append two: %v", err)
	}

	got, err := s.LoadTexts()
	if err != nil {
		t.Fatalf("LoadTexts: %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("LoadTexts = %v", got)
	}
}

func TestStoreLoadSkipsCorruptLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.jsonl")
	content := strings.Join([]string{
		`{"text":"keep","ts":"2025-01-01T00:00:00Z"}`,
		`{not json}`,
		`{"text":"","ts":"2025-01-01T00:00:00Z"}`,
		`{"text":"also","ts":"2025-01-02T00:00:00Z"}`,
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := &Store{Path: path}
	got, err := s.LoadTexts()
	if err != nil {
		t.Fatalf("LoadTexts: %v", err)
	}
	if len(got) != 2 || got[0] != "keep" || got[1] != "also" {
		t.Fatalf("LoadTexts = %v", got)
	}
}

func TestStoreNilAndEmptyPath(t *testing.T) {
	t.Parallel()

	var nilStore *Store
	if err := nilStore.Append("x"); err == nil {
		t.Fatalf("nil store Append must error")
	}
	if _, err := (&Store{}).LoadTexts(); err == nil {
		t.Fatalf("empty path LoadTexts must error")
	}
}
