package session

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"lumen-cli/internal/transcript"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := &Store{Dir: t.TempDir()}
	records := []transcript.Record{
		{Kind: transcript.RecordUser, Text: "hi"},
		{Kind: transcript.RecordToolCall, CallID: "c1", ToolName: "ls"},
		{Kind: transcript.RecordToolResult, CallID: "c1", Text: "ok"},
	}
	id, err := s.Save("", records)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatalf("Save minted no id")
	}

	snap, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Records) != 3 || snap.Records[1].CallID != "c1" {
		t.Fatalf("records = %+v", snap.Records)
	}
}

func TestLatestPicksMostRecent(t *testing.T) {
	t.Parallel()

	s := &Store{Dir: t.TempDir()}
	if _, err := s.Latest(); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("empty store Latest err = %v", err)
	}

	if _, err := s.Save("older", []transcript.Record{{Kind: transcript.RecordUser, Text: "a"}}); err != nil {
		t.Fatalf("Save older: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := s.Save("newer", []transcript.Record{{Kind: transcript.RecordUser, Text: "b"}}); err != nil {
		t.Fatalf("Save newer: %v", err)
	}

	snap, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if snap.ID != "newer" {
		t.Fatalf("Latest = %q", snap.ID)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	t.Parallel()

	s := &Store{Dir: t.TempDir()}
	if _, err := s.Save("keep", nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 || ids[0] != "keep" {
		t.Fatalf("List = %v", ids)
	}
}
