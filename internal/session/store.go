// Package session persists conversation records so a later run can
// rebuild the transcript.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"lumen-cli/internal/transcript"
)

// Snapshot is one saved session file.
type Snapshot struct {
	ID      string              `json:"id"`
	Records []transcript.Record `json:"records"`
	Updated time.Time           `json:"updated"`
}

// Store keeps one JSON file per session under its directory.
type Store struct {
	Dir string
}

func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lumen", "sessions"), nil
}

func NewDefault() (*Store, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: dir}, nil
}

// Save writes the session, minting an id when empty, and returns it.
func (s *Store) Save(id string, records []transcript.Record) (string, error) {
	if s == nil || s.Dir == "" {
		return "", errors.New("session store dir is empty")
	}
	if id == "" {
		id = uuid.NewString()
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	snap := Snapshot{ID: id, Records: records, Updated: time.Now()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	return id, os.WriteFile(filepath.Join(s.Dir, id+".json"), data, 0o644)
}

// Load reads one session by id.
func (s *Store) Load(id string) (Snapshot, error) {
	var snap Snapshot
	if s == nil || s.Dir == "" {
		return snap, errors.New("session store dir is empty")
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, id+".json"))
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}

// Latest returns the most recently updated session, or fs.ErrNotExist
// when none are saved.
func (s *Store) Latest() (Snapshot, error) {
	ids, err := s.List()
	if err != nil {
		return Snapshot{}, err
	}
	if len(ids) == 0 {
		return Snapshot{}, fs.ErrNotExist
	}
	var newest Snapshot
	for _, id := range ids {
		snap, err := s.Load(id)
		if err != nil {
			continue
		}
		if snap.Updated.After(newest.Updated) {
			newest = snap
		}
	}
	if newest.ID == "" {
		return Snapshot{}, fs.ErrNotExist
	}
	return newest, nil
}

// List returns the saved session ids, sorted.
func (s *Store) List() ([]string, error) {
	if s == nil || s.Dir == "" {
		return nil, errors.New("session store dir is empty")
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, name[:len(name)-len(".json")])
	}
	sort.Strings(ids)
	return ids, nil
}
