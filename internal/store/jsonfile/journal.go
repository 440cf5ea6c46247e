// Package jsonfile provides JSON file-backed persistence for the decision
// journal.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hay-kot/symposium/internal/core/journal"
	"github.com/hay-kot/symposium/pkg/randid"
)

const defaultMaxEntries = 500

// JournalFile is the root JSON structure stored on disk.
type JournalFile struct {
	Entries []journal.Entry `json:"entries"`
}

// JournalStore implements journal.Store using a single JSON file.
type JournalStore struct {
	path       string
	maxEntries int
	mu         sync.RWMutex
}

// NewJournalStore creates a journal store at the given path.
func NewJournalStore(path string) *JournalStore {
	return &JournalStore{
		path:       path,
		maxEntries: defaultMaxEntries,
	}
}

// WithMaxEntries sets the maximum number of entries to retain.
func (s *JournalStore) WithMaxEntries(max int) *JournalStore {
	s.maxEntries = max
	return s
}

// Record appends a journal entry, pruning oldest entries past the
// configured maximum.
func (s *JournalStore) Record(ctx context.Context, e journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	if e.ID == "" {
		e.ID = randid.Generate(12)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	file.Entries = append(file.Entries, e)
	if len(file.Entries) > s.maxEntries {
		file.Entries = file.Entries[len(file.Entries)-s.maxEntries:]
	}

	return s.save(file)
}

// List returns entries, newest first. A limit of 0 returns all.
func (s *JournalStore) List(ctx context.Context, limit int) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	return newestFirst(file.Entries, limit), nil
}

// ListForum returns entries for one forum, newest first.
func (s *JournalStore) ListForum(ctx context.Context, forumID string, limit int) ([]journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	var matched []journal.Entry
	for _, e := range file.Entries {
		if e.ForumID == forumID {
			matched = append(matched, e)
		}
	}

	return newestFirst(matched, limit), nil
}

// Clear removes all entries.
func (s *JournalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove journal file: %w", err)
	}
	return nil
}

// newestFirst reverses append order and applies the limit.
func newestFirst(entries []journal.Entry, limit int) []journal.Entry {
	out := make([]journal.Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// load reads the journal file from disk.
// Returns an empty JournalFile if the file doesn't exist.
func (s *JournalStore) load() (JournalFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return JournalFile{}, nil
		}
		return JournalFile{}, fmt.Errorf("read journal file: %w", err)
	}

	if len(data) == 0 {
		return JournalFile{}, nil
	}

	var file JournalFile
	if err := json.Unmarshal(data, &file); err != nil {
		return JournalFile{}, fmt.Errorf("parse journal file: %w", err)
	}

	return file, nil
}

// save writes the journal file to disk atomically.
// Uses write-to-temp-then-rename to prevent corruption from interrupted writes.
func (s *JournalStore) save(file JournalFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
