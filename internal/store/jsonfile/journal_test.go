package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hay-kot/symposium/internal/core/journal"
)

var _ journal.Store = (*JournalStore)(nil)

func TestJournalStore_RecordAndList(t *testing.T) {
	store := NewJournalStore(filepath.Join(t.TempDir(), "journal.json"))
	ctx := context.Background()

	entry := journal.Entry{
		ForumID:   "frm_1",
		Cycle:     1,
		Outcome:   journal.OutcomeSpeak,
		SpeakerID: "socrates",
		Scores:    map[string]float64{"socrates": 0.75, "kant": 0.4},
		Seed:      42,
	}

	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.ID == "" {
		t.Error("ID should be auto-generated")
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should be auto-set")
	}
	if got.SpeakerID != "socrates" {
		t.Errorf("SpeakerID = %q, want %q", got.SpeakerID, "socrates")
	}
	if got.Scores["kant"] != 0.4 {
		t.Errorf("Scores = %v, want kant=0.4", got.Scores)
	}
}

func TestJournalStore_ListNewestFirst(t *testing.T) {
	store := NewJournalStore(filepath.Join(t.TempDir(), "journal.json"))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := store.Record(ctx, journal.Entry{ForumID: "frm_1", Cycle: i, Outcome: journal.OutcomeSpeak})
		if err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(entries))
	}
	for i, wantCycle := range []int{3, 2, 1} {
		if entries[i].Cycle != wantCycle {
			t.Errorf("entries[%d].Cycle = %d, want %d", i, entries[i].Cycle, wantCycle)
		}
	}
}

func TestJournalStore_ListLimit(t *testing.T) {
	store := NewJournalStore(filepath.Join(t.TempDir(), "journal.json"))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_ = store.Record(ctx, journal.Entry{ForumID: "frm_1", Cycle: i, Outcome: journal.OutcomeSpeak})
	}

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	if entries[0].Cycle != 5 || entries[1].Cycle != 4 {
		t.Errorf("Cycles = [%d %d], want [5 4]", entries[0].Cycle, entries[1].Cycle)
	}
}

func TestJournalStore_ListForum(t *testing.T) {
	store := NewJournalStore(filepath.Join(t.TempDir(), "journal.json"))
	ctx := context.Background()

	_ = store.Record(ctx, journal.Entry{ForumID: "frm_a", Cycle: 1, Outcome: journal.OutcomeSpeak})
	_ = store.Record(ctx, journal.Entry{ForumID: "frm_b", Cycle: 1, Outcome: journal.OutcomeSpeak})
	_ = store.Record(ctx, journal.Entry{ForumID: "frm_a", Cycle: 2, Outcome: journal.OutcomeAwaitingHuman})

	entries, err := store.ListForum(ctx, "frm_a", 0)
	if err != nil {
		t.Fatalf("ListForum failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("ListForum returned %d entries, want 2", len(entries))
	}
	if entries[0].Cycle != 2 || entries[0].Outcome != journal.OutcomeAwaitingHuman {
		t.Errorf("entries[0] = %+v, want cycle 2 awaiting_human", entries[0])
	}
	for _, e := range entries {
		if e.ForumID != "frm_a" {
			t.Errorf("entry for forum %q leaked into frm_a listing", e.ForumID)
		}
	}
}

func TestJournalStore_Retention(t *testing.T) {
	store := NewJournalStore(filepath.Join(t.TempDir(), "journal.json")).WithMaxEntries(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		err := store.Record(ctx, journal.Entry{ForumID: "frm_1", Cycle: i, Outcome: journal.OutcomeSpeak})
		if err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	// Oldest entries dropped.
	if len(entries) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(entries))
	}
	if entries[0].Cycle != 5 {
		t.Errorf("newest Cycle = %d, want 5", entries[0].Cycle)
	}
	if entries[2].Cycle != 3 {
		t.Errorf("oldest retained Cycle = %d, want 3", entries[2].Cycle)
	}
}

func TestJournalStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	store := NewJournalStore(path)
	ctx := context.Background()

	_ = store.Record(ctx, journal.Entry{ForumID: "frm_1", Cycle: 1, Outcome: journal.OutcomeSpeak})

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List after Clear failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List returned %d entries after Clear, want 0", len(entries))
	}

	// Clearing an already-empty journal is fine.
	if err := store.Clear(ctx); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("journal file should be removed, stat err = %v", err)
	}
}

func TestJournalStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	store := NewJournalStore(path)
	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List returned %d entries for empty file, want 0", len(entries))
	}
}

func TestJournalStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store := NewJournalStore(path)
	_, err := store.List(context.Background(), 0)
	if err == nil || !strings.Contains(err.Error(), "parse journal file") {
		t.Errorf("List error = %v, want parse failure", err)
	}
}

func TestJournalStore_ConcurrentRecord(t *testing.T) {
	store := NewJournalStore(filepath.Join(t.TempDir(), "journal.json"))
	ctx := context.Background()

	const goroutines = 8
	const perGoroutine = 5

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := range goroutines {
		go func(id int) {
			defer wg.Done()
			for j := range perGoroutine {
				err := store.Record(ctx, journal.Entry{
					ForumID: fmt.Sprintf("frm_%d", id),
					Cycle:   j,
					Outcome: journal.OutcomeSpeak,
				})
				if err != nil {
					t.Errorf("Record failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != goroutines*perGoroutine {
		t.Errorf("List returned %d entries, want %d", len(entries), goroutines*perGoroutine)
	}
}
