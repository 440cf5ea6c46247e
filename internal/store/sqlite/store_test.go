package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/symposium/internal/core/forum"
)

var _ forum.Store = (*Store)(nil)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "symposium.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testForum(id string) forum.Forum {
	return forum.Forum{
		ID:          id,
		Name:        "Evening Symposium",
		Description: "a long discussion about the good life",
		Mode:        forum.ModeConsensus,
		State:       forum.StateCreated,
		Topic:       "introduction",
		TurnCeiling: 20,
		Tags:        []string{"ethics", "virtue"},
		Settings:    map[string]string{"provider": "template"},
	}
}

func mustCreate(t *testing.T, store *Store, f forum.Forum) {
	t.Helper()
	if err := store.CreateForum(context.Background(), f); err != nil {
		t.Fatalf("CreateForum(%s) failed: %v", f.ID, err)
	}
}

func TestStore_CreateAndGetForum(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))

	got, err := store.GetForum(ctx, "frm_1")
	if err != nil {
		t.Fatalf("GetForum failed: %v", err)
	}

	if got.Name != "Evening Symposium" {
		t.Errorf("Name = %q, want %q", got.Name, "Evening Symposium")
	}
	if got.Mode != forum.ModeConsensus {
		t.Errorf("Mode = %q, want %q", got.Mode, forum.ModeConsensus)
	}
	if got.State != forum.StateCreated {
		t.Errorf("State = %q, want %q", got.State, forum.StateCreated)
	}
	if got.TurnCeiling != 20 {
		t.Errorf("TurnCeiling = %d, want 20", got.TurnCeiling)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "ethics" || got.Tags[1] != "virtue" {
		t.Errorf("Tags = %v, want [ethics virtue]", got.Tags)
	}
	if got.Settings["provider"] != "template" {
		t.Errorf("Settings = %v, want provider=template", got.Settings)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be auto-set")
	}
	if got.LastActivity.IsZero() {
		t.Error("LastActivity should be auto-set")
	}
}

func TestStore_CreateForumDuplicate(t *testing.T) {
	store := newTestStore(t)

	mustCreate(t, store, testForum("frm_1"))

	err := store.CreateForum(context.Background(), testForum("frm_1"))
	if !errors.Is(err, forum.ErrDuplicate) {
		t.Errorf("CreateForum error = %v, want ErrDuplicate", err)
	}
}

func TestStore_GetForumNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetForum(context.Background(), "nope")
	if !errors.Is(err, forum.ErrNotFound) {
		t.Errorf("GetForum error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListForumsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"frm_old", "frm_mid", "frm_new"} {
		f := testForum(id)
		f.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		f.LastActivity = f.CreatedAt
		mustCreate(t, store, f)
	}

	forums, err := store.ListForums(ctx)
	if err != nil {
		t.Fatalf("ListForums failed: %v", err)
	}

	if len(forums) != 3 {
		t.Fatalf("ListForums returned %d forums, want 3", len(forums))
	}
	want := []string{"frm_new", "frm_mid", "frm_old"}
	for i, id := range want {
		if forums[i].ID != id {
			t.Errorf("forums[%d].ID = %q, want %q", i, forums[i].ID, id)
		}
	}
}

func TestStore_SaveForum(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))

	f, _ := store.GetForum(ctx, "frm_1")
	f.State = forum.StateActive
	f.Topic = "justice"
	f.TurnCount = 5
	f.Tags = []string{"justice"}

	if err := store.SaveForum(ctx, f); err != nil {
		t.Fatalf("SaveForum failed: %v", err)
	}

	got, err := store.GetForum(ctx, "frm_1")
	if err != nil {
		t.Fatalf("GetForum failed: %v", err)
	}
	if got.State != forum.StateActive {
		t.Errorf("State = %q, want %q", got.State, forum.StateActive)
	}
	if got.Topic != "justice" {
		t.Errorf("Topic = %q, want %q", got.Topic, "justice")
	}
	if got.TurnCount != 5 {
		t.Errorf("TurnCount = %d, want 5", got.TurnCount)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "justice" {
		t.Errorf("Tags = %v, want [justice]", got.Tags)
	}
}

func TestStore_SaveForumNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveForum(context.Background(), testForum("ghost"))
	if !errors.Is(err, forum.ErrNotFound) {
		t.Errorf("SaveForum error = %v, want ErrNotFound", err)
	}
}

func TestStore_SaveForumKeepsMessageCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))
	if _, err := store.AppendMessage(ctx, forum.NewMessage("frm_1", "human", forum.KindHuman, "hello")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	// Save a stale copy that still carries MessageCount 0.
	stale := testForum("frm_1")
	if err := store.SaveForum(ctx, stale); err != nil {
		t.Fatalf("SaveForum failed: %v", err)
	}

	got, _ := store.GetForum(ctx, "frm_1")
	if got.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1 (store-owned)", got.MessageCount)
	}
}

func TestStore_DeleteForumCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))
	if _, err := store.AppendMessage(ctx, forum.NewMessage("frm_1", "human", forum.KindHuman, "hello")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := store.SaveParticipant(ctx, forum.Participant{ForumID: "frm_1", ID: "socrates", Kind: forum.KindAgent}); err != nil {
		t.Fatalf("SaveParticipant failed: %v", err)
	}
	if err := store.SaveSummary(ctx, forum.Summary{ForumID: "frm_1", Text: "opening remarks"}); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}

	if err := store.DeleteForum(ctx, "frm_1"); err != nil {
		t.Fatalf("DeleteForum failed: %v", err)
	}

	if _, err := store.GetForum(ctx, "frm_1"); !errors.Is(err, forum.ErrNotFound) {
		t.Errorf("GetForum error = %v, want ErrNotFound", err)
	}
	messages, err := store.ListMessages(ctx, "frm_1", 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("ListMessages returned %d messages after delete, want 0", len(messages))
	}
	events, err := store.Events(ctx, "frm_1")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Events returned %d events after delete, want 0", len(events))
	}
	summaries, err := store.Summaries(ctx, "frm_1")
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("Summaries returned %d summaries after delete, want 0", len(summaries))
	}

	report, err := store.Integrity(ctx)
	if err != nil {
		t.Fatalf("Integrity failed: %v", err)
	}
	if !report.Clean() {
		t.Errorf("Integrity report not clean after cascade delete: %+v", report)
	}
}

func TestStore_DeleteForumNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteForum(context.Background(), "nope")
	if !errors.Is(err, forum.ErrNotFound) {
		t.Errorf("DeleteForum error = %v, want ErrNotFound", err)
	}
}

func TestStore_AppendMessageSequencing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))

	for i, content := range []string{"first", "second", "third"} {
		m := forum.NewMessage("frm_1", "human", forum.KindHuman, content)
		stored, err := store.AppendMessage(ctx, m)
		if err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
		if stored.Sequence != int64(i+1) {
			t.Errorf("Sequence = %d, want %d", stored.Sequence, i+1)
		}
	}

	got, _ := store.GetForum(ctx, "frm_1")
	if got.MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", got.MessageCount)
	}
}

func TestStore_AppendMessageMetadataRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))

	m := forum.NewMessage("frm_1", "socrates", forum.KindAgent, "what is virtue?")
	m.Thinking = "considering the question of virtue"
	m.Metadata = map[string]string{"provider": "openai", "model": "gpt-4o-mini"}

	if _, err := store.AppendMessage(ctx, m); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	messages, err := store.ListMessages(ctx, "frm_1", 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("ListMessages returned %d messages, want 1", len(messages))
	}

	got := messages[0]
	if got.Kind != forum.KindAgent {
		t.Errorf("Kind = %q, want %q", got.Kind, forum.KindAgent)
	}
	if got.Thinking != "considering the question of virtue" {
		t.Errorf("Thinking = %q, want original", got.Thinking)
	}
	if got.Metadata["model"] != "gpt-4o-mini" {
		t.Errorf("Metadata = %v, want model=gpt-4o-mini", got.Metadata)
	}
}

func TestStore_AppendMessageForumNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AppendMessage(context.Background(), forum.NewMessage("nope", "human", forum.KindHuman, "hello"))
	if !errors.Is(err, forum.ErrNotFound) {
		t.Errorf("AppendMessage error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListMessagesLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))
	for _, content := range []string{"one", "two", "three", "four"} {
		if _, err := store.AppendMessage(ctx, forum.NewMessage("frm_1", "human", forum.KindHuman, content)); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	messages, err := store.ListMessages(ctx, "frm_1", 2)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}

	// Most recent two, still oldest-first.
	if len(messages) != 2 {
		t.Fatalf("ListMessages returned %d messages, want 2", len(messages))
	}
	if messages[0].Content != "three" || messages[1].Content != "four" {
		t.Errorf("Contents = [%s %s], want [three four]", messages[0].Content, messages[1].Content)
	}
}

func TestStore_MessagesSince(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))
	for _, content := range []string{"one", "two", "three"} {
		if _, err := store.AppendMessage(ctx, forum.NewMessage("frm_1", "human", forum.KindHuman, content)); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	messages, err := store.MessagesSince(ctx, "frm_1", 1)
	if err != nil {
		t.Fatalf("MessagesSince failed: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("MessagesSince returned %d messages, want 2", len(messages))
	}
	if messages[0].Sequence != 2 || messages[1].Sequence != 3 {
		t.Errorf("Sequences = [%d %d], want [2 3]", messages[0].Sequence, messages[1].Sequence)
	}
}

func TestStore_ParticipantLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))

	p := forum.Participant{
		ForumID:     "frm_1",
		ID:          "socrates",
		DisplayName: "Socrates",
		Kind:        forum.KindAgent,
		Traits:      map[string]float64{"skeptical": 0.9},
		Expertise:   []string{"ethics"},
	}
	if err := store.SaveParticipant(ctx, p); err != nil {
		t.Fatalf("SaveParticipant failed: %v", err)
	}

	// Re-saving refreshes the snapshot without a second join event.
	p.DisplayName = "Socrates of Athens"
	if err := store.SaveParticipant(ctx, p); err != nil {
		t.Fatalf("SaveParticipant (update) failed: %v", err)
	}

	participants, err := store.Participants(ctx, "frm_1")
	if err != nil {
		t.Fatalf("Participants failed: %v", err)
	}
	if len(participants) != 1 {
		t.Fatalf("Participants returned %d members, want 1", len(participants))
	}
	got := participants[0]
	if got.DisplayName != "Socrates of Athens" {
		t.Errorf("DisplayName = %q, want updated value", got.DisplayName)
	}
	if got.Traits["skeptical"] != 0.9 {
		t.Errorf("Traits = %v, want skeptical=0.9", got.Traits)
	}
	if len(got.Expertise) != 1 || got.Expertise[0] != "ethics" {
		t.Errorf("Expertise = %v, want [ethics]", got.Expertise)
	}
	if got.JoinedAt.IsZero() {
		t.Error("JoinedAt should be auto-set")
	}

	events, err := store.Events(ctx, "frm_1")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Events returned %d events, want 1 join", len(events))
	}
	if events[0].Kind != forum.EventJoin || events[0].ParticipantID != "socrates" {
		t.Errorf("Event = %+v, want socrates join", events[0])
	}

	if err := store.RemoveParticipant(ctx, "frm_1", "socrates"); err != nil {
		t.Fatalf("RemoveParticipant failed: %v", err)
	}

	participants, _ = store.Participants(ctx, "frm_1")
	if len(participants) != 0 {
		t.Errorf("Participants returned %d members after remove, want 0", len(participants))
	}

	events, _ = store.Events(ctx, "frm_1")
	if len(events) != 2 {
		t.Fatalf("Events returned %d events, want join+leave", len(events))
	}
	if events[1].Kind != forum.EventLeave {
		t.Errorf("Second event = %q, want leave", events[1].Kind)
	}
}

func TestStore_RemoveParticipantNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))

	err := store.RemoveParticipant(ctx, "frm_1", "ghost")
	if !errors.Is(err, forum.ErrNotFound) {
		t.Errorf("RemoveParticipant error = %v, want ErrNotFound", err)
	}
}

func TestStore_ParticipantsJoinOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"socrates", "kant", "nietzsche"} {
		p := forum.Participant{
			ForumID:  "frm_1",
			ID:       id,
			Kind:     forum.KindAgent,
			JoinedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.SaveParticipant(ctx, p); err != nil {
			t.Fatalf("SaveParticipant(%s) failed: %v", id, err)
		}
	}

	participants, err := store.Participants(ctx, "frm_1")
	if err != nil {
		t.Fatalf("Participants failed: %v", err)
	}

	want := []string{"socrates", "kant", "nietzsche"}
	if len(participants) != len(want) {
		t.Fatalf("Participants returned %d members, want %d", len(participants), len(want))
	}
	for i, id := range want {
		if participants[i].ID != id {
			t.Errorf("participants[%d].ID = %q, want %q", i, participants[i].ID, id)
		}
	}
}

func TestStore_Summaries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))
	for range 3 {
		if _, err := store.AppendMessage(ctx, forum.NewMessage("frm_1", "human", forum.KindHuman, "hello")); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := store.SaveSummary(ctx, forum.Summary{ForumID: "frm_1", Text: "early days", CreatedAt: base}); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}
	if err := store.SaveSummary(ctx, forum.Summary{ForumID: "frm_1", Text: "later on", CreatedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}

	summaries, err := store.Summaries(ctx, "frm_1")
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("Summaries returned %d entries, want 2", len(summaries))
	}
	if summaries[0].Text != "later on" {
		t.Errorf("summaries[0].Text = %q, want newest first", summaries[0].Text)
	}
	// Zero MessageCountAt picks up the forum's live count.
	if summaries[0].MessageCountAt != 3 {
		t.Errorf("MessageCountAt = %d, want 3", summaries[0].MessageCountAt)
	}
}

func TestStore_SaveSummaryForumNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveSummary(context.Background(), forum.Summary{ForumID: "nope", Text: "x"})
	if !errors.Is(err, forum.ErrNotFound) {
		t.Errorf("SaveSummary error = %v, want ErrNotFound", err)
	}
}

func TestStore_CorruptJSONColumn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))

	if err := store.db.Exec(`UPDATE forums SET tags = '{not json' WHERE id = 'frm_1'`).Error; err != nil {
		t.Fatalf("corrupting row failed: %v", err)
	}

	_, err := store.GetForum(ctx, "frm_1")
	if !errors.Is(err, forum.ErrCorrupt) {
		t.Errorf("GetForum error = %v, want ErrCorrupt", err)
	}
}

func TestStore_IntegrityFindsOrphans(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, testForum("frm_1"))
	if _, err := store.AppendMessage(ctx, forum.NewMessage("frm_1", "human", forum.KindHuman, "hello")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	// Simulate a partial delete that left children behind.
	if err := store.db.Exec(`DELETE FROM forums WHERE id = 'frm_1'`).Error; err != nil {
		t.Fatalf("raw delete failed: %v", err)
	}

	report, err := store.Integrity(ctx)
	if err != nil {
		t.Fatalf("Integrity failed: %v", err)
	}
	if report.Clean() {
		t.Error("Integrity report should flag orphans")
	}
	if report.OrphanMessages != 1 {
		t.Errorf("OrphanMessages = %d, want 1", report.OrphanMessages)
	}
}

func TestStore_ReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symposium.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	mustCreate(t, store, testForum("frm_1"))
	if _, err := store.AppendMessage(ctx, forum.NewMessage("frm_1", "human", forum.KindHuman, "hello")); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetForum(ctx, "frm_1")
	if err != nil {
		t.Fatalf("GetForum after reopen failed: %v", err)
	}
	if got.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", got.MessageCount)
	}
}
