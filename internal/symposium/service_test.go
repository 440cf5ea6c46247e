package symposium

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/symposium/internal/core/config"
	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/journal"
	"github.com/hay-kot/symposium/internal/core/persona"
	"github.com/hay-kot/symposium/internal/engine"
	"github.com/hay-kot/symposium/pkg/executil"
)

// mockStore implements forum.Store in memory for testing.
type mockStore struct {
	mu           sync.Mutex
	forums       map[string]forum.Forum
	messages     map[string][]forum.Message
	participants map[string][]forum.Participant
	events       map[string][]forum.Event
	summaries    map[string][]forum.Summary
}

func newMockStore() *mockStore {
	return &mockStore{
		forums:       make(map[string]forum.Forum),
		messages:     make(map[string][]forum.Message),
		participants: make(map[string][]forum.Participant),
		events:       make(map[string][]forum.Event),
		summaries:    make(map[string][]forum.Summary),
	}
}

func (m *mockStore) CreateForum(_ context.Context, f forum.Forum) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forums[f.ID]; ok {
		return forum.ErrDuplicate
	}
	m.forums[f.ID] = f
	return nil
}

func (m *mockStore) GetForum(_ context.Context, id string) (forum.Forum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forums[id]
	if !ok {
		return forum.Forum{}, forum.ErrNotFound
	}
	return f, nil
}

func (m *mockStore) ListForums(_ context.Context) ([]forum.Forum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []forum.Forum
	for _, f := range m.forums {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastActivity.After(result[j].LastActivity)
	})
	return result, nil
}

func (m *mockStore) SaveForum(_ context.Context, f forum.Forum) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.forums[f.ID]
	if !ok {
		return forum.ErrNotFound
	}
	f.MessageCount = existing.MessageCount
	f.CreatedAt = existing.CreatedAt
	m.forums[f.ID] = f
	return nil
}

func (m *mockStore) DeleteForum(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forums[id]; !ok {
		return forum.ErrNotFound
	}
	delete(m.forums, id)
	delete(m.messages, id)
	delete(m.participants, id)
	delete(m.events, id)
	delete(m.summaries, id)
	return nil
}

func (m *mockStore) AppendMessage(_ context.Context, msg forum.Message) (forum.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forums[msg.ForumID]
	if !ok {
		return forum.Message{}, forum.ErrNotFound
	}
	msg.Sequence = int64(len(m.messages[msg.ForumID]) + 1)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.messages[msg.ForumID] = append(m.messages[msg.ForumID], msg)
	f.MessageCount++
	f.LastActivity = msg.CreatedAt
	m.forums[msg.ForumID] = f
	return msg, nil
}

func (m *mockStore) ListMessages(_ context.Context, forumID string, limit int) ([]forum.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[forumID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]forum.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *mockStore) MessagesSince(_ context.Context, forumID string, seq int64) ([]forum.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []forum.Message
	for _, msg := range m.messages[forumID] {
		if msg.Sequence > seq {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockStore) SaveParticipant(_ context.Context, p forum.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forums[p.ForumID]; !ok {
		return forum.ErrNotFound
	}
	for i, existing := range m.participants[p.ForumID] {
		if existing.ID == p.ID {
			p.JoinedAt = existing.JoinedAt
			m.participants[p.ForumID][i] = p
			return nil
		}
	}
	m.participants[p.ForumID] = append(m.participants[p.ForumID], p)
	m.events[p.ForumID] = append(m.events[p.ForumID], forum.Event{
		ForumID: p.ForumID, ParticipantID: p.ID, Kind: forum.EventJoin, CreatedAt: p.JoinedAt,
	})
	return nil
}

func (m *mockStore) RemoveParticipant(_ context.Context, forumID, participantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := m.participants[forumID]
	for i, p := range parts {
		if p.ID == participantID {
			m.participants[forumID] = append(parts[:i], parts[i+1:]...)
			m.events[forumID] = append(m.events[forumID], forum.Event{
				ForumID: forumID, ParticipantID: participantID, Kind: forum.EventLeave, CreatedAt: time.Now(),
			})
			return nil
		}
	}
	return forum.ErrNotFound
}

func (m *mockStore) Participants(_ context.Context, forumID string) ([]forum.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts := m.participants[forumID]
	out := make([]forum.Participant, len(parts))
	copy(out, parts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (m *mockStore) Events(_ context.Context, forumID string) ([]forum.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]forum.Event, len(m.events[forumID]))
	copy(out, m.events[forumID])
	return out, nil
}

func (m *mockStore) SaveSummary(_ context.Context, s forum.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forums[s.ForumID]; !ok {
		return forum.ErrNotFound
	}
	m.summaries[s.ForumID] = append(m.summaries[s.ForumID], s)
	return nil
}

func (m *mockStore) Summaries(_ context.Context, forumID string) ([]forum.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums := m.summaries[forumID]
	out := make([]forum.Summary, len(sums))
	copy(out, sums)
	// newest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *mockStore) Search(_ context.Context, _ string) ([]forum.SearchResult, error) {
	return nil, nil
}

// mockJournal implements journal.Store in memory.
type mockJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (m *mockJournal) Record(_ context.Context, e journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockJournal) List(_ context.Context, limit int) ([]journal.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]journal.Entry, len(m.entries))
	copy(out, m.entries)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockJournal) ListForum(_ context.Context, forumID string, limit int) ([]journal.Entry, error) {
	all, _ := m.List(context.Background(), 0)
	var out []journal.Entry
	for _, e := range all {
		if e.ForumID == forumID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockJournal) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func newTestService(t *testing.T, store forum.Store, jstore journal.Store, cfg *config.Config) *Service {
	t.Helper()
	if cfg == nil {
		c := config.DefaultConfig()
		c.DataDir = t.TempDir()
		cfg = &c
	}
	log := zerolog.New(io.Discard)
	return New(store, jstore, persona.DefaultLibrary(), cfg, &executil.RecordingExecutor{}, log, io.Discard, io.Discard)
}

func TestCreateForum(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Evening Symposium",
		Topic:    "justice",
		Mode:     forum.ModeConsensus,
		Personas: []string{"socrates", "kant"},
		Seed:     "What is justice?",
		Tags:     []string{"ethics"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, frm.ID)
	assert.Equal(t, "Evening Symposium", frm.Name)
	assert.Equal(t, forum.ModeConsensus, frm.Mode)
	assert.Equal(t, forum.StateCreated, frm.State)
	assert.Equal(t, 20, frm.TurnCeiling)

	parts, err := store.Participants(ctx, frm.ID)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, engine.HumanSenderID, parts[0].ID)
	assert.Equal(t, "socrates", parts[1].ID)
	assert.Equal(t, "kant", parts[2].ID)
	assert.NotEmpty(t, parts[1].Traits)
	assert.NotEmpty(t, parts[1].Expertise)

	msgs, err := store.ListMessages(ctx, frm.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, forum.KindHuman, msgs[0].Kind)
	assert.Equal(t, "What is justice?", msgs[0].Content)
}

func TestCreateForum_UnknownPersona(t *testing.T) {
	svc := newTestService(t, newMockStore(), &mockJournal{}, nil)

	_, err := svc.CreateForum(context.Background(), CreateOptions{
		Personas: []string{"socrates", "descartes"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown persona "descartes"`)
}

func TestCreateForum_NoPersonas(t *testing.T) {
	svc := newTestService(t, newMockStore(), &mockJournal{}, nil)

	_, err := svc.CreateForum(context.Background(), CreateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one persona")
}

func TestCreateForum_InvalidMode(t *testing.T) {
	svc := newTestService(t, newMockStore(), &mockJournal{}, nil)

	_, err := svc.CreateForum(context.Background(), CreateOptions{
		Mode:     "arguing",
		Personas: []string{"socrates"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestCreateForum_NameFromPattern(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)

	frm, err := svc.CreateForum(context.Background(), CreateOptions{
		Topic:    "free will",
		Personas: []string{"socrates"},
	})
	require.NoError(t, err)

	// Default pattern is "{{ .Topic }} ({{ .Date }})".
	assert.Contains(t, frm.Name, "free will")
	assert.Contains(t, frm.Name, time.Now().Format("2006-01-02"))
}

func TestCreateForum_DedupesPersonas(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Doubles",
		Personas: []string{"socrates", "Socrates"},
	})
	require.NoError(t, err)

	parts, err := store.Participants(ctx, frm.ID)
	require.NoError(t, err)
	assert.Len(t, parts, 2) // human + socrates once
}

func TestRunCycles_SeededForum(t *testing.T) {
	store := newMockStore()
	jstore := &mockJournal{}
	svc := newTestService(t, store, jstore, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Truth Session",
		Mode:     forum.ModeConsensus,
		Personas: []string{"socrates", "kant", "nietzsche"},
		Seed:     "What is truth, really?",
	})
	require.NoError(t, err)

	produced, last, err := svc.RunCycles(ctx, frm.ID)
	require.NoError(t, err)

	// One agent reply per human message, then the round is over.
	require.Len(t, produced, 1)
	assert.Equal(t, forum.KindAgent, produced[0].Kind)
	assert.NotEmpty(t, produced[0].Content)
	assert.Equal(t, engine.OutcomeTerminated, last.Outcome)
	assert.Equal(t, engine.ReasonRoundComplete, last.Reason)

	// Store reflects the turn and state.
	got, err := store.GetForum(ctx, frm.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TurnCount)
	assert.Equal(t, forum.StateAwaitingHuman, got.State)
	assert.Equal(t, 2, got.MessageCount)

	// Every cycle was journaled.
	entries, err := jstore.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, journal.OutcomeSpeak, entries[1].Outcome)
	assert.NotEmpty(t, entries[1].SpeakerID)
}

func TestSubmitHumanThenRunCycles(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Beauty Session",
		Personas: []string{"socrates", "kant", "confucius"},
	})
	require.NoError(t, err)

	msg, err := svc.SubmitHuman(ctx, frm.ID, "Tell me about beauty.")
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.Sequence)

	produced, _, err := svc.RunCycles(ctx, frm.ID)
	require.NoError(t, err)
	require.Len(t, produced, 1)
	assert.Equal(t, int64(2), produced[0].Sequence)

	// A second run without new human input just reports the wait.
	more, last, err := svc.RunCycles(ctx, frm.ID)
	require.NoError(t, err)
	assert.Empty(t, more)
	assert.Equal(t, engine.OutcomeAwaitingHuman, last.Outcome)
}

func TestSubmitHuman_EndedForum(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Short",
		Personas: []string{"socrates", "kant", "confucius"},
	})
	require.NoError(t, err)

	_, err = svc.EndForum(ctx, frm.ID)
	require.NoError(t, err)

	_, err = svc.SubmitHuman(ctx, frm.ID, "anyone there?")
	require.ErrorIs(t, err, forum.ErrEnded)
}

func TestOpenSession_RehydratesHistory(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Persistent",
		Personas: []string{"socrates", "kant", "confucius"},
		Seed:     "Does virtue pay?",
	})
	require.NoError(t, err)

	_, _, err = svc.RunCycles(ctx, frm.ID)
	require.NoError(t, err)

	// Drop the live session to force a rehydrate from the store.
	svc.dropLive(frm.ID)

	sess, err := svc.OpenSession(ctx, frm.ID)
	require.NoError(t, err)
	msgs := sess.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, forum.KindHuman, msgs[0].Kind)
	assert.Equal(t, forum.KindAgent, msgs[1].Kind)

	// The rehydrated session continues where it left off.
	_, last, err := svc.RunCycles(ctx, frm.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeAwaitingHuman, last.Outcome)
}

func TestRunCycles_TurnCeilingEndsForum(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:        "Tiny",
		Personas:    []string{"socrates", "kant", "confucius"},
		TurnCeiling: 2,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		if _, err := svc.SubmitHuman(ctx, frm.ID, "go on?"); err != nil {
			require.ErrorIs(t, err, forum.ErrEnded)
			break
		}
		_, _, err := svc.RunCycles(ctx, frm.ID)
		require.NoError(t, err)
	}

	got, err := store.GetForum(ctx, frm.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StateEnded, got.State)
	assert.LessOrEqual(t, got.TurnCount, 3)
}

func TestEndForum(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Closing",
		Personas: []string{"socrates"},
	})
	require.NoError(t, err)

	ended, err := svc.EndForum(ctx, frm.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StateEnded, ended.State)

	// Idempotent.
	again, err := svc.EndForum(ctx, frm.ID)
	require.NoError(t, err)
	assert.Equal(t, forum.StateEnded, again.State)
}

func TestEndForum_RunsHooks(t *testing.T) {
	store := newMockStore()
	exec := &executil.RecordingExecutor{}
	c := config.DefaultConfig()
	c.DataDir = t.TempDir()
	c.Hooks.OnForumEnd = []string{"notify {{ .ID }}"}
	log := zerolog.New(io.Discard)
	svc := New(store, &mockJournal{}, persona.DefaultLibrary(), &c, exec, log, io.Discard, io.Discard)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{Name: "Hooked", Personas: []string{"socrates"}})
	require.NoError(t, err)

	_, err = svc.EndForum(ctx, frm.ID)
	require.NoError(t, err)

	require.Len(t, exec.Commands, 1)
	assert.Equal(t, "sh", exec.Commands[0].Cmd)
	assert.Equal(t, []string{"-c", "notify " + frm.ID}, exec.Commands[0].Args)
}

func TestPruneForums(t *testing.T) {
	store := newMockStore()
	c := config.DefaultConfig()
	c.DataDir = t.TempDir()
	c.Forums.RetentionDays = 7
	svc := newTestService(t, store, &mockJournal{}, &c)
	ctx := context.Background()

	old := forum.Forum{ID: "frm_old", Name: "Old", Mode: forum.ModeConsensus, State: forum.StateEnded,
		LastActivity: time.Now().AddDate(0, 0, -30)}
	fresh := forum.Forum{ID: "frm_fresh", Name: "Fresh", Mode: forum.ModeConsensus, State: forum.StateEnded,
		LastActivity: time.Now()}
	active := forum.Forum{ID: "frm_active", Name: "Active", Mode: forum.ModeConsensus, State: forum.StateActive,
		LastActivity: time.Now().AddDate(0, 0, -30)}
	for _, f := range []forum.Forum{old, fresh, active} {
		require.NoError(t, store.CreateForum(ctx, f))
	}

	count, err := svc.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.GetForum(ctx, "frm_old")
	assert.ErrorIs(t, err, forum.ErrNotFound)
	_, err = store.GetForum(ctx, "frm_fresh")
	assert.NoError(t, err)
	_, err = store.GetForum(ctx, "frm_active")
	assert.NoError(t, err)
}

func TestPrune_DisabledByDefault(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	require.NoError(t, store.CreateForum(ctx, forum.Forum{
		ID: "frm_old", Name: "Old", State: forum.StateEnded,
		LastActivity: time.Now().AddDate(-1, 0, 0),
	}))

	count, err := svc.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSummarize(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Digest Me",
		Mode:     forum.ModeConsensus,
		Personas: []string{"socrates", "kant", "confucius"},
		Seed:     "Is justice natural or invented?",
	})
	require.NoError(t, err)
	_, _, err = svc.RunCycles(ctx, frm.ID)
	require.NoError(t, err)

	sum, err := svc.Summarize(ctx, frm.ID)
	require.NoError(t, err)
	assert.Equal(t, frm.ID, sum.ForumID)
	assert.Contains(t, sum.Text, "Digest Me")
	assert.Contains(t, sum.Text, "Human (1)")
	assert.Equal(t, 2, sum.MessageCountAt)

	// The summary lands in the transcript as an oracle message.
	msgs, err := store.ListMessages(ctx, frm.ID, 0)
	require.NoError(t, err)
	last := msgs[len(msgs)-1]
	assert.Equal(t, forum.KindOracle, last.Kind)
	assert.Equal(t, "oracle", last.SenderID)

	sums, err := svc.Summaries(ctx, frm.ID)
	require.NoError(t, err)
	require.Len(t, sums, 1)
}

func TestSummarize_EmptyForum(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{Name: "Silent", Personas: []string{"socrates"}})
	require.NoError(t, err)

	_, err = svc.Summarize(ctx, frm.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no messages")
}

func TestTranscript(t *testing.T) {
	store := newMockStore()
	svc := newTestService(t, store, &mockJournal{}, nil)
	ctx := context.Background()

	frm, err := svc.CreateForum(ctx, CreateOptions{
		Name:     "Exported",
		Mode:     forum.ModeDebate,
		Personas: []string{"socrates", "nietzsche", "kant"},
		Seed:     "Is morality a human invention?",
		Tags:     []string{"ethics"},
	})
	require.NoError(t, err)
	_, _, err = svc.RunCycles(ctx, frm.ID)
	require.NoError(t, err)

	doc, err := svc.Transcript(ctx, frm.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "# Exported\n"))
	assert.Contains(t, doc, "- Mode: debate")
	assert.Contains(t, doc, "## Participants")
	assert.Contains(t, doc, "- Socrates")
	assert.Contains(t, doc, "## Transcript")
	assert.Contains(t, doc, "**Human:** Is morality a human invention?")
}

func TestSessionSeedDeterministic(t *testing.T) {
	assert.Equal(t, sessionSeed("abc123"), sessionSeed("abc123"))
	assert.NotEqual(t, sessionSeed("abc123"), sessionSeed("abc124"))
}

func TestDigest(t *testing.T) {
	frm := forum.Forum{Name: "The Trial", Mode: forum.ModeDebate, Topic: "justice"}
	msgs := []forum.Message{
		{SenderID: "human", Kind: forum.KindHuman, Content: "What is justice?"},
		{SenderID: "socrates", Kind: forum.KindAgent, Content: "I know only that I do not know."},
		{SenderID: "human", Kind: forum.KindHuman, Content: "Surely you know something."},
	}
	names := map[string]string{"human": "Human", "socrates": "Socrates"}

	got := digest(frm, msgs, names)

	assert.Contains(t, got, "The Trial is a debate discussion centered on justice.")
	assert.Contains(t, got, "Human (2)")
	assert.Contains(t, got, "Socrates (1)")
	assert.Contains(t, got, `Most recently Human said: "Surely you know something."`)
	assert.Contains(t, got, "1 message(s) posed questions")
}

func TestTrimmed(t *testing.T) {
	assert.Equal(t, "short", trimmed("short", 20))
	assert.Equal(t, "one two...", trimmed("one two three four", 9))
	assert.Equal(t, "a b", trimmed("a   b", 20))
}

// Compile-time interface checks for the mocks.
var (
	_ forum.Store   = (*mockStore)(nil)
	_ journal.Store = (*mockJournal)(nil)
)
