package engine

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/symposium/internal/core/forum"
)

// Outcome is the result of one decision cycle.
type Outcome string

const (
	OutcomeSpeak         Outcome = "speak"
	OutcomeAwaitingHuman Outcome = "awaiting_human"
	OutcomeTerminated    Outcome = "terminated"
)

// Reason explains a terminated outcome.
type Reason string

const (
	// ReasonTurnLimit: the hard turn ceiling was reached. The session ends.
	ReasonTurnLimit Reason = "turn limit"
	// ReasonRoundComplete: the latest message is agent authored, so this
	// round is over. Each human message earns at most one agent reply; a new
	// human message starts the next round.
	ReasonRoundComplete Reason = "agent replied this round"
	// ReasonNobodyActivated: no participant cleared even the relaxed
	// activation floor. The session ends.
	ReasonNobodyActivated Reason = "no participant activated"
	// ReasonAllDeclined: every candidate's producer failed this cycle. The
	// session ends.
	ReasonAllDeclined Reason = "all candidates declined"
	// ReasonSessionEnded: a cycle ran against an already ended session.
	ReasonSessionEnded Reason = "session already ended"
)

// Decision is the observable result of one coordinator cycle.
type Decision struct {
	Outcome   Outcome
	Reason    Reason
	SpeakerID string
	Message   *forum.Message
	Scores    map[string]float64
	Mention   string
	Relaxed   bool
}

// Options tune the decision algorithm. Zero values fall back to defaults;
// the exact selection weights are heuristics, but the qualitative behavior
// (favor top ranked, never exclusively) is load bearing.
type Options struct {
	// TurnCeiling is the hard stop on total turns. Default 20.
	TurnCeiling int
	// CrowdThreshold applies when CrowdSize or more participants are
	// registered. Default 0.3.
	CrowdThreshold float64
	// SmallThreshold applies below CrowdSize. Default 0.6.
	SmallThreshold float64
	// CrowdSize is the participant count where the lower threshold kicks
	// in. Default 3.
	CrowdSize int
	// RelaxedFloor is the fallback threshold when nobody clears the normal
	// one. Default 0.2.
	RelaxedFloor float64
	// TopWeight and SecondWeight are the draw probabilities for the two
	// highest ranked candidates; the rest share the remainder uniformly.
	// Defaults 0.4 and 0.3.
	TopWeight    float64
	SecondWeight float64
	// RecentWindow is how many trailing messages exclude their authors
	// from selection. Default 2.
	RecentWindow int
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		TurnCeiling:    20,
		CrowdThreshold: 0.3,
		SmallThreshold: 0.6,
		CrowdSize:      3,
		RelaxedFloor:   0.2,
		TopWeight:      0.4,
		SecondWeight:   0.3,
		RecentWindow:   2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TurnCeiling <= 0 {
		o.TurnCeiling = d.TurnCeiling
	}
	if o.CrowdThreshold <= 0 {
		o.CrowdThreshold = d.CrowdThreshold
	}
	if o.SmallThreshold <= 0 {
		o.SmallThreshold = d.SmallThreshold
	}
	if o.CrowdSize <= 0 {
		o.CrowdSize = d.CrowdSize
	}
	if o.RelaxedFloor <= 0 {
		o.RelaxedFloor = d.RelaxedFloor
	}
	if o.TopWeight <= 0 {
		o.TopWeight = d.TopWeight
	}
	if o.SecondWeight <= 0 {
		o.SecondWeight = d.SecondWeight
	}
	if o.RecentWindow <= 0 {
		o.RecentWindow = d.RecentWindow
	}
	return o
}

// Coordinator runs the per-cycle decision algorithm over a session. The
// random draw is seeded explicitly so tests can pin outcomes; no global
// random state is consulted.
type Coordinator struct {
	opts Options
	rng  *rand.Rand
	seed uint64
	log  zerolog.Logger
}

// NewCoordinator builds a coordinator with the given tuning and draw seed.
func NewCoordinator(opts Options, seed uint64, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		opts: opts.withDefaults(),
		rng:  rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
		log:  logger.With().Str("component", "coordinator").Logger(),
	}
}

// Seed returns the draw seed the coordinator was built with.
func (c *Coordinator) Seed() uint64 { return c.seed }

// Options returns the effective tuning.
func (c *Coordinator) Options() Options { return c.opts }

type scored struct {
	id    string
	score float64
}

// RunCycle executes exactly one decision cycle as an atomic unit: read a
// consistent view, pick at most one speaker, have it produce, append. It
// never recurses and finishes in O(participants). Producer failures are
// logged and converted into declines; they never abort the session.
func (c *Coordinator) RunCycle(ctx context.Context, s *Session) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.meta.State {
	case forum.StateEnded:
		return Decision{Outcome: OutcomeTerminated, Reason: ReasonSessionEnded}
	case forum.StateCreated:
		s.meta.State = forum.StateActive
	}

	if s.awaitingHuman {
		s.meta.State = forum.StateAwaitingHuman
		return Decision{Outcome: OutcomeAwaitingHuman}
	}

	if s.meta.TurnCount >= c.opts.TurnCeiling {
		s.endLocked()
		c.log.Debug().Str("forum", s.meta.ID).Int("turns", s.meta.TurnCount).Msg("turn ceiling reached")
		return Decision{Outcome: OutcomeTerminated, Reason: ReasonTurnLimit}
	}

	if n := len(s.log); n > 0 {
		switch s.log[n-1].Kind {
		case forum.KindAgent, forum.KindOracle:
			s.awaitingHuman = true
			s.meta.State = forum.StateAwaitingHuman
			return Decision{Outcome: OutcomeTerminated, Reason: ReasonRoundComplete}
		}
	}

	snap := s.snapshotLocked()
	recent := s.lastSpeakersLocked(c.opts.RecentWindow)

	// An explicit address beats every activation score, as long as the
	// target exists and is not spamming.
	if latest, ok := snap.Latest(); ok && latest.Kind == forum.KindHuman {
		table := NewMentionTable()
		for _, id := range s.order {
			table.Add(id, s.registry[id].Profile().Name)
		}
		if id, hit := table.Detect(latest.Content); hit && !contains(recent, id) {
			if d, ok := c.speak(ctx, s, snap, id, Decision{Mention: id}); ok {
				return d
			}
			// The addressed participant declined; fall through to scoring.
		}
	}

	// Concurrent scoring fan-out over the immutable snapshot. Only
	// participants outside the recent-speaker window are evaluated.
	var eligible []string
	for _, id := range s.order {
		if !contains(recent, id) {
			eligible = append(eligible, id)
		}
	}

	scores := make([]float64, len(eligible))
	g, _ := errgroup.WithContext(ctx)
	for i, id := range eligible {
		p := s.registry[id]
		g.Go(func() error {
			scores[i] = Score(p.Profile(), p.Memory(), snap)
			return nil
		})
	}
	_ = g.Wait()

	// Every evaluated participant gets its activation cached and its
	// memory advanced, whether or not it ends up speaking.
	now := time.Now()
	scoreMap := make(map[string]float64, len(eligible))
	for i, id := range eligible {
		s.cache[id] = scores[i]
		s.registry[id].Memory().Observe(snap.Messages, now)
		scoreMap[id] = scores[i]
	}

	threshold := c.opts.SmallThreshold
	if len(s.order) >= c.opts.CrowdSize {
		threshold = c.opts.CrowdThreshold
	}

	candidates := passing(eligible, scores, threshold)
	relaxed := false
	if len(candidates) == 0 {
		candidates = passing(eligible, scores, c.opts.RelaxedFloor)
		relaxed = true
	}
	if len(candidates) == 0 {
		s.endLocked()
		c.log.Debug().Str("forum", s.meta.ID).Msg("no participant activated")
		return Decision{Outcome: OutcomeTerminated, Reason: ReasonNobodyActivated, Scores: scoreMap, Relaxed: relaxed}
	}

	// Rank by score descending; registration order breaks ties so runs
	// with the same seed replay identically.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// Prefer anyone outside the recent-speaker window before drawing.
	pool := candidates[:0:0]
	for _, cand := range candidates {
		if !contains(recent, cand.id) {
			pool = append(pool, cand)
		}
	}
	if len(pool) == 0 {
		pool = candidates
	}

	base := Decision{Scores: scoreMap, Relaxed: relaxed}
	for len(pool) > 0 {
		pick := c.draw(pool)
		if d, ok := c.speak(ctx, s, snap, pool[pick].id, base); ok {
			return d
		}
		pool = append(pool[:pick], pool[pick+1:]...)
	}

	s.endLocked()
	return Decision{Outcome: OutcomeTerminated, Reason: ReasonAllDeclined, Scores: scoreMap, Relaxed: relaxed}
}

// speak asks the chosen participant to produce, then appends its message
// and consumes a turn. A production error is a decline, not a failure.
func (c *Coordinator) speak(ctx context.Context, s *Session, snap Snapshot, id string, base Decision) (Decision, bool) {
	p, ok := s.registry[id]
	if !ok {
		return Decision{}, false
	}

	msg, err := p.Produce(ctx, snap)
	if err != nil {
		c.log.Warn().Err(err).
			Str("forum", s.meta.ID).
			Str("participant", id).
			Msg("producer failed, treating as decline")
		return Decision{}, false
	}

	if msg.ForumID == "" {
		msg.ForumID = s.meta.ID
	}
	if msg.SenderID == "" {
		msg.SenderID = id
	}
	if msg.Kind == "" {
		msg.Kind = forum.KindAgent
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	s.appendLocked(msg)
	s.meta.TurnCount++
	s.meta.State = forum.StateActive
	p.Memory().Observe(s.log, time.Now())

	appended := s.log[len(s.log)-1]
	d := base
	d.Outcome = OutcomeSpeak
	d.SpeakerID = id
	d.Message = &appended
	return d, true
}

// draw returns the index of the selected candidate in a score-descending
// pool: top gets TopWeight, second SecondWeight, the rest share the
// remainder uniformly. Weights renormalize when fewer than three candidates
// remain.
func (c *Coordinator) draw(pool []scored) int {
	if len(pool) == 1 {
		return 0
	}

	weights := make([]float64, len(pool))
	weights[0] = c.opts.TopWeight
	weights[1] = c.opts.SecondWeight
	if len(pool) > 2 {
		share := (1 - c.opts.TopWeight - c.opts.SecondWeight) / float64(len(pool)-2)
		for i := 2; i < len(pool); i++ {
			weights[i] = share
		}
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := c.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(pool) - 1
}

func passing(ids []string, scores []float64, threshold float64) []scored {
	var out []scored
	for i, id := range ids {
		if scores[i] >= threshold {
			out = append(out, scored{id: id, score: scores[i]})
		}
	}
	return out
}

func (s *Session) endLocked() {
	s.meta.State = forum.StateEnded
	s.meta.Touch(time.Now())
}
