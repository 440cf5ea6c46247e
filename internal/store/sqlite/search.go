package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/hay-kot/symposium/internal/core/forum"
)

// Keyword ranking weights. Forum name hits dominate, then description and
// tags; message content contributes a capped bonus so long transcripts
// cannot drown out metadata matches.
const (
	nameWeight       = 0.5
	descWeight       = 0.3
	tagWeight        = 0.2
	messageWeight    = 0.1
	messageWeightCap = 0.4

	// searchWindow bounds how many recent messages are scanned per forum.
	searchWindow = 50
)

// conceptExpansions widens a query with related terms so "truth" also
// surfaces forums discussing reality or honesty.
var conceptExpansions = map[string][]string{
	"justice":       {"fairness", "equity", "righteousness", "law", "order"},
	"truth":         {"reality", "fact", "verity", "accuracy", "honesty"},
	"beauty":        {"aesthetic", "attractive", "sublime", "elegant", "harmony"},
	"freedom":       {"liberty", "autonomy", "independence", "free will", "choice"},
	"consciousness": {"awareness", "mind", "thought", "perception", "cognition"},
	"virtue":        {"excellence", "moral", "character", "goodness", "integrity"},
	"knowledge":     {"understanding", "wisdom", "learning", "cognition", "insight"},
	"ethics":        {"morality", "virtue", "justice"},
}

// Search returns forums ranked by keyword relevance, highest score first
// with recency breaking ties.
func (s *Store) Search(ctx context.Context, query string) ([]forum.SearchResult, error) {
	terms := expandQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}

	forums, err := s.ListForums(ctx)
	if err != nil {
		return nil, err
	}

	var results []forum.SearchResult
	for _, f := range forums {
		result, err := s.scoreForum(ctx, f, terms)
		if err != nil {
			return nil, err
		}
		if result.Score > 0 {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Forum.LastActivity.After(results[j].Forum.LastActivity)
	})
	return results, nil
}

func (s *Store) scoreForum(ctx context.Context, f forum.Forum, terms []string) (forum.SearchResult, error) {
	result := forum.SearchResult{Forum: f}

	if containsAnyTerm(f.Name, terms) {
		result.Score += nameWeight
		result.Matches = append(result.Matches, "name: "+f.Name)
	}
	if containsAnyTerm(f.Description, terms) {
		result.Score += descWeight
		result.Matches = append(result.Matches, "description: "+f.Description)
	}
	for _, tag := range f.Tags {
		if containsAnyTerm(tag, terms) {
			result.Score += tagWeight
			result.Matches = append(result.Matches, "tag: "+tag)
		}
	}

	messages, err := s.ListMessages(ctx, f.ID, searchWindow)
	if err != nil {
		return forum.SearchResult{}, err
	}
	hits := 0
	for _, m := range messages {
		if containsAnyTerm(m.Content, terms) {
			hits++
		}
	}
	if hits > 0 {
		result.Score += min(messageWeightCap, float64(hits)*messageWeight)
		result.Matches = append(result.Matches, fmt.Sprintf("messages: %d", hits))
	}

	return result, nil
}

// expandQuery normalizes the query and widens it with concept expansions.
// The full query stays the primary term so exact phrases still rank.
func expandQuery(query string) []string {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil
	}

	terms := []string{normalized}
	seen := map[string]bool{normalized: true}
	for concept, expansions := range conceptExpansions {
		if !strings.Contains(normalized, concept) {
			continue
		}
		for _, term := range expansions {
			if !seen[term] {
				seen[term] = true
				terms = append(terms, term)
			}
		}
	}
	return terms
}

// normalizeQuery lowercases and strips punctuation, keeping question marks
// since they carry meaning in philosophical queries.
func normalizeQuery(query string) string {
	lowered := strings.ToLower(strings.TrimSpace(query))
	var b strings.Builder
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '?':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsAnyTerm(text string, terms []string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
