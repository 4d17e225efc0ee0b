// Package search retrieves documents from the simulator's in-memory corpus.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/domain/search/filter"
	"github.com/helio-search/helio/internal/domain/search/request"
	"github.com/helio-search/helio/internal/domain/search/result"
	"github.com/helio-search/helio/internal/domain/search/strategy"
)

// maxResults caps the size of one results batch.
const maxResults = 10

// Document is one corpus entry.
type Document struct {
	ID        string
	Title     string
	URL       string
	Snippet   string
	Tags      map[string]string
	Numerics  map[string]float64
	UpdatedAt time.Time
}

// Service ranks corpus documents for a search request.
type Service struct {
	docs   []Document
	logger *zap.Logger
}

// New creates a search service over the given corpus.
func New(docs []Document, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, logger: logger}
}

// Search returns the ranked results for req.
// Keyword and neural retrieval both reduce to lexical overlap here; hybrid
// additionally fuses in a recency ranking weighted by the request's bias.
func (s *Service) Search(_ context.Context, req *request.Request) []result.Item {
	candidates := s.filtered(req.Filters())

	lexical := rankLexical(candidates, req.Query())
	if req.Strategy() != strategy.Hybrid {
		return capResults(lexical, maxResults)
	}

	recent := rankRecent(candidates)
	fused := fuseRRF(lexical, recent, 1-req.RecencyBias(), req.RecencyBias(), maxResults)

	s.logger.Debug("hybrid fusion",
		zap.Int("lexical", len(lexical)),
		zap.Int("recent", len(recent)),
		zap.Int("fused", len(fused)),
	)
	return fused
}

// filtered applies the request's pre-filter to the corpus.
func (s *Service) filtered(expr filter.Expression) []Document {
	if expr.IsEmpty() {
		return s.docs
	}
	out := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		if matchesAll(d, expr.Must()) && matchesNone(d, expr.MustNot()) {
			out = append(out, d)
		}
	}
	return out
}

func matchesAll(d Document, conds []filter.Condition) bool {
	for _, c := range conds {
		if !matches(d, c) {
			return false
		}
	}
	return true
}

func matchesNone(d Document, conds []filter.Condition) bool {
	for _, c := range conds {
		if matches(d, c) {
			return false
		}
	}
	return true
}

func matches(d Document, c filter.Condition) bool {
	if c.IsMatch() {
		return d.Tags[c.Key()] == c.Match()
	}
	r := c.Range()
	if r == nil {
		return false
	}
	v, ok := d.Numerics[c.Key()]
	if !ok {
		return false
	}
	if gt := r.GT(); gt != nil && !(v > *gt) {
		return false
	}
	if gte := r.GTE(); gte != nil && !(v >= *gte) {
		return false
	}
	if lt := r.LT(); lt != nil && !(v < *lt) {
		return false
	}
	if lte := r.LTE(); lte != nil && !(v <= *lte) {
		return false
	}
	return true
}

// rankLexical orders documents by query-token overlap, title hits weighted
// double. Documents with no overlap are excluded.
func rankLexical(docs []Document, query string) []result.Item {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		doc   Document
		score float64
	}
	var hits []scored
	for _, d := range docs {
		titleTokens := tokenSet(d.Title)
		bodyTokens := tokenSet(d.Snippet)
		var score float64
		for _, t := range terms {
			if titleTokens[t] {
				score += 2
			}
			if bodyTokens[t] {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{doc: d, score: score / float64(len(terms))})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]result.Item, len(hits))
	for i, h := range hits {
		out[i] = toItem(h.doc, h.score)
	}
	return out
}

// rankRecent orders documents newest-first.
func rankRecent(docs []Document) []result.Item {
	sorted := make([]Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	out := make([]result.Item, len(sorted))
	for i, d := range sorted {
		out[i] = toItem(d, 0)
	}
	return out
}

func toItem(d Document, score float64) result.Item {
	return result.Item{
		ID:      d.ID,
		Title:   d.Title,
		URL:     d.URL,
		Snippet: d.Snippet,
		Score:   score,
	}
}

func capResults(items []result.Item, n int) []result.Item {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenize(s) {
		set[t] = true
	}
	return set
}
