package search

import (
	"sort"

	"github.com/helio-search/helio/internal/domain/search/result"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges the lexical and recency rankings via weighted Reciprocal
// Rank Fusion: score(d) = w_i * 1/(k + rank_i(d)) summed over the rankings
// where d appears. A zero weight removes that ranking's influence entirely,
// so recencyW=0 reproduces the pure lexical order.
func fuseRRF(lexical, recent []result.Item, lexicalW, recentW float64, topK int) []result.Item {
	type scored struct {
		res       result.Item
		score     float64
		inLexical bool
	}

	merged := make(map[string]*scored)

	if lexicalW > 0 {
		for rank, r := range lexical {
			s := lexicalW / float64(rrfK+rank+1)
			merged[r.ID] = &scored{res: r, score: s, inLexical: true}
		}
	}

	if recentW > 0 {
		for rank, r := range recent {
			s := recentW / float64(rrfK+rank+1)
			if existing, ok := merged[r.ID]; ok {
				existing.score += s
				// Lexical result takes priority (carries the overlap score).
			} else {
				merged[r.ID] = &scored{res: r, score: s}
			}
		}
	}

	results := make([]result.Item, 0, len(merged))
	for _, s := range merged {
		r := s.res
		r.Score = s.score
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results
}
