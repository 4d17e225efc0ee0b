package request

import (
	"fmt"
	"strings"

	"github.com/helio-search/helio/internal/domain"
	"github.com/helio-search/helio/internal/domain/search/filter"
	"github.com/helio-search/helio/internal/domain/search/strategy"
)

// MaxQueryLength is the maximum allowed search query length.
const MaxQueryLength = 4096

// Expansion is the query expansion mode.
type Expansion string

// Expansion mode constants.
const (
	ExpansionAuto Expansion = "auto"
	ExpansionNone Expansion = "no_expansion"
)

// IsValid checks if the expansion mode is one of the supported values.
func (e Expansion) IsValid() bool {
	return e == ExpansionAuto || e == ExpansionNone
}

// Request is a validated, immutable search request.
// RecencyBias is carried as a plain number even when zero: the wire encoding
// must always include it, because the server substitutes a non-zero default
// for an absent field.
type Request struct {
	query          string
	strat          strategy.Strategy
	expansion      Expansion
	interpretQuery bool
	recencyBias    float64
	rerank         bool
	generateAnswer bool
	filters        filter.Expression
}

// New validates and normalizes search parameters.
// Defaults: strategy=hybrid, expansion=auto. The query is trimmed.
func New(
	query string,
	strat strategy.Strategy,
	expansion Expansion,
	interpretQuery bool,
	recencyBias float64,
	rerank bool,
	generateAnswer bool,
	filters filter.Expression,
) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, domain.ErrEmptyQuery
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if strat == "" {
		strat = strategy.Hybrid
	}
	if !strat.IsValid() {
		return Request{}, fmt.Errorf("invalid retrieval strategy: %q", strat)
	}
	if expansion == "" {
		expansion = ExpansionAuto
	}
	if !expansion.IsValid() {
		return Request{}, fmt.Errorf("invalid expansion mode: %q", expansion)
	}
	if recencyBias < 0 || recencyBias > 1 {
		return Request{}, fmt.Errorf("recency_bias must be between 0 and 1")
	}

	return Request{
		query:          query,
		strat:          strat,
		expansion:      expansion,
		interpretQuery: interpretQuery,
		recencyBias:    recencyBias,
		rerank:         rerank,
		generateAnswer: generateAnswer,
		filters:        filters,
	}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// Strategy returns the retrieval strategy.
func (r *Request) Strategy() strategy.Strategy { return r.strat }

// Expansion returns the query expansion mode.
func (r *Request) Expansion() Expansion { return r.expansion }

// InterpretQuery reports whether the backend should interpret query syntax.
func (r *Request) InterpretQuery() bool { return r.interpretQuery }

// RecencyBias returns the temporal relevance bias in [0,1].
func (r *Request) RecencyBias() float64 { return r.recencyBias }

// Rerank reports whether the backend should rerank results.
func (r *Request) Rerank() bool { return r.rerank }

// GenerateAnswer reports whether an answer should be generated.
func (r *Request) GenerateAnswer() bool { return r.generateAnswer }

// Filters returns the pre-filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }
