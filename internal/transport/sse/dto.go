package sse

import (
	"github.com/helio-search/helio/internal/domain/search/filter"
	"github.com/helio-search/helio/internal/domain/search/request"
)

// searchRequest is the wire shape of the stream endpoint's request body.
// RecencyBias has no omitempty on purpose: the server substitutes a non-zero
// default for an absent field, so a zero bias must be sent as a literal 0.
type searchRequest struct {
	Query          string     `json:"query"`
	Strategy       string     `json:"strategy"`
	Expansion      string     `json:"expansion"`
	InterpretQuery bool       `json:"interpret_query"`
	RecencyBias    float64    `json:"recency_bias"`
	Rerank         bool       `json:"rerank"`
	GenerateAnswer bool       `json:"generate_answer"`
	Filters        *filterDTO `json:"filters,omitempty"`
}

type filterDTO struct {
	Must    []conditionDTO `json:"must,omitempty"`
	MustNot []conditionDTO `json:"must_not,omitempty"`
}

type conditionDTO struct {
	Key   string    `json:"key"`
	Match string    `json:"match,omitempty"`
	Range *rangeDTO `json:"range,omitempty"`
}

type rangeDTO struct {
	GT  *float64 `json:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

func toWire(req *request.Request) searchRequest {
	return searchRequest{
		Query:          req.Query(),
		Strategy:       string(req.Strategy()),
		Expansion:      string(req.Expansion()),
		InterpretQuery: req.InterpretQuery(),
		RecencyBias:    req.RecencyBias(),
		Rerank:         req.Rerank(),
		GenerateAnswer: req.GenerateAnswer(),
		Filters:        filtersToWire(req.Filters()),
	}
}

func filtersToWire(expr filter.Expression) *filterDTO {
	if expr.IsEmpty() {
		return nil
	}
	return &filterDTO{
		Must:    conditionsToWire(expr.Must()),
		MustNot: conditionsToWire(expr.MustNot()),
	}
}

func conditionsToWire(conds []filter.Condition) []conditionDTO {
	if len(conds) == 0 {
		return nil
	}
	out := make([]conditionDTO, 0, len(conds))
	for _, c := range conds {
		dto := conditionDTO{Key: c.Key()}
		if c.IsMatch() {
			dto.Match = c.Match()
		}
		if r := c.Range(); r != nil {
			dto.Range = &rangeDTO{GT: r.GT(), GTE: r.GTE(), LT: r.LT(), LTE: r.LTE()}
		}
		out = append(out, dto)
	}
	return out
}
