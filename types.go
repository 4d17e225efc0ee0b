package helio

import (
	"time"

	"github.com/helio-search/helio/internal/domain/search/filter"
	"github.com/helio-search/helio/internal/domain/search/request"
	"github.com/helio-search/helio/internal/domain/search/result"
	"github.com/helio-search/helio/internal/domain/search/strategy"
	"github.com/helio-search/helio/internal/session"
	"github.com/helio-search/helio/internal/stream"
)

// Strategy selects the retrieval strategy.
type Strategy string

// Retrieval strategies.
const (
	StrategyHybrid  Strategy = Strategy(strategy.Hybrid)
	StrategyNeural  Strategy = Strategy(strategy.Neural)
	StrategyKeyword Strategy = Strategy(strategy.Keyword)
)

// Expansion selects the query expansion mode.
type Expansion string

// Expansion modes.
const (
	ExpansionAuto Expansion = Expansion(request.ExpansionAuto)
	ExpansionNone Expansion = Expansion(request.ExpansionNone)
)

// SearchRequest describes one search. Zero values select the defaults:
// hybrid strategy, auto expansion, no recency bias.
type SearchRequest struct {
	Query          string
	Strategy       Strategy
	Expansion      Expansion
	InterpretQuery bool
	// RecencyBias weights recency against relevance, in [0,1]. The zero
	// value is transmitted explicitly; the server applies its own non-zero
	// default only to requests that omit the field.
	RecencyBias    float64
	Rerank         bool
	GenerateAnswer bool
	Filters        Filters
}

// Filters is a conjunctive pre-filter over result metadata.
type Filters struct {
	Must    []FilterCondition
	MustNot []FilterCondition
}

// FilterCondition is one filter clause: an exact match or a numeric range.
type FilterCondition struct {
	Key   string
	Match string
	Range *FilterRange
}

// FilterRange bounds a numeric field. Nil boundaries are open.
type FilterRange struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// Result is one search hit.
type Result struct {
	ID      string
	Title   string
	URL     string
	Snippet string
	Score   float64
}

// Phase is the session state.
type Phase string

// Session phases. Done, Error and Cancelled are terminal.
const (
	PhaseSearching Phase = Phase(session.PhaseSearching)
	PhaseAnswering Phase = Phase(session.PhaseAnswering)
	PhaseDone      Phase = Phase(session.PhaseDone)
	PhaseError     Phase = Phase(session.PhaseError)
	PhaseCancelled Phase = Phase(session.PhaseCancelled)
)

// Terminal reports whether the phase is final.
func (p Phase) Terminal() bool { return session.Phase(p).Terminal() }

// Snapshot is the session state after folding one event.
type Snapshot struct {
	RequestID      string
	Results        []Result
	AnswerText     string
	Phase          Phase
	FailureMessage string
}

// Outcome is the single consolidated terminal result of a session.
// Err is non-nil exactly when Phase is PhaseError.
type Outcome struct {
	Phase      Phase
	RequestID  string
	Results    []Result
	AnswerText string
	Err        error
	Elapsed    time.Duration
}

// GateDecision reports whether the usage gate currently permits searching.
type GateDecision struct {
	Allowed bool
	Reason  string
}

// Event is one protocol event observed on the stream.
type Event interface {
	isEvent()
}

// EventConnected carries the server-assigned request id.
type EventConnected struct{ RequestID string }

// EventResults carries a full replacement of the result list.
type EventResults struct{ Results []Result }

// EventAnswer carries the generated answer text.
type EventAnswer struct{ Text string }

// EventError carries a server-reported failure.
type EventError struct{ Message string }

// EventDone marks the natural end of the stream.
type EventDone struct{}

// EventCancelled is synthesized locally on cancellation.
type EventCancelled struct{}

// EventUnknown preserves an event type this client version does not know.
type EventUnknown struct {
	Type string
	Raw  []byte
}

func (EventConnected) isEvent() {}
func (EventResults) isEvent()   {}
func (EventAnswer) isEvent()    {}
func (EventError) isEvent()     {}
func (EventDone) isEvent()      {}
func (EventCancelled) isEvent() {}
func (EventUnknown) isEvent()   {}

func (r SearchRequest) toInternal() (*request.Request, error) {
	filters, err := r.Filters.toInternal()
	if err != nil {
		return nil, err
	}
	req, err := request.New(
		r.Query,
		strategy.Strategy(r.Strategy),
		request.Expansion(r.Expansion),
		r.InterpretQuery,
		r.RecencyBias,
		r.Rerank,
		r.GenerateAnswer,
		filters,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (f Filters) toInternal() (filter.Expression, error) {
	must, err := conditionsToInternal(f.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsToInternal(f.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}
	if must == nil && mustNot == nil {
		return filter.Expression{}, nil
	}
	return filter.NewExpression(must, mustNot)
}

func conditionsToInternal(cs []FilterCondition) ([]filter.Condition, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(cs))
	for _, c := range cs {
		cond, err := c.toInternal()
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func (c FilterCondition) toInternal() (filter.Condition, error) {
	if c.Range != nil {
		bounds, err := filter.NewBounds(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
		if err != nil {
			return filter.Condition{}, err
		}
		return filter.NewRange(c.Key, bounds)
	}
	return filter.NewMatch(c.Key, c.Match)
}

func resultsFromInternal(items []result.Item) []Result {
	if items == nil {
		return nil
	}
	out := make([]Result, len(items))
	for i, it := range items {
		out[i] = Result{
			ID:      it.ID,
			Title:   it.Title,
			URL:     it.URL,
			Snippet: it.Snippet,
			Score:   it.Score,
		}
	}
	return out
}

func snapshotFromInternal(s session.Snapshot) Snapshot {
	return Snapshot{
		RequestID:      s.RequestID,
		Results:        resultsFromInternal(s.Results),
		AnswerText:     s.AnswerText,
		Phase:          Phase(s.Phase),
		FailureMessage: s.FailureMessage,
	}
}

func outcomeFromInternal(o session.Outcome) Outcome {
	return Outcome{
		Phase:      Phase(o.Phase),
		RequestID:  o.RequestID,
		Results:    resultsFromInternal(o.Results),
		AnswerText: o.AnswerText,
		Err:        o.Err,
		Elapsed:    o.Elapsed,
	}
}

func eventFromInternal(ev stream.Event) Event {
	switch e := ev.(type) {
	case stream.Connected:
		return EventConnected{RequestID: e.RequestID}
	case stream.Results:
		return EventResults{Results: resultsFromInternal(e.Items)}
	case stream.CompletionDone:
		return EventAnswer{Text: e.Text}
	case stream.ErrorEvent:
		return EventError{Message: e.Message}
	case stream.Done:
		return EventDone{}
	case stream.Cancelled:
		return EventCancelled{}
	case stream.Unknown:
		return EventUnknown{Type: e.Type, Raw: e.Raw}
	default:
		return nil
	}
}
