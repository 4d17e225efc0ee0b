package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/domain/search/filter"
	"github.com/helio-search/helio/internal/domain/search/request"
	"github.com/helio-search/helio/internal/domain/search/strategy"
	logpkg "github.com/helio-search/helio/internal/logger"
)

// defaultRecencyBias is applied when the request body omits recency_bias
// entirely. Clients that want no bias must send an explicit 0.
const defaultRecencyBias = 0.3

// streamRequest is the wire shape of the stream endpoint's request body.
// RecencyBias is a pointer so an absent field is distinguishable from an
// explicit zero.
type streamRequest struct {
	Query          string     `json:"query"`
	Strategy       string     `json:"strategy"`
	Expansion      string     `json:"expansion"`
	InterpretQuery bool       `json:"interpret_query"`
	RecencyBias    *float64   `json:"recency_bias"`
	Rerank         bool       `json:"rerank"`
	GenerateAnswer bool       `json:"generate_answer"`
	Filters        *filterDTO `json:"filters"`
}

type filterDTO struct {
	Must    []conditionDTO `json:"must"`
	MustNot []conditionDTO `json:"must_not"`
}

type conditionDTO struct {
	Key   string    `json:"key"`
	Match string    `json:"match"`
	Range *rangeDTO `json:"range"`
}

type rangeDTO struct {
	GT  *float64 `json:"gt"`
	GTE *float64 `json:"gte"`
	LT  *float64 `json:"lt"`
	LTE *float64 `json:"lte"`
}

// StreamSearch handles POST /api/v1/search/stream: it runs the search and
// streams connected, results, completion and done events.
func (s *Server) StreamSearch(w http.ResponseWriter, r *http.Request) {
	var body streamRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	req, err := requestFromWire(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	log := logpkg.FromContext(ctx)
	log.Info("stream started", zap.String("strategy", string(req.Strategy())))

	emit := func(v any) bool {
		if ctx.Err() != nil {
			return false
		}
		if s.frameDelay > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(s.frameDelay):
			}
		}
		payload, err := json.Marshal(v)
		if err != nil {
			return false
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return true
	}

	if !emit(map[string]string{"type": "connected", "request_id": requestID}) {
		return
	}

	items := s.search.Search(ctx, req)
	if !emit(map[string]any{"type": "results", "results": items}) {
		return
	}

	// Comment frame: clients must treat it as keep-alive noise.
	fmt.Fprint(w, ": keep-alive\n\n")
	flusher.Flush()

	if body.GenerateAnswer {
		answer, err := s.answer.Answer(ctx, req.Query(), items)
		if err != nil {
			log.Warn("answer generation failed", zap.Error(err))
			emit(map[string]string{"type": "error", "message": "answer generation failed"})
			return
		}
		if !emit(map[string]string{"type": "completion_done", "text": answer}) {
			return
		}
	}

	emit(map[string]string{"type": "done"})
	log.Info("stream finished", zap.Int("results", len(items)))
}

func requestFromWire(body streamRequest) (*request.Request, error) {
	bias := defaultRecencyBias
	if body.RecencyBias != nil {
		bias = *body.RecencyBias
	}

	filters, err := filtersFromWire(body.Filters)
	if err != nil {
		return nil, err
	}

	req, err := request.New(
		body.Query,
		strategy.Strategy(body.Strategy),
		request.Expansion(body.Expansion),
		body.InterpretQuery,
		bias,
		body.Rerank,
		body.GenerateAnswer,
		filters,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func filtersFromWire(f *filterDTO) (filter.Expression, error) {
	if f == nil {
		return filter.Expression{}, nil
	}

	must, err := conditionsFromWire(f.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromWire(f.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}

	expr, err := filter.NewExpression(must, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filters: %w", err)
	}
	return expr, nil
}

func conditionsFromWire(cs []conditionDTO) ([]filter.Condition, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(cs))
	for _, c := range cs {
		cond, err := conditionFromWire(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func conditionFromWire(c conditionDTO) (filter.Condition, error) {
	if c.Match != "" && c.Range != nil {
		return filter.Condition{},
			fmt.Errorf("filter condition for %q must have match or range, not both", c.Key)
	}
	if c.Match != "" {
		cond, err := filter.NewMatch(c.Key, c.Match)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("match filter: %w", err)
		}
		return cond, nil
	}
	if c.Range != nil {
		bounds, err := filter.NewBounds(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range filter: %w", err)
		}
		cond, err := filter.NewRange(c.Key, bounds)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("range condition: %w", err)
		}
		return cond, nil
	}
	return filter.Condition{}, fmt.Errorf("filter condition for %q must have match or range", c.Key)
}
