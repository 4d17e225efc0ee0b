package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/helio-search/helio/internal/domain"
	"github.com/helio-search/helio/internal/domain/search/request"
	"github.com/helio-search/helio/internal/domain/search/result"
	"github.com/helio-search/helio/internal/gate"
	"github.com/helio-search/helio/internal/metrics"
	"github.com/helio-search/helio/internal/stream"
)

// Streamer opens the backend search stream. The returned body delivers the
// frame stream and must abort when ctx is cancelled, even mid-transfer.
type Streamer interface {
	Open(ctx context.Context, req *request.Request) (io.ReadCloser, error)
}

// Outcome is the single consolidated terminal result of a session.
// Err is non-nil iff Phase is PhaseError; partial results gathered before a
// failure are not carried into the outcome.
type Outcome struct {
	Phase      Phase
	RequestID  string
	Results    []result.Item
	AnswerText string
	Err        error
	Elapsed    time.Duration
}

// Observers receive session lifecycle notifications. Nil callbacks are
// skipped. OnBegin fires synchronously inside Send; the rest fire from the
// session's reader goroutine (or from Cancel's caller).
type Observers struct {
	OnBegin    func()
	OnEvent    func(stream.Event)
	OnSnapshot func(Snapshot)
	OnOutcome  func(Outcome)
	OnGate     func(gate.Decision)
}

// Controller orchestrates streaming search sessions: it owns cancellation,
// drives decode/parse/fold for the current session, and delivers each
// session's terminal outcome at most once, never for superseded sessions.
type Controller struct {
	streamer Streamer
	gate     gate.Gate
	seq      *Sequencer
	obs      Observers
	logger   *zap.Logger
}

// NewController creates a session controller. A nil gate permits everything.
func NewController(streamer Streamer, g gate.Gate, obs Observers, logger *zap.Logger) *Controller {
	if g == nil {
		g = gate.AllowAll{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		streamer: streamer,
		gate:     g,
		seq:      NewSequencer(),
		obs:      obs,
		logger:   logger,
	}
}

// Send starts a new search session, superseding any session still in
// flight. The usage gate is consulted first; a denial rejects the send
// before any connection is opened. The outcome arrives via OnOutcome.
func (c *Controller) Send(ctx context.Context, req *request.Request) error {
	dec, err := c.gate.Check(ctx)
	if err != nil {
		// Gate unavailability does not block searching.
		c.logger.Warn("usage gate unavailable, allowing search", zap.Error(err))
		dec = gate.Decision{Allowed: true}
	}
	if !dec.Allowed {
		return dec.Err()
	}
	if err := c.gate.RecordSearch(ctx); err != nil {
		c.logger.Warn("failed to record search usage", zap.Error(err))
	}

	sctx, cancel := context.WithCancel(ctx)
	seqNo := c.seq.StartNew(cancel)
	c.logger.Debug("session started",
		zap.Uint64("sequence", seqNo),
		zap.String("strategy", string(req.Strategy())),
	)

	if c.obs.OnBegin != nil {
		c.obs.OnBegin()
	}
	go c.run(sctx, seqNo, req)
	return nil
}

// Cancel aborts the current session, if any, and synthesizes its cancelled
// outcome exactly once. Idempotent; a no-op when nothing is in flight.
func (c *Controller) Cancel() {
	started, ok := c.seq.CancelCurrent()
	if !ok {
		return
	}
	c.logger.Debug("session cancelled")

	if c.obs.OnEvent != nil {
		c.obs.OnEvent(stream.Cancelled{})
	}
	if c.obs.OnSnapshot != nil {
		c.obs.OnSnapshot(Snapshot{Phase: PhaseCancelled})
	}
	c.conclude(Outcome{Phase: PhaseCancelled, Elapsed: time.Since(started)})
}

// run is the session's reader loop: one goroutine per session, the sole
// writer of its aggregate.
func (c *Controller) run(ctx context.Context, seqNo uint64, req *request.Request) {
	start := time.Now()
	agg := NewAggregate()

	body, err := c.streamer.Open(ctx, req)
	if err != nil {
		c.finishTransport(ctx, seqNo, agg, start, err)
		return
	}
	defer body.Close()

	dec := stream.NewDecoder()
	buf := make([]byte, 8192)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			for _, fr := range dec.Feed(buf[:n]) {
				if !c.handleFrame(seqNo, agg, fr, start) {
					return
				}
			}
		}
		if rerr != nil {
			if fr, ok := dec.Flush(); ok {
				if !c.handleFrame(seqNo, agg, fr, start) {
					return
				}
			}
			if errors.Is(rerr, io.EOF) {
				c.finishEOF(seqNo, agg, start)
			} else {
				c.finishTransport(ctx, seqNo, agg, start, rerr)
			}
			return
		}
	}
}

// handleFrame parses and folds one frame. Returns false when the session
// should stop reading: it reached a terminal phase or was superseded.
func (c *Controller) handleFrame(seqNo uint64, agg *Aggregate, fr stream.Frame, start time.Time) bool {
	ev, ok := stream.Parse(fr)
	if !ok {
		metrics.FramesDroppedTotal.Inc()
		return true
	}

	// Currency is re-evaluated after every suspension point, before any
	// mutation or callback; superseded sessions are inert.
	if !c.seq.IsCurrent(seqNo) {
		return false
	}

	metrics.StreamEventsTotal.WithLabelValues(eventLabel(ev)).Inc()
	if c.obs.OnEvent != nil {
		c.obs.OnEvent(ev)
	}
	agg.Apply(ev)
	if c.obs.OnSnapshot != nil {
		c.obs.OnSnapshot(agg.Snapshot())
	}

	if agg.Phase().Terminal() {
		c.deliver(seqNo, outcomeOf(agg, start))
		return false
	}
	return true
}

// finishEOF handles a stream that closed without a terminal event.
func (c *Controller) finishEOF(seqNo uint64, agg *Aggregate, start time.Time) {
	if !c.seq.IsCurrent(seqNo) {
		return
	}
	agg.Fail(domain.ErrStreamEnded.Error())
	if c.obs.OnSnapshot != nil {
		c.obs.OnSnapshot(agg.Snapshot())
	}
	out := outcomeOf(agg, start)
	out.Err = domain.ErrStreamEnded
	c.deliver(seqNo, out)
}

// finishTransport handles connection and mid-stream failures. An abort
// caused by cancellation or supersession is not a failure: the cancelled
// outcome was already synthesized (or suppressed) elsewhere.
func (c *Controller) finishTransport(ctx context.Context, seqNo uint64, agg *Aggregate, start time.Time, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}
	if !c.seq.IsCurrent(seqNo) {
		return
	}
	c.logger.Warn("transport failure", zap.Uint64("sequence", seqNo), zap.Error(err))

	agg.Fail(err.Error())
	if c.obs.OnSnapshot != nil {
		c.obs.OnSnapshot(agg.Snapshot())
	}
	out := outcomeOf(agg, start)
	out.Err = fmt.Errorf("transport failure: %w", err)
	c.deliver(seqNo, out)
}

// deliver claims the terminal delivery right for seqNo and, if won,
// concludes the session. A superseded or already-finished session loses
// the claim and delivers nothing.
func (c *Controller) deliver(seqNo uint64, out Outcome) {
	if !c.seq.Release(seqNo) {
		c.logger.Debug("terminal outcome suppressed", zap.Uint64("sequence", seqNo))
		return
	}
	c.conclude(out)
}

// conclude notifies the terminal observer, records metrics, and re-consults
// the usage gate so the caller sees its refreshed decision.
func (c *Controller) conclude(out Outcome) {
	if c.obs.OnOutcome != nil {
		c.obs.OnOutcome(out)
	}
	metrics.SessionsTotal.WithLabelValues(string(out.Phase)).Inc()
	metrics.SessionDuration.Observe(out.Elapsed.Seconds())

	dec, err := c.gate.Check(context.Background())
	if err != nil {
		c.logger.Warn("usage gate re-check failed", zap.Error(err))
		return
	}
	if c.obs.OnGate != nil {
		c.obs.OnGate(dec)
	}
}

// outcomeOf consolidates a terminal aggregate into an Outcome. Error-phase
// outcomes carry the failure and drop partial results from the success path.
func outcomeOf(agg *Aggregate, start time.Time) Outcome {
	snap := agg.Snapshot()
	out := Outcome{
		Phase:     snap.Phase,
		RequestID: snap.RequestID,
		Elapsed:   time.Since(start),
	}
	switch snap.Phase {
	case PhaseError:
		out.Err = errors.New(snap.FailureMessage)
	default:
		out.Results = snap.Results
		out.AnswerText = snap.AnswerText
	}
	return out
}

func eventLabel(ev stream.Event) string {
	switch ev.(type) {
	case stream.Connected:
		return "connected"
	case stream.Results:
		return "results"
	case stream.CompletionDone:
		return "completion_done"
	case stream.ErrorEvent:
		return "error"
	case stream.Done:
		return "done"
	case stream.Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
