package session

import (
	"github.com/helio-search/helio/internal/domain/search/result"
	"github.com/helio-search/helio/internal/stream"
)

// Phase is the session state machine phase.
type Phase string

// Session phases. Done, Error, and Cancelled are absorbing.
const (
	PhaseSearching Phase = "searching"
	PhaseAnswering Phase = "answering"
	PhaseDone      Phase = "done"
	PhaseError     Phase = "error"
	PhaseCancelled Phase = "cancelled"
)

// Terminal reports whether the phase absorbs all further events.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseError || p == PhaseCancelled
}

// Snapshot is the immutable observer-visible view of an aggregate.
type Snapshot struct {
	RequestID  string
	Results    []result.Item
	AnswerText string
	Phase      Phase
	// FailureMessage is set only in the error phase.
	FailureMessage string
}

// Aggregate folds one session's ordered event sequence into a coherent
// state. It is owned by a single session and never shared, so it needs no
// locking. Once a terminal phase is reached no event mutates it again.
type Aggregate struct {
	requestID  string
	results    []result.Item
	answerText string
	phase      Phase
	failureMsg string
}

// NewAggregate creates an aggregate in the searching phase.
func NewAggregate() *Aggregate {
	return &Aggregate{phase: PhaseSearching}
}

// Apply folds one event into the aggregate. Events arriving after a
// terminal phase are ignored.
func (a *Aggregate) Apply(ev stream.Event) {
	if a.phase.Terminal() {
		return
	}

	switch e := ev.(type) {
	case stream.Connected:
		a.requestID = e.RequestID
	case stream.Results:
		// Wholesale replacement, never a merge.
		a.results = e.Items
	case stream.CompletionDone:
		a.answerText = e.Text
		a.phase = PhaseAnswering
	case stream.ErrorEvent:
		a.failureMsg = e.Message
		a.phase = PhaseError
	case stream.Done:
		a.phase = PhaseDone
	case stream.Cancelled:
		a.phase = PhaseCancelled
	case stream.Unknown:
		// Passthrough only; no state effect.
	}
}

// Fail moves the aggregate to the error phase with a transport-level
// failure message. No-op once terminal.
func (a *Aggregate) Fail(msg string) {
	if a.phase.Terminal() {
		return
	}
	a.failureMsg = msg
	a.phase = PhaseError
}

// Phase returns the current phase.
func (a *Aggregate) Phase() Phase { return a.phase }

// FailureMessage returns the stored failure message, if any.
func (a *Aggregate) FailureMessage() string { return a.failureMsg }

// Snapshot returns an immutable copy of the observable state.
func (a *Aggregate) Snapshot() Snapshot {
	var items []result.Item
	if len(a.results) > 0 {
		items = make([]result.Item, len(a.results))
		copy(items, a.results)
	}
	return Snapshot{
		RequestID:      a.requestID,
		Results:        items,
		AnswerText:     a.answerText,
		Phase:          a.phase,
		FailureMessage: a.failureMsg,
	}
}
