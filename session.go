package helio

import (
	"context"
	"time"

	"github.com/helio-search/helio/internal/gate"
	"github.com/helio-search/helio/internal/session"
	"github.com/helio-search/helio/internal/stream"
)

// SessionObservers receive session lifecycle notifications. Nil callbacks
// are skipped. OnBegin fires synchronously inside Send; the rest fire from
// the session's reader goroutine (or from Cancel's caller).
type SessionObservers struct {
	OnBegin    func()
	OnEvent    func(Event)
	OnSnapshot func(Snapshot)
	OnOutcome  func(Outcome)
	OnGate     func(GateDecision)
}

// Session drives streaming search sessions. One search is in flight at a
// time: Send supersedes the previous session, whose remaining frames are
// discarded without reaching the observers.
type Session struct {
	ctrl *session.Controller
	obs  *observer
}

// NewSession opens a session bound to the given observers.
func (c *Client) NewSession(obs SessionObservers) *Session {
	internal := session.Observers{
		OnBegin: obs.OnBegin,
	}
	if obs.OnEvent != nil {
		internal.OnEvent = func(ev stream.Event) {
			obs.OnEvent(eventFromInternal(ev))
		}
	}
	if obs.OnSnapshot != nil {
		internal.OnSnapshot = func(s session.Snapshot) {
			obs.OnSnapshot(snapshotFromInternal(s))
		}
	}
	if obs.OnOutcome != nil {
		internal.OnOutcome = func(o session.Outcome) {
			obs.OnOutcome(outcomeFromInternal(o))
		}
	}
	if obs.OnGate != nil {
		internal.OnGate = func(d gate.Decision) {
			obs.OnGate(GateDecision{Allowed: d.Allowed, Reason: d.Reason})
		}
	}
	return &Session{
		ctrl: session.NewController(c.streamer, c.gate, internal, c.logger),
		obs:  c.obs,
	}
}

// Send starts a new search, superseding any session still in flight. The
// error reports only up-front rejections (validation, gate denial); stream
// failures arrive through OnOutcome.
func (s *Session) Send(ctx context.Context, req SearchRequest) error {
	start := time.Now()
	internal, err := req.toInternal()
	if err == nil {
		err = s.ctrl.Send(ctx, internal)
	}
	s.obs.observe("send", start, err)
	return err
}

// Cancel aborts the in-flight search, if any. The cancelled outcome is
// delivered exactly once; a no-op when nothing is in flight.
func (s *Session) Cancel() {
	s.ctrl.Cancel()
	s.obs.observe("cancel", time.Now(), nil)
}
