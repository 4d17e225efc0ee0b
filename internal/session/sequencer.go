// Package session tracks streaming search sessions: which one is current,
// how its event stream folds into observable state, and how its terminal
// outcome is delivered exactly once.
package session

import (
	"context"
	"sync"
	"time"
)

// active is the Sequencer's record of the one in-flight session.
type active struct {
	seq     uint64
	cancel  context.CancelFunc
	started time.Time
}

// Sequencer owns the only shared mutable resource of the client: which
// session is current. Currency is a pure query against the latest issued
// sequence; superseded sessions stay inert because every mutation point
// re-checks currency first.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
	cur    *active
}

// NewSequencer creates an empty sequencer with no active session.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// StartNew supersedes any active session, aborting its transport, and
// returns the new current sequence.
func (s *Sequencer) StartNew(cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur != nil {
		s.cur.cancel()
	}
	s.latest++
	s.cur = &active{seq: s.latest, cancel: cancel, started: time.Now()}
	return s.latest
}

// IsCurrent reports whether seq is the most recently issued sequence.
func (s *Sequencer) IsCurrent(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.latest
}

// CancelCurrent aborts the active session's transport and advances currency
// immediately, so in-flight events are superseded without waiting for the
// connection to close. Returns the session start time and false if no
// session was active.
func (s *Sequencer) CancelCurrent() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return time.Time{}, false
	}
	started := s.cur.started
	s.cur.cancel()
	s.cur = nil
	s.latest++
	return started, true
}

// Release claims the right to deliver seq's terminal outcome. It succeeds
// at most once per session, and only while the session is still current;
// a concurrent CancelCurrent or StartNew wins instead.
func (s *Sequencer) Release(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil || s.cur.seq != seq || seq != s.latest {
		return false
	}
	s.cur = nil
	return true
}
