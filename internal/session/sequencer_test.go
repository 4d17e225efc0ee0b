package session

import "testing"

func TestStartNew_Increments(t *testing.T) {
	s := NewSequencer()
	first := s.StartNew(func() {})
	second := s.StartNew(func() {})
	if second <= first {
		t.Errorf("sequences not increasing: %d then %d", first, second)
	}
	if s.IsCurrent(first) {
		t.Error("superseded sequence still current")
	}
	if !s.IsCurrent(second) {
		t.Error("latest sequence not current")
	}
}

func TestStartNew_AbortsPrevious(t *testing.T) {
	s := NewSequencer()
	aborted := false
	s.StartNew(func() { aborted = true })
	s.StartNew(func() {})
	if !aborted {
		t.Error("previous session's cancel handle not invoked")
	}
}

func TestCancelCurrent(t *testing.T) {
	s := NewSequencer()
	if _, ok := s.CancelCurrent(); ok {
		t.Error("cancel with no active session should report false")
	}

	aborted := false
	seq := s.StartNew(func() { aborted = true })
	started, ok := s.CancelCurrent()
	if !ok {
		t.Fatal("cancel with active session should report true")
	}
	if !aborted {
		t.Error("cancel handle not invoked")
	}
	if started.IsZero() {
		t.Error("start time not recorded")
	}
	if s.IsCurrent(seq) {
		t.Error("cancel must advance currency immediately")
	}

	// Idempotent: the session is gone.
	if _, ok := s.CancelCurrent(); ok {
		t.Error("second cancel should be a no-op")
	}
}

func TestRelease(t *testing.T) {
	s := NewSequencer()
	seq := s.StartNew(func() {})

	if !s.Release(seq) {
		t.Fatal("current session should win the delivery claim")
	}
	if s.Release(seq) {
		t.Error("delivery claim must succeed at most once")
	}
	// Release leaves no active session for Cancel to act on.
	if _, ok := s.CancelCurrent(); ok {
		t.Error("cancel after release should be a no-op")
	}
}

func TestRelease_Superseded(t *testing.T) {
	s := NewSequencer()
	old := s.StartNew(func() {})
	s.StartNew(func() {})
	if s.Release(old) {
		t.Error("superseded session must not win the delivery claim")
	}
}

func TestRelease_AfterCancel(t *testing.T) {
	s := NewSequencer()
	seq := s.StartNew(func() {})
	s.CancelCurrent()
	if s.Release(seq) {
		t.Error("cancelled session must not win the delivery claim")
	}
}
