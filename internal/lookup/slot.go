package lookup

import (
	"context"
	"sync"
)

// State is the lifecycle of the most recent request in a Slot.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Slot orders a stream of refreshes so that only the newest one lands shared
// state. Begin does not disturb requests already in flight: the slot is shared
// by every caller of a service, and one caller's refresh must never abort
// another's. Superseding a request means its Finish becomes a no-op, not that
// its query dies; aborting a query is the request context's job (a client that
// hangs up cancels its own context).
type Slot struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	state  State
}

// Token identifies one request issued by Begin.
type Token struct {
	slot   *Slot
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a new request, superseding older in-flight ones without
// cancelling them. The returned context is released by Finish.
func (s *Slot) Begin(ctx context.Context) (context.Context, Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateLoading
	return ctx, Token{slot: s, seq: s.seq, cancel: cancel}
}

// Finish releases the request's context, records its outcome and, when the
// request is still current, runs apply under the slot lock. It returns false
// for superseded requests, whose outcomes are dropped.
func (t Token) Finish(err error, apply func()) bool {
	t.cancel()

	s := t.slot
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.seq != s.seq {
		return false
	}
	s.cancel = nil

	switch {
	case err == nil:
		s.state = StateSuccess
	case IsCancellation(err):
		s.state = StateCancelled
	default:
		s.state = StateFailed
	}

	if apply != nil && s.state == StateSuccess {
		apply()
	}
	return true
}

// Current reports whether t still identifies the newest request.
func (t Token) Current() bool {
	s := t.slot
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.seq == s.seq
}

// State returns the state of the newest request.
func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CancelPending cancels the newest in-flight request without starting a new
// one. Used at teardown.
func (s *Slot) CancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.state = StateCancelled
	}
}
