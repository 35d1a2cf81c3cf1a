package protocol

import (
	"sync"

	"go.uber.org/zap"
)

// Snapshotter persists the state after each accepted intent.
type Snapshotter interface {
	Save(State) error
}

// Session is the host shell around the pure reducer: it serializes intents,
// applies them one at a time, and writes the snapshot after each one.
// Persistence is last-writer-wins; a failed write is logged, never fatal.
type Session struct {
	mu    sync.Mutex
	state State
	snap  Snapshotter
	log   *zap.Logger
}

// NewSession starts a session from an already-loaded state.
func NewSession(initial State, snap Snapshotter, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{state: initial, snap: snap, log: log}
}

// Dispatch applies one intent and persists the result. It returns the state
// after the transition.
func (s *Session) Dispatch(intent Intent) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Apply(s.state, intent)
	if s.snap != nil {
		if err := s.snap.Save(s.state); err != nil {
			s.log.Warn("snapshot write failed", zap.Error(err))
		}
	}
	return s.state
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
