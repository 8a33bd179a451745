package runner

import (
	"context"
	"sync"

	"github.com/go-go-golems/actionrunner/pkg/action"
)

// Observer is notified after every state change, in the order the changes
// were applied. It must not call back into the runner.
type Observer interface {
	OnActionUpdate(id string, st action.State)
}

type ObserverFunc func(id string, st action.State)

func (f ObserverFunc) OnActionUpdate(id string, st action.State) { f(id, st) }

type entry struct {
	state  action.State
	ctx    context.Context
	cancel context.CancelFunc
}

// store is the single-writer table of action states for one session.
type store struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	order    []string
	observer Observer

	// notifyMu is taken before mu is released so notifications follow update order.
	notifyMu sync.Mutex
}

func newStore(observer Observer) *store {
	return &store{entries: map[string]*entry{}, observer: observer}
}

// add registers id in pending state. It reports false if id is already known.
func (s *store) add(id string, a action.Action, ctx context.Context, cancel context.CancelFunc) bool {
	s.mu.Lock()
	if _, ok := s.entries[id]; ok {
		s.mu.Unlock()
		return false
	}
	e := &entry{
		state:  action.State{Action: a, Status: action.StatusPending},
		ctx:    ctx,
		cancel: cancel,
	}
	s.entries[id] = e
	s.order = append(s.order, id)
	s.unlockAndNotify(id, e.state)
	return true
}

func (s *store) get(id string) (action.State, context.Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return action.State{}, nil, false
	}
	return e.state, e.ctx, true
}

func (s *store) cancelFunc(id string) context.CancelFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[id]; ok {
		return e.cancel
	}
	return nil
}

// update applies fn to the state of id. fn returning false leaves the state untouched.
func (s *store) update(id string, fn func(st *action.State) bool) (action.State, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return action.State{}, false
	}
	next := e.state
	if !fn(&next) {
		s.mu.Unlock()
		return e.state, false
	}
	if next.Status != action.StatusFailed {
		next.Error = ""
	}
	// executed never goes back to false
	next.Executed = next.Executed || e.state.Executed
	e.state = next
	s.unlockAndNotify(id, next)
	return next, true
}

func (s *store) setStatus(id string, status action.Status) {
	s.update(id, func(st *action.State) bool {
		st.Status = status
		return true
	})
}

func (s *store) setFailed(id string, msg string) {
	s.update(id, func(st *action.State) bool {
		st.Status = action.StatusFailed
		st.Error = msg
		return true
	})
}

func (s *store) snapshot() map[string]action.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]action.State, len(s.entries))
	for id, e := range s.entries {
		out[id] = e.state
	}
	return out
}

func (s *store) ids() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.order...)
}

// unlockAndNotify releases mu, which the caller holds, and passes st to the observer.
func (s *store) unlockAndNotify(id string, st action.State) {
	if s.observer == nil {
		s.mu.Unlock()
		return
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.observer.OnActionUpdate(id, st)
}
