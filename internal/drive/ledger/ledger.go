// Package ledger tracks in-flight upload, download and transfer operations.
// Each kind has its own keyed store with typed transition methods; every
// mutation is a single guarded step, so a reader never observes a torn
// update. The ledger never removes terminal entries on its own — the caller
// that finalizes an entry schedules its removal.
package ledger

import (
	"sync"
	"time"
)

type entry interface {
	entryID() string
	terminal() bool
}

// store is the shared keyed container behind the three typed ledgers.
// Entries keep insertion order; all mutation is by-id and mutating an
// unknown id is a deliberate no-op, tolerating callers that raced a removal.
type store[T entry] struct {
	mu      sync.Mutex
	entries []T
	timers  map[string]*time.Timer
}

func newStore[T entry]() *store[T] {
	return &store[T]{timers: make(map[string]*time.Timer)}
}

func (s *store[T]) add(e T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// update applies fn to the entry with the given id under the lock. It
// returns false when the id is unknown.
func (s *store[T]) update(id string, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].entryID() == id {
			fn(&s.entries[i])
			return true
		}
	}
	return false
}

// transition is update restricted to non-terminal entries: complete and
// error are mutually exclusive terminal states and never overwrite each
// other.
func (s *store[T]) transition(id string, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].entryID() == id {
			if s.entries[i].terminal() {
				return false
			}
			fn(&s.entries[i])
			return true
		}
	}
	return false
}

func (s *store[T]) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	for i := range s.entries {
		if s.entries[i].entryID() == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// scheduleRemove arms a cancellable timer that removes the entry after the
// grace delay. Rescheduling replaces the pending timer; an explicit remove
// cancels it.
func (s *store[T]) scheduleRemove(id string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() { s.remove(id) })
}

func (s *store[T]) get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].entryID() == id {
			return s.entries[i], true
		}
	}
	var zero T
	return zero, false
}

func (s *store[T]) snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *store[T]) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
