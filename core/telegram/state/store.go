package state

import "sync"

type entry[S any] struct {
	mu    sync.Mutex
	value S
}

// Store holds one value of type S per conversation.
type Store[S any] struct {
	mu      sync.Mutex
	entries map[int64]*entry[S]
	initial func() S
}

// NewStore creates an empty store. initial produces the value of a
// conversation that has never been touched; nil means the zero value.
func NewStore[S any](initial func() S) *Store[S] {
	if initial == nil {
		initial = func() S {
			var zero S
			return zero
		}
	}
	return &Store[S]{
		entries: make(map[int64]*entry[S]),
		initial: initial,
	}
}

func (s *Store[S]) lookup(key int64, create bool) *entry[S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok && create {
		e = &entry[S]{value: s.initial()}
		s.entries[key] = e
	}
	return e
}

// Get returns a copy of the current value for key.
func (s *Store[S]) Get(key int64) S {
	e := s.lookup(key, false)
	if e == nil {
		return s.initial()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// Update runs fn with exclusive access to the value for key, creating the
// entry on first use. Changes made by fn are kept even when it returns an error.
func (s *Store[S]) Update(key int64, fn func(*S) error) error {
	e := s.lookup(key, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.value)
}

// UpdateExisting is Update for keys that already have an entry. It reports
// false without calling fn when key was never touched.
func (s *Store[S]) UpdateExisting(key int64, fn func(*S) error) (bool, error) {
	e := s.lookup(key, false)
	if e == nil {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return true, fn(&e.value)
}

// Reset puts key back to its initial value and returns the value it held.
// Entries are kept, not removed; ok is false when key had none.
func (s *Store[S]) Reset(key int64) (prev S, ok bool) {
	e := s.lookup(key, false)
	if e == nil {
		return s.initial(), false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	prev, e.value = e.value, s.initial()
	return prev, true
}

// Len reports how many conversations have an entry.
func (s *Store[S]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
