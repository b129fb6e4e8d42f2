// Package store holds the single source of truth for application state.
//
// Reads and writes go through two typed observer lists instead of a
// generic event bus: collectors contribute keys synchronously when Get
// assembles a snapshot, and apply observers receive merged deltas
// asynchronously, in FIFO order, via an explicit broadcast queue. The
// collect contract — only synchronous contributions are captured — is
// therefore enforced by the CollectFunc signature rather than by
// convention.
package store

import (
	"sync"

	"github.com/vk/mapboot/internal/appstate"
	"github.com/vk/mapboot/internal/fragment"
	"github.com/vk/mapboot/internal/history"
)

// UpdateMode selects how an apply reflects itself into the history.
type UpdateMode string

const (
	// UpdateNone leaves the history untouched.
	UpdateNone UpdateMode = ""
	// UpdatePush creates a new history entry.
	UpdatePush UpdateMode = "push"
	// UpdateReplace rewrites the current history entry.
	UpdateReplace UpdateMode = "replace"
)

// ApplyOptions tunes a single apply call.
type ApplyOptions struct {
	Update UpdateMode
}

// CollectFunc contributes keys to the accumulator during Get. It runs
// synchronously and must not retain the accumulator.
type CollectFunc func(acc appstate.State)

// ApplyFunc receives a merged delta after an apply. Delivery is
// asynchronous and FIFO relative to the apply calls.
type ApplyFunc func(delta appstate.State)

// Store mediates between the URL codec and the rest of the system.
type Store struct {
	codec *fragment.Codec
	hist  history.History

	mu         sync.Mutex
	current    appstate.State
	previous   appstate.State
	collectors []CollectFunc
	observers  []ApplyFunc
	queue      []appstate.State
	wake       chan struct{}
}

// New creates a Store bound to a codec and a history.
func New(codec *fragment.Codec, hist history.History) *Store {
	return &Store{
		codec:    codec,
		hist:     hist,
		current:  appstate.State{},
		previous: appstate.State{},
		wake:     make(chan struct{}, 1),
	}
}

// OnCollect registers a collector invoked by Get.
func (s *Store) OnCollect(fn CollectFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectors = append(s.collectors, fn)
}

// OnApply registers an observer for broadcast deltas.
func (s *Store) OnApply(fn ApplyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Get assembles a state snapshot by running every collector
// synchronously against a fresh accumulator and returns it.
func (s *Store) Get() appstate.State {
	s.mu.Lock()
	collectors := make([]CollectFunc, len(s.collectors))
	copy(collectors, s.collectors)
	s.mu.Unlock()

	acc := appstate.State{}
	for _, fn := range collectors {
		fn(acc)
	}
	return acc
}

// Apply merges the delta into the current state and schedules a
// broadcast. The previous state is snapshotted before the merge. When
// opts requests a history update, the fragment written is the
// stringified delta — not the accumulated current state. That matches
// the long-standing behavior of this layer and is covered by a
// regression test; do not "fix" it here. The merged delta is returned
// synchronously.
func (s *Store) Apply(delta appstate.State, opts ApplyOptions) appstate.State {
	if delta == nil {
		delta = appstate.State{}
	}

	s.mu.Lock()
	s.previous = s.current.Clone()
	s.current.Merge(delta)
	s.queue = append(s.queue, delta.Clone())
	s.mu.Unlock()

	switch opts.Update {
	case UpdatePush:
		s.hist.Push(s.codec.Stringify(delta))
	case UpdateReplace:
		s.hist.Replace(s.codec.Stringify(delta))
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return delta
}

// ApplyLink parses the given fragment string and applies the result.
// Parse failures surface as errors and leave the state untouched.
func (s *Store) ApplyLink(link string, opts ApplyOptions) (appstate.State, error) {
	delta, err := s.codec.Parse(link)
	if err != nil {
		return nil, err
	}
	return s.Apply(delta, opts), nil
}

// ApplyCurrent re-parses the current history fragment and applies it.
func (s *Store) ApplyCurrent(opts ApplyOptions) (appstate.State, error) {
	return s.ApplyLink(s.hist.Fragment(), opts)
}

// Current returns a copy of the accumulated state.
func (s *Store) Current() appstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Previous returns a copy of the state as it was before the last apply.
func (s *Store) Previous() appstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previous.Clone()
}
