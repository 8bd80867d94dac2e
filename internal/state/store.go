package state

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("store closed")

// Listener observes every applied action, in dispatch order. It runs while
// the store's dispatch lock is held: it must not block and must not call
// Dispatch synchronously.
type Listener func(Action)

// listenerEntry keeps listeners in registration order.
type listenerEntry struct {
	id int
	fn Listener
}

// Options configure a Store.
type Options struct {
	Logger  *zap.SugaredLogger
	Initial *State
}

// Store owns the current State and is its only writer.
type Store struct {
	logger *zap.SugaredLogger

	// dispatchMu serializes reduce+notify so observers see actions in FIFO order.
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	current    State

	listeners []listenerEntry
	nextID    int
	subs      map[*subscriber]struct{}
	closed    bool
}

// NewStore returns a store holding the initial state.
func NewStore(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	initial := Initial()
	if opts.Initial != nil {
		initial = *opts.Initial
	}
	return &Store{
		logger:    logger,
		current:   initial,
		subs:      make(map[*subscriber]struct{}),
	}
}

// Dispatch validates a, applies it through Reduce and notifies listeners and
// watchers before returning. Invalid keys return a *catalog.ValidationError
// and leave the state untouched.
func (s *Store) Dispatch(a Action) error {
	if err := Validate(a); err != nil {
		return err
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.mu.Lock()
	next := Reduce(s.current, a)
	s.current = next
	s.mu.Unlock()

	s.logger.Debugw("action applied", "action", a.ActionKind().String())

	for _, l := range s.listeners {
		l.fn(a)
	}
	for sub := range s.subs {
		sub.push(next)
	}
	return nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Listen registers l and returns a function that removes it.
func (s *Store) Listen(l Listener) func() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})
	return func() {
		s.dispatchMu.Lock()
		defer s.dispatchMu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(e listenerEntry) bool { return e.id == id })
	}
}

// Close rejects further dispatches and ends every active watch.
func (s *Store) Close() {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		sub.close()
	}
	clear(s.subs)
}

func (s *Store) subscribe() (*subscriber, State) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	sub := newSubscriber()
	if s.closed {
		sub.close()
	} else {
		s.subs[sub] = struct{}{}
	}
	return sub, s.Snapshot()
}

func (s *Store) unsubscribe(sub *subscriber) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	delete(s.subs, sub)
}

// Watch returns a lazy sequence of values derived from the store by selector.
// Each iteration subscribes anew: it yields the current derived value, then a
// value for every later state whose derived value differs from the previous
// yield according to equal. Iteration ends when ctx is done, the store is
// closed, or the loop breaks.
func Watch[T any](ctx context.Context, s *Store, selector func(State) T, equal func(a, b T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		sub, initial := s.subscribe()
		defer s.unsubscribe(sub)

		last := selector(initial)
		if !yield(last) {
			return
		}
		for {
			next, ok := sub.next(ctx)
			if !ok {
				return
			}
			v := selector(next)
			if equal(last, v) {
				continue
			}
			last = v
			if !yield(v) {
				return
			}
		}
	}
}

// WatchComparable is Watch with == as the change test.
func WatchComparable[T comparable](ctx context.Context, s *Store, selector func(State) T) iter.Seq[T] {
	return Watch(ctx, s, selector, func(a, b T) bool { return a == b })
}

// subscriber is an unbounded FIFO of states for one Watch iteration.
type subscriber struct {
	mu      sync.Mutex
	pending []State
	closed  bool
	signal  chan struct{}
}

func newSubscriber() *subscriber {
	return &subscriber{signal: make(chan struct{}, 1)}
}

func (sub *subscriber) push(st State) {
	sub.mu.Lock()
	sub.pending = append(sub.pending, st)
	sub.mu.Unlock()
	sub.wake()
}

func (sub *subscriber) close() {
	sub.mu.Lock()
	sub.closed = true
	sub.mu.Unlock()
	sub.wake()
}

func (sub *subscriber) wake() {
	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

func (sub *subscriber) next(ctx context.Context) (State, bool) {
	for {
		sub.mu.Lock()
		if len(sub.pending) > 0 {
			st := sub.pending[0]
			sub.pending[0] = State{}
			sub.pending = sub.pending[1:]
			sub.mu.Unlock()
			return st, true
		}
		closed := sub.closed
		sub.mu.Unlock()
		if closed {
			return State{}, false
		}

		select {
		case <-ctx.Done():
			return State{}, false
		case <-sub.signal:
		}
	}
}
