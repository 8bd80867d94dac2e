package state

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/five82/vpick/internal/catalog"
)

func mustDispatch(t *testing.T, s *Store, actions ...Action) {
	t.Helper()
	for _, a := range actions {
		if err := s.Dispatch(a); err != nil {
			t.Fatalf("Dispatch(%s) returned error: %v", a.ActionKind(), err)
		}
	}
}

// receive waits for the next value on ch.
func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a watch emission")
	}
	var zero T
	return zero
}

func TestStore_DispatchAppliesSynchronously(t *testing.T) {
	s := NewStore(Options{})
	mustDispatch(t, s, LoadMakes{})
	if !s.Snapshot().Loading() {
		t.Fatal("loading should be set before Dispatch returns")
	}

	mustDispatch(t, s, LoadMakesSucceeded{Makes: []catalog.Make{{ID: 1, Name: "Audi"}}})
	snap := s.Snapshot()
	if snap.Loading() {
		t.Fatal("loading should be cleared")
	}
	if want := []catalog.Make{{ID: 1, Name: "Audi"}}; !reflect.DeepEqual(snap.Makes(), want) {
		t.Fatalf("makes = %#v, want %#v", snap.Makes(), want)
	}
}

func TestStore_StartsFromInitialOption(t *testing.T) {
	initial := Reduce(Initial(), SetSearchTerm{Term: "audi"})
	s := NewStore(Options{Initial: &initial})
	if got := s.Snapshot().SearchTerm(); got != "audi" {
		t.Fatalf("search term = %q, want audi", got)
	}

	mustDispatch(t, s, ClearSearchTerm{})
	if got := s.Snapshot().SearchTerm(); got != "" {
		t.Fatalf("search term = %q, want cleared", got)
	}
	if initial.SearchTerm() != "audi" {
		t.Fatal("the caller's state must not be modified")
	}
}

func TestStore_DispatchRejectsInvalidKey(t *testing.T) {
	s := NewStore(Options{})
	var seen []Action
	s.Listen(func(a Action) { seen = append(seen, a) })

	for _, a := range []Action{LoadTypesForMake{MakeID: 0}, LoadModelsForMake{MakeID: -1}} {
		if err := s.Dispatch(a); !catalog.IsValidation(err) {
			t.Fatalf("Dispatch(%#v) error = %v, want validation error", a, err)
		}
	}

	snap := s.Snapshot()
	if snap.Loading() || snap.Err() != "" {
		t.Fatalf("loading=%v err=%q, want untouched state", snap.Loading(), snap.Err())
	}
	if _, ok := snap.CurrentMakeID(); ok {
		t.Fatal("a rejected load must not set the current make")
	}
	if len(seen) != 0 {
		t.Fatalf("listeners saw %d rejected actions", len(seen))
	}
}

func TestStore_ListenersSeeFIFOOrder(t *testing.T) {
	s := NewStore(Options{})
	var got []ActionKind
	remove := s.Listen(func(a Action) { got = append(got, a.ActionKind()) })

	mustDispatch(t, s, LoadMakes{}, SetSearchTerm{Term: "a"}, LoadTypesForMake{MakeID: 3})
	remove()
	mustDispatch(t, s, ClearSearchTerm{})

	want := []ActionKind{KindLoadMakes, KindSetSearchTerm, KindLoadTypesForMake}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("listener saw %v, want %v", got, want)
	}
}

func TestStore_ListenersRunInRegistrationOrder(t *testing.T) {
	s := NewStore(Options{})
	var order []string
	s.Listen(func(Action) { order = append(order, "first") })
	s.Listen(func(Action) { order = append(order, "second") })

	mustDispatch(t, s, LoadMakes{}, LoadMakes{})
	want := []string{"first", "second", "first", "second"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestStore_CloseRejectsDispatch(t *testing.T) {
	s := NewStore(Options{})
	s.Close()
	s.Close()
	if err := s.Dispatch(LoadMakes{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Dispatch after Close = %v, want ErrClosed", err)
	}
}

func TestStore_ConcurrentDispatchIsAtomic(t *testing.T) {
	s := NewStore(Options{})
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = s.Dispatch(LoadTypesForMakeSucceeded{MakeID: id})
		}(i)
	}
	wg.Wait()
	if got := s.Snapshot().LoadedTypeKeys().Len(); got != 50 {
		t.Fatalf("loaded type keys = %d, want 50", got)
	}
}

func TestWatch_EmitsCurrentThenChangesOnly(t *testing.T) {
	s := NewStore(Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	values := make(chan string, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range WatchComparable(ctx, s, State.SearchTerm) {
			values <- v
			if v == "bmw" {
				return
			}
		}
	}()

	if v := receive(t, values); v != "" {
		t.Fatalf("first emission = %q, want the current empty term", v)
	}

	mustDispatch(t, s,
		LoadMakes{},
		SetSearchTerm{Term: "b"},
		LoadMakesFailed{Err: "x"},
		SetSearchTerm{Term: "bmw"},
	)

	// Intermediate values may coalesce; the last one is always delivered.
	var last string
	for last != "bmw" {
		last = receive(t, values)
		if last != "b" && last != "bmw" {
			t.Fatalf("unexpected emission %q", last)
		}
	}
	<-done
	if len(values) != 0 {
		t.Fatalf("%d unchanged values were emitted", len(values))
	}
}

func TestWatch_IsRestartable(t *testing.T) {
	s := NewStore(Options{})
	seq := WatchComparable(context.Background(), s, State.SearchTerm)

	for v := range seq {
		if v != "" {
			t.Fatalf("first iteration = %q, want empty", v)
		}
		break
	}
	mustDispatch(t, s, SetSearchTerm{Term: "audi"})
	for v := range seq {
		if v != "audi" {
			t.Fatalf("second iteration = %q, want the current state", v)
		}
		break
	}
}

func TestWatch_EndsOnCloseAndContext(t *testing.T) {
	s := NewStore(Options{})
	ended := make(chan int, 1)
	go func() {
		n := 0
		for range WatchComparable(context.Background(), s, State.Loading) {
			n++
		}
		ended <- n
	}()

	deadline := time.Now().Add(time.Second)
	for {
		s.dispatchMu.Lock()
		n := len(s.subs)
		s.dispatchMu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("watch never subscribed")
		}
		time.Sleep(time.Millisecond)
	}
	s.Close()

	if n := receive(t, ended); n != 1 {
		t.Fatalf("watch emitted %d values, want 1", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	count := 0
	for range WatchComparable(ctx, NewStore(Options{}), State.Loading) {
		count++
	}
	if count != 1 {
		t.Fatalf("cancelled watch emitted %d values, want the current value once", count)
	}
}

func TestWatch_SharedMemoAcrossObservers(t *testing.T) {
	s := NewStore(Options{})
	sel, err := NewSelectors(8)
	if err != nil {
		t.Fatalf("NewSelectors returned error: %v", err)
	}
	mustDispatch(t, s, LoadMakesSucceeded{Makes: []catalog.Make{{ID: 1, Name: "BMW"}, {ID: 2, Name: "Audi"}}})

	for range 5 {
		for v := range Watch(context.Background(), s, sel.FilteredMakes.Select, SameSlice[catalog.Make]) {
			if len(v) != 2 {
				t.Fatalf("filtered makes = %d, want 2", len(v))
			}
			break
		}
	}
	if got := sel.FilteredMakes.Computations(); got != 1 {
		t.Fatalf("computations = %d, want 1", got)
	}
}

func TestWatch_ModelsIgnoreOtherMakes(t *testing.T) {
	s := NewStore(Options{})
	sel, err := NewSelectors(8)
	if err != nil {
		t.Fatalf("NewSelectors returned error: %v", err)
	}
	mustDispatch(t, s,
		LoadModelsForMake{MakeID: 1},
		LoadModelsForMakeSucceeded{MakeID: 1, Models: []catalog.VehicleModel{{ID: 7, Name: "A4", MakeID: 1}}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	values := make(chan []catalog.VehicleModel, 8)
	go func() {
		defer close(values)
		for v := range Watch(ctx, s, sel.ModelsForCurrentMake, SameSlice[catalog.VehicleModel]) {
			values <- v
		}
	}()

	if first := receive(t, values); len(first) != 1 || first[0].Name != "A4" {
		t.Fatalf("first emission = %#v, want A4", first)
	}

	mustDispatch(t, s,
		LoadModelsForMakeSucceeded{MakeID: 2, Models: []catalog.VehicleModel{{ID: 9, Name: "X5", MakeID: 2}}},
		LoadModelsForMakeSucceeded{MakeID: 1, Models: []catalog.VehicleModel{{ID: 8, Name: "A6", MakeID: 1}}},
	)

	if second := receive(t, values); len(second) != 1 || second[0].Name != "A6" {
		t.Fatalf("second emission = %#v, want A6; loading make 2 must not emit for make 1", second)
	}

	cancel()
	for v := range values {
		t.Fatalf("unexpected extra emission %#v", v)
	}
}

func TestModelsByMake_KeepsSliceWhenOwnModelsUnchanged(t *testing.T) {
	sel, err := NewSelectors(8)
	if err != nil {
		t.Fatalf("NewSelectors returned error: %v", err)
	}
	s := Reduce(Initial(), LoadModelsForMakeSucceeded{MakeID: 1, Models: []catalog.VehicleModel{{ID: 7, MakeID: 1}}})
	before := sel.ModelsForMake.Select(s, 1)

	s = Reduce(s, LoadModelsForMakeSucceeded{MakeID: 2, Models: []catalog.VehicleModel{{ID: 9, MakeID: 2}}})
	after := sel.ModelsForMake.Select(s, 1)

	if !SameSlice(before, after) {
		t.Fatal("models of make 1 changed identity after loading make 2")
	}
	if got := sel.ModelsForMake.Computations(); got != 2 {
		t.Fatalf("computations = %d, want 2", got)
	}
}
