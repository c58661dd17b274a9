package allocator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/iliyamo/train-ticket-reservation/internal/inventory"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
)

// fakeTimetable serves schedules ordered by first departure.
type fakeTimetable struct {
	schedules []*model.Schedule
}

func (f *fakeTimetable) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	for _, s := range f.schedules {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repository.ErrScheduleNotFound
}

func (f *fakeTimetable) NextAfter(_ context.Context, departureAtAToB string) (*model.Schedule, error) {
	var next *model.Schedule
	for _, s := range f.schedules {
		if s.DepartureAtStationAToB <= departureAtAToB {
			continue
		}
		if next == nil || s.DepartureAtStationAToB < next.DepartureAtStationAToB {
			next = s
		}
	}
	if next == nil {
		return nil, repository.ErrScheduleNotFound
	}
	return next, nil
}

// fakeStore hands out numbered seats per schedule until the capacity
// is exhausted. Claims are serialized like the real backends.
type fakeStore struct {
	mu        sync.Mutex
	remaining map[string]int
	next      map[string]int
	claimErr  map[string]error // overrides Claim for a schedule
}

func newFakeStore(capacity map[string]int) *fakeStore {
	remaining := make(map[string]int, len(capacity))
	for id, n := range capacity {
		remaining[id] = n
	}
	return &fakeStore{
		remaining: remaining,
		next:      make(map[string]int),
		claimErr:  make(map[string]error),
	}
}

func (f *fakeStore) Seed(_ context.Context, _ string, _, _ int) error { return nil }

func (f *fakeStore) Claim(_ context.Context, scheduleID string, n int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.claimErr[scheduleID]; err != nil {
		return nil, err
	}
	if f.remaining[scheduleID] < n {
		return nil, inventory.ErrNoSeatAvailable
	}
	f.remaining[scheduleID] -= n
	seats := make([]string, 0, n)
	for i := 0; i < n; i++ {
		f.next[scheduleID]++
		seats = append(seats, fmt.Sprintf("%d-A", f.next[scheduleID]))
	}
	return seats, nil
}

func (f *fakeStore) Release(_ context.Context, scheduleID string, seats []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remaining[scheduleID] += len(seats)
	return nil
}

func timetable(ids ...string) *fakeTimetable {
	tt := &fakeTimetable{}
	for i, id := range ids {
		tt.schedules = append(tt.schedules, &model.Schedule{
			ID:                     id,
			DepartureAtStationAToB: fmt.Sprintf("%02d:00", 10+i),
		})
	}
	return tt
}

func TestAllocate(t *testing.T) {
	t.Parallel()

	t.Run("requested schedule has room", func(t *testing.T) {
		store := newFakeStore(map[string]int{"ame-1": 10, "ame-2": 10})
		a := New(timetable("ame-1", "ame-2"), store)

		id, seats, err := a.Allocate(context.Background(), "ame-1", "A", "E", 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "ame-1" {
			t.Fatalf("expected schedule ame-1, got %s", id)
		}
		if len(seats) != 3 {
			t.Fatalf("expected 3 seats, got %v", seats)
		}
	})

	t.Run("full schedule falls through to a later one", func(t *testing.T) {
		store := newFakeStore(map[string]int{"ame-1": 0, "ame-2": 0, "ame-3": 5})
		a := New(timetable("ame-1", "ame-2", "ame-3"), store)

		id, seats, err := a.Allocate(context.Background(), "ame-1", "A", "E", 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "ame-3" {
			t.Fatalf("expected fallback to ame-3, got %s", id)
		}
		if len(seats) != 2 {
			t.Fatalf("expected 2 seats, got %v", seats)
		}
	})

	t.Run("party too large for any schedule", func(t *testing.T) {
		store := newFakeStore(map[string]int{"ame-1": 3, "ame-2": 3})
		a := New(timetable("ame-1", "ame-2"), store)

		_, _, err := a.Allocate(context.Background(), "ame-1", "A", "E", 4)
		if !errors.Is(err, ErrNoSeatAvailable) {
			t.Fatalf("expected ErrNoSeatAvailable, got %v", err)
		}
	})

	t.Run("party is never split across schedules", func(t *testing.T) {
		store := newFakeStore(map[string]int{"ame-1": 1, "ame-2": 2})
		a := New(timetable("ame-1", "ame-2"), store)

		id, seats, err := a.Allocate(context.Background(), "ame-1", "A", "E", 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "ame-2" {
			t.Fatalf("expected whole party on ame-2, got %s", id)
		}
		if len(seats) != 2 {
			t.Fatalf("expected 2 seats, got %v", seats)
		}
		if store.remaining["ame-1"] != 1 {
			t.Fatalf("expected ame-1 untouched, remaining = %d", store.remaining["ame-1"])
		}
	})

	t.Run("lock timeout propagates without fallback", func(t *testing.T) {
		store := newFakeStore(map[string]int{"ame-1": 10, "ame-2": 10})
		store.claimErr["ame-1"] = inventory.ErrLockTimeout
		a := New(timetable("ame-1", "ame-2"), store)

		_, _, err := a.Allocate(context.Background(), "ame-1", "A", "E", 1)
		if !errors.Is(err, inventory.ErrLockTimeout) {
			t.Fatalf("expected ErrLockTimeout, got %v", err)
		}
	})

	t.Run("unknown schedule", func(t *testing.T) {
		store := newFakeStore(nil)
		a := New(timetable("ame-1"), store)

		_, _, err := a.Allocate(context.Background(), "nope-1", "A", "E", 1)
		if !errors.Is(err, repository.ErrScheduleNotFound) {
			t.Fatalf("expected ErrScheduleNotFound, got %v", err)
		}
	})

	t.Run("invalid party size", func(t *testing.T) {
		store := newFakeStore(map[string]int{"ame-1": 10})
		a := New(timetable("ame-1"), store)

		if _, _, err := a.Allocate(context.Background(), "ame-1", "A", "E", 0); err == nil {
			t.Fatalf("expected error for zero party size")
		}
	})
}

func TestAllocateConcurrent(t *testing.T) {
	t.Parallel()

	const capacity = 40
	store := newFakeStore(map[string]int{"ame-1": capacity})
	a := New(timetable("ame-1"), store)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted []string
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, seats, err := a.Allocate(context.Background(), "ame-1", "A", "E", 2)
			if errors.Is(err, ErrNoSeatAvailable) {
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			granted = append(granted, seats...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(granted) > capacity {
		t.Fatalf("granted %d seats from a pool of %d", len(granted), capacity)
	}
	seen := make(map[string]struct{}, len(granted))
	for _, seat := range granted {
		if _, dup := seen[seat]; dup {
			t.Fatalf("seat %s granted twice", seat)
		}
		seen[seat] = struct{}{}
	}
}
