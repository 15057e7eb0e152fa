package pin

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
)

type fakeChecker struct {
	taken map[string]bool
	err   error
	calls int
}

func (f *fakeChecker) GameExists(_ context.Context, pin string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.taken[pin], nil
}

func TestAllocateReturnsSixDigits(t *testing.T) {
	alloc := NewAllocator(&fakeChecker{})

	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 20; i++ {
		pin, err := alloc.Allocate(context.Background())
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if !pattern.MatchString(pin) {
			t.Fatalf("expected 6-digit pin, got %q", pin)
		}
	}
}

func TestAllocateRetriesOnCollision(t *testing.T) {
	checker := &fakeChecker{taken: map[string]bool{}}
	alloc := NewAllocator(checker)

	// First draw collides, second draw (from a fresh source state) is free.
	first, err := alloc.Allocate(context.Background())
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	checker.taken[first] = true

	second, err := alloc.Allocate(context.Background())
	if err != nil {
		t.Fatalf("allocate after collision: %v", err)
	}
	if second == first {
		t.Fatalf("expected a different pin after %q was taken", first)
	}
}

// freeChecker reports every pin as free and is safe for concurrent use.
type freeChecker struct{}

func (freeChecker) GameExists(context.Context, string) (bool, error) {
	return false, nil
}

func TestAllocateConcurrently(t *testing.T) {
	alloc := NewAllocator(freeChecker{})

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := alloc.Allocate(context.Background()); err != nil {
					errs[i] = err
					return
				}
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
}

func TestAllocatePropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("store down")
	alloc := NewAllocator(&fakeChecker{err: storeErr})

	_, err := alloc.Allocate(context.Background())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
