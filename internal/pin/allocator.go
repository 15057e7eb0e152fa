// Package pin allocates the 6-digit numeric identifiers that name game
// sessions.
package pin

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Checker answers whether a PIN is already taken. Implemented by the
// game stores.
type Checker interface {
	GameExists(ctx context.Context, pin string) (bool, error)
}

// maxAttempts bounds collision retries. The PIN space holds a million
// values, so hitting this bound means the store is misbehaving, not that
// PINs ran out.
const maxAttempts = 100

// Allocator hands out unused game PINs. Safe for concurrent use; the
// random source is not, so draws go through the mutex.
type Allocator struct {
	store Checker
	mu    sync.Mutex
	rnd   *rand.Rand
}

func NewAllocator(store Checker) *Allocator {
	return &Allocator{
		store: store,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Allocate returns a random 6-digit decimal PIN not currently in use.
// Leading zeros are valid.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		a.mu.Lock()
		n := a.rnd.Intn(1000000)
		a.mu.Unlock()
		pin := fmt.Sprintf("%06d", n)
		taken, err := a.store.GameExists(ctx, pin)
		if err != nil {
			return "", fmt.Errorf("check pin %s: %w", pin, err)
		}
		if !taken {
			return pin, nil
		}
	}
	return "", fmt.Errorf("no free pin after %d attempts", maxAttempts)
}
