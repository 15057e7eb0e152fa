package app

import "sync"

// pinLocks serializes engine operations per game PIN so check-then-act
// sequences (name uniqueness, answered-once, scoring) cannot interleave.
// Operations on distinct PINs never contend. Entries live for the
// process lifetime; the PIN space is small enough that this never
// matters.
type pinLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPinLocks() *pinLocks {
	return &pinLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for a PIN and returns its unlock function.
func (p *pinLocks) lock(pin string) func() {
	p.mu.Lock()
	m, ok := p.locks[pin]
	if !ok {
		m = &sync.Mutex{}
		p.locks[pin] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}
