package services

import "sync"

// pairLocker serializes relationship mutations per unordered user pair. The
// key is canonical (smaller id first), so accept and cancel racing from the
// two sides of the same pair contend on one mutex. Entries are refcounted
// and removed once unused.
type pairLocker struct {
	mu    sync.Mutex
	locks map[string]*pairEntry
}

type pairEntry struct {
	mu   sync.Mutex
	refs int
}

func newPairLocker() *pairLocker {
	return &pairLocker{locks: make(map[string]*pairEntry)}
}

// Lock acquires the mutex for the pair (a, b) and returns its release func.
func (l *pairLocker) Lock(a, b string) func() {
	key := a + ":" + b
	if b < a {
		key = b + ":" + a
	}

	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &pairEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
