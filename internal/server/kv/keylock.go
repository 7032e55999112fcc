package kv

import "sync"

// KeyLock serializes read-modify-write cycles on a single key. The store
// itself has no compare-and-swap, so without this a concurrent grant or
// redemption could silently overwrite another writer's update.
//
// Mutexes are created on first use and kept for the process lifetime; the
// key space is bounded by users and codes, so the map stays small.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the function releasing it.
//
//	unlock := locks.Lock(kv.ProfileKey(userID))
//	defer unlock()
func (l *KeyLock) Lock(key string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
