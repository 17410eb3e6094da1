package util

import "sync"

// KeyedMutex provides one mutex per string key so that independent tickets
// and metrics can be mutated concurrently without a global lock. Entries are
// never evicted; key cardinality is bounded by live tickets and metric keys.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty lock table.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()
	lock.Lock()
}

// Unlock releases the mutex for key. Panics if Lock was not called first.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	k.mu.Unlock()
	if !ok {
		panic("keymutex: unlock of unknown key " + key)
	}
	lock.Unlock()
}
