package services

import "sync"

type sessionLock struct {
	mu      sync.Mutex
	holders int
}

// lockTable hands out one mutex per session id. An entry lives only while a caller holds or waits for it.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sessionLock)}
}

// lock blocks until the caller owns id and returns the function releasing it.
func (t *lockTable) lock(id string) func() {
	t.mu.Lock()

	entry, ok := t.locks[id]
	if !ok {
		entry = &sessionLock{}
		t.locks[id] = entry
	}

	entry.holders++
	t.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once

	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			t.mu.Lock()
			defer t.mu.Unlock()

			entry.holders--
			if entry.holders == 0 {
				delete(t.locks, id)
			}
		})
	}
}

func (t *lockTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.locks)
}
