package intake

import (
	"sync"

	"github.com/google/uuid"
)

// keyedLocks serializes finalization per document. Uploads of different
// documents proceed in parallel; two finalize calls for the same document
// queue behind one mutex so exactly one wins the draft-to-active
// transition.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[uuid.UUID]*lockEntry)}
}

// Lock acquires the mutex for the key and returns its unlock function.
func (k *keyedLocks) Lock(key uuid.UUID) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
