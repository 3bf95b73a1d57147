package fruit

import (
	"sync"
)

// Store is safe for concurrent use.  It does no validation.
type Store struct {
	lock  sync.RWMutex
	fruit map[string]Fruit
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		fruit: make(map[string]Fruit),
	}
}

// List returns a snapshot copy of every entry.
func (s *Store) List() map[string]Fruit {
	s.lock.RLock()
	defer s.lock.RUnlock()
	snapshot := make(map[string]Fruit, len(s.fruit))
	for id, f := range s.fruit {
		snapshot[id] = f
	}
	return snapshot
}

// Get reports false if there is no fruit with this id.
func (s *Store) Get(id string) (Fruit, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	f, ok := s.fruit[id]
	return f, ok
}

// InsertIfAbsent stores f unless id is already present.  It
// reports whether f was stored.
func (s *Store) InsertIfAbsent(id string, f Fruit) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.fruit[id]; ok {
		return false
	}
	s.fruit[id] = f
	return true
}

// Upsert stores f, replacing whatever was there.
func (s *Store) Upsert(id string, f Fruit) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.fruit[id] = f
}

// Remove is a no-op if id is absent.
func (s *Store) Remove(id string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.fruit, id)
}

// Len is the number of entries.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.fruit)
}
