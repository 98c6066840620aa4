package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	token   uint64
	expires time.Time
}

// MemoryLocker lock por clave dentro del proceso (sin Redis).
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memEntry
	seq   uint64
	now   func() time.Time
}

// NewMemoryLocker construye el locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]memEntry), now: time.Now}
}

// TryLock toma el lock si está libre o vencido.
func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if e, ok := l.locks[key]; ok && now.Before(e.expires) {
		return nil, false, nil
	}
	l.seq++
	token := l.seq
	l.locks[key] = memEntry{token: token, expires: now.Add(ttl)}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.locks[key]; ok && e.token == token {
			delete(l.locks, key)
		}
	}, true, nil
}

// MemoryIdempotencyStore marcas de eventos con vencimiento dentro del proceso.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

// NewMemoryIdempotencyStore construye el store.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string]time.Time), now: time.Now}
}

// MarkProcessed devuelve true si la clave se marcó ahora. Aprovecha para purgar marcas vencidas.
func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.keys {
		if !now.Before(exp) {
			delete(s.keys, k)
		}
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = now.Add(ttl)
	return true, nil
}

// Forget elimina la marca.
func (s *MemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
	return nil
}
