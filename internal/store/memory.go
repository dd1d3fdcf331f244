package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	expiresAt time.Time
	value     string
}

// MemoryStore 进程内存储，单实例开发和测试使用
type MemoryStore struct {
	now  func() time.Time
	data map[string]memoryEntry
	ttl  time.Duration
	mu   sync.Mutex
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.data, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.data[key] = entry
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// MemoryLocker 进程内的 key 锁，过期时间与 redis 锁语义一致
type MemoryLocker struct {
	now   func() time.Time
	locks map[string]time.Time
	mu    sync.Mutex
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiresAt, held := l.locks[key]; held && l.now().Before(expiresAt) {
		return false, nil
	}
	l.locks[key] = l.now().Add(ttl)
	return true, nil
}

func (l *MemoryLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.locks, key)
	return nil
}

func NewMemoryStores(persistentTTL, sessionTTL time.Duration) *Stores {
	return &Stores{
		Persistent: NewMemoryStore(persistentTTL),
		Session:    NewMemoryStore(sessionTTL),
		Locker:     NewMemoryLocker(),
	}
}
