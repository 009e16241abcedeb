package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

var _ Cache = (*Memory)(nil)

type entry struct {
	key       string
	timestamp time.Time
	jobs      []model.RawJob
}

// Memory is an in-process TTL cache. Expired entries are evicted lazily when
// read; there is no background sweep. With a capacity set, the least recently
// used entry is evicted once the cache is full.
type Memory struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int // 0 = unbounded
	now        model.Clock
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
}

// Option configures a Memory cache.
type Option func(*Memory)

// WithTTL sets the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of keys. Zero or less means unbounded.
func WithMaxEntries(n int) Option {
	return func(m *Memory) {
		m.maxEntries = n
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now model.Clock) Option {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory returns an empty in-memory cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached records for key while their age is below the TTL.
// A stale entry is removed and reported as a miss.
func (m *Memory) Get(_ context.Context, key string) ([]model.RawJob, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*entry)
	if m.now().Sub(e.timestamp) >= m.ttl {
		m.remove(el)
		return nil, false, nil
	}
	m.order.MoveToFront(el)
	return e.jobs, true, nil
}

// Set stores jobs under key with the current time.
func (m *Memory) Set(_ context.Context, key string, jobs []model.RawJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		el.Value = &entry{key: key, timestamp: m.now(), jobs: jobs}
		m.order.MoveToFront(el)
		return nil
	}

	if m.maxEntries > 0 && m.order.Len() >= m.maxEntries {
		if oldest := m.order.Back(); oldest != nil {
			m.remove(oldest)
		}
	}
	m.entries[key] = m.order.PushFront(&entry{key: key, timestamp: m.now(), jobs: jobs})
	return nil
}

// Len returns the number of stored entries, fresh or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// remove must be called with m.mu held.
func (m *Memory) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.entries, el.Value.(*entry).key)
}
