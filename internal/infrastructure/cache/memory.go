package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

// Memory is a process-local TTL cache guarded by a mutex; used when no Redis
// is configured. It holds no transactional relationship to the database.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memEntry
}

type memEntry struct {
	value   string
	expires time.Time
}

var _ application.ReadCache = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: map[string]memEntry{}}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *Memory) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{value: value, expires: c.now().Add(c.ttl)}
}

func (c *Memory) InvalidateClass(_ context.Context, class domain.AssetClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := string(class) + ":"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}
