package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IT21259166/anbd-core/pkg/logger"
)

// memoryCache is a process-local fallback satisfying Cache when the external
// store is unavailable. Best-effort: data is not shared across replicas and
// is lost on restart.
type memoryCache struct {
	m     map[string][]byte
	lists map[string][]string
	mu    sync.RWMutex
}

func NewMemoryCache(log logger.Logger) Cache {
	if log != nil {
		log.Warn("Valkey cache unavailable; using in-memory fallback")
	}
	return &memoryCache{m: make(map[string][]byte), lists: make(map[string][]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return b, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		jb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b = jb
	}
	c.mu.Lock()
	c.m[key] = b
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) LPush(ctx context.Context, key string, values ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// LPUSH semantics: each value prepends in turn.
	for _, v := range values {
		c.lists[key] = append([]string{v}, c.lists[key]...)
	}
	return nil
}

func (c *memoryCache) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := c.lists[key]
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (c *memoryCache) LTrim(ctx context.Context, key string, start, stop int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.lists[key]
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		c.lists[key] = nil
		return nil
	}
	c.lists[key] = list[start : stop+1]
	return nil
}

func (c *memoryCache) LLen(ctx context.Context, key string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.lists[key])), nil
}
