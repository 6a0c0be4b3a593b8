package cache

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
)

// InMemory keeps up to max reference indexes. Once full, new keys are built
// on every request but not stored.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string]*decision.ReferenceIndex
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	if max < 0 {
		max = 0
	}
	return &InMemory{
		max:   max,
		items: make(map[string]*decision.ReferenceIndex, max),
	}
}

// GetOrCompute returns the cached index for key, building it with fn at most
// once across concurrent callers. Errors and panics from fn are not cached.
func (c *InMemory) GetOrCompute(key string, fn func() (*decision.ReferenceIndex, error)) (*decision.ReferenceIndex, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}

		idx, err := safeCompute(fn)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if len(c.items) < c.max {
			c.items[key] = idx
		}
		c.mu.Unlock()

		return idx, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*decision.ReferenceIndex), nil
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *InMemory) get(key string) (*decision.ReferenceIndex, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

func safeCompute(fn func() (*decision.ReferenceIndex, error)) (idx *decision.ReferenceIndex, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("index build panicked: %v", r)
		}
	}()
	return fn()
}
