package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
)

func emptyIndex() *decision.ReferenceIndex {
	return decision.NewReferenceIndex(nil, nil)
}

func TestInMemory_GetOrCompute_DeduplicatesConcurrentSameKey(t *testing.T) {
	c := NewInMemory(16)
	var calls atomic.Int32

	fn := func() (*decision.ReferenceIndex, error) {
		calls.Add(1)
		time.Sleep(30 * time.Millisecond)
		return emptyIndex(), nil
	}

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrCompute("same-key", fn)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestInMemory_GetOrCompute_ReturnsCachedIndex(t *testing.T) {
	c := NewInMemory(4)
	first, err := c.GetOrCompute("k", func() (*decision.ReferenceIndex, error) { return emptyIndex(), nil })
	require.NoError(t, err)

	second, err := c.GetOrCompute("k", func() (*decision.ReferenceIndex, error) {
		t.Fatal("fn must not run for a cached key")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestInMemory_GetOrCompute_ErrorIsNotCached(t *testing.T) {
	c := NewInMemory(16)
	var calls atomic.Int32

	_, err := c.GetOrCompute("k", func() (*decision.ReferenceIndex, error) {
		calls.Add(1)
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	_, err = c.GetOrCompute("k", func() (*decision.ReferenceIndex, error) {
		calls.Add(1)
		return emptyIndex(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInMemory_GetOrCompute_PanicBecomesError(t *testing.T) {
	c := NewInMemory(16)
	var calls atomic.Int32

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.GetOrCompute("panic-key", func() (*decision.ReferenceIndex, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				panic("boom")
			})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.Error(t, err)
	}
	assert.Equal(t, 0, c.Len())
}

func TestInMemory_GetOrCompute_StopsStoringWhenFull(t *testing.T) {
	c := NewInMemory(1)
	for _, k := range []string{"a", "b", "c"} {
		_, err := c.GetOrCompute(k, func() (*decision.ReferenceIndex, error) { return emptyIndex(), nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.Len())
}
