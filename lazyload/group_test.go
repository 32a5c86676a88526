package lazyload

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SucceedsOnce(t *testing.T) {
	var g Group
	var calls int32
	for i := 0; i < 3; i++ {
		err := g.Load(func() error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls)
	assert.True(t, g.Loaded())
}

func TestLoad_FailureIsNotCached(t *testing.T) {
	var g Group
	var calls int32
	errLoad := errors.New("boom")

	err := g.Load(func() error {
		atomic.AddInt32(&calls, 1)
		return errLoad
	})
	assert.ErrorIs(t, err, errLoad)
	assert.False(t, g.Loaded())

	err = g.Load(func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, g.Loaded())
	assert.Equal(t, int32(2), calls)
}

func TestLoad_ConcurrentReadersShareOneInFlightCall(t *testing.T) {
	var g Group
	var calls int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := g.Load(func() error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls)
}
