package pool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrInsert_SameKeyReturnsSamePointer(t *testing.T) {
	p := New[int, *int]()
	a := p.FindOrInsert(1, func() *int { v := 10; return &v })
	b := p.FindOrInsert(1, func() *int { v := 20; return &v })
	require.Same(t, a, b)
	assert.Equal(t, 10, *a)
}

func TestFindOrInsert_DifferentKeysDontBlock(t *testing.T) {
	p := New[int, int]()
	a := p.FindOrInsert(1, func() int { return 1 })
	b := p.FindOrInsert(2, func() int { return 2 })
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 2, p.Len())
}

func TestFindOrInsert_ConcurrentSameKeyConstructsOnce(t *testing.T) {
	p := New[string, int]()
	var calls int32
	var wg sync.WaitGroup
	results := make([]int, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = p.FindOrInsert("k", func() int {
				atomic.AddInt32(&calls, 1)
				return 42
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestGet_MissingKey(t *testing.T) {
	p := New[int, string]()
	_, ok := p.Get(1)
	assert.False(t, ok)
}

func TestValues_SkipsInFlightEntries(t *testing.T) {
	p := New[int, int]()
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		p.FindOrInsert(1, func() int {
			close(started)
			<-release
			return 1
		})
	}()
	<-started
	assert.Empty(t, p.Values())
	close(release)
}
