package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePopEmpty(t *testing.T) {
	q := New[int](nil)
	_, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueueFIFO(t *testing.T) {
	q := New[int](nil)
	for i := 0; i < 100; i++ {
		require.NoError(t, q.Push(i))
	}
	assert.Equal(t, 100, q.Len())

	for i := 0; i < 100; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestQueueInterleaved(t *testing.T) {
	q := New[string](nil)
	require.NoError(t, q.Push("a"))
	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", v)

	// List must be fully unlinked before the next push
	require.NoError(t, q.Push("b"))
	require.NoError(t, q.Push("c"))
	v, _ = q.Pop()
	assert.Equal(t, "b", v)
	v, _ = q.Pop()
	assert.Equal(t, "c", v)
}

func TestQueueDestroy(t *testing.T) {
	var destroyed []int
	q := New(func(v int) { destroyed = append(destroyed, v) })

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(i))
	}
	q.Destroy()

	assert.Equal(t, []int{0, 1, 2}, destroyed)
	assert.Equal(t, 0, q.Len())
	assert.ErrorIs(t, q.Push(4), ErrDestroyed)
}

func TestQueueSPSCOrder(t *testing.T) {
	const total = 5000
	q := New[int](nil)

	var wg sync.WaitGroup
	wg.Add(1)
	got := make([]int, 0, total)
	go func() {
		defer wg.Done()
		for len(got) < total {
			if v, ok := q.Pop(); ok {
				got = append(got, v)
			}
		}
	}()

	for i := 0; i < total; i++ {
		require.NoError(t, q.Push(i))
	}
	wg.Wait()

	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers, perProducer = 8, 500
	q := New[int](nil)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = q.Push(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, producers*perProducer, q.Len())
}

func BenchmarkQueuePushPop(b *testing.B) {
	q := New[int](nil)
	for i := 0; i < b.N; i++ {
		_ = q.Push(i)
		q.Pop()
	}
}
