package nutransport

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolPushAndAt(t *testing.T) {
	p := NewPool(4)
	idx := p.Push(Packet{N: 1, Species: 0})
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, Real(1), p.At(idx).N)
}

func TestPoolPushManyContiguous(t *testing.T) {
	p := NewPool(4)
	p.Push(Packet{N: 1})
	idxs := p.PushMany([]Packet{{N: 2}, {N: 3}, {N: 4}})
	require.Equal(t, []int{1, 2, 3}, idxs)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, Real(3), p.At(2).N)
}

func TestPoolResetClearsButKeepsCapacity(t *testing.T) {
	p := NewPool(2)
	p.Push(Packet{N: 1})
	p.Push(Packet{N: 2})
	p.Reset()
	assert.Equal(t, 0, p.Len())
	assert.Empty(t, p.Snapshot())
	assert.GreaterOrEqual(t, cap(p.Snapshot()), 2)
}

func TestPoolConcurrentPushIsSafe(t *testing.T) {
	p := NewPool(0)
	var wg sync.WaitGroup
	const n = 200
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			p.Push(Packet{N: Real(i)})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, p.Len())
}

func TestShardLocksMaskIndex(t *testing.T) {
	var sl shardLocks
	// Indices that alias to the same shard must still be independently
	// lockable in sequence without deadlocking.
	sl.lock(0)
	sl.unlock(0)
	sl.lock(numShards)
	sl.unlock(numShards)
}
