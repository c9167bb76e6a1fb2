package reconcile

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(h *History, from, to uint64) {
	for seq := from; seq <= to; seq++ {
		h.Add(seq, []byte{byte(seq)})
	}
}

func TestHistoryAdd(t *testing.T) {
	h := NewHistory(5)

	assert.False(t, h.Add(1, []byte("frame1")))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, uint64(1), h.MinSeq())
	assert.Equal(t, uint64(1), h.MaxSeq())

	fill(h, 2, 3)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, uint64(1), h.MinSeq())
	assert.Equal(t, uint64(3), h.MaxSeq())
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	fill(h, 1, DefaultHistoryCapacity+1)

	assert.Equal(t, DefaultHistoryCapacity, h.Len())
	assert.Equal(t, DefaultHistoryCapacity, h.Capacity())
	assert.Equal(t, uint64(2), h.MinSeq())
}

func TestHistoryFrames(t *testing.T) {
	h := NewHistory(10)
	fill(h, 1, 5)

	frames := h.Frames(0, 5)
	require.Len(t, frames, 5)
	for i, frame := range frames {
		assert.Equal(t, []byte{byte(i + 1)}, frame)
	}

	assert.Equal(t, [][]byte{{3}, {4}}, h.Frames(2, 4))
	assert.Nil(t, h.Frames(10, 15), "out of range")
	assert.Nil(t, h.Frames(3, 3), "empty range")
}

func TestHistoryCircularOverwrite(t *testing.T) {
	h := NewHistory(3)

	fill(h, 1, 3)
	assert.True(t, h.Add(4, []byte{4}), "a full history evicts")
	h.Add(5, []byte{5})

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, uint64(3), h.MinSeq())
	assert.Equal(t, uint64(5), h.MaxSeq())
	assert.Len(t, h.Frames(2, 5), 3)
	assert.Nil(t, h.Frames(0, 5), "frames 1 and 2 are gone")
}

func TestHistoryCanRecover(t *testing.T) {
	h := NewHistory(5)
	assert.False(t, h.CanRecover(0), "empty")

	fill(h, 1, 5)

	tests := []struct {
		last uint64
		want bool
	}{
		{0, true},
		{3, true},
		{4, true},
		{5, false}, // up to date
		{10, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.CanRecover(tt.last), "CanRecover(%d)", tt.last)
	}

	fill(h, 6, 7)
	assert.False(t, h.CanRecover(1), "frame 2 was evicted")
	assert.True(t, h.CanRecover(2))
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(5)
	fill(h, 1, 3)

	assert.Equal(t, 3, h.Clear())
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, uint64(0), h.MinSeq())
	assert.Equal(t, uint64(0), h.MaxSeq())
	assert.Equal(t, 0, h.MemoryUsage())
}

func TestHistoryMemoryUsage(t *testing.T) {
	h := NewHistory(2)

	h.Add(1, []byte("frame-1"))
	h.Add(2, []byte("frame-2-longer"))
	assert.Equal(t, len("frame-1")+len("frame-2-longer"), h.MemoryUsage())

	h.Add(3, []byte("f"))
	assert.Equal(t, len("frame-2-longer")+1, h.MemoryUsage())
}

func TestHistoryFrameCopyIsolation(t *testing.T) {
	h := NewHistory(5)
	frame := []byte{1, 2, 3}

	h.Add(1, frame)
	frame[0] = 99

	assert.Equal(t, []byte{1, 2, 3}, h.Frames(0, 1)[0])
}

func TestHistoryConcurrent(t *testing.T) {
	h := NewHistory(100)
	var mu sync.Mutex
	var next uint64
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				mu.Lock()
				next++
				h.Add(next, []byte{byte(next)})
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = h.Len()
				_ = h.MinSeq()
				_ = h.MaxSeq()
				_ = h.CanRecover(uint64(j))
				_ = h.Frames(uint64(j), uint64(j+5))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, h.Len())
	assert.Len(t, h.Frames(0, 100), 100)
}

func TestHistoryObserve(t *testing.T) {
	h := NewHistory(2)
	var counts []int
	h.observe(func(n int) { counts = append(counts, n) })

	fill(h, 1, 3)
	h.Clear()

	assert.Equal(t, []int{0, 1, 2, 2, 0}, counts)
}
