package reconcile

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity is the number of frames a History keeps when no
// capacity is given.
const DefaultHistoryCapacity = 100

// HistoryEntry is one recorded diff frame.
type HistoryEntry struct {
	Seq     uint64    // Update sequence number
	Frame   []byte    // Encoded protocol frame
	AddedAt time.Time // When the frame was recorded
}

// History is a thread-safe ring buffer of encoded diff frames, addressed by
// sequence number. When full, the oldest frame is overwritten, so it keeps a
// sliding window of recent updates that a consumer which fell behind can
// replay instead of fetching a full snapshot.
//
// Sequence numbers passed to Add must increase by one.
type History struct {
	mu       sync.RWMutex
	entries  []*HistoryEntry
	head     int // Next write position
	count    int
	capacity int
	onLen    func(n int)
}

// NewHistory creates a history holding up to capacity frames.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		entries:  make([]*HistoryEntry, capacity),
		capacity: capacity,
	}
}

// Add records frame under seq. The frame is copied. It reports whether the
// oldest frame was evicted to make room.
func (h *History) Add(seq uint64, frame []byte) (evicted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := &HistoryEntry{
		Seq:     seq,
		Frame:   append([]byte(nil), frame...),
		AddedAt: time.Now(),
	}

	h.entries[h.head] = entry
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	} else {
		evicted = true
	}
	h.notify()
	return evicted
}

// observe registers fn to receive the frame count after every Add or Clear.
func (h *History) observe(fn func(n int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLen = fn
	h.notify()
}

// notify reports the frame count. The caller holds the write lock.
func (h *History) notify() {
	if h.onLen != nil {
		h.onLen(h.count)
	}
}

// oldest returns the oldest entry. The caller holds the lock and has
// checked that the history is not empty.
func (h *History) oldest() *HistoryEntry {
	return h.entries[(h.head-h.count+h.capacity)%h.capacity]
}

// newest returns the newest entry, under the same conditions as oldest.
func (h *History) newest() *HistoryEntry {
	return h.entries[(h.head-1+h.capacity)%h.capacity]
}

// Frames returns the frames for sequences (after, to], in order.
// It returns nil if any sequence in the range is no longer, or not yet,
// held.
func (h *History) Frames(after, to uint64) [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 || after >= to {
		return nil
	}
	first := h.oldest().Seq
	if after+1 < first || to > h.newest().Seq {
		return nil
	}

	frames := make([][]byte, 0, to-after)
	for i := 0; i < h.count; i++ {
		entry := h.entries[(h.head-h.count+i+h.capacity)%h.capacity]
		if entry.Seq > after && entry.Seq <= to {
			frames = append(frames, entry.Frame)
		}
	}
	if uint64(len(frames)) != to-after {
		return nil
	}
	return frames
}

// CanRecover reports whether every frame after last, up to the newest, is
// still held.
func (h *History) CanRecover(last uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return false
	}
	return last+1 >= h.oldest().Seq && last < h.newest().Seq
}

// MinSeq returns the oldest sequence held, or 0 if empty.
func (h *History) MinSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.count == 0 {
		return 0
	}
	return h.oldest().Seq
}

// MaxSeq returns the newest sequence held, or 0 if empty.
func (h *History) MaxSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.count == 0 {
		return 0
	}
	return h.newest().Seq
}

// Len returns the number of frames held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Capacity returns the maximum number of frames held.
func (h *History) Capacity() int {
	return h.capacity
}

// Clear drops every frame and returns how many were dropped.
func (h *History) Clear() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.count
	for i := range h.entries {
		h.entries[i] = nil
	}
	h.head = 0
	h.count = 0
	h.notify()
	return n
}

// MemoryUsage estimates the bytes held by the recorded frames.
func (h *History) MemoryUsage() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, e := range h.entries {
		if e != nil {
			n += len(e.Frame)
		}
	}
	return n
}
