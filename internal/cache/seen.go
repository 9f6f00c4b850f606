package cache

import (
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/tafypz/ercot-rts/pkg/models"
)

// SeenFilter is an in-memory approximation of the intervals already held
// by the price store. It may report an interval that was never stored, so
// callers must not use it to decide what gets persisted.
type SeenFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewSeenFilter sizes the filter for the given number of (hub, interval)
// pairs at the false positive rate fpRate.
func NewSeenFilter(intervals uint, fpRate float64) *SeenFilter {
	return &SeenFilter{filter: bloom.NewWithEstimates(intervals, fpRate)}
}

// intervalKey is the hub name followed by the interval end in unix seconds.
// Prices are settled on whole minutes, so sub-second precision is dropped.
func intervalKey(p models.Price) []byte {
	key := make([]byte, len(p.Hub)+8)
	n := copy(key, p.Hub)
	binary.BigEndian.PutUint64(key[n:], uint64(p.Timestamp.Unix()))
	return key
}

// Seen reports whether p's interval was probably marked before.
func (s *SeenFilter) Seen(p models.Price) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.Test(intervalKey(p))
}

// Mark records the intervals of prices.
func (s *SeenFilter) Mark(prices ...models.Price) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range prices {
		s.filter.Add(intervalKey(p))
	}
}

// Intervals estimates how many distinct intervals were marked.
func (s *SeenFilter) Intervals() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.ApproximatedSize()
}
