package domain

import (
	"sync/atomic"
	"time"
)

// Clock supplies timestamps for order creation and completion
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// IDGenerator hands out unique, monotonically increasing order IDs
type IDGenerator interface {
	NextID() int64
}

// Sequence is a counter-backed IDGenerator starting at 1
type Sequence struct {
	last atomic.Int64
}

// NewSequence creates a sequence whose first ID is start+1
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.last.Store(start)
	return s
}

func (s *Sequence) NextID() int64 {
	return s.last.Add(1)
}
