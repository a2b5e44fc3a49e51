package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing insert sequence numbers.
// The first call to Next after New(0) returns 1, so 0 always means
// "nothing journaled yet".
type Sequencer struct {
	last atomic.Uint64
}

// New starts a sequencer whose last issued value is start.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued sequence number.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Reset moves the sequencer to v. It is used once, after journal replay,
// and never moves backwards.
func (s *Sequencer) Reset(v uint64) {
	for {
		cur := s.last.Load()
		if v <= cur || s.last.CompareAndSwap(cur, v) {
			return
		}
	}
}
