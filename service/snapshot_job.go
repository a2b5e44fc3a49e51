package service

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"rbstat/snapshot"
)

// SnapshotOnce writes the current values, then drops journal segments and
// acknowledged outbox records the snapshot covers. It returns the seq the
// snapshot was taken at.
func (s *TreeService) SnapshotOnce(w *snapshot.Writer) (uint64, error) {
	s.mu.RLock()
	seq := s.seqGen.Current()
	values := make([]float64, 0, s.tree.Len())
	for v := range s.tree.Preorder() {
		values = append(values, v)
	}
	s.mu.RUnlock()

	if err := w.Write(seq, slices.Values(values)); err != nil {
		return 0, errors.Wrap(err, "write snapshot")
	}

	// Truncate ENTRY WAL after snapshot
	if s.entryWAL != nil {
		if err := s.entryWAL.TruncateBefore(seq); err != nil {
			return seq, errors.Wrap(err, "truncate journal")
		}
	}

	// GC EXIT WAL (acked only)
	if s.exitWAL != nil {
		if _, err := s.exitWAL.TruncateAckedUpTo(seq); err != nil {
			return seq, errors.Wrap(err, "truncate outbox")
		}
	}
	return seq, nil
}

// StartSnapshotJob snapshots every interval until ctx is done. The
// returned channel is closed once the job has stopped; the journal and
// outbox must stay open until then.
func (s *TreeService) StartSnapshotJob(
	ctx context.Context,
	dir string,
	interval time.Duration,
) <-chan struct{} {
	w := &snapshot.Writer{Dir: dir}
	done := make(chan struct{})

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				seq, err := s.SnapshotOnce(w)
				if err != nil {
					log.Printf("[snapshot] failed: %v", err)
					continue
				}
				log.Printf("[snapshot] written at seq %d", seq)
			}
		}
	}()
	return done
}
