package broadcaster

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"rbstat/infra/kafka"
	exitwal "rbstat/infra/wal/exit"
)

const defaultBatch = 512

// Broadcaster drains the outbox: every NEW or FAILED insert event is
// published and then marked ACKED (or FAILED for another try).
type Broadcaster struct {
	exitWAL   *exitwal.ExitWAL
	publisher kafka.Publisher
	interval  time.Duration
	batch     int
}

func New(
	exitWAL *exitwal.ExitWAL,
	publisher kafka.Publisher,
	interval time.Duration,
) *Broadcaster {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Broadcaster{
		exitWAL:   exitWAL,
		publisher: publisher,
		interval:  interval,
		batch:     defaultBatch,
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run publishes on every tick until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	log.Println("[broadcaster] started")
	defer log.Println("[broadcaster] stopped")

	if _, err := b.Recover(); err != nil {
		log.Printf("[broadcaster] recover failed: %v", err)
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.RunOnce(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[broadcaster] pass failed: %v", err)
			}
		}
	}
}

// Recover requeues events whose publish outcome was never recorded.
func (b *Broadcaster) Recover() (int, error) {
	n, err := b.exitWAL.RequeueSent()
	if err != nil {
		return 0, errors.Wrap(err, "requeue sent")
	}
	if n > 0 {
		log.Printf("[broadcaster] requeued %d unconfirmed events", n)
	}
	return n, nil
}

// ------------------------------------------------
// ONE PASS
// ------------------------------------------------

// RunOnce publishes up to one batch of pending events and returns how
// many were acknowledged. A publish failure marks the record FAILED and
// moves on; only outbox errors abort the pass.
func (b *Broadcaster) RunOnce(ctx context.Context) (int, error) {
	pending := make([]exitwal.ExitRecord, 0, 16)
	errBatchFull := errors.New("batch full")
	err := b.exitWAL.ScanPending(func(rec exitwal.ExitRecord) error {
		pending = append(pending, rec)
		if len(pending) >= b.batch {
			return errBatchFull
		}
		return nil
	})
	if err != nil && !errors.Is(err, errBatchFull) {
		return 0, errors.Wrap(err, "scan outbox")
	}

	acked := 0
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return acked, err
		}

		// 1. mark SENT; Recover requeues it after a crash mid-publish
		if err := b.exitWAL.MarkSent(rec.Seq); err != nil {
			return acked, err
		}

		// 2. publish
		key := []byte(strconv.FormatUint(rec.Seq, 10))
		if err := b.publisher.Publish(ctx, key, rec.Payload); err != nil {
			log.Printf("[broadcaster] seq=%d publish failed (retries=%d): %v", rec.Seq, rec.Retries, err)
			if err := b.exitWAL.MarkFailed(rec.Seq); err != nil {
				return acked, err
			}
			continue
		}

		// 3. mark ACKED
		if err := b.exitWAL.MarkAcked(rec.Seq); err != nil {
			return acked, err
		}
		acked++
	}
	return acked, nil
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.publisher.Close()
}
