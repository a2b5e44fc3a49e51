package exit

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type ExitState uint8

const (
	StateNew ExitState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s ExitState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

var ErrNotFound = errors.New("exit: record not found")

// -------------------- Record --------------------

// ExitRecord is one insert event waiting to be (or already) published.
type ExitRecord struct {
	Seq         uint64
	State       ExitState
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

const recordHeader = 1 + 4 + 8

// binary encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeRecord(r ExitRecord) []byte {
	buf := make([]byte, recordHeader+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[recordHeader:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (ExitRecord, error) {
	if len(b) < recordHeader {
		return ExitRecord{}, errors.Newf("exit: record %d too short (%d bytes)", seq, len(b))
	}
	payload := make([]byte, len(b)-recordHeader)
	copy(payload, b[recordHeader:])
	return ExitRecord{
		Seq:         seq,
		State:       ExitState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// -------------------- WAL --------------------

// ExitWAL is the outbox of insert events, stored in pebble so that a
// crash between journaling an insert and publishing it loses nothing.
type ExitWAL struct {
	db *pebble.DB
}

func Open(dir string) (*ExitWAL, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open outbox %s", dir)
	}
	return &ExitWAL{db: db}, nil
}

func (w *ExitWAL) Close() error {
	return w.db.Close()
}

// -------------------- API --------------------

// PutNew stores a freshly journaled event.
func (w *ExitWAL) PutNew(seq uint64, payload []byte) error {
	rec := ExitRecord{State: StateNew, Payload: payload}
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

func (w *ExitWAL) MarkSent(seq uint64) error {
	return w.update(seq, func(r *ExitRecord) {
		r.State = StateSent
		r.LastAttempt = time.Now().UnixNano()
	})
}

func (w *ExitWAL) MarkAcked(seq uint64) error {
	return w.update(seq, func(r *ExitRecord) {
		r.State = StateAcked
	})
}

// MarkFailed records a failed publish attempt; the broadcaster retries
// failed records on its next pass.
func (w *ExitWAL) MarkFailed(seq uint64) error {
	return w.update(seq, func(r *ExitRecord) {
		r.State = StateFailed
		r.Retries++
		r.LastAttempt = time.Now().UnixNano()
	})
}

func (w *ExitWAL) update(seq uint64, fn func(*ExitRecord)) error {
	rec, err := w.Get(seq)
	if err != nil {
		return err
	}
	fn(&rec)
	return w.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

func (w *ExitWAL) Delete(seq uint64) error {
	return w.db.Delete(keyFor(seq), pebble.Sync)
}

// Get returns the current record for seq.
func (w *ExitWAL) Get(seq uint64) (ExitRecord, error) {
	val, closer, err := w.db.Get(keyFor(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return ExitRecord{}, errors.Wrapf(ErrNotFound, "seq %d", seq)
	}
	if err != nil {
		return ExitRecord{}, err
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

// RequeueSent moves records left in SENT back to NEW. A record stays in
// SENT only if the process stopped between publishing and recording the
// outcome, so it must be published again. Run it before the broadcaster
// starts; it returns how many records were requeued.
func (w *ExitWAL) RequeueSent() (int, error) {
	b := w.db.NewBatch()
	defer b.Close()

	n := 0
	err := w.ScanByState(StateSent, func(rec ExitRecord) error {
		rec.State = StateNew
		n++
		return b.Set(keyFor(rec.Seq), encodeRecord(rec), nil)
	})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return n, b.Commit(pebble.Sync)
}

// -------------------- Scan --------------------

// ScanByState walks records in the given state in seq order.
func (w *ExitWAL) ScanByState(
	state ExitState,
	fn func(rec ExitRecord) error,
) error {
	return w.scan(func(rec ExitRecord) error {
		if rec.State != state {
			return nil
		}
		return fn(rec)
	})
}

// ScanPending walks records that still need publishing: NEW and FAILED.
func (w *ExitWAL) ScanPending(fn func(rec ExitRecord) error) error {
	return w.scan(func(rec ExitRecord) error {
		if rec.State != StateNew && rec.State != StateFailed {
			return nil
		}
		return fn(rec)
	})
}

func (w *ExitWAL) scan(fn func(rec ExitRecord) error) error {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// TruncateAckedUpTo drops acknowledged records with seq <= upTo.
func (w *ExitWAL) TruncateAckedUpTo(upTo uint64) (int, error) {
	b := w.db.NewBatch()
	defer b.Close()

	n := 0
	err := w.ScanByState(StateAcked, func(rec ExitRecord) error {
		if rec.Seq > upTo {
			return nil
		}
		n++
		return b.Delete(keyFor(rec.Seq), nil)
	})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return n, b.Commit(pebble.Sync)
}

// -------------------- Helpers --------------------

const keyPrefix = "insert/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(string(b), keyPrefix), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse outbox key %q", b)
	}
	return id, nil
}
