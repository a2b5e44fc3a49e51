package entry

import (
	"encoding/binary"
	"log"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
)

const (
	headerSize = 1 + 8 + 8 + 4
	crcSize    = 4

	defaultSegmentSize = 2 * 1024 * 1024
)

type Config struct {
	Dir         string
	SegmentSize int64
	// SyncEveryWrite fsyncs the segment after each append.
	SyncEveryWrite bool
}

// WAL is the insert journal: an append-only sequence of framed records
// split across size-bounded segment files.
type WAL struct {
	mu      sync.Mutex
	dir     string
	segSize int64
	sync    bool
	current *segment
}

// Open creates dir if needed and continues the newest existing segment.
func Open(cfg Config) (*WAL, error) {
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = defaultSegmentSize
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create wal dir")
	}

	files, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}
	idx := 0
	if len(files) > 0 {
		if idx, err = segmentIndex(files[len(files)-1]); err != nil {
			return nil, err
		}
	}

	if len(files) > 0 {
		if err := trimTornTail(files[len(files)-1]); err != nil {
			return nil, err
		}
	}

	seg, err := openSegment(cfg.Dir, idx)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dir:     cfg.Dir,
		segSize: cfg.SegmentSize,
		sync:    cfg.SyncEveryWrite,
		current: seg,
	}, nil
}

// trimTornTail cuts a partially written frame off the end of the newest
// segment, so appends continue right after the last complete record.
func trimTornTail(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "stat %s", path)
	}
	valid, err := validLength(path)
	if err != nil {
		return err
	}
	if valid == st.Size() {
		return nil
	}
	log.Printf("[wal] dropping %d torn bytes at end of %s", st.Size()-valid, path)
	if err := os.Truncate(path, valid); err != nil {
		return errors.Wrapf(err, "truncate %s", path)
	}
	return nil
}

func encode(r *Record) []byte {
	payloadLen := uint32(len(r.Data))

	// Frame:
	// [type:1][seq:8][time:8][len:4][payload][crc:4]
	buf := make([]byte, headerSize+payloadLen+crcSize)

	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[headerSize:], r.Data)

	crc := CRC32(buf[:headerSize+payloadLen])
	binary.BigEndian.PutUint32(buf[headerSize+payloadLen:], crc)
	return buf
}

func (w *WAL) Append(r *Record) error {
	if len(r.Data) > maxPayloadSize {
		return errors.Wrapf(ErrCorrupt, "seq %d payload of %d bytes", r.Seq, len(r.Data))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.current.append(encode(r)); err != nil {
		return errors.Wrapf(err, "append seq %d", r.Seq)
	}
	if w.sync {
		if err := w.current.sync(); err != nil {
			return errors.Wrap(err, "sync segment")
		}
	}

	if w.current.offset >= w.segSize {
		return w.rotate()
	}
	return nil
}

func (w *WAL) rotate() error {
	if err := w.current.sync(); err != nil {
		return errors.Wrap(err, "sync before rotate")
	}
	_ = w.current.close()

	seg, err := openSegment(w.dir, w.current.index+1)
	if err != nil {
		return err
	}
	w.current = seg
	return nil
}

func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current.sync()
}

func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.current.sync(); err != nil {
		_ = w.current.close()
		return err
	}
	return w.current.close()
}

// TruncateBefore removes closed segments whose records are all at or
// below seq. The segment being written is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	w.mu.Lock()
	current := segmentPath(w.dir, w.current.index)
	w.mu.Unlock()

	files, err := listSegments(w.dir)
	if err != nil {
		return err
	}

	for _, path := range files {
		if path == current {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			if err := os.Remove(path); err != nil {
				return errors.Wrapf(err, "remove %s", path)
			}
		}
	}
	return nil
}
