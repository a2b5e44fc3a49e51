package snapshot

import (
	"encoding/gob"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

type Writer struct {
	Dir string
}

func (w *Writer) Path() string {
	return filepath.Join(w.Dir, FileName)
}

// Write stores values under seq. The file is replaced atomically, so a
// crash mid-write leaves the previous snapshot intact.
func (w *Writer) Write(seq uint64, values iter.Seq[float64]) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return errors.Wrap(err, "create snapshot dir")
	}

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Values:  make([]float64, 0, 1024),
	}
	for v := range values {
		s.Values = append(s.Values, v)
	}

	tmp, err := os.CreateTemp(w.Dir, FileName+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&s); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "encode snapshot")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), w.Path())
}
