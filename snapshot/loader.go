package snapshot

import (
	"encoding/gob"
	"os"

	"github.com/cockroachdb/errors"
)

// Load feeds every stored value to apply and returns the snapshot's seq.
// A missing file is not an error: it loads nothing and returns 0.
func Load(path string, apply func(float64)) (uint64, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "open snapshot")
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, errors.Wrapf(err, "decode snapshot %s", path)
	}

	for _, v := range s.Values {
		apply(v)
	}
	return s.Seq, nil
}
