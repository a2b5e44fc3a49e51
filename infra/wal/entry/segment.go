package entry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
)

const segmentGlob = "segment-*.wal"

type segment struct {
	file   *os.File
	index  int
	offset int64
}

func segmentPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("segment-%06d.wal", index))
}

func openSegment(dir string, index int) (*segment, error) {
	f, err := os.OpenFile(segmentPath(dir, index), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open segment %d", index)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "stat segment %d", index)
	}
	return &segment{file: f, index: index, offset: st.Size()}, nil
}

func (s *segment) append(b []byte) error {
	n, err := s.file.Write(b)
	s.offset += int64(n)
	return err
}

func (s *segment) sync() error {
	return s.file.Sync()
}

func (s *segment) close() error {
	return s.file.Close()
}

// listSegments returns segment paths in index order.
func listSegments(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, segmentGlob))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func segmentIndex(path string) (int, error) {
	var idx int
	if _, err := fmt.Sscanf(filepath.Base(path), "segment-%06d.wal", &idx); err != nil {
		return 0, errors.Wrapf(err, "parse segment name %q", path)
	}
	return idx, nil
}
