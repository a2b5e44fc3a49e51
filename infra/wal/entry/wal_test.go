package entry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestWAL_AppendAndReplay(t *testing.T) {
	dir := t.TempDir()

	// --- write phase ---
	w, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}

	const n = 100
	for i := 1; i <= n; i++ {
		if err := w.Append(NewInsertRecord(uint64(i), float64(i)/2)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// --- replay phase ---
	count := 0
	sum := 0.0
	last, err := Replay(dir, func(rec *Record) error {
		if rec.Type != RecordInsert {
			t.Fatalf("unexpected record type: %v", rec.Type)
		}
		v, err := rec.Value()
		if err != nil {
			return err
		}
		count++
		sum += v
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != n || last != n {
		t.Fatalf("expected %d records up to seq %d, got %d up to %d", n, n, count, last)
	}
	if sum != 2525 {
		t.Fatalf("expected sum 2525, got %v", sum)
	}
}

func TestWAL_Rotation(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 64})
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	for i := 1; i <= 10; i++ {
		if err := w.Append(NewInsertRecord(uint64(i), 1)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, segmentGlob))
	if len(files) < 2 {
		t.Fatalf("expected rotated segments, found %d", len(files))
	}

	count := 0
	if _, err := Replay(dir, func(*Record) error { count++; return nil }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 10 {
		t.Fatalf("expected 10 records across segments, got %d", count)
	}
}

func TestWAL_ReopenContinuesLastSegment(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 64})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 5; i++ {
		_ = w.Append(NewInsertRecord(uint64(i), 1))
	}
	_ = w.Close()

	w, err = Open(Config{Dir: dir, SegmentSize: 64})
	if err != nil {
		t.Fatal(err)
	}
	for i := 6; i <= 8; i++ {
		if err := w.Append(NewInsertRecord(uint64(i), 1)); err != nil {
			t.Fatal(err)
		}
	}
	_ = w.Close()

	last, err := Replay(dir, func(*Record) error { return nil })
	if err != nil {
		t.Fatalf("replay after reopen: %v", err)
	}
	if last != 8 {
		t.Fatalf("expected last seq 8, got %d", last)
	}
}

func TestWAL_CRCIntegrity(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Append(NewInsertRecord(1, 42))
	_ = w.Close()

	f, err := os.OpenFile(segmentPath(dir, 0), os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	// corrupt the payload to break CRC
	_, _ = f.WriteAt([]byte{0xFF, 0xFF, 0xFF, 0xFF}, headerSize)
	f.Close()

	_, err = Replay(dir, func(*Record) error {
		t.Fatal("expected corruption detection, but got record")
		return nil
	})
	if !errors.Is(err, ErrCRCMismatch) {
		t.Fatalf("expected crc mismatch, got %v", err)
	}
}

func TestWAL_TornTailIgnored(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Append(NewInsertRecord(1, 1))
	_ = w.Append(NewInsertRecord(2, 2))
	_ = w.Close()

	path := segmentPath(dir, 0)
	st, _ := os.Stat(path)
	if err := os.Truncate(path, st.Size()-3); err != nil {
		t.Fatal(err)
	}

	count := 0
	last, err := Replay(dir, func(*Record) error { count++; return nil })
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 1 || last != 1 {
		t.Fatalf("expected only the intact record, got count=%d last=%d", count, last)
	}
}

func TestWAL_ReopenAfterTornTailKeepsAppending(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Append(NewInsertRecord(1, 1))
	_ = w.Append(NewInsertRecord(2, 2))
	_ = w.Close()

	path := segmentPath(dir, 0)
	st, _ := os.Stat(path)
	if err := os.Truncate(path, st.Size()-3); err != nil {
		t.Fatal(err)
	}

	// seq 2 never fully hit the disk, so it is written again
	w, err = Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := w.Append(NewInsertRecord(2, 20)); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(NewInsertRecord(3, 30)); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	var values []float64
	last, err := Replay(dir, func(rec *Record) error {
		v, err := rec.Value()
		values = append(values, v)
		return err
	})
	if err != nil {
		t.Fatalf("replay after reopen: %v", err)
	}
	if last != 3 || len(values) != 3 || values[1] != 20 || values[2] != 30 {
		t.Fatalf("expected 1,20,30 up to seq 3, got %v up to %d", values, last)
	}
}

func TestWAL_HugeLengthFieldIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Append(NewInsertRecord(1, 42))
	_ = w.Close()

	f, err := os.OpenFile(segmentPath(dir, 0), os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	// len field sits at [17:21]
	_, _ = f.WriteAt([]byte{0xFF, 0xFF, 0xFF, 0xFE}, 17)
	f.Close()

	_, err = Replay(dir, func(*Record) error {
		t.Fatal("expected corruption detection, but got record")
		return nil
	})
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected corrupt frame, got %v", err)
	}

	if _, err := Open(Config{Dir: dir}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("open over a corrupt segment: expected ErrCorrupt, got %v", err)
	}
}

func TestWAL_NonMonotonicRejected(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Append(NewInsertRecord(5, 1))
	_ = w.Append(NewInsertRecord(3, 1))
	_ = w.Close()

	_, err = Replay(dir, func(*Record) error { return nil })
	if !errors.Is(err, ErrNonMonotonic) {
		t.Fatalf("expected non-monotonic error, got %v", err)
	}
}

func TestWAL_TruncateBefore(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(Config{Dir: dir, SegmentSize: 64})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for i := 1; i <= 10; i++ {
		_ = w.Append(NewInsertRecord(uint64(i), 1))
	}
	if err := w.TruncateBefore(6); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	var first uint64
	if _, err := Replay(dir, func(rec *Record) error {
		if first == 0 {
			first = rec.Seq
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if first == 1 || first > 7 {
		t.Fatalf("expected old segments dropped and seq 7 kept, first seq is %d", first)
	}
}

func TestRecord_ValueRejectsBadPayload(t *testing.T) {
	rec := &Record{Type: RecordInsert, Seq: 1, Data: []byte{1, 2}}
	if _, err := rec.Value(); err == nil {
		t.Fatal("expected error for short payload")
	}
	rec = &Record{Type: 9, Seq: 1, Data: make([]byte, 8)}
	if _, err := rec.Value(); err == nil {
		t.Fatal("expected error for non-insert record")
	}
}
