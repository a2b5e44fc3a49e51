package entry

import (
	"encoding/binary"
	"io"
	"log"
	"os"

	"github.com/cockroachdb/errors"
)

var (
	ErrCRCMismatch  = errors.New("entry: crc mismatch")
	ErrNonMonotonic = errors.New("entry: non-monotonic seq")
	ErrCorrupt      = errors.New("entry: corrupt frame")
)

// maxPayloadSize bounds the length field read back from disk. Insert
// payloads are 8 bytes; anything near this size is a damaged header.
const maxPayloadSize = 1 << 20

type ReplayHandler func(*Record) error

// Replay feeds every record of every segment in dir to fn, in order.
// A record cut short at the end of a segment is treated as the end of
// that segment.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	files, err := listSegments(dir)
	if err != nil {
		return 0, err
	}

	for _, path := range files {
		lastSeq, err = replaySegment(path, lastSeq, fn)
		if err != nil {
			return lastSeq, err
		}
	}
	return lastSeq, nil
}

func replaySegment(path string, lastSeq uint64, fn ReplayHandler) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return lastSeq, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	for {
		rec, err := readRecord(f)
		if err != nil {
			if err == io.EOF {
				return lastSeq, nil
			}
			if err == io.ErrUnexpectedEOF {
				log.Printf("[replay] torn record at end of %s, ignoring", path)
				return lastSeq, nil
			}
			return lastSeq, errors.Wrapf(err, "read %s", path)
		}

		if rec.Seq <= lastSeq {
			return lastSeq, errors.Wrapf(ErrNonMonotonic, "seq %d after %d", rec.Seq, lastSeq)
		}
		lastSeq = rec.Seq

		if err := fn(rec); err != nil {
			return lastSeq, err
		}
	}
}

func readRecord(r io.Reader) (*Record, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	t := RecordType(header[0])
	seq := binary.BigEndian.Uint64(header[1:9])
	ts := binary.BigEndian.Uint64(header[9:17])
	l := binary.BigEndian.Uint32(header[17:21])

	if l > maxPayloadSize {
		return nil, errors.Wrapf(ErrCorrupt, "seq %d claims %d byte payload", seq, l)
	}

	data := make([]byte, int(l)+crcSize)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	payload := data[:l]
	crc := binary.BigEndian.Uint32(data[l:])

	if !CRC32Valid(append(header, payload...), crc) {
		return nil, errors.Wrapf(ErrCRCMismatch, "seq %d", seq)
	}

	return &Record{
		Type: t,
		Seq:  seq,
		Time: int64(ts),
		Data: payload,
	}, nil
}

// validLength returns the byte length of the leading run of complete
// frames in a segment. A frame cut short by a crash ends the run; any
// other damage is returned as an error.
func validLength(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var n int64
	for {
		rec, err := readRecord(f)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return n, nil
		}
		if err != nil {
			return n, errors.Wrapf(err, "scan %s", path)
		}
		n += int64(headerSize + len(rec.Data) + crcSize)
	}
}

// maxSeqInSegment returns the highest seq in a segment without decoding
// payloads. It is used only for truncation after a snapshot.
func maxSeqInSegment(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var max uint64
	header := make([]byte, headerSize)
	for {
		if _, err := io.ReadFull(f, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return max, nil
			}
			return max, err
		}

		if seq := binary.BigEndian.Uint64(header[1:9]); seq > max {
			max = seq
		}

		// skip payload + crc
		payloadLen := binary.BigEndian.Uint32(header[17:21])
		if _, err := f.Seek(int64(payloadLen)+crcSize, io.SeekCurrent); err != nil {
			return max, err
		}
	}
}
