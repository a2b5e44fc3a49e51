package entry

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cockroachdb/errors"
)

type RecordType uint8

const (
	RecordInsert RecordType = iota + 1
)

func (t RecordType) String() string {
	switch t {
	case RecordInsert:
		return "INSERT"
	default:
		return "UNKNOWN"
	}
}

// Record is one framed journal entry.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

// NewInsertRecord journals a single inserted value. The payload is the
// big-endian IEEE-754 bit pattern of v.
func NewInsertRecord(seq uint64, v float64) *Record {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, math.Float64bits(v))
	return &Record{
		Type: RecordInsert,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}

// Value decodes the payload of an insert record.
func (r *Record) Value() (float64, error) {
	if r.Type != RecordInsert {
		return 0, errors.Newf("entry: record %d is %s, not INSERT", r.Seq, r.Type)
	}
	if len(r.Data) != 8 {
		return 0, errors.Newf("entry: record %d has %d byte payload, want 8", r.Seq, len(r.Data))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(r.Data)), nil
}
