package event

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func TestSerializers(t *testing.T) {
	in := Inserted{
		Seq:   1<<60 + 3,
		Value: -12.75,
		Time:  time.Date(2026, 10, 19, 8, 30, 0, 123, time.UTC),
	}

	for _, format := range []string{"proto", "json"} {
		t.Run(format, func(t *testing.T) {
			s, err := ForFormat(format)
			if err != nil {
				t.Fatal(err)
			}
			b, err := s.Encode(in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			out, err := s.Decode(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Seq != in.Seq || out.Value != in.Value || !out.Time.Equal(in.Time) {
				t.Fatalf("got %+v, want %+v", out, in)
			}
		})
	}
}

func TestForFormatUnknown(t *testing.T) {
	if _, err := ForFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestProtoDecodeGarbage(t *testing.T) {
	if _, err := (ProtoSerializer{}).Decode([]byte{0xff, 0x01}); err == nil {
		t.Fatal("expected error decoding garbage")
	}
}
