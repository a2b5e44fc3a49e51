package event

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Inserted is published once per journaled insert.
type Inserted struct {
	Seq   uint64    `json:"seq"`
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

type Serializer interface {
	Encode(Inserted) ([]byte, error)
	Decode([]byte) (Inserted, error)
}

var ErrUnknownFormat = errors.New("event: unknown format")

// ForFormat returns the serializer registered under name ("proto" or
// "json").
func ForFormat(name string) (Serializer, error) {
	switch name {
	case "", "proto":
		return ProtoSerializer{}, nil
	case "json":
		return JSONSerializer{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", name)
	}
}

// ---------- JSON ----------

type JSONSerializer struct{}

func (JSONSerializer) Encode(e Inserted) ([]byte, error) {
	return json.Marshal(e)
}

func (JSONSerializer) Decode(b []byte) (Inserted, error) {
	var e Inserted
	err := json.Unmarshal(b, &e)
	return e, err
}

// ---------- Protobuf ----------

// ProtoSerializer encodes events as a google.protobuf.Struct so consumers
// need no generated code. seq travels as a decimal string because Struct
// numbers are doubles.
type ProtoSerializer struct{}

func (ProtoSerializer) Encode(e Inserted) ([]byte, error) {
	msg, err := structpb.NewStruct(map[string]any{
		"seq":   strconv.FormatUint(e.Seq, 10),
		"value": e.Value,
		"time":  e.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build event struct")
	}
	return proto.Marshal(msg)
}

func (ProtoSerializer) Decode(b []byte) (Inserted, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(b, &msg); err != nil {
		return Inserted{}, errors.Wrap(err, "unmarshal event")
	}
	fields := msg.GetFields()

	seq, err := strconv.ParseUint(fields["seq"].GetStringValue(), 10, 64)
	if err != nil {
		return Inserted{}, errors.Wrap(err, "event seq")
	}
	ts, err := time.Parse(time.RFC3339Nano, fields["time"].GetStringValue())
	if err != nil {
		return Inserted{}, errors.Wrap(err, "event time")
	}
	return Inserted{
		Seq:   seq,
		Value: fields["value"].GetNumberValue(),
		Time:  ts,
	}, nil
}
