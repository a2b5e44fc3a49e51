package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"rbstat/infra/event"
	"rbstat/infra/kafka"
)

const envPrefix = "RBSTAT_"

// Config holds everything cmd/server needs to wire the service.
type Config struct {
	GRPCAddr    string
	MetricsAddr string

	EntryWALDir    string
	SegmentSize    int64
	SyncEveryWrite bool

	ExitWALDir string

	SnapshotDir      string
	SnapshotInterval time.Duration

	Brokers           []string
	Topic             string
	KafkaDriver       string
	EventFormat       string
	BroadcastInterval time.Duration
}

func Default() Config {
	return Config{
		GRPCAddr:          ":50051",
		MetricsAddr:       ":9102",
		EntryWALDir:       "./wal_entry",
		SegmentSize:       2 * 1024 * 1024,
		ExitWALDir:        "./wal_exit",
		SnapshotDir:       "./snapshots",
		SnapshotInterval:  30 * time.Second,
		Topic:             "rbstat.inserts",
		KafkaDriver:       kafka.DriverKafkaGo,
		EventFormat:       "proto",
		BroadcastInterval: 250 * time.Millisecond,
	}
}

// Load starts from Default, applies RBSTAT_* environment variables, then
// command-line flags, and validates the result.
func Load(args []string) (Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("rbstat", flag.ContinueOnError)
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus listen address (empty disables)")
	fs.StringVar(&cfg.EntryWALDir, "wal-dir", cfg.EntryWALDir, "insert journal directory")
	fs.Int64Var(&cfg.SegmentSize, "segment-size", cfg.SegmentSize, "journal segment size in bytes")
	fs.BoolVar(&cfg.SyncEveryWrite, "sync", cfg.SyncEveryWrite, "fsync the journal after every insert")
	fs.StringVar(&cfg.ExitWALDir, "outbox-dir", cfg.ExitWALDir, "outbox (pebble) directory")
	fs.StringVar(&cfg.SnapshotDir, "snapshot-dir", cfg.SnapshotDir, "snapshot directory")
	fs.DurationVar(&cfg.SnapshotInterval, "snapshot-interval", cfg.SnapshotInterval, "time between snapshots")
	brokers := fs.String("brokers", strings.Join(cfg.Brokers, ","), "comma-separated Kafka brokers (empty disables publishing)")
	fs.StringVar(&cfg.Topic, "topic", cfg.Topic, "Kafka topic for insert events")
	fs.StringVar(&cfg.KafkaDriver, "kafka-driver", cfg.KafkaDriver, "kafka-go or sarama")
	fs.StringVar(&cfg.EventFormat, "event-format", cfg.EventFormat, "proto or json")
	fs.DurationVar(&cfg.BroadcastInterval, "broadcast-interval", cfg.BroadcastInterval, "time between outbox passes")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Brokers = splitList(*brokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	str("GRPC_ADDR", &c.GRPCAddr)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("WAL_DIR", &c.EntryWALDir)
	str("OUTBOX_DIR", &c.ExitWALDir)
	str("SNAPSHOT_DIR", &c.SnapshotDir)
	str("TOPIC", &c.Topic)
	str("KAFKA_DRIVER", &c.KafkaDriver)
	str("EVENT_FORMAT", &c.EventFormat)

	if v, ok := lookup(envPrefix + "BROKERS"); ok {
		c.Brokers = splitList(v)
	}
	if v, ok := lookup(envPrefix + "SEGMENT_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "%sSEGMENT_SIZE", envPrefix)
		}
		c.SegmentSize = n
	}
	if v, ok := lookup(envPrefix + "SYNC"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "%sSYNC", envPrefix)
		}
		c.SyncEveryWrite = b
	}
	for name, dst := range map[string]*time.Duration{
		"SNAPSHOT_INTERVAL":  &c.SnapshotInterval,
		"BROADCAST_INTERVAL": &c.BroadcastInterval,
	} {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", envPrefix, name)
			}
			*dst = d
		}
	}
	return nil
}

func (c Config) Validate() error {
	switch c.KafkaDriver {
	case kafka.DriverKafkaGo, kafka.DriverSarama:
	default:
		return errors.Newf("config: unknown kafka driver %q", c.KafkaDriver)
	}
	if _, err := event.ForFormat(c.EventFormat); err != nil {
		return errors.Wrap(err, "config")
	}
	if c.SegmentSize <= 0 {
		return errors.Newf("config: segment size must be positive, got %d", c.SegmentSize)
	}
	if c.SnapshotInterval <= 0 || c.BroadcastInterval <= 0 {
		return errors.New("config: intervals must be positive")
	}
	if c.GRPCAddr == "" {
		return errors.New("config: grpc address is required")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
