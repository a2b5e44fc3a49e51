package snapshot

import "time"

const FileName = "snapshot.bin"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Values  []float64
}
