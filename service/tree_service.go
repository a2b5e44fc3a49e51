package service

import (
	"context"
	"iter"
	"log"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"rbstat/domain/rbtree"
	"rbstat/infra/event"
	"rbstat/infra/metrics"
	"rbstat/infra/sequence"
	entrywal "rbstat/infra/wal/entry"
	exitwal "rbstat/infra/wal/exit"
)

var ErrNonFinite = errors.New("service: value must be finite")

/*
TreeService is the ONLY write entry point into the system.

Coordination between:
- domain (rbtree)
- infra (journal, outbox, metrics)
- snapshot
happens here. The tree itself has no locking; mu provides it.
*/
type TreeService struct {
	mu   sync.RWMutex
	tree *rbtree.Tree
	last rbtree.Stats

	seqGen   *sequence.Sequencer
	entryWAL *entrywal.WAL
	exitWAL  *exitwal.ExitWAL
	codec    event.Serializer
	metrics  *metrics.Metrics
}

// Entry is one visited node of a traversal.
type Entry struct {
	Value float64
	Color rbtree.Color
}

// Stats is a consistent summary of the tree.
type Stats struct {
	Count       int
	Sum         float64
	Average     float64
	SumOfLeaves float64
	Height      int
	Root        float64
	RootColor   rbtree.Color
	HasRoot     bool
	Rotations   uint64
	Recolors    uint64
	LastSeq     uint64
}

// NewTreeService wires all dependencies. exitWAL, codec and m may be nil;
// entryWAL may be nil only in tests that do not need durability.
func NewTreeService(
	tree *rbtree.Tree,
	seqGen *sequence.Sequencer,
	entryWAL *entrywal.WAL,
	exitWAL *exitwal.ExitWAL,
	codec event.Serializer,
	m *metrics.Metrics,
) *TreeService {
	if tree == nil {
		tree = rbtree.New()
	}
	if seqGen == nil {
		seqGen = sequence.New(0)
	}
	if codec == nil {
		codec = event.ProtoSerializer{}
	}
	s := &TreeService{
		tree:     tree,
		last:     tree.Stats(),
		seqGen:   seqGen,
		entryWAL: entryWAL,
		exitWAL:  exitWAL,
		codec:    codec,
		metrics:  m,
	}
	if m != nil {
		m.TrackTree(
			func() float64 { return float64(s.Len()) },
			func() float64 { return float64(s.Height()) },
		)
	}
	return s
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Insert journals value, adds it to the tree and queues an outbox event.
// It returns the assigned sequence number.
func (s *TreeService) Insert(ctx context.Context, value float64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		if s.metrics != nil {
			s.metrics.Rejected.Inc()
		}
		return 0, errors.Wrapf(ErrNonFinite, "got %v", value)
	}

	s.mu.Lock()
	seq := s.seqGen.Next()

	// 1. journal first: the tree only holds what can be replayed
	if s.entryWAL != nil {
		if err := s.entryWAL.Append(entrywal.NewInsertRecord(seq, value)); err != nil {
			s.mu.Unlock()
			return 0, errors.Wrap(err, "journal insert")
		}
	}

	// 2. apply
	s.tree = s.tree.Insert(value)
	s.observe()
	s.mu.Unlock()

	// 3. outbox (best-effort: the insert is already durable)
	s.enqueue(seq, value)
	return seq, nil
}

// observe pushes the balancing work done since the last call to metrics.
// Callers hold mu.
func (s *TreeService) observe() {
	st := s.tree.Stats()
	if s.metrics != nil {
		s.metrics.Inserts.Inc()
		s.metrics.Rotations.Add(float64(st.Rotations - s.last.Rotations))
		s.metrics.Recolors.Add(float64(st.Recolors - s.last.Recolors))
	}
	s.last = st
}

func (s *TreeService) enqueue(seq uint64, value float64) {
	if s.exitWAL == nil {
		return
	}
	payload, err := s.codec.Encode(event.Inserted{Seq: seq, Value: value, Time: time.Now()})
	if err != nil {
		log.Printf("[service] seq=%d encode event: %v", seq, err)
		return
	}
	if err := s.exitWAL.PutNew(seq, payload); err != nil {
		log.Printf("[service] seq=%d outbox put: %v", seq, err)
	}
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *TreeService) Preorder() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.tree.Preorder(), s.tree.Len())
}

func (s *TreeService) Inorder() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.tree.Inorder(), s.tree.Len())
}

func collect(seq iter.Seq2[float64, rbtree.Color], n int) []Entry {
	out := make([]Entry, 0, n)
	for v, c := range seq {
		out = append(out, Entry{Value: v, Color: c})
	}
	return out
}

func (s *TreeService) SumOfLeaves() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.SumOfLeaves()
}

func (s *TreeService) Average() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Average()
}

func (s *TreeService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

func (s *TreeService) Height() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Height()
}

func (s *TreeService) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, sum := s.tree.CountAndSum()
	root, color, ok := s.tree.Root()
	st := s.tree.Stats()
	return Stats{
		Count:       count,
		Sum:         sum,
		Average:     s.tree.Average(),
		SumOfLeaves: s.tree.SumOfLeaves(),
		Height:      s.tree.Height(),
		Root:        root,
		RootColor:   color,
		HasRoot:     ok,
		Rotations:   st.Rotations,
		Recolors:    st.Recolors,
		LastSeq:     s.seqGen.Current(),
	}
}

// Check validates the red-black invariants of the live tree.
func (s *TreeService) Check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Validate()
}

// Close releases every node. Journal and outbox are owned by the caller.
func (s *TreeService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Release()
	s.last = rbtree.Stats{}
}
