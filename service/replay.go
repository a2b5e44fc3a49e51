package service

import (
	"log"

	"github.com/cockroachdb/errors"

	"rbstat/domain/rbtree"
	"rbstat/infra/sequence"
	entrywal "rbstat/infra/wal/entry"
	"rbstat/snapshot"
)

/*
Restore rebuilds the tree from the newest snapshot and the insert journal.

IMPORTANT:
- This MUST run before accepting traffic
- The outbox is NOT replayed; unpublished events are still in it
*/
func Restore(
	snapshotPath string,
	walDir string,
	seqGen *sequence.Sequencer,
) (*rbtree.Tree, error) {
	tree := rbtree.New()

	snapSeq, err := snapshot.Load(snapshotPath, func(v float64) {
		tree = tree.Insert(v)
	})
	if err != nil {
		return nil, err
	}
	if snapSeq > 0 {
		log.Printf("[replay] snapshot loaded (seq = %d, values = %d)", snapSeq, tree.Len())
	}

	return ReplayFromWAL(walDir, snapSeq, tree, seqGen)
}

// ReplayFromWAL applies journaled inserts with seq > after to tree and
// resumes seqGen past everything seen.
func ReplayFromWAL(
	walDir string,
	after uint64,
	tree *rbtree.Tree,
	seqGen *sequence.Sequencer,
) (*rbtree.Tree, error) {
	applied := 0
	lastSeq, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		if rec.Seq <= after || rec.Type != entrywal.RecordInsert {
			return nil
		}
		v, err := rec.Value()
		if err != nil {
			return err
		}
		tree = tree.Insert(v)
		applied++
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "replay journal")
	}

	// Resume sequencing AFTER replay
	seqGen.Reset(max(lastSeq, after))

	log.Printf("[replay] journal replay completed (applied = %d, last seq = %d)", applied, seqGen.Current())
	return tree, nil
}
