package rbtree

import "math"

// index addresses a node in the arena. nilIndex marks an absent child,
// parent or root.
type index int32

const nilIndex index = -1

type node struct {
	value  float64
	color  Color
	left   index
	right  index
	parent index
}

// Stats counts the structural work done by the balancing code since the
// tree was created or last released.
type Stats struct {
	Rotations uint64
	Recolors  uint64
}

// Tree is an ordered multiset of float64 values balanced as a red-black
// tree. The zero value is not ready for use; call New, or Insert on a nil
// *Tree.
type Tree struct {
	nodes []node
	root  index
	stats Stats
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{root: nilIndex}
}

// alloc appends a fresh red, childless node and returns its index.
func (t *Tree) alloc(value float64) index {
	if len(t.nodes) >= math.MaxInt32 {
		panic("rbtree: node store exhausted")
	}
	t.nodes = append(t.nodes, node{
		value:  value,
		color:  Red,
		left:   nilIndex,
		right:  nilIndex,
		parent: nilIndex,
	})
	return index(len(t.nodes) - 1)
}

func (t *Tree) empty() bool {
	return t == nil || t.root == nilIndex
}

// Len returns the number of stored values.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root reports the root's value and color. ok is false for an empty tree.
func (t *Tree) Root() (value float64, color Color, ok bool) {
	if t.empty() {
		return 0, Black, false
	}
	n := t.nodes[t.root]
	return n.value, n.color, true
}

// Stats returns the rotation and recolor counts accumulated so far.
func (t *Tree) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	return t.stats
}

// Release drops every node, children before their parent, then the root.
// The handle stays usable as an empty tree.
func (t *Tree) Release() {
	if t == nil {
		return
	}
	t.release(t.root)
	t.nodes = nil
	t.root = nilIndex
	t.stats = Stats{}
}

func (t *Tree) release(i index) {
	if i == nilIndex {
		return
	}
	n := &t.nodes[i]
	t.release(n.left)
	t.release(n.right)
	*n = node{left: nilIndex, right: nilIndex, parent: nilIndex}
}
