package rbtree

import (
	"errors"
	"fmt"
)

var (
	ErrOrder       = errors.New("rbtree: order violated")
	ErrRedRoot     = errors.New("rbtree: root is red")
	ErrRedRed      = errors.New("rbtree: red node has a red child")
	ErrBlackHeight = errors.New("rbtree: black height mismatch")
	ErrParentLink  = errors.New("rbtree: broken parent link")
)

// bound is one side of the value range a subtree must fall in.
type bound struct {
	value float64
	set   bool
}

// Validate checks the search order, the color invariants and the parent
// links of the whole tree. It returns nil for an empty tree.
func (t *Tree) Validate() error {
	if t.empty() {
		return nil
	}
	if t.nodes[t.root].parent != nilIndex {
		return fmt.Errorf("%w: root has parent %d", ErrParentLink, t.nodes[t.root].parent)
	}
	if t.nodes[t.root].color != Black {
		return ErrRedRoot
	}
	_, err := t.validate(t.root, bound{}, bound{})
	return err
}

// validate returns the black height below i. Values in the subtree must
// lie in [lo, hi]. Rotations can lift one of several equal values above
// another, so equal values may end up on either side.
func (t *Tree) validate(i index, lo, hi bound) (int, error) {
	if i == nilIndex {
		return 0, nil
	}
	n := &t.nodes[i]

	if lo.set && n.value < lo.value {
		return 0, fmt.Errorf("%w: %v below lower bound %v", ErrOrder, n.value, lo.value)
	}
	if hi.set && n.value > hi.value {
		return 0, fmt.Errorf("%w: %v above upper bound %v", ErrOrder, n.value, hi.value)
	}

	for _, c := range [2]index{n.left, n.right} {
		if c == nilIndex {
			continue
		}
		if t.nodes[c].parent != i {
			return 0, fmt.Errorf("%w: child %v does not point back to %v", ErrParentLink, t.nodes[c].value, n.value)
		}
		if n.color == Red && t.nodes[c].color == Red {
			return 0, fmt.Errorf("%w: %v under %v", ErrRedRed, t.nodes[c].value, n.value)
		}
	}

	lh, err := t.validate(n.left, lo, bound{value: n.value, set: true})
	if err != nil {
		return 0, err
	}
	rh, err := t.validate(n.right, bound{value: n.value, set: true}, hi)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, fmt.Errorf("%w: at %v left=%d right=%d", ErrBlackHeight, n.value, lh, rh)
	}
	if n.color == Black {
		lh++
	}
	return lh, nil
}
