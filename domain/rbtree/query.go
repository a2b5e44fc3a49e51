package rbtree

import (
	"iter"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Preorder yields (value, color) pairs root-left-right. The sequence is
// read-only and can be ranged over any number of times.
func (t *Tree) Preorder() iter.Seq2[float64, Color] {
	return func(yield func(float64, Color) bool) {
		if t.empty() {
			return
		}
		s := arraystack.New()
		s.Push(t.root)
		for !s.Empty() {
			top, _ := s.Pop()
			n := t.nodes[top.(index)]
			if !yield(n.value, n.color) {
				return
			}
			if n.right != nilIndex {
				s.Push(n.right)
			}
			if n.left != nilIndex {
				s.Push(n.left)
			}
		}
	}
}

// Inorder yields (value, color) pairs left-root-right, i.e. in
// non-decreasing value order.
func (t *Tree) Inorder() iter.Seq2[float64, Color] {
	return func(yield func(float64, Color) bool) {
		if t.empty() {
			return
		}
		s := arraystack.New()
		cur := t.root
		for cur != nilIndex || !s.Empty() {
			for cur != nilIndex {
				s.Push(cur)
				cur = t.nodes[cur].left
			}
			top, _ := s.Pop()
			n := t.nodes[top.(index)]
			if !yield(n.value, n.color) {
				return
			}
			cur = n.right
		}
	}
}

// SumOfLeaves adds up the values of childless nodes. A lone root counts
// as a leaf.
func (t *Tree) SumOfLeaves() float64 {
	if t.empty() {
		return 0
	}
	return t.sumOfLeaves(t.root)
}

func (t *Tree) sumOfLeaves(i index) float64 {
	if i == nilIndex {
		return 0
	}
	n := &t.nodes[i]
	if n.left == nilIndex && n.right == nilIndex {
		return n.value
	}
	return t.sumOfLeaves(n.left) + t.sumOfLeaves(n.right)
}

// CountAndSum returns the node count and value sum in a single pass.
func (t *Tree) CountAndSum() (int, float64) {
	if t.empty() {
		return 0, 0
	}
	return t.countAndSum(t.root)
}

func (t *Tree) countAndSum(i index) (int, float64) {
	if i == nilIndex {
		return 0, 0
	}
	n := &t.nodes[i]
	lc, ls := t.countAndSum(n.left)
	rc, rs := t.countAndSum(n.right)
	return 1 + lc + rc, n.value + ls + rs
}

// Average is the arithmetic mean of all values, 0 for an empty tree.
func (t *Tree) Average() float64 {
	count, sum := t.CountAndSum()
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Height is the number of nodes on the longest root-to-leaf path.
func (t *Tree) Height() int {
	if t.empty() {
		return 0
	}
	return t.height(t.root)
}

func (t *Tree) height(i index) int {
	if i == nilIndex {
		return 0
	}
	return 1 + max(t.height(t.nodes[i].left), t.height(t.nodes[i].right))
}
