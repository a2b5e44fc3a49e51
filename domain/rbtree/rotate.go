package rbtree

// rotateLeft turns x's right edge into a left edge: x's right child y
// takes x's place and x becomes y's left child. y must be present.
// It returns the root, which changes only when x was the root.
func (t *Tree) rotateLeft(root, x index) index {
	y := t.nodes[x].right

	t.nodes[x].right = t.nodes[y].left
	if l := t.nodes[y].left; l != nilIndex {
		t.nodes[l].parent = x
	}

	p := t.nodes[x].parent
	t.nodes[y].parent = p
	switch {
	case p == nilIndex:
		root = y
	case x == t.nodes[p].left:
		t.nodes[p].left = y
	default:
		t.nodes[p].right = y
	}

	t.nodes[y].left = x
	t.nodes[x].parent = y
	t.stats.Rotations++
	return root
}

// rotateRight is the mirror of rotateLeft around x's left child.
func (t *Tree) rotateRight(root, x index) index {
	y := t.nodes[x].left

	t.nodes[x].left = t.nodes[y].right
	if r := t.nodes[y].right; r != nilIndex {
		t.nodes[r].parent = x
	}

	p := t.nodes[x].parent
	t.nodes[y].parent = p
	switch {
	case p == nilIndex:
		root = y
	case x == t.nodes[p].right:
		t.nodes[p].right = y
	default:
		t.nodes[p].left = y
	}

	t.nodes[y].right = x
	t.nodes[x].parent = y
	t.stats.Rotations++
	return root
}
