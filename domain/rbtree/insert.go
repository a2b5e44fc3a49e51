package rbtree

// Insert adds value to the tree and returns the handle to keep using.
// Calling it on a nil tree allocates a new one. Equal values are placed
// in the right subtree of the existing ones.
func (t *Tree) Insert(value float64) *Tree {
	if t == nil {
		t = New()
	}

	z := t.alloc(value)
	y := nilIndex
	for x := t.root; x != nilIndex; {
		y = x
		if value < t.nodes[x].value {
			x = t.nodes[x].left
		} else {
			x = t.nodes[x].right
		}
	}

	t.nodes[z].parent = y
	switch {
	case y == nilIndex:
		t.root = z
	case value < t.nodes[y].value:
		t.nodes[y].left = z
	default:
		t.nodes[y].right = z
	}

	t.root = t.fixInsert(t.root, z)
	return t
}

// fixInsert restores the red-black invariants after z was attached as a
// red leaf and returns the resulting root.
func (t *Tree) fixInsert(root, z index) index {
	for z != root && t.colorOf(t.nodes[z].parent) == Red {
		p := t.nodes[z].parent
		g := t.nodes[p].parent // a red parent is never the root

		if p == t.nodes[g].left {
			uncle := t.nodes[g].right
			if t.colorOf(uncle) == Red {
				t.setColor(p, Black)
				t.setColor(uncle, Black)
				t.setColor(g, Red)
				z = g
				continue
			}
			if z == t.nodes[p].right {
				z = p
				root = t.rotateLeft(root, z)
			}
			p = t.nodes[z].parent
			g = t.nodes[p].parent
			t.setColor(p, Black)
			t.setColor(g, Red)
			root = t.rotateRight(root, g)
		} else {
			uncle := t.nodes[g].left
			if t.colorOf(uncle) == Red {
				t.setColor(p, Black)
				t.setColor(uncle, Black)
				t.setColor(g, Red)
				z = g
				continue
			}
			if z == t.nodes[p].left {
				z = p
				root = t.rotateRight(root, z)
			}
			p = t.nodes[z].parent
			g = t.nodes[p].parent
			t.setColor(p, Black)
			t.setColor(g, Red)
			root = t.rotateLeft(root, g)
		}
	}
	t.setColor(root, Black)
	return root
}
