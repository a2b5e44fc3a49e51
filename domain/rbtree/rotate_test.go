package rbtree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTree(values ...float64) *Tree {
	t := New()
	for _, v := range values {
		t = t.Insert(v)
	}
	return t
}

func inorderValues(t *Tree) []float64 {
	var out []float64
	for v := range t.Inorder() {
		out = append(out, v)
	}
	return out
}

func TestRotateLeftThenRightRestoresShape(t *testing.T) {
	tree := buildTree(50, 25, 75, 10, 30, 60, 90, 55, 65)

	for x := range tree.nodes {
		pivot := index(x)
		if tree.nodes[pivot].right == nilIndex {
			continue
		}
		before := slices.Clone(tree.nodes)
		rootBefore := tree.root
		order := inorderValues(tree)

		root := tree.rotateLeft(tree.root, pivot)
		tree.root = root
		require.Equal(t, order, inorderValues(tree), "left rotation around %v reordered values", tree.nodes[pivot].value)

		up := tree.nodes[pivot].parent
		tree.root = tree.rotateRight(tree.root, up)

		require.Equal(t, rootBefore, tree.root)
		require.Equal(t, before, tree.nodes)
	}
}

func TestRotateRightThenLeftRestoresShape(t *testing.T) {
	tree := buildTree(50, 25, 75, 10, 30, 60, 90, 5, 27)

	for x := range tree.nodes {
		pivot := index(x)
		if tree.nodes[pivot].left == nilIndex {
			continue
		}
		before := slices.Clone(tree.nodes)
		rootBefore := tree.root
		order := inorderValues(tree)

		tree.root = tree.rotateRight(tree.root, pivot)
		require.Equal(t, order, inorderValues(tree))

		up := tree.nodes[pivot].parent
		tree.root = tree.rotateLeft(tree.root, up)

		require.Equal(t, rootBefore, tree.root)
		require.Equal(t, before, tree.nodes)
	}
}

func TestRotateAroundRootMovesRoot(t *testing.T) {
	tree := buildTree(2, 1, 3)
	oldRoot := tree.root
	right := tree.nodes[oldRoot].right

	root := tree.rotateLeft(tree.root, oldRoot)
	require.Equal(t, right, root)
	require.Equal(t, nilIndex, tree.nodes[root].parent)
	require.Equal(t, oldRoot, tree.nodes[root].left)
	require.Equal(t, root, tree.nodes[oldRoot].parent)
}

func TestRotateBelowRootKeepsRoot(t *testing.T) {
	tree := buildTree(20, 10, 30, 25, 35)
	r := tree.nodes[tree.root].right

	root := tree.rotateLeft(tree.root, r)
	require.Equal(t, tree.root, root)
	require.Equal(t, 35.0, tree.nodes[tree.nodes[root].right].value)
}

func TestDuplicateGoesRight(t *testing.T) {
	tree := buildTree(5, 5)
	root := tree.nodes[tree.root]

	require.Equal(t, nilIndex, root.left)
	require.NotEqual(t, nilIndex, root.right)
	require.Equal(t, 5.0, tree.nodes[root.right].value)
	require.Equal(t, Red, tree.nodes[root.right].color)
}

func TestColorAccessorsTreatAbsentAsBlack(t *testing.T) {
	tree := buildTree(1)

	require.Equal(t, Black, tree.colorOf(nilIndex))
	tree.setColor(nilIndex, Red)
	require.Equal(t, Black, tree.colorOf(nilIndex))

	tree.setColor(tree.root, Red)
	require.Equal(t, Red, tree.colorOf(tree.root))
}

func TestNodesStartRed(t *testing.T) {
	tree := New()
	i := tree.alloc(3)
	require.Equal(t, Red, tree.nodes[i].color)
	require.Equal(t, nilIndex, tree.nodes[i].left)
	require.Equal(t, nilIndex, tree.nodes[i].right)
	require.Equal(t, nilIndex, tree.nodes[i].parent)
}

func TestValidateDetectsViolations(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *Tree)
		want    error
	}{
		{
			name:    "red root",
			corrupt: func(t *Tree) { t.nodes[t.root].color = Red },
			want:    ErrRedRoot,
		},
		{
			name: "red red",
			corrupt: func(t *Tree) {
				l := t.nodes[t.root].left
				t.nodes[l].color = Red
				t.nodes[t.nodes[l].left].color = Red
			},
			want: ErrRedRed,
		},
		{
			name: "black height",
			corrupt: func(t *Tree) {
				l := t.nodes[t.root].left
				t.nodes[t.nodes[l].left].color = Black
			},
			want: ErrBlackHeight,
		},
		{
			name: "order",
			corrupt: func(t *Tree) {
				l := t.nodes[t.root].left
				t.nodes[l].value = 1000
			},
			want: ErrOrder,
		},
		{
			name: "parent link",
			corrupt: func(t *Tree) {
				r := t.nodes[t.root].right
				t.nodes[r].parent = r
			},
			want: ErrParentLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 20B (10B (5R, 15R), 30B)
			tree := buildTree(20, 10, 30, 5, 15)
			require.NoError(t, tree.Validate())

			tt.corrupt(tree)
			require.ErrorIs(t, tree.Validate(), tt.want)
		})
	}
}

func TestFixInsertCountsRecolors(t *testing.T) {
	tree := buildTree(10, 20, 30, 40)
	require.Equal(t, uint64(1), tree.stats.Rotations)
	require.Positive(t, tree.stats.Recolors)
}
