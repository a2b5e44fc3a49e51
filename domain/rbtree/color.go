package rbtree

// Color is a node's red-black color. Absent children count as Black.
type Color uint8

const (
	Red   Color = 0
	Black Color = 1
)

func (c Color) String() string {
	switch c {
	case Red:
		return "RED"
	case Black:
		return "BLACK"
	default:
		return "UNKNOWN"
	}
}

// colorOf treats an absent position as black.
func (t *Tree) colorOf(i index) Color {
	if i == nilIndex {
		return Black
	}
	return t.nodes[i].color
}

// setColor is a no-op on an absent position.
func (t *Tree) setColor(i index, c Color) {
	if i == nilIndex {
		return
	}
	n := &t.nodes[i]
	if n.color != c {
		n.color = c
		t.stats.Recolors++
	}
}
