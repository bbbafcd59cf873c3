package scene

import "whiteboard/internal/domain"

// Layer is one drawing surface in the stage's ordered layer set. Layers own
// root-level nodes in paint order.
type Layer struct {
	name      string
	stage     *Stage
	nodes     []*Node
	Listening bool
	dirty     bool

	// raster state, updated when the stage resizes
	width, height float64
	pixelRatio    float64
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// Add mounts a root node on the layer, on top of existing nodes.
func (l *Layer) Add(n *Node) {
	n.layer = l
	l.nodes = append(l.nodes, n)
	l.BatchDraw()
}

func (l *Layer) remove(n *Node) {
	for i, other := range l.nodes {
		if other == n {
			l.nodes = append(l.nodes[:i], l.nodes[i+1:]...)
			n.layer = nil
			l.BatchDraw()
			return
		}
	}
}

// Nodes returns the root nodes in paint order.
func (l *Layer) Nodes() []*Node { return l.nodes }

// SetOrder rearranges root nodes to match the given sequence. Nodes absent
// from ids keep their relative position at the front.
func (l *Layer) SetOrder(ids func(n *Node) string, order []string) {
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i + 1
	}
	ordered := append([]*Node(nil), l.nodes...)
	// insertion sort keeps this stable for unranked nodes
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && rank[ids(ordered[j-1])] > rank[ids(ordered[j])]; j-- {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}
	l.nodes = ordered
	l.BatchDraw()
}

// BatchDraw marks the layer dirty. The stage coalesces dirty layers and
// flushes them on the next frame tick, so a burst of patches within one
// event costs a single repaint.
func (l *Layer) BatchDraw() {
	if l.dirty {
		return
	}
	l.dirty = true
	if l.stage != nil {
		l.stage.scheduleFlush()
	}
}

// Size returns the layer's raster dimensions.
func (l *Layer) Size() (w, h, pixelRatio float64) {
	return l.width, l.height, l.pixelRatio
}

// hit returns the topmost listening node under p, scanning back to front.
func (l *Layer) hit(p domain.Point) *Node {
	if !l.Listening {
		return nil
	}
	for i := len(l.nodes) - 1; i >= 0; i-- {
		if found := l.nodes[i].hit(p); found != nil {
			return found
		}
	}
	return nil
}
