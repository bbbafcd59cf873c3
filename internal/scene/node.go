package scene

import "whiteboard/internal/domain"

// ─────────────────────────────────────────────────────────────
// Scene nodes — the retained, directly-drawable projection of
// store elements. Nodes are disposable: renderer modules may
// destroy and recreate them at will.
// ─────────────────────────────────────────────────────────────

type Kind int

const (
	KindGroup Kind = iota
	KindRect
	KindEllipse
	KindLine
	KindText
	KindImage
	KindPath      // drawn by an explicit scene function
	KindHitRegion // transparent, exists only to route pointer events
)

// SceneFunc computes a closed path from the node's current size. Shapes like
// triangles use this instead of fixed polygon points so an aspect change
// reshapes the geometry instead of distorting it.
type SceneFunc func(width, height float64) []domain.Point

// EventType classifies pointer events dispatched into the scene.
type EventType int

const (
	EventTap EventType = iota
	EventDoubleTap
	EventDragStart
	EventDragMove
	EventDragEnd
)

// Event is a pointer event routed to a node.
type Event struct {
	Type     EventType
	Position domain.Point // stage coordinates
	Delta    domain.Point // drag events: movement since drag start
	Shift    bool         // additive-selection modifier
	Target   *Node
}

// Handler receives events for a node.
type Handler func(ev *Event)

// Node is one retained scene object. Attributes are patched in place by
// reconciliation passes; BatchDraw on the owning layer schedules the repaint.
type Node struct {
	kind     Kind
	parent   *Node
	children []*Node
	layer    *Layer

	X, Y          float64
	Width, Height float64
	ScaleX        float64
	ScaleY        float64
	Rotation      float64

	Visible   bool
	Listening bool
	Draggable bool
	Opacity   float64

	Fill        string
	Stroke      string
	StrokeWidth float64
	Dash        []float64

	Text     string
	FontSize float64

	Points []float64 // lines and strokes: flat x0,y0,x1,y1,...
	Image  any       // decoded image handle, set asynchronously

	Scene SceneFunc // KindPath only

	handlers map[EventType][]Handler
}

// NewNode creates a node of the given kind with neutral defaults.
func NewNode(kind Kind) *Node {
	return &Node{
		kind:      kind,
		ScaleX:    1,
		ScaleY:    1,
		Visible:   true,
		Listening: true,
		Opacity:   1,
		handlers:  make(map[EventType][]Handler),
	}
}

// NewGroup creates a container node.
func NewGroup() *Node { return NewNode(KindGroup) }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Add appends a child. A child's position is relative to its parent.
func (n *Node) Add(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
	n.markDirty()
}

// Remove detaches the node from its parent or layer and drops its children.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.removeChild(n)
		n.parent = nil
		return
	}
	if n.layer != nil {
		n.layer.remove(n)
	}
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			n.markDirty()
			return
		}
	}
}

// Children returns the child list.
func (n *Node) Children() []*Node { return n.children }

// Layer returns the layer this node (or its root ancestor) is mounted on.
func (n *Node) Layer() *Layer {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root.layer
}

// On registers an event handler.
func (n *Node) On(t EventType, h Handler) {
	n.handlers[t] = append(n.handlers[t], h)
}

// Off removes all handlers for an event type.
func (n *Node) Off(t EventType) {
	delete(n.handlers, t)
}

// fire invokes the node's handlers, then bubbles to the parent group.
func (n *Node) fire(ev *Event) {
	for _, h := range n.handlers[ev.Type] {
		h(ev)
	}
	if n.parent != nil {
		n.parent.fire(ev)
	}
}

// hasHandler reports whether the node or an ancestor handles t.
func (n *Node) hasHandler(t EventType) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if len(cur.handlers[t]) > 0 {
			return true
		}
	}
	return false
}

// AbsolutePosition returns the node's stage position, composing parent
// offsets.
func (n *Node) AbsolutePosition() domain.Point {
	p := domain.Point{X: n.X, Y: n.Y}
	for cur := n.parent; cur != nil; cur = cur.parent {
		p.X += cur.X
		p.Y += cur.Y
	}
	return p
}

// SetPosition moves the node and schedules a repaint.
func (n *Node) SetPosition(x, y float64) {
	if n.X == x && n.Y == y {
		return
	}
	n.X, n.Y = x, y
	n.markDirty()
}

// SetSize resizes the node and schedules a repaint.
func (n *Node) SetSize(w, h float64) {
	if n.Width == w && n.Height == h {
		return
	}
	n.Width, n.Height = w, h
	n.markDirty()
}

// SetScale sets the transient scale factors. Interactive resizing mutates
// scale only; committed geometry resets it to 1 so hit-testing and future
// transforms stay numerically stable.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX, n.ScaleY = sx, sy
	n.markDirty()
}

// MarkDirty schedules a repaint of the owning layer.
func (n *Node) MarkDirty() { n.markDirty() }

func (n *Node) markDirty() {
	if l := n.Layer(); l != nil {
		l.BatchDraw()
	}
}

// hitBounds is the rectangle used for pointer hit-testing, scaled by the
// transient transform.
func (n *Node) hitBounds() domain.Rect {
	p := n.AbsolutePosition()
	w, h := n.Width*n.ScaleX, n.Height*n.ScaleY
	if n.kind == KindLine && len(n.Points) >= 2 {
		return lineBounds(p, n.Points)
	}
	return domain.Rect{X: p.X, Y: p.Y, Width: w, Height: h}
}

func lineBounds(origin domain.Point, pts []float64) domain.Rect {
	minX, minY := pts[0], pts[1]
	maxX, maxY := pts[0], pts[1]
	for i := 0; i+1 < len(pts); i += 2 {
		if pts[i] < minX {
			minX = pts[i]
		}
		if pts[i] > maxX {
			maxX = pts[i]
		}
		if pts[i+1] < minY {
			minY = pts[i+1]
		}
		if pts[i+1] > maxY {
			maxY = pts[i+1]
		}
	}
	const slop = 4 // lines are thin; pad the hit area
	return domain.Rect{
		X: origin.X + minX - slop, Y: origin.Y + minY - slop,
		Width: maxX - minX + 2*slop, Height: maxY - minY + 2*slop,
	}
}

// hit returns the topmost descendant (or n itself) under p that is visible
// and listening. Children are scanned back to front.
func (n *Node) hit(p domain.Point) *Node {
	if !n.Visible || !n.Listening {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if found := n.children[i].hit(p); found != nil {
			return found
		}
	}
	if n.kind == KindGroup {
		return nil
	}
	if n.hitBounds().Contains(p) {
		return n
	}
	return nil
}
