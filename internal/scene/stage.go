package scene

import (
	"math"

	"whiteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Stage — the ordered layer set plus frame-batched drawing and
// pointer dispatch. Single goroutine, cooperative: patches mark
// layers dirty, a flush on the next frame tick repaints them.
// ─────────────────────────────────────────────────────────────

// DrawFunc receives each dirty layer during a flush.
type DrawFunc func(l *Layer)

// Stage owns the drawing surfaces.
type Stage struct {
	layers []*Layer
	onDraw DrawFunc

	width, height float64
	pixelRatio    float64

	panX, panY float64
	scale      float64

	flushPending bool

	// drag session state
	dragNode   *Node // the hit node, receives the events
	dragTarget *Node // nearest draggable ancestor, follows the pointer
	dragStart  domain.Point
	dragOrigin domain.Point
	dragging   bool
}

// NewStage creates a stage of the given size.
func NewStage(width, height float64) *Stage {
	return &Stage{width: width, height: height, pixelRatio: 1, scale: 1}
}

// OnDraw sets the flush callback.
func (st *Stage) OnDraw(fn DrawFunc) { st.onDraw = fn }

// AddLayer appends a named layer on top of existing layers.
func (st *Stage) AddLayer(name string) *Layer {
	l := &Layer{
		name:       name,
		stage:      st,
		Listening:  true,
		width:      st.width,
		height:     st.height,
		pixelRatio: st.pixelRatio,
	}
	st.layers = append(st.layers, l)
	return l
}

// Layers returns the layers bottom to top.
func (st *Stage) Layers() []*Layer { return st.layers }

// Layer returns a layer by name, or nil — a missing layer is a no-op for the
// caller, never a panic.
func (st *Stage) Layer(name string) *Layer {
	for _, l := range st.layers {
		if l.name == name {
			return l
		}
	}
	return nil
}

// Resize updates stage and layer raster dimensions. Forwarded to every layer
// so raster caches stay crisp across window-size and DPR changes.
func (st *Stage) Resize(width, height, pixelRatio float64) {
	st.width, st.height = width, height
	if pixelRatio > 0 {
		st.pixelRatio = pixelRatio
	}
	for _, l := range st.layers {
		l.width, l.height = width, height
		l.pixelRatio = st.pixelRatio
		l.BatchDraw()
	}
}

// SetViewport aligns the stage with the store's pan/zoom so both stay
// visually identical.
func (st *Stage) SetViewport(panX, panY, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	st.panX, st.panY, st.scale = panX, panY, scale
	for _, l := range st.layers {
		l.BatchDraw()
	}
}

// ToWorld converts screen coordinates to world coordinates.
func (st *Stage) ToWorld(p domain.Point) domain.Point {
	return domain.Point{X: (p.X - st.panX) / st.scale, Y: (p.Y - st.panY) / st.scale}
}

// ── Frame batching ─────────────────────────────────────────

func (st *Stage) scheduleFlush() { st.flushPending = true }

// NeedsFlush reports whether any layer is dirty.
func (st *Stage) NeedsFlush() bool { return st.flushPending }

// Flush repaints every dirty layer. The app layer calls this once per frame
// tick; tests call it directly.
func (st *Stage) Flush() {
	if !st.flushPending {
		return
	}
	st.flushPending = false
	for _, l := range st.layers {
		if !l.dirty {
			continue
		}
		l.dirty = false
		if st.onDraw != nil {
			st.onDraw(l)
		}
	}
}

// ── Pointer dispatch ───────────────────────────────────────

// dragThreshold separates a tap from a drag, in world pixels.
const dragThreshold = 1.0

// hitAt returns the topmost listening node under a world point, scanning
// layers top to bottom.
func (st *Stage) hitAt(p domain.Point) *Node {
	for i := len(st.layers) - 1; i >= 0; i-- {
		if n := st.layers[i].hit(p); n != nil {
			return n
		}
	}
	return nil
}

// draggableAncestor walks up from the hit node to the node that should
// follow the pointer. Modules mark the element's root group draggable, not
// every child shape.
func draggableAncestor(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Draggable {
			return cur
		}
	}
	return n
}

// PointerDown begins a pointer session at screen coordinates.
func (st *Stage) PointerDown(screen domain.Point, shift bool) {
	p := st.ToWorld(screen)
	n := st.hitAt(p)
	st.dragNode = n
	st.dragStart = p
	st.dragging = false
	if n != nil {
		st.dragTarget = draggableAncestor(n)
		st.dragOrigin = domain.Point{X: st.dragTarget.X, Y: st.dragTarget.Y}
		if n.hasHandler(EventDragStart) {
			n.fire(&Event{Type: EventDragStart, Position: p, Shift: shift, Target: n})
		}
	}
}

// PointerMove continues the session. Once movement exceeds the drag
// threshold the target node follows the pointer (draggable nodes only) and
// drag-move handlers fire with the accumulated delta.
func (st *Stage) PointerMove(screen domain.Point) {
	if st.dragNode == nil {
		return
	}
	p := st.ToWorld(screen)
	delta := domain.Point{X: p.X - st.dragStart.X, Y: p.Y - st.dragStart.Y}
	if !st.dragging && math.Hypot(delta.X, delta.Y) < dragThreshold {
		return
	}
	st.dragging = true
	n := st.dragNode
	if st.dragTarget != nil && st.dragTarget.Draggable {
		st.dragTarget.SetPosition(st.dragOrigin.X+delta.X, st.dragOrigin.Y+delta.Y)
	}
	n.fire(&Event{Type: EventDragMove, Position: p, Delta: delta, Target: n})
}

// PointerUp ends the session: a drag fires EventDragEnd with the final
// delta, anything else is a tap. A press on empty canvas fires the tap with
// a nil target so stage-level handlers can clear selection.
func (st *Stage) PointerUp(screen domain.Point, shift bool, onEmptyTap func(p domain.Point, shift bool)) {
	p := st.ToWorld(screen)
	n := st.dragNode
	dragged := st.dragging
	st.dragNode = nil
	st.dragTarget = nil
	st.dragging = false

	if n == nil {
		if onEmptyTap != nil {
			onEmptyTap(p, shift)
		}
		return
	}
	if dragged {
		delta := domain.Point{X: p.X - st.dragStart.X, Y: p.Y - st.dragStart.Y}
		n.fire(&Event{Type: EventDragEnd, Position: p, Delta: delta, Target: n})
		return
	}
	n.fire(&Event{Type: EventTap, Position: p, Shift: shift, Target: n})
}

// CancelDrag aborts an in-flight drag (Escape). The node snaps back to its
// pre-drag position; no drag-end fires, so nothing reaches the store.
func (st *Stage) CancelDrag() {
	if st.dragTarget != nil && st.dragging && st.dragTarget.Draggable {
		st.dragTarget.SetPosition(st.dragOrigin.X, st.dragOrigin.Y)
	}
	st.dragNode = nil
	st.dragTarget = nil
	st.dragging = false
}

// DispatchDoubleTap routes a double click to the topmost node under the
// screen point.
func (st *Stage) DispatchDoubleTap(screen domain.Point) {
	p := st.ToWorld(screen)
	if n := st.hitAt(p); n != nil {
		n.fire(&Event{Type: EventDoubleTap, Position: p, Target: n})
	}
}
