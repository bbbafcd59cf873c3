package transform

import (
	"fmt"
	"math"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/render"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Selection & Transform Controller — mirrors the store's
// selection onto live scene nodes and funnels every gesture
// back through the store as one labeled batch.
// ─────────────────────────────────────────────────────────────

// Controller attaches the shared transform handle to the current selection.
type Controller struct {
	ctx *render.Context

	attached []string
	saved    map[string]bool // pre-attachment draggable flags
	handle   *handle

	// gesture state (resize/rotate/move via the handle)
	gestureActive bool
	startBox      domain.Rect
	startRects    map[string]domain.Rect
	constraint    Constraint

	unsubs []func()
}

// NewController wires the controller to the mount context: it follows the
// store's selection set and re-resolves nodes after reconciliation passes,
// since a selected element may not have a node yet. Dependencies arrive
// through the context, never through ambient lookup.
func NewController(ctx *render.Context) *Controller {
	c := &Controller{ctx: ctx, saved: make(map[string]bool)}

	c.unsubs = append(c.unsubs, ctx.Store.Subscribe(
		func(s *document.Store) any { return s.SelectedIDs() },
		func(slice any) {
			ids, _ := slice.([]string)
			c.Attach(ids)
		},
		document.SubscribeOptions{FireImmediately: true},
	))

	// nodes are created asynchronously relative to selection changes; a
	// pass may materialize a node we skipped, or recreate one we hold
	ctx.Ready.OnPass(func(domain.ElementType) {
		if !c.gestureActive {
			c.Attach(c.ctx.Store.SelectedIDs())
		}
	})

	return c
}

// AttachedIDs returns the ids the handle currently serves.
func (c *Controller) AttachedIDs() []string {
	return append([]string(nil), c.attached...)
}

// Attach resolves ids to live scene nodes — skipping any not reconciled
// yet — and rebuilds the handle around them. Constraints come from the
// first selected node's family.
func (c *Controller) Attach(ids []string) {
	c.Detach()

	var resolved []string
	for _, id := range ids {
		if c.ctx.Index.Lookup(id) != nil {
			resolved = append(resolved, id)
		}
	}
	if len(resolved) == 0 {
		return
	}

	c.attached = resolved
	c.constraint = c.firstConstraint(resolved)

	for _, id := range resolved {
		n := c.ctx.Index.Lookup(id)
		c.saved[id] = n.Draggable
		n.Draggable = true
	}

	c.handle = newHandle(c.ctx.Layers.Overlay, c.constraint)
	c.wireHandle()
	c.handle.layout(c.combinedBox())
}

// Detach removes the handle and restores each node's pre-attachment
// draggable flag.
func (c *Controller) Detach() {
	if c.handle != nil {
		c.handle.remove()
		c.handle = nil
	}
	for id, draggable := range c.saved {
		if n := c.ctx.Index.Lookup(id); n != nil {
			n.Draggable = draggable
		}
	}
	c.saved = make(map[string]bool)
	c.attached = nil
	c.gestureActive = false
}

// Close tears the controller down.
func (c *Controller) Close() {
	c.Detach()
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}

func (c *Controller) firstConstraint(ids []string) Constraint {
	el := c.ctx.Store.Element(ids[0])
	if el == nil {
		return ConstraintFor("")
	}
	return ConstraintFor(el.Type)
}

// combinedBox unions the attached nodes' live bounds.
func (c *Controller) combinedBox() domain.Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, id := range c.attached {
		n := c.ctx.Index.Lookup(id)
		if n == nil {
			continue
		}
		x, y := n.X, n.Y
		w, h := n.Width*n.ScaleX, n.Height*n.ScaleY
		if first {
			minX, minY, maxX, maxY = x, y, x+w, y+h
			first = false
			continue
		}
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x+w)
		maxY = math.Max(maxY, y+h)
	}
	return domain.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ── Gesture wiring ─────────────────────────────────────────

func (c *Controller) wireHandle() {
	h := c.handle

	h.outline.On(scene.EventDragStart, func(*scene.Event) { c.beginGesture() })
	h.outline.On(scene.EventDragMove, func(ev *scene.Event) { c.moveBy(ev.Delta) })
	h.outline.On(scene.EventDragEnd, func(ev *scene.Event) { c.commitMove(ev.Delta) })

	for a, grip := range h.grips {
		anchor := a
		grip.On(scene.EventDragStart, func(*scene.Event) { c.beginGesture() })
		grip.On(scene.EventDragMove, func(ev *scene.Event) { c.resizeBy(anchor, ev.Delta) })
		grip.On(scene.EventDragEnd, func(ev *scene.Event) { c.commitResize(anchor, ev.Delta) })
	}

	if h.rotater != nil {
		h.rotater.On(scene.EventDragStart, func(*scene.Event) { c.beginGesture() })
		h.rotater.On(scene.EventDragMove, func(ev *scene.Event) { c.rotateTo(ev.Position) })
		h.rotater.On(scene.EventDragEnd, func(ev *scene.Event) { c.commitRotate(ev.Position) })
	}
}

// beginGesture captures the pre-gesture geometry: phase one of the
// two-phase commit only ever mutates transient node transforms.
func (c *Controller) beginGesture() {
	c.gestureActive = true
	c.startBox = c.combinedBox()
	c.startRects = make(map[string]domain.Rect, len(c.attached))
	for _, id := range c.attached {
		if n := c.ctx.Index.Lookup(id); n != nil {
			c.startRects[id] = domain.Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
		}
	}
}

// Cancel rolls back an in-flight gesture: transient transforms reset from
// the captured geometry, nothing was written, nothing needs undoing.
func (c *Controller) Cancel() {
	if !c.gestureActive {
		return
	}
	for id, r := range c.startRects {
		if n := c.ctx.Index.Lookup(id); n != nil {
			n.SetPosition(r.X, r.Y)
			n.SetScale(1, 1)
		}
		c.ctx.Live.Moved(id)
	}
	c.gestureActive = false
	if c.handle != nil {
		c.handle.layout(c.combinedBox())
	}
}

// ── Move ───────────────────────────────────────────────────

func (c *Controller) moveBy(delta domain.Point) {
	for id, r := range c.startRects {
		if n := c.ctx.Index.Lookup(id); n != nil {
			n.SetPosition(r.X+delta.X, r.Y+delta.Y)
		}
		c.ctx.Live.Moved(id)
	}
}

func (c *Controller) commitMove(delta domain.Point) {
	defer c.endGesture()
	if math.Hypot(delta.X, delta.Y) < 1 {
		c.Cancel()
		return
	}
	c.moveBy(delta)
	c.ctx.Store.WithUndo(c.gestureLabel("Move"), func() {
		for id, r := range c.startRects {
			x := math.Round(r.X + delta.X)
			y := math.Round(r.Y + delta.Y)
			c.ctx.Store.UpdateElement(id, domain.MovePatch(x, y), document.UpdateOptions{PushHistory: true})
		}
	})
}

// ── Resize ─────────────────────────────────────────────────

// proposedBox applies the anchor delta, the per-type bound box and the
// minimum-size clamp.
func (c *Controller) proposedBox(anchor Anchor, delta domain.Point) domain.Rect {
	box := applyAnchorDelta(c.startBox, anchor, delta)
	if c.constraint.BoundBox != nil {
		box = c.constraint.BoundBox(c.startBox, box)
	}
	if box.Width < domain.MinElementSize {
		box.Width = domain.MinElementSize
	}
	if box.Height < domain.MinElementSize {
		box.Height = domain.MinElementSize
	}
	return box
}

// resizeBy is the interactive phase: nodes get a transient scale for
// immediate feedback and live-dependent visuals re-route; the store is
// untouched.
func (c *Controller) resizeBy(anchor Anchor, delta domain.Point) {
	box := c.proposedBox(anchor, delta)
	sx := box.Width / c.startBox.Width
	sy := box.Height / c.startBox.Height
	for id, r := range c.startRects {
		n := c.ctx.Index.Lookup(id)
		if n == nil {
			continue
		}
		n.SetPosition(box.X+(r.X-c.startBox.X)*sx, box.Y+(r.Y-c.startBox.Y)*sy)
		n.SetScale(sx, sy)
		c.ctx.Live.Moved(id)
	}
	if c.handle != nil {
		c.handle.layout(box)
	}
}

// commitResize is phase two: round the final geometry, reset the transient
// scale to 1 so future hit-testing and transforms stay numerically stable,
// and write one batched mutation.
func (c *Controller) commitResize(anchor Anchor, delta domain.Point) {
	defer c.endGesture()
	if math.Hypot(delta.X, delta.Y) < 1 {
		c.Cancel()
		return
	}
	box := c.proposedBox(anchor, delta)
	sx := box.Width / c.startBox.Width
	sy := box.Height / c.startBox.Height

	c.ctx.Store.WithUndo(c.gestureLabel("Resize"), func() {
		for id, r := range c.startRects {
			x := math.Round(box.X + (r.X-c.startBox.X)*sx)
			y := math.Round(box.Y + (r.Y-c.startBox.Y)*sy)
			w := math.Round(r.Width * sx)
			h := math.Round(r.Height * sy)
			c.ctx.Store.UpdateElement(id, domain.ResizePatch(x, y, w, h), document.UpdateOptions{PushHistory: true})
		}
	})
	for id := range c.startRects {
		if n := c.ctx.Index.Lookup(id); n != nil {
			n.SetScale(1, 1)
		}
		c.ctx.Live.Moved(id)
	}
}

// ── Rotate ─────────────────────────────────────────────────

func (c *Controller) angleTo(p domain.Point) float64 {
	center := c.startBox.Center()
	return math.Atan2(p.Y-center.Y, p.X-center.X)*180/math.Pi + 90
}

func (c *Controller) rotateTo(p domain.Point) {
	angle := c.angleTo(p)
	for _, id := range c.attached {
		if n := c.ctx.Index.Lookup(id); n != nil {
			n.Rotation = angle
			n.MarkDirty()
		}
	}
}

func (c *Controller) commitRotate(p domain.Point) {
	defer c.endGesture()
	angle := math.Round(c.angleTo(p))
	c.ctx.Store.WithUndo(c.gestureLabel("Rotate"), func() {
		for _, id := range c.attached {
			c.ctx.Store.UpdateElement(id, domain.Patch{Rotation: &angle}, document.UpdateOptions{PushHistory: true})
		}
	})
}

func (c *Controller) endGesture() {
	c.gestureActive = false
	if c.handle != nil {
		c.handle.layout(c.combinedBox())
	}
}

// gestureLabel names the undo step: the element type for a single
// selection, a count otherwise.
func (c *Controller) gestureLabel(verb string) string {
	if len(c.attached) == 1 {
		if el := c.ctx.Store.Element(c.attached[0]); el != nil {
			return verb + " " + el.Type.DisplayName()
		}
	}
	return fmt.Sprintf("%s %d elements", verb, len(c.attached))
}
