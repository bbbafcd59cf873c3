package transform

import (
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Transform handle — the shared resize/rotate affordance on the
// overlay layer. One handle serves zero, one or many nodes.
// ─────────────────────────────────────────────────────────────

const (
	gripSize      = 8.0
	rotaterOffset = 24.0
)

// anchorPositions maps each grip to its fractional spot on the handle box.
var anchorPositions = map[Anchor]domain.Point{
	AnchorTopLeft:      {X: 0, Y: 0},
	AnchorTopCenter:    {X: 0.5, Y: 0},
	AnchorTopRight:     {X: 1, Y: 0},
	AnchorMiddleLeft:   {X: 0, Y: 0.5},
	AnchorMiddleRight:  {X: 1, Y: 0.5},
	AnchorBottomLeft:   {X: 0, Y: 1},
	AnchorBottomCenter: {X: 0.5, Y: 1},
	AnchorBottomRight:  {X: 1, Y: 1},
}

type handle struct {
	group   *scene.Node
	outline *scene.Node
	grips   map[Anchor]*scene.Node
	rotater *scene.Node
}

func newHandle(layer *scene.Layer, c Constraint) *handle {
	h := &handle{
		group: scene.NewGroup(),
		grips: make(map[Anchor]*scene.Node),
	}

	h.outline = scene.NewNode(scene.KindRect)
	h.outline.Stroke = "#4a90d9"
	h.outline.StrokeWidth = 1
	h.outline.Dash = []float64{4, 4}
	h.outline.Draggable = true
	h.group.Add(h.outline)

	if c.Resizable {
		for _, a := range c.Anchors {
			grip := scene.NewNode(scene.KindRect)
			grip.SetSize(gripSize, gripSize)
			grip.Fill = "#ffffff"
			grip.Stroke = "#4a90d9"
			grip.StrokeWidth = 1
			grip.Draggable = true
			h.group.Add(grip)
			h.grips[a] = grip
		}
	}
	if c.Rotatable {
		h.rotater = scene.NewNode(scene.KindEllipse)
		h.rotater.SetSize(gripSize, gripSize)
		h.rotater.Fill = "#4a90d9"
		h.rotater.Draggable = true
		h.group.Add(h.rotater)
	}

	layer.Add(h.group)
	return h
}

// layout positions the outline and grips around a world-space box.
func (h *handle) layout(box domain.Rect) {
	h.group.SetPosition(box.X, box.Y)
	h.outline.SetPosition(0, 0)
	h.outline.SetSize(box.Width, box.Height)
	for a, grip := range h.grips {
		f := anchorPositions[a]
		grip.SetPosition(box.Width*f.X-gripSize/2, box.Height*f.Y-gripSize/2)
	}
	if h.rotater != nil {
		h.rotater.SetPosition(box.Width/2-gripSize/2, -rotaterOffset)
	}
}

func (h *handle) remove() {
	h.group.Remove()
}

// applyAnchorDelta moves the edges controlled by an anchor by the drag
// delta, returning the proposed box.
func applyAnchorDelta(b domain.Rect, a Anchor, d domain.Point) domain.Rect {
	f := anchorPositions[a]
	switch f.X {
	case 0: // left edge
		b.X += d.X
		b.Width -= d.X
	case 1: // right edge
		b.Width += d.X
	}
	switch f.Y {
	case 0: // top edge
		b.Y += d.Y
		b.Height -= d.Y
	case 1: // bottom edge
		b.Height += d.Y
	}
	return b
}
