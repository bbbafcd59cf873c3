package render

import (
	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Shape renderer — rectangles, ellipses, triangles, with an
// optional centered label kept in sync through a stored
// relative offset.
// ─────────────────────────────────────────────────────────────

type shapeEntry struct {
	group *scene.Node
	shape *scene.Node
	label *scene.Node
	// labelOffset is the label's position relative to the group origin. A
	// drag moves the group; the label follows by construction, no absolute
	// coordinates are stored anywhere.
	labelOffset domain.Point
}

type shapeModule struct {
	reg map[string]*shapeEntry
}

// NewShapeModule creates the shape family renderer.
func NewShapeModule() Module {
	return &shapeModule{reg: make(map[string]*shapeEntry)}
}

func (m *shapeModule) Family() domain.ElementType { return domain.ElementShape }

func (m *shapeModule) Mount(ctx *Context) func() {
	unsub := subscribeFamily(ctx, domain.ElementShape, func(slice []*domain.Element) {
		reconcile(m.reg, slice,
			func(el *domain.Element) *shapeEntry { return m.create(ctx, el) },
			func(e *shapeEntry, el *domain.Element) { m.update(ctx, e, el) },
			func(id string, e *shapeEntry) {
				e.group.Remove()
				ctx.Index.Unregister(id)
			},
		)
	})
	return func() {
		unsub()
		for id, e := range m.reg {
			e.group.Remove()
			ctx.Index.Unregister(id)
			delete(m.reg, id)
		}
	}
}

// triangleScene computes the triangle path from the current size, so an
// aspect change reshapes the triangle instead of distorting a fixed polygon.
func triangleScene(w, h float64) []domain.Point {
	return []domain.Point{
		{X: w / 2, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	}
}

func (m *shapeModule) create(ctx *Context, el *domain.Element) *shapeEntry {
	group := scene.NewGroup()

	var shape *scene.Node
	kind := domain.ShapeRectangle
	if el.Shape != nil {
		kind = el.Shape.Kind
	}
	switch kind {
	case domain.ShapeEllipse:
		shape = scene.NewNode(scene.KindEllipse)
	case domain.ShapeTriangle:
		shape = scene.NewNode(scene.KindPath)
		shape.Scene = triangleScene
	default:
		shape = scene.NewNode(scene.KindRect)
	}
	group.Add(shape)

	label := scene.NewNode(scene.KindText)
	label.Listening = false
	group.Add(label)

	e := &shapeEntry{group: group, shape: shape, label: label}
	m.update(ctx, e, el)

	wireInteractions(ctx, group, el.ID, domain.ElementShape)
	group.On(scene.EventDoubleTap, func(ev *scene.Event) {
		m.openLabelEditor(ctx, el.ID)
	})

	ctx.Layers.Main.Add(group)
	ctx.Index.Register(el.ID, group)
	return e
}

func (m *shapeModule) update(ctx *Context, e *shapeEntry, el *domain.Element) {
	w := domain.ClampSize(el.Width)
	h := domain.ClampSize(el.Height)
	e.group.SetPosition(el.X, el.Y)
	e.group.SetSize(w, h)
	e.group.Rotation = el.Rotation
	e.shape.SetSize(w, h)
	e.shape.Fill = el.Style.Fill
	e.shape.Stroke = el.Style.Stroke
	e.shape.StrokeWidth = el.Style.StrokeWidth

	text := ""
	if el.Shape != nil {
		text = el.Shape.Text
	}
	e.label.Text = text
	e.label.FontSize = el.Style.FontSize
	e.label.Fill = el.Style.TextColor
	if text != "" {
		tw, th := ctx.Measure(text, el.Style.FontSize)
		e.labelOffset = domain.Point{X: (w - tw) / 2, Y: (h - th) / 2}
		e.label.SetPosition(e.labelOffset.X, e.labelOffset.Y)
		e.label.SetSize(tw, th)
	}
	e.group.MarkDirty()
}

func (m *shapeModule) openLabelEditor(ctx *Context, id string) {
	el := ctx.Store.Element(id)
	e := m.reg[id]
	if el == nil || e == nil {
		return
	}
	initial := ""
	if el.Shape != nil {
		initial = el.Shape.Text
	}
	style := EditStyle{Fill: el.Style.Fill, TextColor: el.Style.TextColor, FontSize: el.Style.FontSize}
	ctx.Editor.Open(id, el.Bounds(), style, initial, e.label, func(text string) {
		if el := ctx.Store.Element(id); el == nil || (el.Shape != nil && el.Shape.Text == text) {
			return
		}
		ctx.Store.WithUndo("Edit shape text", func() {
			ctx.Store.UpdateElement(id, domain.TextPatch(text), document.UpdateOptions{PushHistory: true})
		})
	})
}
