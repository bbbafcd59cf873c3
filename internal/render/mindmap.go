package render

import (
	"math"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Mind-map renderer — auto-measured node boxes plus edges that
// re-resolve their endpoints from the current node geometry on
// every pass and on every live move. Edge coordinates are never
// cached.
// ─────────────────────────────────────────────────────────────

type mindmapNodeEntry struct {
	group *scene.Node
	box   *scene.Node
	text  *scene.Node
}

type mindmapEdgeEntry struct {
	line   *scene.Node
	fromID string
	toID   string
}

type mindmapModule struct {
	nodes map[string]*mindmapNodeEntry
	edges map[string]*mindmapEdgeEntry
}

// NewMindmapModule creates the renderer for both mind-map families: nodes
// and the edges that connect them.
func NewMindmapModule() Module {
	return &mindmapModule{
		nodes: make(map[string]*mindmapNodeEntry),
		edges: make(map[string]*mindmapEdgeEntry),
	}
}

func (m *mindmapModule) Family() domain.ElementType { return domain.ElementMindmapNode }

func (m *mindmapModule) Mount(ctx *Context) func() {
	unsubNodes := subscribeFamily(ctx, domain.ElementMindmapNode, func(slice []*domain.Element) {
		reconcile(m.nodes, slice,
			func(el *domain.Element) *mindmapNodeEntry { return m.createNode(ctx, el) },
			func(e *mindmapNodeEntry, el *domain.Element) { m.updateNode(e, el) },
			func(id string, e *mindmapNodeEntry) {
				e.group.Remove()
				ctx.Index.Unregister(id)
			},
		)
		m.rerouteAll(ctx)
	})

	unsubEdges := subscribeFamily(ctx, domain.ElementMindmapEdge, func(slice []*domain.Element) {
		reconcile(m.edges, slice,
			func(el *domain.Element) *mindmapEdgeEntry { return m.createEdge(ctx, el) },
			func(e *mindmapEdgeEntry, el *domain.Element) { m.updateEdge(ctx, e, el) },
			func(id string, e *mindmapEdgeEntry) {
				e.line.Remove()
				ctx.Index.Unregister(id)
			},
		)
	})

	ctx.Live.Register(func(movedID string) {
		for _, e := range m.edges {
			if e.fromID == movedID || e.toID == movedID {
				m.route(ctx, e)
			}
		}
	})

	return func() {
		unsubNodes()
		unsubEdges()
		for id, e := range m.nodes {
			e.group.Remove()
			ctx.Index.Unregister(id)
			delete(m.nodes, id)
		}
		for id, e := range m.edges {
			e.line.Remove()
			ctx.Index.Unregister(id)
			delete(m.edges, id)
		}
	}
}

// MeasureMindmapNode sizes a node box from its text before creation.
func MeasureMindmapNode(measure TextMeasurer, text string, fontSize float64) (w, h float64) {
	w, h = measure(text, fontSize)
	return math.Max(w, 60), math.Max(h, 32)
}

func (m *mindmapModule) createNode(ctx *Context, el *domain.Element) *mindmapNodeEntry {
	group := scene.NewGroup()
	box := scene.NewNode(scene.KindRect)
	group.Add(box)
	text := scene.NewNode(scene.KindText)
	text.Listening = false
	group.Add(text)

	e := &mindmapNodeEntry{group: group, box: box, text: text}
	m.updateNode(e, el)

	wireInteractions(ctx, group, el.ID, domain.ElementMindmapNode)
	group.On(scene.EventDoubleTap, func(ev *scene.Event) {
		m.openNodeEditor(ctx, el.ID)
	})

	ctx.Layers.Main.Add(group)
	ctx.Index.Register(el.ID, group)
	return e
}

func (m *mindmapModule) updateNode(e *mindmapNodeEntry, el *domain.Element) {
	w := domain.ClampSize(el.Width)
	h := domain.ClampSize(el.Height)
	e.group.SetPosition(el.X, el.Y)
	e.group.SetSize(w, h)
	e.box.SetSize(w, h)
	e.box.Fill = el.Style.Fill
	e.box.Stroke = el.Style.Stroke
	e.box.StrokeWidth = el.Style.StrokeWidth
	const pad = 8
	e.text.SetPosition(pad, pad)
	e.text.SetSize(w-2*pad, h-2*pad)
	if el.MindmapNode != nil {
		e.text.Text = el.MindmapNode.Text
	}
	e.text.FontSize = el.Style.FontSize
	e.text.Fill = el.Style.TextColor
	e.group.MarkDirty()
}

func (m *mindmapModule) createEdge(ctx *Context, el *domain.Element) *mindmapEdgeEntry {
	line := scene.NewNode(scene.KindLine)
	line.Listening = false
	e := &mindmapEdgeEntry{line: line}
	m.updateEdge(ctx, e, el)
	ctx.Layers.Main.Add(line)
	ctx.Index.Register(el.ID, line)
	return e
}

func (m *mindmapModule) updateEdge(ctx *Context, e *mindmapEdgeEntry, el *domain.Element) {
	if el.MindmapEdge != nil {
		e.fromID = el.MindmapEdge.FromID
		e.toID = el.MindmapEdge.ToID
	}
	e.line.Stroke = el.Style.Stroke
	e.line.StrokeWidth = el.Style.StrokeWidth
	m.route(ctx, e)
}

// route resolves the edge endpoints from the referenced nodes' live
// geometry. A missing node leaves the last points alone; the next pass
// self-heals.
func (m *mindmapModule) route(ctx *Context, e *mindmapEdgeEntry) {
	from, okFrom := liveBounds(ctx, e.fromID)
	to, okTo := liveBounds(ctx, e.toID)
	if !okFrom || !okTo {
		return
	}
	a, b := edgePoints(from, to)
	e.line.SetPosition(0, 0)
	e.line.Points = []float64{a.X, a.Y, b.X, b.Y}
	e.line.MarkDirty()
}

func (m *mindmapModule) rerouteAll(ctx *Context) {
	for _, e := range m.edges {
		m.route(ctx, e)
	}
}

func (m *mindmapModule) openNodeEditor(ctx *Context, id string) {
	el := ctx.Store.Element(id)
	e := m.nodes[id]
	if el == nil || e == nil {
		return
	}
	initial := ""
	if el.MindmapNode != nil {
		initial = el.MindmapNode.Text
	}
	style := EditStyle{Fill: el.Style.Fill, TextColor: el.Style.TextColor, FontSize: el.Style.FontSize}
	ctx.Editor.Open(id, el.Bounds(), style, initial, e.text, func(text string) {
		cur := ctx.Store.Element(id)
		if cur == nil || (cur.MindmapNode != nil && cur.MindmapNode.Text == text) {
			return
		}
		// re-measure so the box grows with its text
		w, h := MeasureMindmapNode(ctx.Measure, text, cur.Style.FontSize)
		ctx.Store.WithUndo("Edit mind-map node", func() {
			patch := domain.TextPatch(text)
			patch.Width = &w
			patch.Height = &h
			ctx.Store.UpdateElement(id, patch, document.UpdateOptions{PushHistory: true})
		})
	})
}

// edgePoints picks facing sides from the relative position of two boxes —
// vertical gaps connect bottom to top, horizontal gaps right to left.
func edgePoints(from, to domain.Rect) (domain.Point, domain.Point) {
	fc, tc := from.Center(), to.Center()
	dx, dy := tc.X-fc.X, tc.Y-fc.Y
	if math.Abs(dy) > math.Abs(dx) {
		if dy > 0 {
			return domain.AnchorPoint(from, domain.AnchorBottom), domain.AnchorPoint(to, domain.AnchorTop)
		}
		return domain.AnchorPoint(from, domain.AnchorTop), domain.AnchorPoint(to, domain.AnchorBottom)
	}
	if dx > 0 {
		return domain.AnchorPoint(from, domain.AnchorRight), domain.AnchorPoint(to, domain.AnchorLeft)
	}
	return domain.AnchorPoint(from, domain.AnchorLeft), domain.AnchorPoint(to, domain.AnchorRight)
}
