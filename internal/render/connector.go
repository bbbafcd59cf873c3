package render

import (
	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Connector renderer — endpoints are literal points or live
// (element, side) references, resolved against current bounds
// on every pass and re-routed during interactive moves.
// ─────────────────────────────────────────────────────────────

// SnapThreshold is the pixel radius within which a connector gesture snaps
// to an element anchor.
const SnapThreshold = 12.0

type connectorEntry struct {
	line  *scene.Node
	label *scene.Node
	start domain.Endpoint
	end   domain.Endpoint
}

type connectorModule struct {
	reg map[string]*connectorEntry
}

// NewConnectorModule creates the connector family renderer.
func NewConnectorModule() Module {
	return &connectorModule{reg: make(map[string]*connectorEntry)}
}

func (m *connectorModule) Family() domain.ElementType { return domain.ElementConnector }

func (m *connectorModule) Mount(ctx *Context) func() {
	unsub := subscribeFamily(ctx, domain.ElementConnector, func(slice []*domain.Element) {
		reconcile(m.reg, slice,
			func(el *domain.Element) *connectorEntry { return m.create(ctx, el) },
			func(e *connectorEntry, el *domain.Element) { m.update(ctx, e, el) },
			func(id string, e *connectorEntry) {
				e.line.Remove()
				ctx.Index.Unregister(id)
			},
		)
	})

	ctx.Live.Register(func(movedID string) {
		for _, e := range m.reg {
			if e.start.ElementID == movedID || e.end.ElementID == movedID {
				m.route(ctx, e)
			}
		}
	})

	return func() {
		unsub()
		for id, e := range m.reg {
			e.line.Remove()
			ctx.Index.Unregister(id)
			delete(m.reg, id)
		}
	}
}

func (m *connectorModule) create(ctx *Context, el *domain.Element) *connectorEntry {
	line := scene.NewNode(scene.KindLine)
	label := scene.NewNode(scene.KindText)
	label.Listening = false
	line.Add(label)

	e := &connectorEntry{line: line, label: label}

	line.On(scene.EventTap, func(ev *scene.Event) {
		ctx.SelectTap(el.ID, ev.Shift)
	})

	ctx.Layers.Main.Add(line)
	ctx.Index.Register(el.ID, line)
	m.update(ctx, e, el)
	return e
}

func (m *connectorModule) update(ctx *Context, e *connectorEntry, el *domain.Element) {
	if el.Connector != nil {
		e.start = el.Connector.Start
		e.end = el.Connector.End
		e.label.Text = el.Connector.Label
	}
	e.line.Stroke = el.Style.Stroke
	e.line.StrokeWidth = el.Style.StrokeWidth
	e.label.FontSize = el.Style.FontSize
	e.label.Fill = el.Style.TextColor
	m.route(ctx, e)
}

// route resolves both endpoints against live bounds. Attached endpoints walk
// the referenced element's current box; nothing is cached, so a moved
// element drags its connectors along without any store mutation.
func (m *connectorModule) route(ctx *Context, e *connectorEntry) {
	lookup := func(id string) (domain.Rect, bool) { return liveBounds(ctx, id) }
	a := e.start.Resolve(lookup)
	b := e.end.Resolve(lookup)
	e.line.SetPosition(0, 0)
	e.line.Points = []float64{a.X, a.Y, b.X, b.Y}
	e.label.SetPosition((a.X+b.X)/2, (a.Y+b.Y)/2)
	e.line.MarkDirty()
}

// AnchorCandidate is one snap target found near a pointer.
type AnchorCandidate struct {
	ElementID string
	Side      domain.AnchorSide
	Point     domain.Point
	Distance  float64
}

// NearestAnchor scans candidate elements' resolved anchor points and returns
// the closest one within the snap threshold. Elements are scanned in paint
// order and sides in the fixed anchor order; only a strictly smaller
// distance replaces the current best, so equidistant candidates resolve
// deterministically to the first scanned.
func NearestAnchor(store *document.Store, pointer domain.Point, excludeID string) (AnchorCandidate, bool) {
	var best AnchorCandidate
	found := false
	for _, id := range store.ElementOrder() {
		if id == excludeID {
			continue
		}
		el := store.Element(id)
		if el == nil || el.Type == domain.ElementConnector || el.Type == domain.ElementMindmapEdge {
			continue
		}
		bounds := el.Bounds()
		for _, side := range domain.AnchorSides {
			pt := domain.AnchorPoint(bounds, side)
			d := domain.Distance(pointer, pt)
			if d > SnapThreshold {
				continue
			}
			if !found || d < best.Distance {
				best = AnchorCandidate{ElementID: id, Side: side, Point: pt, Distance: d}
				found = true
			}
		}
	}
	return best, found
}
