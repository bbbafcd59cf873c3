package render

import (
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Freehand drawing renderer — a stroke is a flat coordinate
// sequence relative to the element origin. Highlighter strokes
// render behind the main content to read as marker ink.
// ─────────────────────────────────────────────────────────────

type drawingEntry struct {
	line        *scene.Node
	highlighter bool
}

type drawingModule struct {
	reg map[string]*drawingEntry
}

// NewDrawingModule creates the freehand stroke renderer.
func NewDrawingModule() Module {
	return &drawingModule{reg: make(map[string]*drawingEntry)}
}

func (m *drawingModule) Family() domain.ElementType { return domain.ElementDrawing }

func (m *drawingModule) Mount(ctx *Context) func() {
	unsub := subscribeFamily(ctx, domain.ElementDrawing, func(slice []*domain.Element) {
		reconcile(m.reg, slice,
			func(el *domain.Element) *drawingEntry { return m.create(ctx, el) },
			func(e *drawingEntry, el *domain.Element) { m.update(ctx, e, el) },
			func(id string, e *drawingEntry) {
				e.line.Remove()
				ctx.Index.Unregister(id)
			},
		)
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

func (m *drawingModule) create(ctx *Context, el *domain.Element) *drawingEntry {
	line := scene.NewNode(scene.KindLine)
	e := &drawingEntry{line: line, highlighter: isHighlighter(el)}

	if e.highlighter {
		line.Listening = false
		line.Opacity = 0.45
		ctx.Layers.Highlighter.Add(line)
	} else {
		wireInteractions(ctx, line, el.ID, domain.ElementDrawing)
		ctx.Layers.Main.Add(line)
	}
	ctx.Index.Register(el.ID, line)
	m.update(ctx, e, el)
	return e
}

func (m *drawingModule) update(ctx *Context, e *drawingEntry, el *domain.Element) {
	// a stroke that changes ink family moves layers; rebuild is cheapest
	if e.highlighter != isHighlighter(el) {
		e.line.Remove()
		ctx.Index.Unregister(el.ID)
		*e = *m.create(ctx, el)
		return
	}
	e.line.SetPosition(el.X, el.Y)
	e.line.SetSize(el.Width, el.Height)
	if el.Drawing != nil {
		e.line.Points = append([]float64(nil), el.Drawing.Points...)
	}
	e.line.Stroke = el.Style.Stroke
	e.line.StrokeWidth = el.Style.StrokeWidth
	e.line.MarkDirty()
}

func isHighlighter(el *domain.Element) bool {
	return el.Drawing != nil && el.Drawing.Highlighter
}
