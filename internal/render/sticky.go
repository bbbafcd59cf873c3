package render

import (
	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Sticky note renderer — background rectangle plus wrapped
// text. Double click swaps the text node for an editing
// overlay sized and colored to match.
// ─────────────────────────────────────────────────────────────

const defaultStickyFill = "#fef08a"

type stickyEntry struct {
	group *scene.Node
	back  *scene.Node
	text  *scene.Node
}

type stickyModule struct {
	reg map[string]*stickyEntry
}

// NewStickyModule creates the sticky note family renderer.
func NewStickyModule() Module {
	return &stickyModule{reg: make(map[string]*stickyEntry)}
}

func (m *stickyModule) Family() domain.ElementType { return domain.ElementSticky }

func (m *stickyModule) Mount(ctx *Context) func() {
	unsub := subscribeFamily(ctx, domain.ElementSticky, func(slice []*domain.Element) {
		reconcile(m.reg, slice,
			func(el *domain.Element) *stickyEntry { return m.create(ctx, el) },
			func(e *stickyEntry, el *domain.Element) { m.update(e, el) },
			func(id string, e *stickyEntry) {
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

func (m *stickyModule) create(ctx *Context, el *domain.Element) *stickyEntry {
	group := scene.NewGroup()

	back := scene.NewNode(scene.KindRect)
	group.Add(back)

	text := scene.NewNode(scene.KindText)
	text.Listening = false
	group.Add(text)

	e := &stickyEntry{group: group, back: back, text: text}
	m.update(e, el)

	wireInteractions(ctx, group, el.ID, domain.ElementSticky)
	group.On(scene.EventDoubleTap, func(ev *scene.Event) {
		m.openEditor(ctx, el.ID)
	})

	ctx.Layers.Main.Add(group)
	ctx.Index.Register(el.ID, group)
	return e
}

func (m *stickyModule) update(e *stickyEntry, el *domain.Element) {
	w := domain.ClampSize(el.Width)
	h := domain.ClampSize(el.Height)
	e.group.SetPosition(el.X, el.Y)
	e.group.SetSize(w, h)
	e.group.Rotation = el.Rotation
	e.back.SetSize(w, h)
	e.back.Fill = stickyFill(el)
	e.back.Stroke = el.Style.Stroke
	e.back.StrokeWidth = el.Style.StrokeWidth

	const pad = 10
	e.text.SetPosition(pad, pad)
	e.text.SetSize(w-2*pad, h-2*pad)
	if el.Sticky != nil {
		e.text.Text = el.Sticky.Text
	}
	e.text.FontSize = el.Style.FontSize
	e.text.Fill = el.Style.TextColor
	e.group.MarkDirty()
}

func stickyFill(el *domain.Element) string {
	if el.Style.Fill != "" {
		return el.Style.Fill
	}
	return defaultStickyFill
}

func (m *stickyModule) openEditor(ctx *Context, id string) {
	el := ctx.Store.Element(id)
	e := m.reg[id]
	if el == nil || e == nil {
		return
	}
	initial := ""
	if el.Sticky != nil {
		initial = el.Sticky.Text
	}
	style := EditStyle{Fill: stickyFill(el), TextColor: el.Style.TextColor, FontSize: el.Style.FontSize}
	ctx.Editor.Open(id, el.Bounds(), style, initial, e.text, func(text string) {
		if cur := ctx.Store.Element(id); cur == nil || (cur.Sticky != nil && cur.Sticky.Text == text) {
			return
		}
		ctx.Store.WithUndo("Edit sticky note", func() {
			ctx.Store.UpdateElement(id, domain.TextPatch(text), document.UpdateOptions{PushHistory: true})
		})
	})
}
