package render

import (
	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// Text renderer — free-standing text elements.

type textEntry struct {
	group *scene.Node
	text  *scene.Node
}

type textModule struct {
	reg map[string]*textEntry
}

// NewTextModule creates the text family renderer.
func NewTextModule() Module {
	return &textModule{reg: make(map[string]*textEntry)}
}

func (m *textModule) Family() domain.ElementType { return domain.ElementText }

func (m *textModule) Mount(ctx *Context) func() {
	unsub := subscribeFamily(ctx, domain.ElementText, func(slice []*domain.Element) {
		reconcile(m.reg, slice,
			func(el *domain.Element) *textEntry { return m.create(ctx, el) },
			func(e *textEntry, el *domain.Element) { m.update(e, el) },
			func(id string, e *textEntry) {
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

func (m *textModule) create(ctx *Context, el *domain.Element) *textEntry {
	group := scene.NewGroup()
	text := scene.NewNode(scene.KindText)
	group.Add(text)

	e := &textEntry{group: group, text: text}
	m.update(e, el)

	wireInteractions(ctx, group, el.ID, domain.ElementText)
	group.On(scene.EventDoubleTap, func(ev *scene.Event) {
		m.openEditor(ctx, el.ID)
	})

	ctx.Layers.Main.Add(group)
	ctx.Index.Register(el.ID, group)
	return e
}

func (m *textModule) update(e *textEntry, el *domain.Element) {
	e.group.SetPosition(el.X, el.Y)
	e.group.SetSize(domain.ClampSize(el.Width), domain.ClampSize(el.Height))
	e.group.Rotation = el.Rotation
	e.text.SetSize(domain.ClampSize(el.Width), domain.ClampSize(el.Height))
	if el.Text != nil {
		e.text.Text = el.Text.Text
	}
	e.text.FontSize = el.Style.FontSize
	e.text.Fill = el.Style.TextColor
	e.group.MarkDirty()
}

func (m *textModule) openEditor(ctx *Context, id string) {
	el := ctx.Store.Element(id)
	e := m.reg[id]
	if el == nil || e == nil {
		return
	}
	initial := ""
	if el.Text != nil {
		initial = el.Text.Text
	}
	style := EditStyle{TextColor: el.Style.TextColor, FontSize: el.Style.FontSize}
	ctx.Editor.Open(id, el.Bounds(), style, initial, e.text, func(text string) {
		if cur := ctx.Store.Element(id); cur == nil || (cur.Text != nil && cur.Text.Text == text) {
			return
		}
		ctx.Store.WithUndo("Edit text", func() {
			ctx.Store.UpdateElement(id, domain.TextPatch(text), document.UpdateOptions{PushHistory: true})
		})
	})
}
