package render

import (
	"image"
	"log"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Image renderer — decode is asynchronous and lands as its own
// incremental patch; reconciliation of other families never
// waits on it.
// ─────────────────────────────────────────────────────────────

type imageEntry struct {
	group       *scene.Node
	placeholder *scene.Node
	img         *scene.Node
	source      string
}

type imageModule struct {
	reg map[string]*imageEntry
}

// NewImageModule creates the image family renderer.
func NewImageModule() Module {
	return &imageModule{reg: make(map[string]*imageEntry)}
}

func (m *imageModule) Family() domain.ElementType { return domain.ElementImage }

func (m *imageModule) Mount(ctx *Context) func() {
	unsub := subscribeFamily(ctx, domain.ElementImage, func(slice []*domain.Element) {
		reconcile(m.reg, slice,
			func(el *domain.Element) *imageEntry { return m.create(ctx, el) },
			func(e *imageEntry, el *domain.Element) { m.update(ctx, e, el) },
			func(id string, e *imageEntry) {
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

func (m *imageModule) create(ctx *Context, el *domain.Element) *imageEntry {
	group := scene.NewGroup()

	placeholder := scene.NewNode(scene.KindRect)
	placeholder.Fill = "#e5e7eb"
	placeholder.Listening = false
	group.Add(placeholder)

	img := scene.NewNode(scene.KindImage)
	img.Visible = false
	img.Listening = false
	group.Add(img)

	e := &imageEntry{group: group, placeholder: placeholder, img: img}

	wireInteractions(ctx, group, el.ID, domain.ElementImage)
	ctx.Layers.Main.Add(group)
	ctx.Index.Register(el.ID, group)
	// registered before the first update: a synchronous loader completes
	// inside Load and must find the entry
	m.reg[el.ID] = e
	m.update(ctx, e, el)
	return e
}

func (m *imageModule) update(ctx *Context, e *imageEntry, el *domain.Element) {
	w := domain.ClampSize(el.Width)
	h := domain.ClampSize(el.Height)
	e.group.SetPosition(el.X, el.Y)
	e.group.SetSize(w, h)
	e.placeholder.SetSize(w, h)
	e.img.SetSize(w, h)

	source := ""
	if el.Image != nil {
		source = el.Image.Source
	}
	if source == e.source {
		return
	}
	e.source = source
	if source == "" {
		return
	}

	id := el.ID
	ctx.Images.Load(source, func(decoded image.Image, err error) {
		entry, ok := m.reg[id]
		if !ok || entry.source != source {
			return // element removed or source replaced while decoding
		}
		if err != nil {
			log.Printf("image %s: %v", id, err)
			return // placeholder stays; the board is not corrupted
		}
		entry.img.Image = decoded
		entry.img.Visible = true
		entry.placeholder.Visible = false
		entry.group.MarkDirty()
	})
}
