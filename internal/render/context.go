package render

import (
	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Renderer module contract. Modules get everything through the
// mount context — no global singletons, no ambient lookups.
// ─────────────────────────────────────────────────────────────

// Layer names, bottom to top.
const (
	LayerBackground  = "background"  // grid, never interactive
	LayerHighlighter = "highlighter" // translucent marker ink behind content
	LayerMain        = "main"        // committed, selectable elements
	LayerPreview     = "preview"     // ephemeral gesture feedback
	LayerOverlay     = "overlay"     // selection handles, guides, editors
)

// Layers hands modules the stage's drawing surfaces.
type Layers struct {
	Background  *scene.Layer
	Highlighter *scene.Layer
	Main        *scene.Layer
	Preview     *scene.Layer
	Overlay     *scene.Layer
}

// TextMeasurer estimates rendered text dimensions. Mind-map nodes size
// themselves from their text before creation.
type TextMeasurer func(text string, fontSize float64) (w, h float64)

// Context is passed to every module on mount.
type Context struct {
	Store  *document.Store
	Stage  *scene.Stage
	Layers Layers
	Index  *NodeIndex
	Ready  *ReadySignal
	Images ImageLoader
	Editor *TextEditor
	Live   *LiveRoutes

	Measure TextMeasurer

	// SelectTap is the one canonical click-to-select algorithm: plain click
	// replaces the selection, modifier click toggles membership. Every
	// module routes element taps here instead of growing its own variant.
	SelectTap func(id string, additive bool)
}

// Module reconciles one element family against its scene nodes.
type Module interface {
	Family() domain.ElementType
	Mount(ctx *Context) (dispose func())
}

// subscribeFamily wires the standard family subscription: selector filtered
// by discriminator, deep-equality cut, fire immediately, reconcile on every
// change, ready signal after each pass.
func subscribeFamily(ctx *Context, family domain.ElementType, pass func(slice []*domain.Element)) func() {
	return ctx.Store.Subscribe(
		func(s *document.Store) any { return s.ElementsOfType(family) },
		func(slice any) {
			els, _ := slice.([]*domain.Element)
			pass(els)
			ctx.Ready.Notify(family)
		},
		document.SubscribeOptions{FireImmediately: true},
	)
}
