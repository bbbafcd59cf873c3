package render

import (
	"whiteboard/internal/document"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Orchestrator — owns the layer set, mounts renderer modules
// and tears everything down as one unit.
// ─────────────────────────────────────────────────────────────

// Orchestrator builds the stage's layers and manages module lifecycles.
type Orchestrator struct {
	ctx       *Context
	disposers []func()
}

// Options configures orchestrator construction.
type Options struct {
	Images  ImageLoader  // nil: async stdlib decoder
	Measure TextMeasurer // nil: built-in estimator
}

// NewOrchestrator creates the five standard layers on the stage and the
// shared mount context. Modules are mounted separately via Mount.
func NewOrchestrator(store *document.Store, stage *scene.Stage, opts Options) *Orchestrator {
	background := stage.AddLayer(LayerBackground)
	background.Listening = false
	highlighter := stage.AddLayer(LayerHighlighter)
	highlighter.Listening = false
	main := stage.AddLayer(LayerMain)
	preview := stage.AddLayer(LayerPreview)
	preview.Listening = false
	overlay := stage.AddLayer(LayerOverlay)

	images := opts.Images
	if images == nil {
		images = NewAsyncImageLoader()
	}
	measure := opts.Measure
	if measure == nil {
		measure = EstimateText
	}

	ctx := &Context{
		Store: store,
		Stage: stage,
		Layers: Layers{
			Background:  background,
			Highlighter: highlighter,
			Main:        main,
			Preview:     preview,
			Overlay:     overlay,
		},
		Index:   NewNodeIndex(),
		Ready:   NewReadySignal(),
		Live:    &LiveRoutes{},
		Images:  images,
		Measure: measure,
	}
	ctx.Editor = NewTextEditor(ctx)
	ctx.SelectTap = func(id string, additive bool) {
		if additive {
			store.ToggleSelection(id)
			return
		}
		store.SetSelection([]string{id})
	}

	return &Orchestrator{ctx: ctx}
}

// Context returns the shared mount context, used by the selection controller
// and the app layer for dependency injection.
func (o *Orchestrator) Context() *Context { return o.ctx }

// DefaultModules returns one module per element family.
func DefaultModules() []Module {
	return []Module{
		NewShapeModule(),
		NewStickyModule(),
		NewTextModule(),
		NewTableModule(),
		NewMindmapModule(),
		NewImageModule(),
		NewDrawingModule(),
		NewConnectorModule(),
	}
}

// Mount mounts the modules plus the z-order and viewport passes, and returns
// a single disposer that tears the whole scene down.
func (o *Orchestrator) Mount(modules ...Module) func() {
	for _, m := range modules {
		o.disposers = append(o.disposers, m.Mount(o.ctx))
	}

	// z-order: the main layer mirrors elementOrder across all families
	o.disposers = append(o.disposers, o.ctx.Store.Subscribe(
		func(s *document.Store) any { return s.ElementOrder() },
		func(slice any) {
			order, _ := slice.([]string)
			o.ctx.Layers.Main.SetOrder(o.ctx.Index.IDOf, order)
		},
		document.SubscribeOptions{FireImmediately: true},
	))

	// viewport: keep stage and store visually identical
	o.disposers = append(o.disposers, o.ctx.Store.Subscribe(
		func(s *document.Store) any { return s.Viewport() },
		func(slice any) {
			v, _ := slice.(document.Viewport)
			o.ctx.Stage.SetViewport(v.X, v.Y, v.Scale)
		},
		document.SubscribeOptions{FireImmediately: true},
	))

	return o.Dispose
}

// Dispose unmounts every module and clears the layers.
func (o *Orchestrator) Dispose() {
	for i := len(o.disposers) - 1; i >= 0; i-- {
		o.disposers[i]()
	}
	o.disposers = nil
	for _, l := range o.ctx.Stage.Layers() {
		for _, n := range append([]*scene.Node(nil), l.Nodes()...) {
			n.Remove()
		}
	}
}
