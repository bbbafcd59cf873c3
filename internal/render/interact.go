package render

import (
	"math"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// moveThreshold: a release this close to the press point commits nothing.
const moveThreshold = 1.0

// wireInteractions attaches the standard handlers to an element's root
// group: tap selects through the canonical algorithm, drag-move re-routes
// live dependents, drag-end commits one labeled move batch.
func wireInteractions(ctx *Context, group *scene.Node, id string, family domain.ElementType) {
	group.Draggable = true

	group.On(scene.EventTap, func(ev *scene.Event) {
		ctx.SelectTap(id, ev.Shift)
	})

	group.On(scene.EventDragMove, func(ev *scene.Event) {
		ctx.Live.Moved(id)
	})

	group.On(scene.EventDragEnd, func(ev *scene.Event) {
		commitMove(ctx, group, id, family, ev.Delta)
	})
}

// commitMove is phase two of the drag: round the final geometry and write
// one batched mutation. Sub-threshold movement snaps back silently.
func commitMove(ctx *Context, group *scene.Node, id string, family domain.ElementType, delta domain.Point) {
	if math.Hypot(delta.X, delta.Y) < moveThreshold {
		if el := ctx.Store.Element(id); el != nil {
			group.SetPosition(el.X, el.Y)
		}
		return
	}
	x := math.Round(group.X)
	y := math.Round(group.Y)
	ctx.Store.WithUndo("Move "+family.DisplayName(), func() {
		ctx.Store.UpdateElement(id, domain.MovePatch(x, y), document.UpdateOptions{PushHistory: true})
	})
	ctx.Live.Moved(id)
}
