package render

import "whiteboard/internal/domain"

// LiveRoutes fans out transient geometry changes during an interactive
// gesture. Connectors and mind-map edges re-resolve their endpoints from the
// moved node's live scene geometry — the store is untouched until release.
type LiveRoutes struct {
	followers []func(movedID string)
}

// Register adds a follower invoked whenever an element moves transiently.
func (lr *LiveRoutes) Register(fn func(movedID string)) {
	lr.followers = append(lr.followers, fn)
}

// Moved notifies followers that the element's scene node moved without a
// store commit.
func (lr *LiveRoutes) Moved(id string) {
	for _, fn := range lr.followers {
		fn(id)
	}
}

// liveBounds prefers the element's current scene geometry — including any
// transient drag or resize transform — over the committed store bounds.
func liveBounds(ctx *Context, id string) (domain.Rect, bool) {
	if n := ctx.Index.Lookup(id); n != nil {
		return domain.Rect{X: n.X, Y: n.Y, Width: n.Width * n.ScaleX, Height: n.Height * n.ScaleY}, true
	}
	return ctx.Store.Bounds(id)
}
