package domain

// Endpoint is one end of a connector: either a literal point or a reference
// to another element's anchor. A reference is live — it resolves against the
// referenced element's current bounds every time, never a cached position.
type Endpoint struct {
	ElementID string     `json:"elementId,omitempty"`
	Side      AnchorSide `json:"side,omitempty"`
	Point     Point      `json:"point"`
}

// Attached reports whether the endpoint references an element.
func (ep Endpoint) Attached() bool {
	return ep.ElementID != ""
}

// BoundsLookup resolves an element id to its current bounding box.
type BoundsLookup func(id string) (Rect, bool)

// Resolve returns the endpoint's current position. Attached endpoints whose
// element no longer exists fall back to the literal point, so a connector
// degrades to a fixed line instead of failing.
func (ep Endpoint) Resolve(lookup BoundsLookup) Point {
	if !ep.Attached() {
		return ep.Point
	}
	r, ok := lookup(ep.ElementID)
	if !ok {
		return ep.Point
	}
	return AnchorPoint(r, ep.Side)
}
