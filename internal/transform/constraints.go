package transform

import (
	"math"

	"whiteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Per-type transform constraints, keyed by the first selected
// node's family. One entry per variant — the dispatch table is
// checked exhaustively in tests.
// ─────────────────────────────────────────────────────────────

// Anchor names one grip on the transform handle.
type Anchor string

const (
	AnchorTopLeft      Anchor = "top-left"
	AnchorTopCenter    Anchor = "top-center"
	AnchorTopRight     Anchor = "top-right"
	AnchorMiddleLeft   Anchor = "middle-left"
	AnchorMiddleRight  Anchor = "middle-right"
	AnchorBottomLeft   Anchor = "bottom-left"
	AnchorBottomCenter Anchor = "bottom-center"
	AnchorBottomRight  Anchor = "bottom-right"
)

// AllAnchors is the full grip set.
var AllAnchors = []Anchor{
	AnchorTopLeft, AnchorTopCenter, AnchorTopRight,
	AnchorMiddleLeft, AnchorMiddleRight,
	AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight,
}

// CornerAnchors is the grip set for aspect-locked elements.
var CornerAnchors = []Anchor{
	AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight,
}

// BoundBoxFunc adjusts a proposed box during an interactive resize.
type BoundBoxFunc func(old, proposed domain.Rect) domain.Rect

// Constraint describes how a family may be transformed.
type Constraint struct {
	Resizable bool
	Rotatable bool
	Anchors   []Anchor
	BoundBox  BoundBoxFunc
}

// Constraints is the per-family dispatch table.
var Constraints = map[domain.ElementType]Constraint{
	domain.ElementShape:       {Resizable: true, Rotatable: true, Anchors: AllAnchors},
	domain.ElementSticky:      {Resizable: true, Rotatable: true, Anchors: CornerAnchors, BoundBox: AspectLockBound},
	domain.ElementText:        {Resizable: true, Rotatable: true, Anchors: AllAnchors},
	domain.ElementTable:       {Resizable: true, Rotatable: false, Anchors: AllAnchors},
	domain.ElementMindmapNode: {Resizable: true, Rotatable: false, Anchors: AllAnchors},
	domain.ElementMindmapEdge: {Resizable: false, Rotatable: true},
	domain.ElementImage:       {Resizable: true, Rotatable: true, Anchors: AllAnchors},
	domain.ElementDrawing:     {Resizable: true, Rotatable: true, Anchors: AllAnchors},
	domain.ElementConnector:   {Resizable: false, Rotatable: true},
}

// ConstraintFor returns the family's constraint, defaulting to the full
// anchor set for unknown types.
func ConstraintFor(t domain.ElementType) Constraint {
	if c, ok := Constraints[t]; ok {
		return c
	}
	return Constraint{Resizable: true, Rotatable: true, Anchors: AllAnchors}
}

// AspectLockBound recomputes the opposite dimension from whichever axis
// moved furthest, keeping the original ratio and never dropping below the
// minimum size.
func AspectLockBound(old, proposed domain.Rect) domain.Rect {
	if old.Width <= 0 || old.Height <= 0 {
		return proposed
	}
	ratio := old.Width / old.Height

	dw := math.Abs(proposed.Width - old.Width)
	dh := math.Abs(proposed.Height - old.Height)
	if dw >= dh {
		proposed.Height = proposed.Width / ratio
	} else {
		proposed.Width = proposed.Height * ratio
	}

	if proposed.Width < domain.MinElementSize || proposed.Height < domain.MinElementSize {
		if ratio >= 1 {
			proposed.Height = domain.MinElementSize
			proposed.Width = proposed.Height * ratio
		} else {
			proposed.Width = domain.MinElementSize
			proposed.Height = proposed.Width / ratio
		}
	}
	return proposed
}
