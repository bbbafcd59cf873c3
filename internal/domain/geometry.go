package domain

import "math"

const (
	// MinElementSize and MaxElementSize bound element geometry. Out-of-range
	// dimensions are clamped, never rejected.
	MinElementSize = 8.0
	MaxElementSize = 5000.0

	// DuplicateOffset shifts a duplicated element so the copy is visible.
	DuplicateOffset = 20.0
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (a Rect) Intersects(b Rect) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// ClampSize forces a dimension into the safe range.
func ClampSize(v float64) float64 {
	if v < MinElementSize {
		return MinElementSize
	}
	if v > MaxElementSize {
		return MaxElementSize
	}
	return v
}

// ClampRect clamps both dimensions of r in place-value form.
func ClampRect(r Rect) Rect {
	r.Width = ClampSize(r.Width)
	r.Height = ClampSize(r.Height)
	return r
}

type AnchorSide string

const (
	AnchorLeft   AnchorSide = "left"
	AnchorRight  AnchorSide = "right"
	AnchorTop    AnchorSide = "top"
	AnchorBottom AnchorSide = "bottom"
	AnchorCenter AnchorSide = "center"
)

// AnchorSides is the fixed scan order for nearest-anchor search. Keeping the
// order fixed makes snap tie-breaks deterministic: the first scanned candidate
// within threshold wins on equal distance.
var AnchorSides = []AnchorSide{AnchorLeft, AnchorRight, AnchorTop, AnchorBottom, AnchorCenter}

// anchorOffsets maps a side to its fractional position on a bounding box.
var anchorOffsets = map[AnchorSide]Point{
	AnchorLeft:   {X: 0, Y: 0.5},
	AnchorRight:  {X: 1, Y: 0.5},
	AnchorTop:    {X: 0.5, Y: 0},
	AnchorBottom: {X: 0.5, Y: 1},
	AnchorCenter: {X: 0.5, Y: 0.5},
}

// AnchorPoint resolves a named anchor against a bounding box.
func AnchorPoint(r Rect, side AnchorSide) Point {
	off, ok := anchorOffsets[side]
	if !ok {
		off = anchorOffsets[AnchorCenter]
	}
	return Point{X: r.X + r.Width*off.X, Y: r.Y + r.Height*off.Y}
}
