package mcpserver

import (
	"math"

	"whiteboard/internal/domain"
)

const (
	GridSize = 20.0 // matches the canvas snap grid
	Padding  = 40.0 // 2 grid cells between elements
	MaxRowW  = 1600.0
)

// LayoutEngine handles automatic placement of elements on the board so
// that tool-created elements don't overlap existing ones.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// NextPosition finds the next non-overlapping grid position for an element
// of size (newW, newH) given the occupied rects on the board.
func (le *LayoutEngine) NextPosition(occupied []domain.Rect, newW, newH float64) (float64, float64) {
	if len(occupied) == 0 {
		return 0, 0
	}

	// Scan rows top-to-bottom, columns left-to-right
	candidate := domain.Rect{Width: newW, Height: newH}
	for y := 0.0; y < 100000; y += le.gridSize {
		for x := 0.0; x < le.maxRowW; x += le.gridSize {
			candidate.X = le.snap(x)
			candidate.Y = le.snap(y)

			overlaps := false
			for _, occ := range occupied {
				// Add padding around existing elements
				padded := domain.Rect{
					X:      occ.X - le.padding,
					Y:      occ.Y - le.padding,
					Width:  occ.Width + le.padding*2,
					Height: occ.Height + le.padding*2,
				}
				if candidate.Intersects(padded) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return candidate.X, candidate.Y
			}
		}
	}

	// Fallback: place below everything
	maxY := 0.0
	for _, occ := range occupied {
		if occ.Y+occ.Height > maxY {
			maxY = occ.Y + occ.Height
		}
	}
	return 0, le.snap(maxY + le.padding)
}

// ArrangeGroup computes grid positions for a slice of element rects
// starting from (startX, startY). It returns the new origins in input
// order; sizes are untouched.
func (le *LayoutEngine) ArrangeGroup(rects []domain.Rect, startX, startY float64) []domain.Point {
	x := le.snap(startX)
	y := le.snap(startY)
	rowHeight := 0.0

	origins := make([]domain.Point, len(rects))
	for i, r := range rects {
		origins[i] = domain.Point{X: x, Y: y}

		if r.Height > rowHeight {
			rowHeight = r.Height
		}

		x += le.snap(r.Width + le.padding)

		// Wrap to next row
		if x+r.Width > le.maxRowW {
			x = le.snap(startX)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
	}

	return origins
}
