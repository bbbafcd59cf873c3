package mcpserver

import (
	"testing"

	"whiteboard/internal/domain"
)

func TestSnap(t *testing.T) {
	le := NewLayoutEngine()
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{9, 0},
		{10, 20},
		{29, 20},
		{30, 40},
		{-9, 0},
		{-10, -20},
	}
	for _, c := range cases {
		if got := le.snap(c.in); got != c.want {
			t.Errorf("snap(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNextPosition_EmptyBoard(t *testing.T) {
	le := NewLayoutEngine()
	x, y := le.NextPosition(nil, 160, 100)
	if x != 0 || y != 0 {
		t.Fatalf("expected origin (0, 0) on an empty board, got (%v, %v)", x, y)
	}
}

func TestNextPosition_SkipsPastOccupied(t *testing.T) {
	le := NewLayoutEngine()
	occupied := []domain.Rect{{X: 0, Y: 0, Width: 160, Height: 100}}
	x, y := le.NextPosition(occupied, 160, 100)
	if x != 200 || y != 0 {
		t.Fatalf("expected (200, 0) past the padded element, got (%v, %v)", x, y)
	}
}

func TestNextPosition_ResultNeverOverlaps(t *testing.T) {
	le := NewLayoutEngine()
	occupied := []domain.Rect{
		{X: 0, Y: 0, Width: 300, Height: 200},
		{X: 400, Y: 0, Width: 300, Height: 200},
		{X: 0, Y: 300, Width: 1500, Height: 100},
	}
	x, y := le.NextPosition(occupied, 200, 150)
	got := domain.Rect{X: x, Y: y, Width: 200, Height: 150}
	for _, occ := range occupied {
		if got.Intersects(occ) {
			t.Fatalf("placement %+v overlaps %+v", got, occ)
		}
	}
}

func TestArrangeGroup_RowLayout(t *testing.T) {
	le := NewLayoutEngine()
	rects := []domain.Rect{
		{Width: 160, Height: 100},
		{Width: 160, Height: 100},
		{Width: 160, Height: 100},
	}
	origins := le.ArrangeGroup(rects, 0, 0)
	want := []domain.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 400, Y: 0}}
	for i := range want {
		if origins[i] != want[i] {
			t.Fatalf("expected origins %v, got %v", want, origins)
		}
	}
}

func TestArrangeGroup_WrapsWideRows(t *testing.T) {
	le := NewLayoutEngine()
	rects := []domain.Rect{
		{Width: 700, Height: 300},
		{Width: 700, Height: 300},
		{Width: 700, Height: 300},
	}
	origins := le.ArrangeGroup(rects, 0, 0)
	if origins[1] != (domain.Point{X: 740, Y: 0}) {
		t.Fatalf("expected second origin (740, 0), got %+v", origins[1])
	}
	if origins[2] != (domain.Point{X: 0, Y: 340}) {
		t.Fatalf("expected third origin on a new row at (0, 340), got %+v", origins[2])
	}
}

func TestArrangeGroup_NoOverlaps(t *testing.T) {
	le := NewLayoutEngine()
	rects := []domain.Rect{
		{Width: 160, Height: 100},
		{Width: 360, Height: 180},
		{Width: 200, Height: 40},
		{Width: 240, Height: 180},
	}
	origins := le.ArrangeGroup(rects, 100, 100)
	placed := make([]domain.Rect, len(rects))
	for i, r := range rects {
		placed[i] = domain.Rect{X: origins[i].X, Y: origins[i].Y, Width: r.Width, Height: r.Height}
	}
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			if placed[i].Intersects(placed[j]) {
				t.Fatalf("arranged rects overlap: %+v and %+v", placed[i], placed[j])
			}
		}
	}
}
