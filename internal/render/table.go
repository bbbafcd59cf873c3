package render

import (
	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ─────────────────────────────────────────────────────────────
// Table renderer — per-cell background rects and text, one
// custom-drawn grid overlay computed from the explicit
// column-width/row-height arrays, and transparent per-cell hit
// regions above the grid for double-click edit routing.
// ─────────────────────────────────────────────────────────────

type tableEntry struct {
	group *scene.Node
	grid  *scene.Node
	// cell nodes indexed [row][col]; rebuilt when the structure changes,
	// patched in place for plain text edits
	cellBacks [][]*scene.Node
	cellTexts [][]*scene.Node
	cellHits  [][]*scene.Node
	cols      []float64
	rows      []float64
}

type tableModule struct {
	reg map[string]*tableEntry
}

// NewTableModule creates the table family renderer.
func NewTableModule() Module {
	return &tableModule{reg: make(map[string]*tableEntry)}
}

func (m *tableModule) Family() domain.ElementType { return domain.ElementTable }

func (m *tableModule) Mount(ctx *Context) func() {
	unsub := subscribeFamily(ctx, domain.ElementTable, func(slice []*domain.Element) {
		reconcile(m.reg, slice,
			func(el *domain.Element) *tableEntry { return m.create(ctx, el) },
			func(e *tableEntry, el *domain.Element) { m.update(ctx, e, el) },
			func(id string, e *tableEntry) {
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

func (m *tableModule) create(ctx *Context, el *domain.Element) *tableEntry {
	group := scene.NewGroup()
	e := &tableEntry{group: group}

	wireInteractions(ctx, group, el.ID, domain.ElementTable)

	ctx.Layers.Main.Add(group)
	ctx.Index.Register(el.ID, group)
	m.update(ctx, e, el)
	return e
}

func (m *tableModule) update(ctx *Context, e *tableEntry, el *domain.Element) {
	e.group.SetPosition(el.X, el.Y)
	if el.Table == nil {
		return
	}
	t := el.Table
	if !sameFloats(e.cols, t.ColumnWidths) || !sameFloats(e.rows, t.RowHeights) || len(e.cellTexts) != len(t.Cells) {
		m.rebuild(ctx, e, el)
		return
	}
	// structure unchanged: patch cell texts in place, unrelated cells keep
	// their geometry untouched
	for r := range t.Cells {
		for c := range t.Cells[r] {
			if r < len(e.cellTexts) && c < len(e.cellTexts[r]) {
				node := e.cellTexts[r][c]
				if node.Text != t.Cells[r][c] {
					node.Text = t.Cells[r][c]
					node.MarkDirty()
				}
			}
		}
	}
	e.group.MarkDirty()
}

// rebuild reconstructs the cell geometry from the column/row arrays. A full
// rebuild is the baseline; text-only edits never reach here.
func (m *tableModule) rebuild(ctx *Context, e *tableEntry, el *domain.Element) {
	for _, child := range append([]*scene.Node(nil), e.group.Children()...) {
		child.Remove()
	}
	t := el.Table
	e.cols = append([]float64(nil), t.ColumnWidths...)
	e.rows = append([]float64(nil), t.RowHeights...)
	e.cellBacks = make([][]*scene.Node, len(t.RowHeights))
	e.cellTexts = make([][]*scene.Node, len(t.RowHeights))
	e.cellHits = make([][]*scene.Node, len(t.RowHeights))

	y := 0.0
	for r, rh := range t.RowHeights {
		e.cellBacks[r] = make([]*scene.Node, len(t.ColumnWidths))
		e.cellTexts[r] = make([]*scene.Node, len(t.ColumnWidths))
		e.cellHits[r] = make([]*scene.Node, len(t.ColumnWidths))
		x := 0.0
		for c, cw := range t.ColumnWidths {
			back := scene.NewNode(scene.KindRect)
			back.SetPosition(x, y)
			back.SetSize(cw, rh)
			back.Fill = el.Style.Fill
			back.Listening = false
			e.group.Add(back)
			e.cellBacks[r][c] = back

			text := scene.NewNode(scene.KindText)
			text.SetPosition(x+4, y+4)
			text.SetSize(cw-8, rh-8)
			text.FontSize = el.Style.FontSize
			text.Fill = el.Style.TextColor
			if r < len(t.Cells) && c < len(t.Cells[r]) {
				text.Text = t.Cells[r][c]
			}
			text.Listening = false
			e.group.Add(text)
			e.cellTexts[r][c] = text

			x += cw
		}
		y += rh
	}

	// single grid overlay: consecutive point pairs are individual segments
	grid := scene.NewNode(scene.KindPath)
	grid.Stroke = el.Style.Stroke
	grid.StrokeWidth = 1
	grid.Listening = false
	cols := e.cols
	rows := e.rows
	grid.Scene = func(_, _ float64) []domain.Point {
		return gridSegments(cols, rows)
	}
	totalW, totalH := sum(cols), sum(rows)
	grid.SetSize(totalW, totalH)
	e.group.SetSize(totalW, totalH)
	e.group.Add(grid)

	// transparent hit regions sit above the grid, purely for double-click
	// cell edit routing
	y = 0.0
	for r, rh := range t.RowHeights {
		x := 0.0
		for c, cw := range t.ColumnWidths {
			hit := scene.NewNode(scene.KindHitRegion)
			hit.SetPosition(x, y)
			hit.SetSize(cw, rh)
			row, col := r, c
			hit.On(scene.EventDoubleTap, func(ev *scene.Event) {
				m.openCellEditor(ctx, el.ID, row, col)
			})
			e.group.Add(hit)
			e.cellHits[r][c] = hit
			x += cw
		}
		y += rh
	}
	e.group.MarkDirty()
}

func (m *tableModule) openCellEditor(ctx *Context, id string, row, col int) {
	el := ctx.Store.Element(id)
	e := m.reg[id]
	if el == nil || e == nil || el.Table == nil {
		return
	}
	t := el.Table
	if row >= len(t.Cells) || col >= len(t.Cells[row]) {
		return
	}
	bounds := domain.Rect{
		X:      el.X + sum(t.ColumnWidths[:col]),
		Y:      el.Y + sum(t.RowHeights[:row]),
		Width:  t.ColumnWidths[col],
		Height: t.RowHeights[row],
	}
	var hidden *scene.Node
	if row < len(e.cellTexts) && col < len(e.cellTexts[row]) {
		hidden = e.cellTexts[row][col]
	}
	style := EditStyle{Fill: el.Style.Fill, TextColor: el.Style.TextColor, FontSize: el.Style.FontSize}
	ctx.Editor.Open(id, bounds, style, t.Cells[row][col], hidden, func(text string) {
		cur := ctx.Store.Element(id)
		if cur == nil || cur.Table == nil {
			return
		}
		if row < len(cur.Table.Cells) && col < len(cur.Table.Cells[row]) && cur.Table.Cells[row][col] == text {
			return
		}
		ctx.Store.WithUndo("Edit table cell", func() {
			ctx.Store.UpdateElement(id, domain.Patch{
				Cell: &domain.CellEdit{Row: row, Col: col, Text: text},
			}, document.UpdateOptions{PushHistory: true})
		})
	})
}

// gridSegments emits the grid lines as segment endpoint pairs.
func gridSegments(cols, rows []float64) []domain.Point {
	totalW, totalH := sum(cols), sum(rows)
	var pts []domain.Point
	x := 0.0
	for i := 0; i <= len(cols); i++ {
		pts = append(pts, domain.Point{X: x, Y: 0}, domain.Point{X: x, Y: totalH})
		if i < len(cols) {
			x += cols[i]
		}
	}
	y := 0.0
	for i := 0; i <= len(rows); i++ {
		pts = append(pts, domain.Point{X: 0, Y: y}, domain.Point{X: totalW, Y: y})
		if i < len(rows) {
			y += rows[i]
		}
	}
	return pts
}

func sum(vs []float64) float64 {
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total
}

func sameFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
