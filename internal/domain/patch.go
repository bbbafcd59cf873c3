package domain

// Patch is a partial element update. Nil fields are left untouched. Applying
// a patch returns its inverse, which is what the history log records.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Style    *Style   `json:"style,omitempty"`

	Text         *string   `json:"text,omitempty"` // sticky/text/mind-map/shape label
	Points       []float64 `json:"points,omitempty"`
	Cell         *CellEdit `json:"cell,omitempty"`
	ColumnWidths []float64 `json:"columnWidths,omitempty"`
	RowHeights   []float64 `json:"rowHeights,omitempty"`
	Start        *Endpoint `json:"start,omitempty"`
	End          *Endpoint `json:"end,omitempty"`
	Label        *string   `json:"label,omitempty"`
	Source       *string   `json:"source,omitempty"`
}

// CellEdit targets one table cell.
type CellEdit struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Text string `json:"text"`
}

// textField returns the mutable text of an element, one accessor per variant
// that carries editable text.
var textField = map[ElementType]func(*Element) *string{
	ElementSticky: func(e *Element) *string {
		if e.Sticky == nil {
			return nil
		}
		return &e.Sticky.Text
	},
	ElementText: func(e *Element) *string {
		if e.Text == nil {
			return nil
		}
		return &e.Text.Text
	},
	ElementMindmapNode: func(e *Element) *string {
		if e.MindmapNode == nil {
			return nil
		}
		return &e.MindmapNode.Text
	},
	ElementShape: func(e *Element) *string {
		if e.Shape == nil {
			return nil
		}
		return &e.Shape.Text
	},
}

// Apply mutates el with every non-nil field of p and returns the inverse
// patch. Size fields are clamped to the safe range on write.
func (p Patch) Apply(el *Element) Patch {
	var inv Patch
	if p.X != nil {
		old := el.X
		el.X = *p.X
		inv.X = &old
	}
	if p.Y != nil {
		old := el.Y
		el.Y = *p.Y
		inv.Y = &old
	}
	if p.Width != nil {
		old := el.Width
		el.Width = ClampSize(*p.Width)
		inv.Width = &old
	}
	if p.Height != nil {
		old := el.Height
		el.Height = ClampSize(*p.Height)
		inv.Height = &old
	}
	if p.Rotation != nil {
		old := el.Rotation
		el.Rotation = *p.Rotation
		inv.Rotation = &old
	}
	if p.Style != nil {
		old := el.Style
		el.Style = *p.Style
		inv.Style = &old
	}
	if p.Text != nil {
		if get, ok := textField[el.Type]; ok {
			if field := get(el); field != nil {
				old := *field
				*field = *p.Text
				inv.Text = &old
			}
		}
	}
	if p.Points != nil && el.Drawing != nil {
		// a nil previous slice is recorded as empty, otherwise the inverse
		// would read as "untouched" and the patch could not be undone
		old := nonNilFloats(el.Drawing.Points)
		el.Drawing.Points = append([]float64(nil), p.Points...)
		inv.Points = old
	}
	if p.Cell != nil && el.Table != nil {
		t := el.Table
		if p.Cell.Row >= 0 && p.Cell.Row < len(t.Cells) &&
			p.Cell.Col >= 0 && p.Cell.Col < len(t.Cells[p.Cell.Row]) {
			old := t.Cells[p.Cell.Row][p.Cell.Col]
			t.Cells[p.Cell.Row][p.Cell.Col] = p.Cell.Text
			inv.Cell = &CellEdit{Row: p.Cell.Row, Col: p.Cell.Col, Text: old}
		}
	}
	if p.ColumnWidths != nil && el.Table != nil {
		old := nonNilFloats(el.Table.ColumnWidths)
		el.Table.ColumnWidths = append([]float64(nil), p.ColumnWidths...)
		inv.ColumnWidths = old
	}
	if p.RowHeights != nil && el.Table != nil {
		old := nonNilFloats(el.Table.RowHeights)
		el.Table.RowHeights = append([]float64(nil), p.RowHeights...)
		inv.RowHeights = old
	}
	if p.Start != nil && el.Connector != nil {
		old := el.Connector.Start
		el.Connector.Start = *p.Start
		inv.Start = &old
	}
	if p.End != nil && el.Connector != nil {
		old := el.Connector.End
		el.Connector.End = *p.End
		inv.End = &old
	}
	if p.Label != nil && el.Connector != nil {
		old := el.Connector.Label
		el.Connector.Label = *p.Label
		inv.Label = &old
	}
	if p.Source != nil && el.Image != nil {
		old := el.Image.Source
		el.Image.Source = *p.Source
		inv.Source = &old
	}
	return inv
}

func nonNilFloats(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

// MovePatch builds a position patch.
func MovePatch(x, y float64) Patch {
	return Patch{X: &x, Y: &y}
}

// ResizePatch builds a geometry patch covering position and size.
func ResizePatch(x, y, w, h float64) Patch {
	return Patch{X: &x, Y: &y, Width: &w, Height: &h}
}

// TextPatch builds a text patch.
func TextPatch(text string) Patch {
	return Patch{Text: &text}
}
