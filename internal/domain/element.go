package domain

import "time"

type ElementType string

const (
	ElementShape       ElementType = "shape"
	ElementSticky      ElementType = "sticky"
	ElementText        ElementType = "text"
	ElementTable       ElementType = "table"
	ElementMindmapNode ElementType = "mindmap-node"
	ElementMindmapEdge ElementType = "mindmap-edge"
	ElementImage       ElementType = "image"
	ElementDrawing     ElementType = "drawing"
	ElementConnector   ElementType = "connector"
)

// ElementTypes lists every variant. Dispatch tables keyed by ElementType are
// checked against this list in tests so a new variant cannot be added without
// extending them.
var ElementTypes = []ElementType{
	ElementShape, ElementSticky, ElementText, ElementTable,
	ElementMindmapNode, ElementMindmapEdge, ElementImage,
	ElementDrawing, ElementConnector,
}

type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeEllipse   ShapeKind = "ellipse"
	ShapeTriangle  ShapeKind = "triangle"
)

// Style holds the visual attributes shared by element families.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	TextColor   string  `json:"textColor,omitempty"`
}

// Element is the canonical canvas element. Type selects which payload pointer
// is set; the others stay nil.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation,omitempty"`
	Style    Style       `json:"style"`

	Shape       *ShapePayload       `json:"shape,omitempty"`
	Sticky      *StickyPayload      `json:"sticky,omitempty"`
	Text        *TextPayload        `json:"text,omitempty"`
	Table       *TablePayload       `json:"table,omitempty"`
	MindmapNode *MindmapNodePayload `json:"mindmapNode,omitempty"`
	MindmapEdge *MindmapEdgePayload `json:"mindmapEdge,omitempty"`
	Image       *ImagePayload       `json:"image,omitempty"`
	Drawing     *DrawingPayload     `json:"drawing,omitempty"`
	Connector   *ConnectorPayload   `json:"connector,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ShapePayload struct {
	Kind ShapeKind `json:"kind"`
	Text string    `json:"text,omitempty"` // optional centered label
}

type StickyPayload struct {
	Text string `json:"text"`
}

type TextPayload struct {
	Text string `json:"text"`
}

type TablePayload struct {
	ColumnWidths []float64  `json:"columnWidths"`
	RowHeights   []float64  `json:"rowHeights"`
	Cells        [][]string `json:"cells"` // rows × columns
}

type MindmapNodePayload struct {
	Text string `json:"text"`
}

type MindmapEdgePayload struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

type ImagePayload struct {
	Source string `json:"source"` // file path or data URL
}

type DrawingPayload struct {
	Points      []float64 `json:"points"` // flat x0,y0,x1,y1,...
	Highlighter bool      `json:"highlighter,omitempty"`
}

type ConnectorPayload struct {
	Start Endpoint `json:"start"`
	End   Endpoint `json:"end"`
	Label string   `json:"label,omitempty"`
}

// Bounds returns the element's axis-aligned bounding box.
func (e *Element) Bounds() Rect {
	return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// Clone returns a deep copy, so history snapshots never alias live payloads.
func (e *Element) Clone() *Element {
	c := *e
	if e.Shape != nil {
		p := *e.Shape
		c.Shape = &p
	}
	if e.Sticky != nil {
		p := *e.Sticky
		c.Sticky = &p
	}
	if e.Text != nil {
		p := *e.Text
		c.Text = &p
	}
	if e.Table != nil {
		p := TablePayload{
			ColumnWidths: append([]float64(nil), e.Table.ColumnWidths...),
			RowHeights:   append([]float64(nil), e.Table.RowHeights...),
			Cells:        make([][]string, len(e.Table.Cells)),
		}
		for i, row := range e.Table.Cells {
			p.Cells[i] = append([]string(nil), row...)
		}
		c.Table = &p
	}
	if e.MindmapNode != nil {
		p := *e.MindmapNode
		c.MindmapNode = &p
	}
	if e.MindmapEdge != nil {
		p := *e.MindmapEdge
		c.MindmapEdge = &p
	}
	if e.Image != nil {
		p := *e.Image
		c.Image = &p
	}
	if e.Drawing != nil {
		p := DrawingPayload{
			Points:      append([]float64(nil), e.Drawing.Points...),
			Highlighter: e.Drawing.Highlighter,
		}
		c.Drawing = &p
	}
	if e.Connector != nil {
		p := *e.Connector
		c.Connector = &p
	}
	return &c
}

// displayNames feed undo labels ("Move sticky note", "Resize shape").
var displayNames = map[ElementType]string{
	ElementShape:       "shape",
	ElementSticky:      "sticky note",
	ElementText:        "text",
	ElementTable:       "table",
	ElementMindmapNode: "mind-map node",
	ElementMindmapEdge: "mind-map edge",
	ElementImage:       "image",
	ElementDrawing:     "drawing",
	ElementConnector:   "connector",
}

// DisplayName returns a human label for the element type.
func (t ElementType) DisplayName() string {
	if n, ok := displayNames[t]; ok {
		return n
	}
	return string(t)
}

// Valid reports whether t is a known variant.
func (t ElementType) Valid() bool {
	_, ok := displayNames[t]
	return ok
}
