package app

import "whiteboard/internal/scene"

// drawNode is the JSON projection of a scene node sent to the frontend
// canvas on each repaint.
type drawNode struct {
	Kind        string     `json:"kind"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Width       float64    `json:"width,omitempty"`
	Height      float64    `json:"height,omitempty"`
	ScaleX      float64    `json:"scaleX,omitempty"`
	ScaleY      float64    `json:"scaleY,omitempty"`
	Rotation    float64    `json:"rotation,omitempty"`
	Opacity     float64    `json:"opacity,omitempty"`
	Fill        string     `json:"fill,omitempty"`
	Stroke      string     `json:"stroke,omitempty"`
	StrokeWidth float64    `json:"strokeWidth,omitempty"`
	Dash        []float64  `json:"dash,omitempty"`
	Text        string     `json:"text,omitempty"`
	FontSize    float64    `json:"fontSize,omitempty"`
	Points      []float64  `json:"points,omitempty"`
	Children    []drawNode `json:"children,omitempty"`
}

type drawPayload struct {
	Layer string     `json:"layer"`
	Nodes []drawNode `json:"nodes"`
}

func serializeLayer(l *scene.Layer) drawPayload {
	p := drawPayload{Layer: l.Name(), Nodes: []drawNode{}}
	for _, n := range l.Nodes() {
		if dn, ok := serializeNode(n); ok {
			p.Nodes = append(p.Nodes, dn)
		}
	}
	return p
}

func serializeNode(n *scene.Node) (drawNode, bool) {
	if !n.Visible || n.Kind() == scene.KindHitRegion {
		return drawNode{}, false
	}

	dn := drawNode{
		Kind:        kindName(n.Kind()),
		X:           n.X,
		Y:           n.Y,
		Width:       n.Width,
		Height:      n.Height,
		Rotation:    n.Rotation,
		Opacity:     n.Opacity,
		Fill:        n.Fill,
		Stroke:      n.Stroke,
		StrokeWidth: n.StrokeWidth,
		Dash:        n.Dash,
		Text:        n.Text,
		FontSize:    n.FontSize,
		Points:      n.Points,
	}
	if n.ScaleX != 1 {
		dn.ScaleX = n.ScaleX
	}
	if n.ScaleY != 1 {
		dn.ScaleY = n.ScaleY
	}

	// Path nodes carry a scene function instead of fixed points; evaluate it
	// at the current size so the frontend only ever sees polygons.
	if n.Kind() == scene.KindPath && n.Scene != nil {
		pts := n.Scene(n.Width, n.Height)
		dn.Points = make([]float64, 0, len(pts)*2)
		for _, p := range pts {
			dn.Points = append(dn.Points, p.X, p.Y)
		}
	}

	for _, child := range n.Children() {
		if c, ok := serializeNode(child); ok {
			dn.Children = append(dn.Children, c)
		}
	}
	return dn, true
}

func kindName(k scene.Kind) string {
	switch k {
	case scene.KindGroup:
		return "group"
	case scene.KindRect:
		return "rect"
	case scene.KindEllipse:
		return "ellipse"
	case scene.KindLine:
		return "line"
	case scene.KindText:
		return "text"
	case scene.KindImage:
		return "image"
	case scene.KindPath:
		return "path"
	}
	return "group"
}
