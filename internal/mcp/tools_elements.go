package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
)

func (s *Server) registerElementTools() {
	// ── create_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_element",
		mcp.WithDescription("Create an element on the board. Position is auto-calculated if not provided."),
		mcp.WithString("type",
			mcp.Description("Element type: shape, sticky, text, table, mindmap-node, image, drawing"),
			mcp.Required(),
		),
		mcp.WithString("kind", mcp.Description("Shape kind for type=shape: rectangle, ellipse, triangle (default rectangle)")),
		mcp.WithString("text", mcp.Description("Initial text content (optional)")),
		mcp.WithString("source", mcp.Description("Image file path or data URL for type=image")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (optional, type default)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, type default)")),
		mcp.WithNumber("columns", mcp.Description("Column count for type=table (default 3)")),
		mcp.WithNumber("rows", mcp.Description("Row count for type=table (default 3)")),
	), s.handleCreateElement)

	// ── list_elements ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List the board's elements in paint order, optionally filtered by type"),
		mcp.WithString("type", mcp.Description("Filter by element type (optional)")),
	), s.handleListElements)

	// ── update_element_text ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_element_text",
		mcp.WithDescription("Replace the text of a shape label, sticky note, text element or mind-map node"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("text", mcp.Description("New text"), mcp.Required()),
	), s.handleUpdateElementText)

	// ── move_element ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move an element to a new position"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveElement)

	// ── resize_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_element",
		mcp.WithDescription("Resize an element. Connectors and mind-map edges derive their geometry and cannot be resized."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height"), mcp.Required()),
	), s.handleResizeElement)

	// ── batch_move_elements ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("batch_move_elements",
		mcp.WithDescription("Move multiple elements by a relative offset as one undo step"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical offset"), mcp.Required()),
	), s.handleBatchMoveElements)

	// ── delete_elements ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_elements",
		mcp.WithDescription("Delete elements from the board as one undo step"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
	), s.handleDeleteElements)

	// ── duplicate_element ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_element",
		mcp.WithDescription("Duplicate an element with a small offset and select the copy"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
	), s.handleDuplicateElement)

	// ── reorder_element ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_element",
		mcp.WithDescription("Move an element to the front or back of the paint order"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("placement", mcp.Description("front or back"), mcp.Required()),
	), s.handleReorderElement)

	// ── arrange_elements ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_elements",
		mcp.WithDescription("Auto-arrange elements in a grid layout as one undo step"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs (optional, defaults to all)")),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 0)")),
	), s.handleArrangeElements)

	// ── select_elements ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_elements",
		mcp.WithDescription("Set the selection so the transform handles attach to the given elements. Pass an empty list to clear."),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs")),
	), s.handleSelectElements)
}

// defaultSizes gives each creatable family a sensible footprint.
var defaultSizes = map[domain.ElementType][2]float64{
	domain.ElementShape:       {160, 100},
	domain.ElementSticky:      {180, 180},
	domain.ElementText:        {200, 40},
	domain.ElementTable:       {360, 180},
	domain.ElementMindmapNode: {120, 48},
	domain.ElementImage:       {240, 180},
	domain.ElementDrawing:     {200, 200},
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleCreateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	elType := domain.ElementType(getString(args, "type", ""))
	if !elType.Valid() {
		return nil, fmt.Errorf("unknown element type %q", args["type"])
	}
	if elType == domain.ElementConnector || elType == domain.ElementMindmapEdge {
		return nil, fmt.Errorf("%s elements are created with the connect tools", elType)
	}

	defaults := defaultSizes[elType]
	w := getFloat(args, "width", defaults[0])
	h := getFloat(args, "height", defaults[1])

	// Auto-layout if position not provided
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if !hasX || !hasY {
		var occupied []domain.Rect
		for _, el := range s.allElements() {
			occupied = append(occupied, el.Bounds())
		}
		x, y = s.layout.NextPosition(occupied, w, h)
	}

	el := &domain.Element{Type: elType, X: x, Y: y, Width: w, Height: h}
	text := getString(args, "text", "")
	switch elType {
	case domain.ElementShape:
		kind := domain.ShapeKind(getString(args, "kind", string(domain.ShapeRectangle)))
		el.Shape = &domain.ShapePayload{Kind: kind, Text: text}
	case domain.ElementSticky:
		el.Sticky = &domain.StickyPayload{Text: text}
	case domain.ElementText:
		el.Text = &domain.TextPayload{Text: text}
	case domain.ElementTable:
		cols := int(getFloat(args, "columns", 3))
		rows := int(getFloat(args, "rows", 3))
		el.Table = emptyTable(cols, rows, w, h)
	case domain.ElementMindmapNode:
		el.MindmapNode = &domain.MindmapNodePayload{Text: text}
	case domain.ElementImage:
		source := getString(args, "source", "")
		if source == "" {
			return nil, fmt.Errorf("source is required for image elements")
		}
		el.Image = &domain.ImagePayload{Source: source}
	case domain.ElementDrawing:
		el.Drawing = &domain.DrawingPayload{}
	}

	id := s.store.AddElement(el, document.AddOptions{Select: true, PushHistory: true})

	s.emitBoardChanged(ctx)
	return jsonResult(s.store.Element(id))
}

func emptyTable(cols, rows int, w, h float64) *domain.TablePayload {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	t := &domain.TablePayload{
		ColumnWidths: make([]float64, cols),
		RowHeights:   make([]float64, rows),
		Cells:        make([][]string, rows),
	}
	for c := range t.ColumnWidths {
		t.ColumnWidths[c] = w / float64(cols)
	}
	for r := range t.RowHeights {
		t.RowHeights[r] = h / float64(rows)
		t.Cells[r] = make([]string, cols)
	}
	return t
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := getString(req.GetArguments(), "type", "")

	var summaries []elementSummary
	for _, el := range s.allElements() {
		if filter != "" && string(el.Type) != filter {
			continue
		}
		summaries = append(summaries, summarizeElement(el))
	}
	if summaries == nil {
		summaries = []elementSummary{}
	}
	return jsonResult(summaries)
}

func (s *Server) handleUpdateElementText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	el, err := s.getElementForTool(args, "elementId")
	if err != nil {
		return nil, err
	}

	text, _ := args["text"].(string)
	s.store.UpdateElement(el.ID, domain.TextPatch(text), document.UpdateOptions{PushHistory: true})

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Element %s text updated", el.ID)), nil
}

func (s *Server) handleMoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	el, err := s.getElementForTool(args, "elementId")
	if err != nil {
		return nil, err
	}

	x := getFloat(args, "x", el.X)
	y := getFloat(args, "y", el.Y)
	s.store.UpdateElement(el.ID, domain.MovePatch(x, y), document.UpdateOptions{PushHistory: true})

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Element %s moved to (%.0f, %.0f)", el.ID, x, y)), nil
}

func (s *Server) handleResizeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	el, err := s.getElementForTool(args, "elementId")
	if err != nil {
		return nil, err
	}
	if el.Type == domain.ElementConnector || el.Type == domain.ElementMindmapEdge {
		return nil, fmt.Errorf("%s elements cannot be resized", el.Type)
	}

	w := getFloat(args, "width", el.Width)
	h := getFloat(args, "height", el.Height)
	s.store.UpdateElement(el.ID, domain.ResizePatch(el.X, el.Y, w, h), document.UpdateOptions{PushHistory: true})

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Element %s resized to (%.0f × %.0f)", el.ID, w, h)), nil
}

func (s *Server) handleBatchMoveElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids := splitIDs(getString(args, "elementIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("elementIds is required")
	}
	dx := getFloat(args, "dx", 0)
	dy := getFloat(args, "dy", 0)

	moved := 0
	s.store.WithUndo(fmt.Sprintf("Move %d elements", len(ids)), func() {
		for _, id := range ids {
			el := s.store.Element(id)
			if el == nil {
				continue
			}
			s.store.UpdateElement(id, domain.MovePatch(el.X+dx, el.Y+dy), document.UpdateOptions{PushHistory: true})
			moved++
		}
	})

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Moved %d elements by (%.0f, %.0f)", moved, dx, dy)), nil
}

func (s *Server) handleDeleteElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := splitIDs(getString(req.GetArguments(), "elementIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("elementIds is required")
	}

	before := s.store.Len()
	s.store.RemoveElements(ids)
	deleted := before - s.store.Len()

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Deleted %d elements", deleted)), nil
}

func (s *Server) handleDuplicateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	el, err := s.getElementForTool(req.GetArguments(), "elementId")
	if err != nil {
		return nil, err
	}

	dupID := s.store.Duplicate(el.ID)
	s.emitBoardChanged(ctx)
	return jsonResult(s.store.Element(dupID))
}

func (s *Server) handleReorderElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	el, err := s.getElementForTool(args, "elementId")
	if err != nil {
		return nil, err
	}

	switch getString(args, "placement", "") {
	case "front":
		s.store.BringToFront(el.ID)
	case "back":
		s.store.SendToBack(el.ID)
	default:
		return nil, fmt.Errorf("placement must be front or back")
	}

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Element %s moved to %s", el.ID, getString(args, "placement", ""))), nil
}

func (s *Server) handleArrangeElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	ids := splitIDs(getString(args, "elementIds", ""))
	if len(ids) == 0 {
		for _, el := range s.allElements() {
			// connectors and edges follow their endpoints; arranging them is meaningless
			if el.Type == domain.ElementConnector || el.Type == domain.ElementMindmapEdge {
				continue
			}
			ids = append(ids, el.ID)
		}
	}

	var rects []domain.Rect
	var present []string
	for _, id := range ids {
		if r, ok := s.store.Bounds(id); ok {
			rects = append(rects, r)
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return textResult("Nothing to arrange"), nil
	}

	origins := s.layout.ArrangeGroup(rects, getFloat(args, "startX", 0), getFloat(args, "startY", 0))
	s.store.WithUndo(fmt.Sprintf("Arrange %d elements", len(present)), func() {
		for i, id := range present {
			s.store.UpdateElement(id, domain.MovePatch(origins[i].X, origins[i].Y), document.UpdateOptions{PushHistory: true})
		}
	})

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Arranged %d elements", len(present))), nil
}

func (s *Server) handleSelectElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := splitIDs(getString(req.GetArguments(), "elementIds", ""))
	s.store.SetSelection(ids)

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Selected %d elements", len(s.store.SelectedIDs()))), nil
}

// ── Helper types ───────────────────────────────────────────

type elementSummary struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Preview string  `json:"preview,omitempty"` // first 200 chars of text content
}

func summarizeElement(el *domain.Element) elementSummary {
	preview := elementText(el)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return elementSummary{
		ID:      el.ID,
		Type:    string(el.Type),
		X:       el.X,
		Y:       el.Y,
		Width:   el.Width,
		Height:  el.Height,
		Preview: preview,
	}
}

func elementText(el *domain.Element) string {
	switch {
	case el.Shape != nil:
		return el.Shape.Text
	case el.Sticky != nil:
		return el.Sticky.Text
	case el.Text != nil:
		return el.Text.Text
	case el.MindmapNode != nil:
		return el.MindmapNode.Text
	case el.Connector != nil:
		return el.Connector.Label
	}
	return ""
}
