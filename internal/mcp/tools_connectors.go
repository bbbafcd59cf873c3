package mcpserver

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
)

func (s *Server) registerConnectorTools() {
	// ── connect_elements ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("connect_elements",
		mcp.WithDescription("Create a connector between two elements. The connector stays attached and re-routes when either element moves."),
		mcp.WithString("fromId", mcp.Description("Source element ID"), mcp.Required()),
		mcp.WithString("toId", mcp.Description("Target element ID"), mcp.Required()),
		mcp.WithString("fromSide", mcp.Description("Anchor side on the source: left, right, top, bottom, center (default: facing side)")),
		mcp.WithString("toSide", mcp.Description("Anchor side on the target (default: facing side)")),
		mcp.WithString("label", mcp.Description("Connector label (optional)")),
	), s.handleConnectElements)

	// ── set_connector_label ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_connector_label",
		mcp.WithDescription("Replace the label on a connector"),
		mcp.WithString("elementId", mcp.Description("Connector element ID"), mcp.Required()),
		mcp.WithString("label", mcp.Description("New label"), mcp.Required()),
	), s.handleSetConnectorLabel)

	// ── add_mindmap_child ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_mindmap_child",
		mcp.WithDescription("Create a mind-map node next to a parent node and link them with an edge, as one undo step"),
		mcp.WithString("parentId", mcp.Description("Parent mind-map node ID"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Child node text"), mcp.Required()),
	), s.handleAddMindmapChild)
}

// facingSides picks the anchor sides two elements would naturally connect
// on, based on which axis separates their centers the most.
func facingSides(from, to domain.Rect) (domain.AnchorSide, domain.AnchorSide) {
	dx := to.Center().X - from.Center().X
	dy := to.Center().Y - from.Center().Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return domain.AnchorRight, domain.AnchorLeft
		}
		return domain.AnchorLeft, domain.AnchorRight
	}
	if dy >= 0 {
		return domain.AnchorBottom, domain.AnchorTop
	}
	return domain.AnchorTop, domain.AnchorBottom
}

func parseSide(s string) (domain.AnchorSide, bool) {
	side := domain.AnchorSide(s)
	for _, known := range domain.AnchorSides {
		if side == known {
			return side, true
		}
	}
	return "", false
}

func (s *Server) handleConnectElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	from, err := s.getElementForTool(args, "fromId")
	if err != nil {
		return nil, err
	}
	to, err := s.getElementForTool(args, "toId")
	if err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		return nil, fmt.Errorf("cannot connect an element to itself")
	}

	fromSide, toSide := facingSides(from.Bounds(), to.Bounds())
	if raw := getString(args, "fromSide", ""); raw != "" {
		side, ok := parseSide(raw)
		if !ok {
			return nil, fmt.Errorf("unknown anchor side %q", raw)
		}
		fromSide = side
	}
	if raw := getString(args, "toSide", ""); raw != "" {
		side, ok := parseSide(raw)
		if !ok {
			return nil, fmt.Errorf("unknown anchor side %q", raw)
		}
		toSide = side
	}

	conn := &domain.Element{
		Type: domain.ElementConnector,
		Connector: &domain.ConnectorPayload{
			Start: domain.Endpoint{ElementID: from.ID, Side: fromSide},
			End:   domain.Endpoint{ElementID: to.ID, Side: toSide},
			Label: getString(args, "label", ""),
		},
	}
	id := s.store.AddElement(conn, document.AddOptions{PushHistory: true})

	s.emitBoardChanged(ctx)
	return jsonResult(s.store.Element(id))
}

func (s *Server) handleSetConnectorLabel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	el, err := s.getElementForTool(args, "elementId")
	if err != nil {
		return nil, err
	}
	if el.Type != domain.ElementConnector {
		return nil, fmt.Errorf("element %s is a %s, not a connector", el.ID, el.Type)
	}

	label, _ := args["label"].(string)
	s.store.UpdateElement(el.ID, domain.Patch{Label: &label}, document.UpdateOptions{PushHistory: true})

	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Connector %s label updated", el.ID)), nil
}

func (s *Server) handleAddMindmapChild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	parent, err := s.getElementForTool(args, "parentId")
	if err != nil {
		return nil, err
	}
	if parent.Type != domain.ElementMindmapNode {
		return nil, fmt.Errorf("element %s is a %s, not a mind-map node", parent.ID, parent.Type)
	}

	text := getString(args, "text", "")
	defaults := defaultSizes[domain.ElementMindmapNode]

	// Place the child to the parent's right, past its siblings.
	childY := parent.Y
	for _, el := range s.store.ElementsOfType(domain.ElementMindmapEdge) {
		if el.MindmapEdge != nil && el.MindmapEdge.FromID == parent.ID {
			if sibling := s.store.Element(el.MindmapEdge.ToID); sibling != nil {
				if bottom := sibling.Y + sibling.Height + Padding; bottom > childY {
					childY = bottom
				}
			}
		}
	}

	var childID string
	s.store.WithUndo("Add mind-map node", func() {
		child := &domain.Element{
			Type:        domain.ElementMindmapNode,
			X:           parent.X + parent.Width + Padding*2,
			Y:           childY,
			Width:       defaults[0],
			Height:      defaults[1],
			MindmapNode: &domain.MindmapNodePayload{Text: text},
		}
		childID = s.store.AddElement(child, document.AddOptions{Select: true, PushHistory: true})

		edge := &domain.Element{
			Type:        domain.ElementMindmapEdge,
			MindmapEdge: &domain.MindmapEdgePayload{FromID: parent.ID, ToID: childID},
		}
		s.store.AddElement(edge, document.AddOptions{PushHistory: true})
	})

	s.emitBoardChanged(ctx)
	return jsonResult(s.store.Element(childID))
}
