package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the most recent change on the board"),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the most recently undone change"),
	), s.handleRedo)

	s.mcp.AddTool(mcp.NewTool("list_history",
		mcp.WithDescription("List the labels of the undoable changes, oldest first"),
	), s.handleListHistory)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label, ok := s.store.Undo()
	if !ok {
		return textResult("Nothing to undo"), nil
	}
	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Undid: %s", label)), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label, ok := s.store.Redo()
	if !ok {
		return textResult("Nothing to redo"), nil
	}
	s.emitBoardChanged(ctx)
	return textResult(fmt.Sprintf("Redid: %s", label)), nil
}

func (s *Server) handleListHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	labels := s.store.UndoLabels()
	if len(labels) == 0 {
		return textResult("History is empty"), nil
	}
	return jsonResult(labels)
}
