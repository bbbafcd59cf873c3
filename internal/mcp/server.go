package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"whiteboard/internal/document"
	"whiteboard/internal/domain"
	"whiteboard/internal/service"
)

// Server is the MCP server for the whiteboard app. It exposes tools so AI
// agents can read and edit the active board through the same document store
// the canvas renders from, which means every tool edit is undoable and shows
// up on screen immediately.
type Server struct {
	mcp     *server.MCPServer
	emitter service.EventEmitter
	layout  *LayoutEngine

	store  *document.Store
	boards *service.BoardService

	// Active board context (set by open_board)
	activeBoardID string
}

// Deps holds the dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter service.EventEmitter
	Store   *document.Store
	Boards  *service.BoardService
}

// New creates and configures an MCP server with all whiteboard tools.
func New(ctx context.Context, deps Deps) *Server {
	s := &Server{
		emitter: deps.Emitter,
		layout:  NewLayoutEngine(),
		store:   deps.Store,
		boards:  deps.Boards,
	}

	s.mcp = server.NewMCPServer(
		"whiteboard-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerBoardTools()
	s.registerElementTools()
	s.registerConnectorTools()
	s.registerHistoryTools()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// SetActiveBoard records which board tool calls operate on. The app layer
// calls this when the user opens a board in the UI.
func (s *Server) SetActiveBoard(boardID string) {
	s.activeBoardID = boardID
}

// ── Board tools ────────────────────────────────────────────

func (s *Server) registerBoardTools() {
	s.mcp.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List all boards with their ids and names"),
	), s.handleListBoards)

	s.mcp.AddTool(mcp.NewTool("open_board",
		mcp.WithDescription("Open a board, making it the target for element tools"),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
	), s.handleOpenBoard)

	s.mcp.AddTool(mcp.NewTool("save_board",
		mcp.WithDescription("Persist the active board's current state"),
	), s.handleSaveBoard)
}

func (s *Server) handleListBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := s.boards.ListBoards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return jsonResult(boards)
}

func (s *Server) handleOpenBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, _ := req.GetArguments()["boardId"].(string)
	if boardID == "" {
		return nil, fmt.Errorf("boardId is required")
	}
	if err := s.boards.LoadBoard(ctx, boardID, s.store); err != nil {
		return nil, fmt.Errorf("open board: %w", err)
	}
	s.activeBoardID = boardID
	return textResult(fmt.Sprintf("Board %s opened (%d elements)", boardID, s.store.Len())), nil
}

func (s *Server) handleSaveBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.activeBoardID == "" {
		return nil, fmt.Errorf("no active board (use open_board first)")
	}
	if err := s.boards.SaveBoard(ctx, s.activeBoardID, s.store); err != nil {
		return nil, fmt.Errorf("save board: %w", err)
	}
	return textResult(fmt.Sprintf("Board %s saved", s.activeBoardID)), nil
}

// ── Helpers ────────────────────────────────────────────────

// emitBoardChanged notifies the frontend that tool calls edited the board.
func (s *Server) emitBoardChanged(ctx context.Context) {
	s.emitter.Emit(ctx, "mcp:board-changed", map[string]string{"boardId": s.activeBoardID})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// getElementForTool fetches an element by the given argument key and
// validates it exists.
func (s *Server) getElementForTool(args map[string]any, key string) (*domain.Element, error) {
	id, ok := args[key].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	el := s.store.Element(id)
	if el == nil {
		return nil, fmt.Errorf("element %s not found", id)
	}
	return el, nil
}

// allElements returns the board's elements in paint order.
func (s *Server) allElements() []*domain.Element {
	order := s.store.ElementOrder()
	elements := make([]*domain.Element, 0, len(order))
	for _, id := range order {
		if el := s.store.Element(id); el != nil {
			elements = append(elements, el)
		}
	}
	return elements
}
