package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/blox"
	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/export"
	"github.com/aretw0/blox/pkg/registry"
	"github.com/aretw0/blox/pkg/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	documentURI = "blox://document"
	exportURI   = "blox://export"
)

// Editor is the slice of blox.Editor exposed to MCP clients.
type Editor interface {
	Document() domain.Document
	Block(id domain.BlockID) (domain.Block, error)
	PatchBlock(id domain.BlockID, block domain.Block) error
	Delete(id domain.BlockID) error
	Move(id domain.BlockID, dir domain.Direction) error
	Insert(parent domain.BlockID, site, index int, blockType string) (domain.BlockID, error)
	Select(id domain.BlockID) error
	Selection() domain.Selection
	HTML(render.Mode) string
	Template() export.Template
	Catalog() []registry.TypeInfo
}

var _ Editor = (*blox.Editor)(nil)

// InsertResponse is the structured result of insert_block.
type InsertResponse struct {
	ID        domain.BlockID   `json:"id" jsonschema_description:"Id of the new block"`
	Selection domain.Selection `json:"selection" jsonschema_description:"Selection after the insert"`
}

// Server wraps an Editor and exposes it as an MCP Server.
type Server struct {
	editor    Editor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(ed Editor, opts ...Option) *Server {
	s := &Server{
		editor:    ed,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("blox-mcp", blox.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Get the whole document as a map of block id to block."),
	), s.handleGetDocument)

	s.mcpServer.AddTool(mcp.NewTool("list_block_types",
		mcp.WithDescription("List the block types with their property schemas and default payloads."),
	), s.handleListTypes)

	s.mcpServer.AddTool(mcp.NewTool("get_block",
		mcp.WithDescription("Get one block by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
	), s.handleGetBlock)

	s.mcpServer.AddTool(mcp.NewTool("patch_block",
		mcp.WithDescription("Validate and store a block under an id, replacing what is there."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
		mcp.WithString("block", mcp.Required(), mcp.Description(`JSON block, e.g. {"type":"Text","data":{"props":{"text":"Hi"}}}`)),
	), s.handlePatchBlock)

	s.mcpServer.AddTool(mcp.NewTool("insert_block",
		mcp.WithDescription("Insert a block with default content under a container and select it."),
		mcp.WithString("parent", mcp.Required(), mcp.Description("Container block id")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Block type, e.g. Text or ColumnsContainer")),
		mcp.WithNumber("site", mcp.Description("Child site (column) index, default 0")),
		mcp.WithNumber("index", mcp.Description("Position within the site, default append")),
		mcp.WithOutputSchema[InsertResponse](),
	), mcp.NewStructuredToolHandler(s.handleInsert))

	s.mcpServer.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a block and every reference to it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
	), s.handleDelete)

	s.mcpServer.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Swap a block with its previous or next sibling and select it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("up", "down")),
	), s.handleMove)

	s.mcpServer.AddTool(mcp.NewTool("select_block",
		mcp.WithDescription("Select a block."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
	), s.handleSelect)

	s.mcpServer.AddTool(mcp.NewTool("render_html",
		mcp.WithDescription("Render the document to HTML."),
		mcp.WithString("mode", mcp.Enum("static", "editable"), mcp.Description("Renderer set, default static")),
	), s.handleRenderHTML)

	s.mcpServer.AddTool(mcp.NewTool("export_template",
		mcp.WithDescription("Export the document content as campaign template repeaters."),
		mcp.WithOutputSchema[export.Template](),
	), mcp.NewStructuredToolHandler(s.handleExport))
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.editor.Document())
}

func (s *Server) handleListTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.editor.Catalog())
}

func (s *Server) handleGetBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.editor.Block(domain.BlockID(id))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(b)
}

func (s *Server) handlePatchBlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := request.RequireString("block")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b domain.Block
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid block JSON: %v", err)), nil
	}
	if err := s.editor.PatchBlock(domain.BlockID(id), b); err != nil {
		s.logger.Debug("MCP patch rejected", "block_id", id, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("stored %s", id)), nil
}

func (s *Server) handleInsert(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (InsertResponse, error) {
	parent, _ := args["parent"].(string)
	blockType, _ := args["type"].(string)
	site := request.GetInt("site", 0)
	index := request.GetInt("index", -1)

	id, err := s.editor.Insert(domain.BlockID(parent), site, index, blockType)
	if err != nil {
		return InsertResponse{}, fmt.Errorf("insert failed: %w", err)
	}
	return InsertResponse{ID: id, Selection: s.editor.Selection()}, nil
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.editor.Delete(domain.BlockID(id)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", id)), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := domain.ParseDirection(request.GetString("direction", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.editor.Move(domain.BlockID(id), dir); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.editor.Selection())
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.editor.Select(domain.BlockID(id)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.editor.Selection())
}

func (s *Server) handleRenderHTML(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := render.ParseMode(request.GetString("mode", string(render.ModeStatic)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.editor.HTML(mode)), nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (export.Template, error) {
	return s.editor.Template(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(documentURI, "Current Document",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(documentURI, s.editor.Document())
	})

	s.mcpServer.AddResource(mcp.NewResource(exportURI, "Template Export",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(exportURI, s.editor.Template())
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
