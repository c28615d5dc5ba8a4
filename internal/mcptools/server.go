// Package mcptools exposes the sales platform over the Model Context
// Protocol: purchase persistence, the user directory, catalog sales,
// product search and WhatsApp media delivery.
package mcptools

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/colombiang/sales-mcp/internal/purchases"
	"github.com/colombiang/sales-mcp/internal/sales"
	"github.com/colombiang/sales-mcp/internal/search"
	"github.com/colombiang/sales-mcp/internal/shared"
	"github.com/colombiang/sales-mcp/internal/users"
	"github.com/colombiang/sales-mcp/internal/whatsapp"
)

// Deps carries the services the tools delegate to. Search and WhatsApp
// may be nil; their tools then report the missing configuration instead
// of panicking.
type Deps struct {
	Purchases *purchases.Service
	Users     *users.Service
	Sales     *sales.Service
	Search    *search.Service
	WhatsApp  *whatsapp.Client
	Logger    *slog.Logger
}

// Server wraps the MCP server with the platform services.
type Server struct {
	mcpServer *mcp.Server
	deps      Deps
}

// NewServer creates an MCP server with all platform tools registered.
func NewServer(deps Deps) *Server {
	s := &Server{deps: deps}
	s.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    "sales-mcp",
		Version: "1.0.0",
	}, nil)

	s.registerPurchaseTools()
	s.registerUserTools()
	s.registerSaleTools()
	s.registerSearchTools()
	s.registerWhatsAppTools()
	return s
}

// Run starts the MCP server on stdio (blocking).
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler exposes the server over streamable HTTP.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// toolStatus is the envelope every tool reply carries. Error is empty on
// success; StatusCode mirrors the HTTP-equivalent classification of the
// failure. ErrorID correlates the reply with the server-side log entry.
type toolStatus struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	ErrorID    string `json:"error_id,omitempty"`
	StatusCode int    `json:"status_code"`
}

func okStatus() toolStatus {
	return toolStatus{Success: true, StatusCode: http.StatusOK}
}

func (s *Server) failStatus(tool string, err error) toolStatus {
	code := shared.StatusCode(err)
	errorID := uuid.NewString()
	s.deps.Logger.Error("tool call failed",
		slog.String("tool", tool),
		slog.String("error_id", errorID),
		slog.Int("status_code", code),
		slog.Any("error", err))
	return toolStatus{Success: false, Error: err.Error(), ErrorID: errorID, StatusCode: code}
}

func notConfigured(component string) error {
	return shared.NewConfigurationError("%s is not configured", component)
}
