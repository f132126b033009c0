package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/emmett/holidayvox/internal/server/mcp"
	"github.com/emmett/holidayvox/internal/session"
)

// MCPHandler handles MCP server operations
type MCPHandler struct {
	fetcher  Fetcher
	country  string
	year     int
	keywords session.Keywords
	version  string
	stderr   io.Writer
	logger   *slog.Logger
}

// NewMCPHandler creates a new MCP handler
func NewMCPHandler(fetcher Fetcher, country string, year int, keywords session.Keywords, version string, logger *slog.Logger) *MCPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MCPHandler{
		fetcher:  fetcher,
		country:  country,
		year:     year,
		keywords: keywords,
		version:  version,
		stderr:   os.Stderr,
		logger:   logger,
	}
}

// Server fetches the holidays once and builds the MCP server over them
func (h *MCPHandler) Server(ctx context.Context) (*mcp.Server, error) {
	set, err := h.fetcher.Fetch(ctx, h.country, h.year)
	if err != nil {
		return nil, err
	}
	h.logger.Info("serving holidays", "country", set.Country(), "year", set.Year(), "count", set.Len())

	return mcp.NewServer(mcp.Config{
		ServerName:    "holidayvox-mcp",
		ServerVersion: h.version,
		Logger:        h.logger,
	}, set, session.NewResolver(h.keywords))
}

// Run starts the MCP server on stdio and blocks until ctx is done
func (h *MCPHandler) Run(ctx context.Context) error {
	fmt.Fprintf(h.stderr, "Starting MCP server...\n")
	fmt.Fprintf(h.stderr, "Protocol: Model Context Protocol (stdio transport)\n")
	fmt.Fprintf(h.stderr, "Version: %s\n\n", h.version)

	server, err := h.Server(ctx)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	h.printClientConfig()

	fmt.Fprintf(h.stderr, "MCP server ready. Listening on stdin/stdout...\n")

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (h *MCPHandler) printClientConfig() {
	execPath, err := os.Executable()
	if err != nil {
		execPath = "holidayvox-mcp"
	}

	type serverConfig struct {
		Command string   `json:"command"`
		Args    []string `json:"args"`
	}
	clientConfig := struct {
		MCPServers map[string]serverConfig `json:"mcpServers"`
	}{
		MCPServers: map[string]serverConfig{
			"holidayvox": {
				Command: execPath,
				Args:    []string{"--country", h.country, "--year", fmt.Sprint(h.year)},
			},
		},
	}

	configJSON, err := json.MarshalIndent(clientConfig, "", "  ")
	if err == nil {
		fmt.Fprintf(h.stderr, "MCP Client Configuration:\n%s\n\n", string(configJSON))
	}
}
