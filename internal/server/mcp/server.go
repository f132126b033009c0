package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emmett/holidayvox/internal/holiday"
	"github.com/emmett/holidayvox/internal/session"
)

type Config struct {
	ServerName    string
	ServerVersion string

	// Now is the default reference date for nearest_holiday (default: time.Now)
	Now func() time.Time

	Logger *slog.Logger
}

// Server exposes a fetched holiday set and the command resolver as MCP tools
type Server struct {
	config    Config
	mcpServer *sdk.Server
	holidays  *holiday.Set
	resolver  *session.Resolver
	logger    *slog.Logger
}

func NewServer(cfg Config, holidays *holiday.Set, resolver *session.Resolver) (*Server, error) {
	if holidays == nil {
		return nil, fmt.Errorf("holiday set is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:   cfg,
		holidays: holidays,
		resolver: resolver,
		logger:   logger,
	}

	s.mcpServer = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	s.registerTools()

	return s, nil
}

// Start serves over stdin/stdout until ctx is done or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &sdk.StdioTransport{})
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "list_holidays",
		Description: "List the local names of all public holidays, in service order",
	}, s.handleListHolidays)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "holiday_details",
		Description: "List every holiday as \"<date> — <local name>\"",
	}, s.handleHolidayDetails)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "nearest_holiday",
		Description: "Find the first holiday on or after a date",
	}, s.handleNearestHoliday)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "count_holidays",
		Description: "Count the public holidays in the loaded set",
	}, s.handleCountHolidays)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "resolve_command",
		Description: "Resolve a recognized utterance to the voice command it would trigger",
	}, s.handleResolveCommand)
}
