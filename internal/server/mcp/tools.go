package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emmett/holidayvox/internal/holiday"
)

type ListHolidaysArgs struct{}

type NearestArgs struct {
	Today string `json:"today,omitempty" jsonschema:"reference date in YYYY-MM-DD format, defaults to the current date"`
}

type ResolveArgs struct {
	Text string `json:"text" jsonschema:"recognized utterance, matched case-sensitively"`
}

func (s *Server) handleListHolidays(ctx context.Context, req *sdk.CallToolRequest, args ListHolidaysArgs) (*sdk.CallToolResult, any, error) {
	return linesResult(s.holidays.Names()), nil, nil
}

func (s *Server) handleHolidayDetails(ctx context.Context, req *sdk.CallToolRequest, args ListHolidaysArgs) (*sdk.CallToolResult, any, error) {
	return linesResult(s.holidays.Details()), nil, nil
}

func (s *Server) handleCountHolidays(ctx context.Context, req *sdk.CallToolRequest, args ListHolidaysArgs) (*sdk.CallToolResult, any, error) {
	return textResult(fmt.Sprintf("%d", s.holidays.Len())), nil, nil
}

func (s *Server) handleNearestHoliday(ctx context.Context, req *sdk.CallToolRequest, args NearestArgs) (*sdk.CallToolResult, any, error) {
	today := s.config.Now()
	if args.Today != "" {
		t, err := time.Parse(holiday.DateLayout, args.Today)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid today %q: expected YYYY-MM-DD", args.Today)
		}
		today = t
	}

	for _, r := range s.holidays.Malformed() {
		s.logger.Warn("skipping holiday with malformed date", "date", r.Date, "name", r.LocalName)
	}

	next, ok := s.holidays.Nearest(today)
	if !ok {
		return textResult("no upcoming holidays"), nil, nil
	}
	return textResult(next.Detail()), nil, nil
}

func (s *Server) handleResolveCommand(ctx context.Context, req *sdk.CallToolRequest, args ResolveArgs) (*sdk.CallToolResult, any, error) {
	return textResult(s.resolver.Resolve(args.Text).String()), nil, nil
}

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}

func linesResult(lines []string) *sdk.CallToolResult {
	return textResult(strings.Join(lines, "\n"))
}
