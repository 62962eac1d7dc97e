package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/bulletin/pkg/store"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListScheduleTool(srv, svc)
	registerScheduleIssueTool(srv, svc)
	registerRunningAnnexesTool(srv, svc)
}

func registerListScheduleTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_schedule",
		mcp.WithDescription("List the issues scheduled in a month."),
		mcp.WithString("month",
			mcp.Description("Month as YYYY-MM. Defaults to the current month."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Month string `json:"month"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		entries, err := svc.ListSchedule(ctx, args.Month)
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(map[string]any{
			"count":  len(entries),
			"issues": entries,
		})
	})
}

func registerScheduleIssueTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"schedule_issue",
		mcp.WithDescription("Schedule a new issue. The publication date must be after the cutoff date and neither may collide with an existing issue."),
		mcp.WithString("cutoff",
			mcp.Required(),
			mcp.Description("Cutoff date (YYYY-MM-DD) after which no more content is accepted."),
		),
		mcp.WithString("publication",
			mcp.Required(),
			mcp.Description("Publication date (YYYY-MM-DD)."),
		),
		mcp.WithString("title",
			mcp.Description("Optional issue title."),
		),
		mcp.WithString("notes",
			mcp.Description("Optional notes for the editors."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Cutoff      string `json:"cutoff"`
			Publication string `json:"publication"`
			Title       string `json:"title"`
			Notes       string `json:"notes"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.ScheduleIssue(ctx, ScheduleIssueOptions{
			Cutoff:      args.Cutoff,
			Publication: args.Publication,
			Title:       args.Title,
			Notes:       args.Notes,
		})
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(dto)
	})
}

func registerRunningAnnexesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"running_annexes",
		mcp.WithDescription("List the publications annexed to earlier issues that still run into the given issue. Each publication is reported with the earliest issue it was annexed to."),
		mcp.WithString("issue_id",
			mcp.Required(),
			mcp.Description("Numeric id of the target issue."),
		),
		mcp.WithString("publication_id",
			mcp.Description("Optional publication id to look up on its own."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("issue_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid issue id %q", raw)), nil
		}

		annexes, err := svc.RunningAnnexes(ctx, id, request.GetString("publication_id", ""))
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(map[string]any{
			"issueId": id,
			"count":   len(annexes),
			"annexes": annexes,
		})
	})
}

// toolError reports each user-facing message of err on its own line.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(strings.Join(store.MessagesOf(err), "\n"))
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
