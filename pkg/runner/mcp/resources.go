package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerScheduleResource(srv, svc)
	registerScheduleTemplate(srv, svc)
	registerAnnexesTemplate(srv, svc)
}

func registerScheduleResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"bulletin://schedule",
		"Schedule",
		mcp.WithResourceDescription("Issues scheduled in the current month and the current issue id."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		entries, err := svc.ListSchedule(ctx, "")
		if err != nil {
			return nil, err
		}
		current, err := svc.CurrentIssue(ctx)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"currentIssue": current,
			"issues":       entries,
			"count":        len(entries),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerScheduleTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"bulletin://schedule/{month}",
		"Monthly Schedule",
		mcp.WithTemplateDescription("Issues scheduled in a month given as YYYY-MM."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		month := argument(request, "month")
		if month == "" {
			return nil, fmt.Errorf("month is required")
		}

		entries, err := svc.ListSchedule(ctx, month)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"month":  month,
			"count":  len(entries),
			"issues": entries,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerAnnexesTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"bulletin://issues/{id}/annexes",
		"Running Annexes",
		mcp.WithTemplateDescription("Publications running into an issue."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := argument(request, "id")
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid issue id %q", raw)
		}

		annexes, err := svc.RunningAnnexes(ctx, id, "")
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"issueId": id,
			"annexes": annexes,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

// argument reads a template variable. Depending on the server version it
// arrives as a string or a single element slice.
func argument(request mcp.ReadResourceRequest, name string) string {
	switch v := request.Params.Arguments[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
