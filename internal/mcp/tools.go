package mcp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/iBuildiPawn/OSS-CYOPS-sub000/model"
)

// apiResult wraps a REST response as a tool result. Transport failures and
// non-2xx responses become IsError results carrying the API's own message, so
// transition rejections surface the reason and the allowed next statuses to
// the assistant.
func apiResult(body string, status int, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: body}},
		IsError: status >= 400,
	}, nil, nil
}

func toolError(message string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}, nil, nil
}

type listAssetsArgs struct {
	Status      string `json:"status,omitempty" jsonschema:"filter by lifecycle status: ACTIVE, INACTIVE, UNDER_MAINTENANCE or DECOMMISSIONED"`
	Environment string `json:"environment,omitempty" jsonschema:"filter by environment, e.g. production"`
	AssetType   string `json:"asset_type,omitempty" jsonschema:"filter by asset type, e.g. server"`
	Search      string `json:"search,omitempty" jsonschema:"substring match on hostname, name and IP address"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of rows, default 50"`
}

type getAssetArgs struct {
	Key string `json:"key" jsonschema:"asset key"`
}

type updateStatusArgs struct {
	Key    string `json:"key" jsonschema:"entity key"`
	Status string `json:"status" jsonschema:"target status"`
	Notes  string `json:"notes,omitempty" jsonschema:"optional note recorded in the status history"`
}

type listVulnerabilitiesArgs struct {
	Status   string  `json:"status,omitempty" jsonschema:"filter by triage status: OPEN, CONFIRMED, RESOLVED or FALSE_POSITIVE"`
	Severity string  `json:"severity,omitempty" jsonschema:"filter by severity rating: NONE, LOW, MEDIUM, HIGH or CRITICAL"`
	Scanner  string  `json:"scanner,omitempty" jsonschema:"filter by reporting scanner, e.g. nessus"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum CVSS base score"`
	Search   string  `json:"search,omitempty" jsonschema:"substring match on title and CVE id"`
	Limit    int     `json:"limit,omitempty" jsonschema:"maximum number of rows, default 50"`
}

type listFindingsArgs struct {
	Asset         string `json:"asset,omitempty" jsonschema:"filter by asset key"`
	Vulnerability string `json:"vulnerability,omitempty" jsonschema:"filter by vulnerability key"`
	Assessment    string `json:"assessment,omitempty" jsonschema:"filter by assessment key"`
	Status        string `json:"status,omitempty" jsonschema:"filter by lifecycle status: OPEN, MITIGATED, FIXED, VERIFIED, RISK_ACCEPTED or FALSE_POSITIVE"`
	Severity      string `json:"severity,omitempty" jsonschema:"filter by severity rating"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum number of rows, default 50"`
}

type markFixedArgs struct {
	Key      string `json:"key" jsonschema:"finding key"`
	FixNotes string `json:"fix_notes" jsonschema:"what was done to fix the finding; required"`
	Notes    string `json:"notes,omitempty" jsonschema:"optional note recorded in the status history"`
}

type findingActionArgs struct {
	Key   string `json:"key" jsonschema:"finding key"`
	Notes string `json:"notes,omitempty" jsonschema:"optional note recorded in the status history"`
}

type acceptRiskArgs struct {
	Key              string `json:"key" jsonschema:"finding key"`
	AcceptanceReason string `json:"acceptance_reason" jsonschema:"why the risk is being accepted; required"`
	ExpiresAt        string `json:"expires_at,omitempty" jsonschema:"RFC3339 time when the acceptance lapses; must be in the future"`
	Notes            string `json:"notes,omitempty" jsonschema:"optional note recorded in the status history"`
}

type dashboardSummaryArgs struct {
	Days int `json:"days,omitempty" jsonschema:"aggregation window in days, default 90"`
}

// RegisterTools mounts every API tool on the server.
func RegisterTools(server *mcp.Server, client *APIClient) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_assets",
		Description: "List assets in the inventory with optional status, environment, type and search filters.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listAssetsArgs) (*mcp.CallToolResult, any, error) {
		query := url.Values{}
		setIf(query, "status", args.Status)
		setIf(query, "environment", args.Environment)
		setIf(query, "asset_type", args.AssetType)
		setIf(query, "search", args.Search)
		if args.Limit > 0 {
			query.Set("limit", strconv.Itoa(args.Limit))
		}
		return apiResult(client.Get(ctx, "/assets", query))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_asset",
		Description: "Fetch one asset by key, including its status history.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args getAssetArgs) (*mcp.CallToolResult, any, error) {
		return apiResult(client.Get(ctx, "/assets/"+url.PathEscape(args.Key), nil))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_asset_status",
		Description: "Transition an asset to a new lifecycle status. Rejected transitions return the allowed next statuses.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args updateStatusArgs) (*mcp.CallToolResult, any, error) {
		payload := model.StatusUpdateRequest{Status: args.Status, Notes: args.Notes}
		return apiResult(client.Send(ctx, "PUT", "/assets/"+url.PathEscape(args.Key)+"/status", payload))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_vulnerabilities",
		Description: "List tracked vulnerabilities with optional status, severity, scanner, score and search filters.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listVulnerabilitiesArgs) (*mcp.CallToolResult, any, error) {
		query := url.Values{}
		setIf(query, "status", args.Status)
		setIf(query, "severity", args.Severity)
		setIf(query, "scanner", args.Scanner)
		setIf(query, "search", args.Search)
		if args.MinScore > 0 {
			query.Set("min_score", fmt.Sprintf("%g", args.MinScore))
		}
		if args.Limit > 0 {
			query.Set("limit", strconv.Itoa(args.Limit))
		}
		return apiResult(client.Get(ctx, "/vulnerabilities", query))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_vulnerability_status",
		Description: "Transition a vulnerability to a new triage status. Rejected transitions return the allowed next statuses.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args updateStatusArgs) (*mcp.CallToolResult, any, error) {
		payload := model.StatusUpdateRequest{Status: args.Status, Notes: args.Notes}
		return apiResult(client.Send(ctx, "PATCH", "/vulnerabilities/"+url.PathEscape(args.Key)+"/status", payload))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_findings",
		Description: "List findings with optional asset, vulnerability, assessment, status and severity filters.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listFindingsArgs) (*mcp.CallToolResult, any, error) {
		query := url.Values{}
		setIf(query, "asset", args.Asset)
		setIf(query, "vulnerability", args.Vulnerability)
		setIf(query, "assessment", args.Assessment)
		setIf(query, "status", args.Status)
		setIf(query, "severity", args.Severity)
		if args.Limit > 0 {
			query.Set("limit", strconv.Itoa(args.Limit))
		}
		return apiResult(client.Get(ctx, "/findings", query))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_finding_fixed",
		Description: "Mark a finding FIXED. fix_notes describing the remediation are required.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args markFixedArgs) (*mcp.CallToolResult, any, error) {
		payload := model.MarkFixedRequest{FixNotes: args.FixNotes, Notes: args.Notes}
		return apiResult(client.Send(ctx, "POST", "/vulnerabilities/findings/"+url.PathEscape(args.Key)+"/mark-fixed", payload))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_finding_verified",
		Description: "Mark a FIXED finding VERIFIED after retesting confirmed the fix.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args findingActionArgs) (*mcp.CallToolResult, any, error) {
		payload := model.MarkVerifiedRequest{Notes: args.Notes}
		return apiResult(client.Send(ctx, "POST", "/vulnerabilities/findings/"+url.PathEscape(args.Key)+"/mark-verified", payload))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "accept_finding_risk",
		Description: "Accept the risk of a finding. acceptance_reason is required; expires_at bounds the acceptance.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args acceptRiskArgs) (*mcp.CallToolResult, any, error) {
		payload := model.AcceptRiskRequest{AcceptanceReason: args.AcceptanceReason, Notes: args.Notes}
		if args.ExpiresAt != "" {
			expires, err := time.Parse(time.RFC3339, args.ExpiresAt)
			if err != nil {
				return toolError("expires_at must be an RFC3339 time, e.g. 2026-12-31T00:00:00Z")
			}
			payload.ExpiresAt = &expires
		}
		return apiResult(client.Send(ctx, "POST", "/vulnerabilities/findings/"+url.PathEscape(args.Key)+"/accept-risk", payload))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reopen_finding",
		Description: "Reopen a finding, clearing its remediation claims. Valid from any status except FALSE_POSITIVE.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args findingActionArgs) (*mcp.CallToolResult, any, error) {
		payload := model.ReopenRequest{Notes: args.Notes}
		return apiResult(client.Send(ctx, "POST", "/vulnerabilities/findings/"+url.PathEscape(args.Key)+"/reopen", payload))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard_summary",
		Description: "Fetch the dashboard summary: entity totals, open findings by severity, remediation speed and top risk assets.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args dashboardSummaryArgs) (*mcp.CallToolResult, any, error) {
		query := url.Values{}
		if args.Days > 0 {
			query.Set("days", strconv.Itoa(args.Days))
		}
		return apiResult(client.Get(ctx, "/dashboard/summary", query))
	})
}

func setIf(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
