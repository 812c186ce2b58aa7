package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/counselgate/counselgate/internal/intake"
	"github.com/counselgate/counselgate/internal/knowledge"
	"github.com/counselgate/counselgate/internal/pipeline"
	"github.com/counselgate/counselgate/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store        storage.Store
	Orchestrator *pipeline.Orchestrator
	Intake       *intake.Service
}

// NewMCPServer creates an MCP server exposing the legal intake workflow
// as tools for agent clients.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"counselgate",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("counselgate — legal intake triage: search the legal knowledge base, create requests, and run triage assessments."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("search_knowledge",
			mcp.WithDescription("Search the legal knowledge base by keyword and return matching articles."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpSearchKnowledge(deps),
	)

	s.AddTool(
		mcp.NewTool("create_request",
			mcp.WithDescription("Create a new legal request. Returns the created request with its reference number and assigned attorney."),
			mcp.WithString("title", mcp.Description("Short title for the request"), mcp.Required()),
			mcp.WithString("description", mcp.Description("Detailed description of the legal matter"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Request category (e.g. contract_review, employment, marketing)")),
			mcp.WithString("submitter_name", mcp.Description("Name of the person submitting"), mcp.Required()),
			mcp.WithString("submitter_email", mcp.Description("Email of the person submitting"), mcp.Required()),
		),
		mcpCreateRequest(deps),
	)

	s.AddTool(
		mcp.NewTool("run_triage",
			mcp.WithDescription("Run a full triage assessment over a request's conversation and return the outcome."),
			mcp.WithString("request_id", mcp.Description("ID of the legal request to triage"), mcp.Required()),
		),
		mcpRunTriage(deps),
	)

	s.AddTool(
		mcp.NewTool("list_open_requests",
			mcp.WithDescription("List legal requests that are not yet resolved (submitted, triaged, in review, or awaiting info)."),
		),
		mcpListOpenRequests(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"knowledge://articles",
			"Knowledge Base Articles",
			mcp.WithResourceDescription("All knowledge base articles (metadata only) as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceArticles(deps),
	)

	return s
}

func mcpSearchKnowledge(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}
		if limit > 50 {
			limit = 50
		}

		articles, err := deps.Store.ListArticles()
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		matches := knowledge.KeywordSearch(query, articles, limit)
		if len(matches) == 0 {
			return mcpText("[]"), nil
		}

		type articleResult struct {
			Slug     string  `json:"slug"`
			Title    string  `json:"title"`
			Excerpt  string  `json:"excerpt"`
			Category string  `json:"category"`
			Score    float64 `json:"score"`
		}

		results := make([]articleResult, len(matches))
		for i, m := range matches {
			results[i] = articleResult{
				Slug:     m.Article.Slug,
				Title:    m.Article.Title,
				Excerpt:  m.Article.Excerpt,
				Category: m.Article.Category,
				Score:    m.Similarity,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpCreateRequest(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}
		description, err := req.RequireString("description")
		if err != nil {
			return mcpError("description is required"), nil
		}
		name, err := req.RequireString("submitter_name")
		if err != nil {
			return mcpError("submitter_name is required"), nil
		}
		email, err := req.RequireString("submitter_email")
		if err != nil {
			return mcpError("submitter_email is required"), nil
		}

		sub := intake.Submission{
			Title:          title,
			Description:    description,
			Category:       req.GetString("category", ""),
			SubmitterName:  name,
			SubmitterEmail: email,
		}

		request, attorney, err := deps.Intake.CreateRequest(ctx, sub)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to create request: %v", err)), nil
		}

		b, err := json.Marshal(requestView{LegalRequest: request, Attorney: attorney})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpRunTriage(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requestID, err := req.RequireString("request_id")
		if err != nil {
			return mcpError("request_id is required"), nil
		}

		assessment, err := deps.Orchestrator.RunFullTriage(ctx, requestID)
		if err != nil {
			return mcpError(fmt.Sprintf("triage failed: %v", err)), nil
		}

		b, err := json.Marshal(assessment)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal assessment: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpListOpenRequests(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		requests, err := deps.Store.ListRequests()
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list requests: %v", err)), nil
		}

		open := map[string]bool{
			storage.StatusSubmitted:    true,
			storage.StatusTriaged:      true,
			storage.StatusInReview:     true,
			storage.StatusAwaitingInfo: true,
		}

		type requestSummary struct {
			ID              string `json:"id"`
			ReferenceNumber string `json:"reference_number"`
			Title           string `json:"title"`
			Category        string `json:"category"`
			Urgency         string `json:"urgency"`
			Status          string `json:"status"`
			CreatedAt       string `json:"created_at"`
		}

		summaries := make([]requestSummary, 0, len(requests))
		for _, r := range requests {
			if !open[r.Status] {
				continue
			}
			summaries = append(summaries, requestSummary{
				ID:              r.ID,
				ReferenceNumber: r.ReferenceNumber,
				Title:           r.Title,
				Category:        r.Category,
				Urgency:         r.Urgency,
				Status:          r.Status,
				CreatedAt:       r.CreatedAt.Format(time.RFC3339),
			})
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal requests: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpResourceArticles(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		articles, err := deps.Store.ListArticles()
		if err != nil {
			return nil, fmt.Errorf("failed to list articles: %w", err)
		}

		type articleMeta struct {
			Slug      string   `json:"slug"`
			Title     string   `json:"title"`
			Excerpt   string   `json:"excerpt"`
			Category  string   `json:"category"`
			Tags      []string `json:"tags"`
			ViewCount int      `json:"view_count"`
		}

		metas := make([]articleMeta, len(articles))
		for i, a := range articles {
			metas[i] = articleMeta{
				Slug:      a.Slug,
				Title:     a.Title,
				Excerpt:   a.Excerpt,
				Category:  a.Category,
				Tags:      a.Tags,
				ViewCount: a.ViewCount,
			}
		}

		b, err := json.Marshal(metas)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal articles: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
