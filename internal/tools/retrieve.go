// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/muninn-mcp/muninn/internal/coordinator"
)

// NewRetrieveTool creates the muninn_retrieve tool definition
func NewRetrieveTool() mcp.Tool {
	return mcp.NewTool("muninn_retrieve",
		mcp.WithDescription("Retrieve conversations related to a topic by keyword overlap, together with the stored user preferences and project context."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("What you want to know about. Keywords or a short question."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results. Default: 10"),
		),
	)
}

// RetrieveHandler handles the muninn_retrieve tool
func RetrieveHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := int(request.GetFloat("limit", 10.0))

		result, err := ctx.Coord.RetrieveMemories(query, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
		}

		if len(result.MatchingConversations) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No memories found for: '%s'", query)), nil
		}
		return mcp.NewToolResultText(formatRetrievalResult(result)), nil
	}
}

// formatRetrievalResult formats a retrieval result for output
func formatRetrievalResult(result *coordinator.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d conversations (relevance %.1f):\n\n",
		len(result.MatchingConversations), result.RelevanceScore))

	for i, rec := range result.MatchingConversations {
		sb.WriteString(fmt.Sprintf("## %d. %s\n", i+1, rec.Title))
		sb.WriteString(fmt.Sprintf("**ID**: `%s` | **Project**: %s | **Started**: %s\n",
			rec.ID, rec.Project, rec.StartTime.Format("2006-01-02")))
		if rec.Summary != "" {
			sb.WriteString(fmt.Sprintf("\n%s\n", rec.Summary))
		}
		if len(rec.Decisions) > 0 {
			sb.WriteString("\nDecisions:\n")
			for _, d := range rec.Decisions {
				sb.WriteString(fmt.Sprintf("- %s: %s (%s)\n", d.Point, d.Decision, d.Rationale))
			}
		}
		if len(rec.Problems) > 0 {
			sb.WriteString("\nProblems solved:\n")
			for _, p := range rec.Problems {
				sb.WriteString(fmt.Sprintf("- %s -> %s\n", p.Problem, p.Solution))
			}
		}
		sb.WriteString("\n")
	}

	if result.ProjectContext != nil && result.ProjectContext.Overview != "" {
		sb.WriteString("---\nProject context:\n")
		sb.WriteString(result.ProjectContext.Overview)
		sb.WriteString("\n")
	}
	return sb.String()
}
