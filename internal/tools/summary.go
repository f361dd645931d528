// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewSummaryTool creates the muninn_summary tool definition
func NewSummaryTool() mcp.Tool {
	return mcp.NewTool("muninn_summary",
		mcp.WithDescription("Report what is stored: manifest counters, keyword index statistics, most recent conversations and most recalled conversations."),
		mcp.WithNumber("recent",
			mcp.Description("How many recent conversations to list. Default: 5"),
		),
	)
}

// SummaryHandler handles the muninn_summary tool
func SummaryHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		recent := int(request.GetFloat("recent", 5.0))

		manifest := ctx.Coord.Manifest()
		idxStats := ctx.Coord.IndexStats()

		var sb strings.Builder
		sb.WriteString("# Memory summary\n\n")
		sb.WriteString(fmt.Sprintf("Store version %s, created %s.\n",
			manifest.Version, manifest.CreatedAt.Format("2006-01-02")))
		sb.WriteString(fmt.Sprintf("Conversations: %d | Index: %d keywords, %d entries\n\n",
			manifest.TotalConversations, idxStats.KeywordCount, idxStats.TotalEntries))

		records, err := ctx.Coord.Store().ListRecent(recent)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list conversations: %v", err)), nil
		}
		if len(records) > 0 {
			sb.WriteString("## Recent conversations\n\n")
			for _, rec := range records {
				state := "open"
				if !rec.IsOpen() {
					state = "closed"
				}
				sb.WriteString(fmt.Sprintf("- %s (`%s`, %s, %s)\n",
					rec.Title, rec.ID, rec.StartTime.Format("2006-01-02"), state))
			}
			sb.WriteString("\n")
		}

		if ctx.Stats != nil {
			top, err := ctx.Stats.TopRecalled(recent)
			if err == nil && len(top) > 0 {
				sb.WriteString("## Most recalled\n\n")
				for _, row := range top {
					sb.WriteString(fmt.Sprintf("- `%s`: %d recalls, last %s\n",
						row.ConversationID, row.RecallCount,
						row.LastRecalledAt.Format("2006-01-02")))
				}
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
