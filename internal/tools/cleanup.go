// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewCleanupTool creates the muninn_cleanup tool definition
func NewCleanupTool() mcp.Tool {
	return mcp.NewTool("muninn_cleanup",
		mcp.WithDescription("Evict keyword index entries older than the retention window. Conversation files are never deleted; only the index is pruned."),
		mcp.WithNumber("days_to_keep",
			mcp.Description("Retention window in days. Defaults to the configured retention."),
		),
	)
}

// CleanupHandler handles the muninn_cleanup tool
func CleanupHandler(ctx *ToolContext, defaultDays int) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := int(request.GetFloat("days_to_keep", float64(defaultDays)))
		if days < 0 {
			return mcp.NewToolResultError("days_to_keep must not be negative"), nil
		}

		removed, err := ctx.Coord.CleanupOldMemories(days)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cleanup failed: %v", err)), nil
		}

		stats := ctx.Coord.IndexStats()
		return mcp.NewToolResultText(fmt.Sprintf(
			"Evicted %d index entries older than %d days.\nIndex now holds %d keywords, %d entries.",
			removed, days, stats.KeywordCount, stats.TotalEntries)), nil
	}
}
