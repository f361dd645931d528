// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/muninn-mcp/muninn/internal/record"
)

// NewSaveConversationTool creates the muninn_save_conversation tool definition
func NewSaveConversationTool() mcp.Tool {
	return mcp.NewTool("muninn_save_conversation",
		mcp.WithDescription("Start tracking a conversation in memory. Returns the conversation id used by all other recording tools."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Clear title for the conversation"),
		),
		mcp.WithArray("technologies",
			mcp.Description("Technology names referenced in this conversation"),
		),
	)
}

// SaveConversationHandler handles the muninn_save_conversation tool
func SaveConversationHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := request.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		technologies := request.GetStringSlice("technologies", []string{})

		id, err := ctx.Coord.StartConversation(title)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to start conversation: %v", err)), nil
		}

		for _, tech := range technologies {
			if err := ctx.Coord.AddTechnology(id, tech); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to record technology: %v", err)), nil
			}
		}

		return mcp.NewToolResultText(fmt.Sprintf("Conversation saved.\n\nID: %s", id)), nil
	}
}

// NewUpdateSummaryTool creates the muninn_update_summary tool definition
func NewUpdateSummaryTool() mcp.Tool {
	return mcp.NewTool("muninn_update_summary",
		mcp.WithDescription("Replace the free-text summary of a tracked conversation."),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Id returned by muninn_save_conversation"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("New summary text"),
		),
	)
}

// UpdateSummaryHandler handles the muninn_update_summary tool
func UpdateSummaryHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		summary, err := request.RequireString("summary")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := ctx.Coord.UpdateSummary(id, summary); err != nil {
			return conversationError(id, err), nil
		}
		return mcp.NewToolResultText("Summary updated."), nil
	}
}

// NewEndConversationTool creates the muninn_end_conversation tool definition
func NewEndConversationTool() mcp.Tool {
	return mcp.NewTool("muninn_end_conversation",
		mcp.WithDescription("Close a tracked conversation by stamping its end time. Ending an already-closed conversation is a no-op."),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Id returned by muninn_save_conversation"),
		),
	)
}

// EndConversationHandler handles the muninn_end_conversation tool
func EndConversationHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := ctx.Coord.EndConversation(id); err != nil {
			return conversationError(id, err), nil
		}
		return mcp.NewToolResultText("Conversation ended."), nil
	}
}

// conversationError turns coordinator errors into tool results, keeping the
// not-found case distinguishable from I/O failures.
func conversationError(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, record.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("conversation not found: %s", id))
	}
	return mcp.NewToolResultError(fmt.Sprintf("operation failed: %v", err))
}
