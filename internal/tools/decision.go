// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewRecordDecisionTool creates the muninn_record_decision tool definition
func NewRecordDecisionTool() mcp.Tool {
	return mcp.NewTool("muninn_record_decision",
		mcp.WithDescription("Record a decision made during a conversation: what was decided, at which decision point, and why. Decisions are append-only and become searchable."),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Id returned by muninn_save_conversation"),
		),
		mcp.WithString("point",
			mcp.Required(),
			mcp.Description("The decision point. Example: 'token strategy'"),
		),
		mcp.WithString("decision",
			mcp.Required(),
			mcp.Description("What was decided. Example: 'use JWT'"),
		),
		mcp.WithString("rationale",
			mcp.Description("Why it was decided. Example: 'stateless scaling'"),
		),
	)
}

// RecordDecisionHandler handles the muninn_record_decision tool
func RecordDecisionHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		point, err := request.RequireString("point")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		decision, err := request.RequireString("decision")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rationale := request.GetString("rationale", "")

		if err := ctx.Coord.AddDecision(id, point, decision, rationale); err != nil {
			return conversationError(id, err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Decision recorded at %q.", point)), nil
	}
}

// NewRecordProblemTool creates the muninn_record_problem tool definition
func NewRecordProblemTool() mcp.Tool {
	return mcp.NewTool("muninn_record_problem",
		mcp.WithDescription("Record a problem encountered during a conversation together with its solution and outcome."),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Id returned by muninn_save_conversation"),
		),
		mcp.WithString("problem",
			mcp.Required(),
			mcp.Description("The problem that was encountered"),
		),
		mcp.WithString("solution",
			mcp.Required(),
			mcp.Description("How it was solved"),
		),
		mcp.WithString("result",
			mcp.Description("The outcome of applying the solution"),
		),
	)
}

// RecordProblemHandler handles the muninn_record_problem tool
func RecordProblemHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		problem, err := request.RequireString("problem")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		solution, err := request.RequireString("solution")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result := request.GetString("result", "")

		if err := ctx.Coord.AddProblemSolution(id, problem, solution, result); err != nil {
			return conversationError(id, err), nil
		}
		return mcp.NewToolResultText("Problem and solution recorded."), nil
	}
}
