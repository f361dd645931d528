// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewAddTodoTool creates the muninn_add_todo tool definition
func NewAddTodoTool() mcp.Tool {
	return mcp.NewTool("muninn_add_todo",
		mcp.WithDescription("Add a todo item to a tracked conversation. Priority 'high' renders as '!' and 'low' as '?' in the markdown export."),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Id returned by muninn_save_conversation"),
		),
		mcp.WithString("task",
			mcp.Required(),
			mcp.Description("The task text"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority tier: high, normal or low. Default: normal"),
		),
	)
}

// AddTodoHandler handles the muninn_add_todo tool
func AddTodoHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		task, err := request.RequireString("task")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		priority := request.GetString("priority", "")

		todoID, err := ctx.Coord.AddTodo(id, task, priority)
		if err != nil {
			return conversationError(id, err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Todo added.\n\nID: %s", todoID)), nil
	}
}

// NewCompleteTodoTool creates the muninn_complete_todo tool definition
func NewCompleteTodoTool() mcp.Tool {
	return mcp.NewTool("muninn_complete_todo",
		mcp.WithDescription("Mark a todo item on a tracked conversation as done."),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Id returned by muninn_save_conversation"),
		),
		mcp.WithString("todo_id",
			mcp.Required(),
			mcp.Description("Id returned by muninn_add_todo"),
		),
	)
}

// CompleteTodoHandler handles the muninn_complete_todo tool
func CompleteTodoHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		todoID, err := request.RequireString("todo_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := ctx.Coord.CompleteTodo(id, todoID); err != nil {
			return conversationError(id, err), nil
		}
		return mcp.NewToolResultText("Todo completed."), nil
	}
}
