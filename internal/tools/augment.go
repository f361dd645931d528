// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/muninn-mcp/muninn/internal/classify"
	"github.com/muninn-mcp/muninn/internal/persona"
)

// augmentContextLimit bounds how many related conversations feed the envelope.
const augmentContextLimit = 5

// NewAugmentTool creates the muninn_augment tool definition
func NewAugmentTool() mcp.Tool {
	return mcp.NewTool("muninn_augment",
		mcp.WithDescription("Classify a user message (intent, complexity, tone), retrieve related memories, and synthesize a persona-decorated prompt envelope."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user message to augment"),
		),
		mcp.WithString("persona",
			mcp.Description("Persona name: default, mentor, reviewer or pair. Falls back to the stored preference, then to 'default'."),
		),
	)
}

// AugmentHandler handles the muninn_augment tool
func AugmentHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := request.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		personaName := request.GetString("persona", "")
		if personaName == "" {
			if prefs := ctx.Coord.Preferences(); prefs != nil {
				personaName = prefs.Persona
			}
		}

		cls := classify.Classify(message)

		retrieved, err := ctx.Coord.RetrieveMemories(message, augmentContextLimit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
		}

		var notes []string
		for _, rec := range retrieved.MatchingConversations {
			note := rec.Title
			if rec.Summary != "" {
				note = fmt.Sprintf("%s: %s", rec.Title, rec.Summary)
			}
			notes = append(notes, note)
		}

		envelope := persona.BuildEnvelope(persona.Get(personaName), cls, message, notes)

		out, err := json.MarshalIndent(envelope, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal envelope: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
