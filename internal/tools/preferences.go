// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/muninn-mcp/muninn/internal/profile"
)

// NewUpdatePreferencesTool creates the muninn_update_preferences tool definition
func NewUpdatePreferencesTool() mcp.Tool {
	return mcp.NewTool("muninn_update_preferences",
		mcp.WithDescription("Update the stored user preferences. Only the provided fields change; the file is rewritten in full."),
		mcp.WithString("preferred_name",
			mcp.Description("How the user wants to be addressed"),
		),
		mcp.WithString("persona",
			mcp.Description("Default persona: default, mentor, reviewer or pair"),
		),
		mcp.WithString("response_style",
			mcp.Description("Response style preference. Example: 'concise'"),
		),
		mcp.WithString("verbosity",
			mcp.Description("Verbosity preference: terse, normal or detailed"),
		),
		mcp.WithArray("interests",
			mcp.Description("Topics the user cares about; replaces the stored list"),
		),
	)
}

// UpdatePreferencesHandler handles the muninn_update_preferences tool
func UpdatePreferencesHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		preferredName := request.GetString("preferred_name", "")
		personaName := request.GetString("persona", "")
		responseStyle := request.GetString("response_style", "")
		verbosity := request.GetString("verbosity", "")
		interests := request.GetStringSlice("interests", nil)

		err := ctx.Coord.UpdatePreferences(func(p *profile.UserPreferences) {
			if preferredName != "" {
				p.PreferredName = preferredName
			}
			if personaName != "" {
				p.Persona = personaName
			}
			if responseStyle != "" {
				p.ResponseStyle = responseStyle
			}
			if verbosity != "" {
				p.Verbosity = verbosity
			}
			if interests != nil {
				p.Interests = interests
			}
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update preferences: %v", err)), nil
		}
		return mcp.NewToolResultText("Preferences updated."), nil
	}
}
