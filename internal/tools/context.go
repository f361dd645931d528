// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package tools defines the MCP tool surface. Each tool is a thin adapter
// over the coordinator's plain function-call API; wire marshaling belongs
// to mcp-go, not to the memory core.
package tools

import (
	"github.com/muninn-mcp/muninn/internal/coordinator"
	"github.com/muninn-mcp/muninn/internal/stats"
)

// ToolContext holds shared dependencies for all tools.
type ToolContext struct {
	Coord *coordinator.Coordinator
	Stats *stats.Recorder // optional, nil when stats are disabled
}

// NewToolContext creates a tool context.
func NewToolContext(coord *coordinator.Coordinator, recorder *stats.Recorder) *ToolContext {
	return &ToolContext{
		Coord: coord,
		Stats: recorder,
	}
}
