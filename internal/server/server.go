// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/muninn-mcp/muninn/internal/config"
	"github.com/muninn-mcp/muninn/internal/coordinator"
	"github.com/muninn-mcp/muninn/internal/stats"
	"github.com/muninn-mcp/muninn/internal/tools"
)

// MCPServer wraps the mcp-go server with the coordinator and configuration
type MCPServer struct {
	mcpServer *server.MCPServer
	config    *config.Config
	coord     *coordinator.Coordinator
}

// NewMCPServer creates a new MCP server instance with all tools registered.
// recorder may be nil when access statistics are disabled.
func NewMCPServer(version string, cfg *config.Config, coord *coordinator.Coordinator, recorder *stats.Recorder) *MCPServer {
	mcpServer := server.NewMCPServer(
		"Muninn",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	srv := &MCPServer{
		mcpServer: mcpServer,
		config:    cfg,
		coord:     coord,
	}

	toolCtx := tools.NewToolContext(coord, recorder)

	// muninn_augment: classify + retrieve + persona envelope
	mcpServer.AddTool(tools.NewAugmentTool(), tools.AugmentHandler(toolCtx))

	// muninn_retrieve: keyword-overlap retrieval over the memory store
	mcpServer.AddTool(tools.NewRetrieveTool(), tools.RetrieveHandler(toolCtx))

	// Conversation lifecycle
	mcpServer.AddTool(tools.NewSaveConversationTool(), tools.SaveConversationHandler(toolCtx))
	mcpServer.AddTool(tools.NewUpdateSummaryTool(), tools.UpdateSummaryHandler(toolCtx))
	mcpServer.AddTool(tools.NewEndConversationTool(), tools.EndConversationHandler(toolCtx))

	// Append-only record mutations
	mcpServer.AddTool(tools.NewRecordDecisionTool(), tools.RecordDecisionHandler(toolCtx))
	mcpServer.AddTool(tools.NewRecordProblemTool(), tools.RecordProblemHandler(toolCtx))
	mcpServer.AddTool(tools.NewAddTodoTool(), tools.AddTodoHandler(toolCtx))
	mcpServer.AddTool(tools.NewCompleteTodoTool(), tools.CompleteTodoHandler(toolCtx))

	// Store maintenance and introspection
	mcpServer.AddTool(tools.NewSummaryTool(), tools.SummaryHandler(toolCtx))
	mcpServer.AddTool(tools.NewCleanupTool(), tools.CleanupHandler(toolCtx, cfg.Memory.RetentionDays))
	mcpServer.AddTool(tools.NewUpdatePreferencesTool(), tools.UpdatePreferencesHandler(toolCtx))

	return srv
}

// ServeStdio runs the MCP server over stdin/stdout. Stdout carries only
// JSON-RPC; all logging goes to stderr.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
