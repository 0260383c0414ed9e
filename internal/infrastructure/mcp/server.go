// Package mcp exposes the agent as Model Context Protocol tools over stdio.
//
// Each tool follows the same shape: a struct holding the agent, Definition()
// returning the schema and Handle() serving the call. Pipeline results are
// returned as indented JSON; a failed result is flagged as a tool error.
package mcp

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/0xcro3dile/jarvis-go/internal/domain/usecases"
)

const instructions = `Jarvis builds small projects (static sites, REST APIs, CLI tools) from a
description and repairs existing projects inside the configured allowed directories.
Every modification of an existing project is preceded by a backup.`

// NewServer registers every Jarvis tool on a fresh MCP server.
func NewServer(agent *usecases.Agent, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"jarvis",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, t := range Tools(agent) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func resultJSON(v any, success bool) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	if !success {
		return mcp.NewToolResultError(string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// splitTags parses a comma-separated tag list.
func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
