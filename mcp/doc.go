// Package mcp implements the Model Context Protocol server for fplfeed.
//
// The mcp package provides:
// - A stdio MCP server started by the mcp command
// - The validate_snapshot tool running the snapshot validator
// - The snapshot_section tool returning one top-level section of a snapshot
package mcp
