// Package cli implements the command-line interface for fplfeed.
//
// The cli package provides:
// - The collect command that writes data/latest.json and its pretty twin
// - The validate command that checks a written snapshot
// - The summary command that renders snapshot provenance in the terminal
// - The mcp command exposing snapshot tools over stdio
package cli
