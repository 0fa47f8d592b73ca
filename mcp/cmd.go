package mcp

import (
	"github.com/spf13/cobra"
)

// Command returns the MCP server command
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server on stdio",
		Long:  "Start an MCP server exposing snapshot tools. Relative snapshot paths resolve against --root.",
		Args:  cobra.NoArgs,
		RunE:  runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := cmd.Flags().GetString("root")
	if err != nil || root == "" {
		root = "."
	}
	server := NewServer(root)
	return server.Run()
}
