package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasweave/internal/mcpserver"
)

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve oasweave tools over the Model Context Protocol (stdio)",
		Long: `Start an MCP server on stdin/stdout exposing the detect_root, bundle and
validate_traffic tools. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context(), a.settings)
		},
	}
}
