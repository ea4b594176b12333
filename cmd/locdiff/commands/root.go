package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locdiff/pkg/version"
)

// NewRootCommand creates the locdiff command tree.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "locdiff",
		Short: "Count lines of code and track how they change between revisions",
		Long: `locdiff classifies every line as code, comment, blank or mixed.

Commands:
  count     Count a directory
  diff      Compare two revisions
  trend     Track counts over a commit range
  info      Show repository information
  mcp       Serve the tools over MCP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewCountCommand(opts))
	rootCmd.AddCommand(NewDiffCommand(opts))
	rootCmd.AddCommand(NewTrendCommand(opts))
	rootCmd.AddCommand(NewInfoCommand(opts))
	rootCmd.AddCommand(NewMCPCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "locdiff %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
