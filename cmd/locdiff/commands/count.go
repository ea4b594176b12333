package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locdiff/pkg/report"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// NewCountCommand creates the count command.
func NewCountCommand(opts *GlobalOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "count [path]",
		Short: "Count code, comment and blank lines of a directory",
		Long: `Walk a directory and classify every eligible file line by line.

Files are grouped by language; undetected files count as Plain Text.
The exit code is 2 when some files could not be read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				path = args[0]
			}

			return runCount(cmd, opts, path)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Directory to count")

	return cmd
}

func runCount(cmd *cobra.Command, opts *GlobalOptions, path string) error {
	sess, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.close()

	ctx, cancel := sess.runContext(cmd)
	defer cancel()

	sess.logger.DebugContext(ctx, "counting", "path", path)

	snap, err := sess.builder().Build(ctx, snapshot.NewWorkTree(path, sess.filter))
	if err != nil {
		return err
	}

	rep := report.FromSnapshot(snap, sess.reportOptions())

	return sess.emit(cmd, rep, rep.Status)
}
