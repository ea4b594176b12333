package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locdiff/pkg/report"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(opts *GlobalOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show repository information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer sess.close()

			repo, vcs, err := sess.openVCS(path)
			if err != nil {
				return err
			}
			defer repo.Free()

			ctx, cancel := sess.runContext(cmd)
			defer cancel()

			info, err := vcs.Info(ctx)
			if err != nil {
				return err
			}

			return sess.emit(cmd, info, report.StatusOK)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Repository path")

	return cmd
}
