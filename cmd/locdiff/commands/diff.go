package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locdiff/pkg/history"
	"github.com/Sumatoshi-tech/locdiff/pkg/report"
	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
)

// ErrMissingRevisions is returned when diff is called without both commits.
var ErrMissingRevisions = errors.New("both --commit-id-1 and --commit-id-2 are required")

// DiffCommand holds the flags of the diff command.
type DiffCommand struct {
	opts        *GlobalOptions
	path        string
	from        string
	to          string
	renamesFrom string
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(opts *GlobalOptions) *cobra.Command {
	dc := &DiffCommand{opts: opts}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare line counts between two revisions",
		Long: `Count both revisions and report added, modified, renamed and deleted
files together with the net change per language.

Renames come from the repository's similarity detection unless
--renames-from points at a "git diff -M" patch.`,
		Args: cobra.NoArgs,
		RunE: dc.run,
	}

	cmd.Flags().StringVarP(&dc.path, "path", "p", ".", "Repository path")
	cmd.Flags().StringVar(&dc.from, "commit-id-1", "", "Base revision (hash, branch, tag or HEAD~n)")
	cmd.Flags().StringVar(&dc.to, "commit-id-2", "", "Target revision")
	cmd.Flags().StringVar(&dc.renamesFrom, "renames-from", "", "Read rename hints from a unified diff file")

	return cmd
}

func (dc *DiffCommand) run(cmd *cobra.Command, _ []string) error {
	if dc.from == "" || dc.to == "" {
		return ErrMissingRevisions
	}

	sess, err := openSession(cmd, dc.opts)
	if err != nil {
		return err
	}
	defer sess.close()

	repo, vcs, err := sess.openVCS(dc.path)
	if err != nil {
		return err
	}
	defer repo.Free()

	var backend history.VCS = vcs

	if dc.renamesFrom != "" {
		hints, hintErr := readRenameHints(dc.renamesFrom)
		if hintErr != nil {
			return hintErr
		}

		backend = history.WithRenameHints(vcs, hints)
	}

	ctx, cancel := sess.runContext(cmd)
	defer cancel()

	cmp, err := history.Compare(ctx, backend, sess.builder(), dc.from, dc.to)
	if err != nil {
		return err
	}

	if sess.cfg.Analysis.Churn {
		err = history.AttachChurn(ctx, backend, cmp.Diff)
		if err != nil {
			return fmt.Errorf("line churn: %w", err)
		}
	}

	sess.metrics.RecordDiff(ctx, history.DiffStats(cmp.Diff))

	rep := report.FromDiff(cmp.Diff, cmp.From, cmp.To, sess.reportOptions())

	return sess.emit(cmd, rep, rep.Status)
}

func readRenameHints(path string) (revdiff.RenameHints, error) {
	patch, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rename hints: %w", err)
	}

	hints, err := revdiff.ParseRenameHints(patch)
	if err != nil {
		return nil, fmt.Errorf("parse rename hints %s: %w", path, err)
	}

	return hints, nil
}
