package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locdiff/pkg/history"
	"github.com/Sumatoshi-tech/locdiff/pkg/report"
)

// ErrRangeRequired is returned when trend gets neither a date nor a revision range.
var ErrRangeRequired = errors.New("trend needs --start-date/--end-date or --from/--to")

// ErrConflictingRange is returned when dates and revisions are combined.
var ErrConflictingRange = errors.New("--start-date/--end-date and --from/--to are mutually exclusive")

// TrendCommand holds the flags of the trend command.
type TrendCommand struct {
	opts      *GlobalOptions
	path      string
	startDate string
	endDate   string
	from      string
	to        string
}

// NewTrendCommand creates the trend command.
func NewTrendCommand(opts *GlobalOptions) *cobra.Command {
	tc := &TrendCommand{opts: opts}

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Track line counts over a range of commits",
		Long: `Count the first commit of a range, then diff every consecutive pair
of first-parent commits after it.

The range is either a date window (--start-date, --end-date; YYYY-MM-DD,
RFC3339 or a relative duration such as 720h) or two revisions (--from, --to)
where --from must be an ancestor of --to. A failing pair is reported and
skipped unless --fail-fast is set.`,
		Args: cobra.NoArgs,
		RunE: tc.run,
	}

	cmd.Flags().StringVarP(&tc.path, "path", "p", ".", "Repository path")
	cmd.Flags().StringVar(&tc.startDate, "start-date", "", "First day of the window")
	cmd.Flags().StringVar(&tc.endDate, "end-date", "", "Last day of the window (inclusive)")
	cmd.Flags().StringVar(&tc.from, "from", "", "Oldest revision of the range")
	cmd.Flags().StringVar(&tc.to, "to", "", "Newest revision of the range")

	return cmd
}

// bounds returns the range endpoints handed to the repository.
func (tc *TrendCommand) bounds() (string, string, error) {
	dates := tc.startDate != "" || tc.endDate != ""
	revs := tc.from != "" || tc.to != ""

	switch {
	case dates && revs:
		return "", "", ErrConflictingRange
	case dates && tc.startDate != "" && tc.endDate != "":
		return tc.startDate, tc.endDate, nil
	case revs && tc.from != "" && tc.to != "":
		return tc.from, tc.to, nil
	default:
		return "", "", ErrRangeRequired
	}
}

func (tc *TrendCommand) run(cmd *cobra.Command, _ []string) error {
	from, to, err := tc.bounds()
	if err != nil {
		return err
	}

	sess, err := openSession(cmd, tc.opts)
	if err != nil {
		return err
	}
	defer sess.close()

	repo, vcs, err := sess.openVCS(tc.path)
	if err != nil {
		return err
	}
	defer repo.Free()

	ctx, cancel := sess.runContext(cmd)
	defer cancel()

	commits, err := vcs.CommitsBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list commits %s..%s: %w", from, to, err)
	}

	sess.logger.InfoContext(ctx, "analyzing commit range", "from", from, "to", to, "commits", len(commits))

	analyzer := &history.Analyzer{
		VCS:      vcs,
		Builder:  sess.builder(),
		FailFast: sess.cfg.Analysis.FailFast,
		Churn:    sess.cfg.Analysis.Churn,
		Metrics:  sess.metrics,
		Logger:   sess.logger,
	}

	rep := report.FromTrend(analyzer.Collect(ctx, commits))

	return sess.emit(cmd, rep, rep.Status)
}
