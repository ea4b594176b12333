package history

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/Sumatoshi-tech/locdiff/internal/observability"
	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// Analyzer counts the first commit of a sequence and diffs each consecutive
// pair after it.
type Analyzer struct {
	VCS     VCS
	Builder *snapshot.Builder

	// FailFast ends the sequence at the first pair error.
	FailFast bool

	// Churn attaches line churn to every diff entry.
	Churn bool

	Metrics *observability.AnalysisMetrics
	Logger  *slog.Logger
}

// Step is the outcome of one commit of the sequence. The first Step is the
// baseline: it has no From and no Diff. Every later Step diffs its commit
// against the previous one.
type Step struct {
	// Index is the position of To in the commit sequence.
	Index int    `json:"index"          yaml:"index"`
	From  string `json:"from,omitempty" yaml:"from,omitempty"`
	To    string `json:"to"             yaml:"to"`

	Diff *revdiff.RevisionDiff `json:"diff,omitempty" yaml:"diff,omitempty"`

	// Totals are the per-language totals of the To snapshot.
	Totals []snapshot.LanguageTotal `json:"totals,omitempty" yaml:"totals,omitempty"`
	// Summary is the grand total of the To snapshot.
	Summary snapshot.LanguageTotal `json:"summary" yaml:"summary"`

	// Partial reports file failures inside either snapshot of the pair.
	Partial bool `json:"partial,omitempty" yaml:"partial,omitempty"`

	// Err is the pair failure; Diff is nil when set.
	Err error `json:"-" yaml:"-"`
}

// Sequence is a lazy, non-restartable stream of Steps.
type Sequence struct {
	analyzer *Analyzer
	commits  []string
	next     int
	prev     *snapshot.Snapshot
	err      error
}

// Analyze starts a sequence over commits, ordered oldest first. Nothing is
// built until Next is called.
func (a *Analyzer) Analyze(commits []string) *Sequence {
	return &Sequence{analyzer: a, commits: commits}
}

// Next computes the next step: the baseline first, then one pair per call.
// It returns io.EOF when the sequence is exhausted. Context errors, and step
// errors under FailFast, end the sequence and are returned again by later
// calls.
func (s *Sequence) Next(ctx context.Context) (Step, error) {
	if s.err != nil {
		return Step{}, s.err
	}

	if s.next >= len(s.commits) {
		s.stop(io.EOF)

		return Step{}, io.EOF
	}

	err := ctx.Err()
	if err != nil {
		s.stop(err)

		return Step{}, err
	}

	i := s.next
	s.next++

	var step Step
	if i == 0 {
		step, err = s.baseline(ctx)
	} else {
		step, err = s.pair(ctx, i)
	}

	if err == nil {
		s.analyzer.Metrics.RecordPair(ctx, false)

		return step, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.stop(ctxErr)

		return Step{}, ctxErr
	}

	s.analyzer.Metrics.RecordPair(ctx, true)

	stepErr := &failure.Failure{Revision: s.commits[i], Err: err}

	if s.analyzer.FailFast {
		s.stop(stepErr)

		return Step{}, stepErr
	}

	failed := Step{Index: i, To: s.commits[i], Err: stepErr}
	if i > 0 {
		failed.From = s.commits[i-1]
	}

	s.analyzer.logger().WarnContext(ctx, "commit step failed",
		"from", failed.From, "to", failed.To, "error", err)

	return failed, nil
}

// baseline counts the first commit and keeps its snapshot for the first pair.
func (s *Sequence) baseline(ctx context.Context) (Step, error) {
	rev := s.commits[0]

	snap, err := s.analyzer.Builder.Build(ctx, SourceAt(s.analyzer.VCS, rev))
	if err != nil {
		return Step{}, err
	}

	s.prev = snap

	return Step{
		To:      rev,
		Totals:  snap.Totals(),
		Summary: snap.Summary(),
		Partial: snap.Partial(),
	}, nil
}

// pair diffs commit i against commit i-1.
func (s *Sequence) pair(ctx context.Context, i int) (Step, error) {
	a := s.analyzer
	from, to := s.commits[i-1], s.commits[i]

	// Release the previous snapshot before building; on failure the next
	// pair starts fresh.
	prev := s.prev
	s.prev = nil

	if prev == nil || prev.Revision != from {
		var err error

		prev, err = a.Builder.Build(ctx, SourceAt(a.VCS, from))
		if err != nil {
			return Step{}, err
		}
	}

	next, err := a.Builder.Build(ctx, SourceAt(a.VCS, to))
	if err != nil {
		return Step{}, err
	}

	s.prev = next

	diff, err := diffPair(ctx, a.VCS, prev, next)
	if err != nil {
		return Step{}, err
	}

	if a.Churn {
		err = AttachChurn(ctx, a.VCS, diff)
		if err != nil {
			return Step{}, err
		}
	}

	a.Metrics.RecordDiff(ctx, DiffStats(diff))

	return Step{
		Index:   i,
		From:    from,
		To:      to,
		Diff:    diff,
		Totals:  next.Totals(),
		Summary: next.Summary(),
		Partial: prev.Partial() || next.Partial(),
	}, nil
}

func (s *Sequence) stop(err error) {
	s.err = err
	s.prev = nil
}

// Trend is a drained Sequence.
type Trend struct {
	Commits []string `json:"commits" yaml:"commits"`
	Steps   []Step   `json:"steps"   yaml:"steps"`

	// Err is the terminal error, nil when the sequence completed.
	Err error `json:"-" yaml:"-"`
}

// Failed returns the steps that failed.
func (t *Trend) Failed() []Step {
	var out []Step

	for _, st := range t.Steps {
		if st.Err != nil {
			out = append(out, st)
		}
	}

	return out
}

// Collect drains a sequence over commits into a Trend. The Trend holds the
// completed prefix when the sequence ends early.
func (a *Analyzer) Collect(ctx context.Context, commits []string) *Trend {
	trend := &Trend{Commits: commits}
	seq := a.Analyze(commits)

	for {
		step, err := seq.Next(ctx)
		if errors.Is(err, io.EOF) {
			return trend
		}

		if err != nil {
			trend.Err = err

			return trend
		}

		trend.Steps = append(trend.Steps, step)
	}
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}

	return slog.Default()
}
