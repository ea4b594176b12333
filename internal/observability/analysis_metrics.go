package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal       = "locdiff.files.total"
	metricSnapshotsTotal   = "locdiff.snapshots.total"
	metricSnapshotDuration = "locdiff.snapshot.duration.seconds"
	metricDiffEntriesTotal = "locdiff.diff.entries.total"
	metricPairsTotal       = "locdiff.trend.pairs.total"

	attrOutcome = "outcome"
)

// AnalysisMetrics holds instruments for snapshot builds and diffs.
type AnalysisMetrics struct {
	filesTotal       metric.Int64Counter
	snapshotsTotal   metric.Int64Counter
	snapshotDuration metric.Float64Histogram
	diffEntries      metric.Int64Counter
	pairsTotal       metric.Int64Counter
}

// SnapshotStats summarizes one snapshot build.
type SnapshotStats struct {
	Files      int
	Failed     int
	Ineligible int
	Duration   time.Duration
}

// DiffStats summarizes one revision diff.
type DiffStats struct {
	Added    int
	Modified int
	Renamed  int
	Deleted  int
}

// NewAnalysisMetrics creates analysis instruments from mt.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	in := &instruments{meter: mt}

	am := &AnalysisMetrics{
		filesTotal:       in.count(metricFilesTotal, "Files seen by outcome", "{file}"),
		snapshotsTotal:   in.count(metricSnapshotsTotal, "Snapshots built", "{snapshot}"),
		snapshotDuration: in.seconds(metricSnapshotDuration, "Snapshot build duration"),
		diffEntries:      in.count(metricDiffEntriesTotal, "Diff entries by status", "{entry}"),
		pairsTotal:       in.count(metricPairsTotal, "Trend commit pairs by outcome", "{pair}"),
	}

	if in.err != nil {
		return nil, in.err
	}

	return am, nil
}

// RecordSnapshot records a completed snapshot build. Safe on a nil receiver.
func (am *AnalysisMetrics) RecordSnapshot(ctx context.Context, stats SnapshotStats) {
	if am == nil {
		return
	}

	am.snapshotsTotal.Add(ctx, 1)
	am.snapshotDuration.Record(ctx, stats.Duration.Seconds())

	am.filesTotal.Add(ctx, int64(stats.Files), outcome("counted"))
	am.filesTotal.Add(ctx, int64(stats.Failed), outcome("failed"))
	am.filesTotal.Add(ctx, int64(stats.Ineligible), outcome("ineligible"))
}

// RecordDiff records the entry counts of one diff. Safe on a nil receiver.
func (am *AnalysisMetrics) RecordDiff(ctx context.Context, stats DiffStats) {
	if am == nil {
		return
	}

	am.diffEntries.Add(ctx, int64(stats.Added), status("added"))
	am.diffEntries.Add(ctx, int64(stats.Modified), status("modified"))
	am.diffEntries.Add(ctx, int64(stats.Renamed), status("renamed"))
	am.diffEntries.Add(ctx, int64(stats.Deleted), status("deleted"))
}

// RecordPair records one trend step. Safe on a nil receiver.
func (am *AnalysisMetrics) RecordPair(ctx context.Context, failed bool) {
	if am == nil {
		return
	}

	result := StatusOK
	if failed {
		result = StatusError
	}

	am.pairsTotal.Add(ctx, 1, outcome(result))
}

func outcome(v string) metric.AddOption {
	return metric.WithAttributes(attribute.String(attrOutcome, v))
}

func status(v string) metric.AddOption {
	return metric.WithAttributes(attribute.String(attrStatus, v))
}
