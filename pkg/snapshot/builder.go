package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/locdiff/internal/observability"
	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/filter"
	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/linecount"
)

// tracerName is the default OTel tracer name for snapshot builds.
const tracerName = "locdiff"

// Builder classifies every eligible file of a Source into a Snapshot.
// A Builder is safe for concurrent use once configured.
type Builder struct {
	Registry *languages.Registry
	Filter   *filter.Filter

	// Workers bounds concurrent file processing. Zero uses runtime.NumCPU.
	Workers int

	// Languages, when non-empty, restricts counting to the named languages.
	// Undetected files are addressed as languages.PlainText.
	Languages []string

	// KeepLines retains per-line classifications in each FileRecord.
	KeepLines bool

	// Logger receives per-file diagnostics. Nil uses slog.Default.
	Logger *slog.Logger

	// Metrics is optional; nil disables recording.
	Metrics *observability.AnalysisMetrics

	// Tracer is optional; nil falls back to the global provider.
	Tracer trace.Tracer
}

// NewBuilder creates a Builder with the default registry and filter.
func NewBuilder() *Builder {
	flt, err := filter.New(filter.Options{})
	if err != nil {
		panic(err)
	}

	return &Builder{Registry: languages.Default(), Filter: flt}
}

type outcome struct {
	record     *FileRecord
	failure    *failure.Failure
	ineligible *Ineligible
}

// Build lists and classifies all files of src. Per-file errors are collected
// on the Snapshot. Listing errors and cancellation return no Snapshot.
func (b *Builder) Build(ctx context.Context, src Source) (*Snapshot, error) {
	start := time.Now()
	revision := src.Revision()

	ctx, span := b.tracer().Start(ctx, "locdiff.snapshot.build",
		trace.WithAttributes(attribute.String("snapshot.revision", revision)))
	defer span.End()

	entries, err := src.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files at %s: %w", revision, err)
	}

	var (
		mu       sync.Mutex
		outcomes = make(map[string]outcome, len(entries))
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.workers())

	for _, entry := range entries {
		group.Go(func() error {
			ctxErr := groupCtx.Err()
			if ctxErr != nil {
				return ctxErr
			}

			out := b.process(groupCtx, src, entry)

			mu.Lock()
			outcomes[entry.Path] = out
			mu.Unlock()

			return nil
		})
	}

	err = group.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		return nil, fmt.Errorf("build snapshot %s: %w", revision, err)
	}

	snap := assemble(revision, outcomes)

	span.SetAttributes(
		attribute.Int("snapshot.files", len(snap.Files)),
		attribute.Int("snapshot.failures", len(snap.Failures)),
	)

	b.Metrics.RecordSnapshot(ctx, observability.SnapshotStats{
		Files:      len(snap.Files),
		Failed:     len(snap.Failures),
		Ineligible: len(snap.Ineligible),
		Duration:   time.Since(start),
	})

	b.logger().InfoContext(ctx, "snapshot built",
		"revision", revision,
		"files", len(snap.Files),
		"failures", len(snap.Failures),
		"ineligible", len(snap.Ineligible),
		"duration", time.Since(start))

	return snap, nil
}

func assemble(revision string, outcomes map[string]outcome) *Snapshot {
	records := make([]*FileRecord, 0, len(outcomes))

	var (
		failures   []*failure.Failure
		ineligible []Ineligible
	)

	for _, out := range outcomes {
		switch {
		case out.record != nil:
			records = append(records, out.record)
		case out.failure != nil:
			failures = append(failures, out.failure)
		case out.ineligible != nil:
			ineligible = append(ineligible, *out.ineligible)
		}
	}

	snap := newSnapshot(revision, records)
	snap.Failures = sortFailures(failures)
	snap.Ineligible = sortIneligible(ineligible)

	return snap
}

func (b *Builder) process(ctx context.Context, src Source, entry Entry) outcome {
	if entry.Err != nil {
		return b.fail(ctx, src.Revision(), entry.Path, entry.Err)
	}

	verdict := b.Filter.CheckPath(entry.Path)
	if !verdict.Eligible {
		return skip(entry.Path, verdict)
	}

	verdict = b.Filter.CheckSize(entry.Size)
	if !verdict.Eligible {
		return skip(entry.Path, verdict)
	}

	content, err := src.ReadFile(ctx, entry.Path)
	if err != nil {
		return b.fail(ctx, src.Revision(), entry.Path, err)
	}

	verdict = b.Filter.CheckSize(int64(len(content)))
	if verdict.Eligible {
		verdict = b.Filter.CheckContent(content)
	}

	if !verdict.Eligible {
		return skip(entry.Path, verdict)
	}

	var grammar *languages.Grammar

	if g, ok := b.Registry.Detect(entry.Path, content); ok {
		grammar = &g
	}

	language := ""
	if grammar != nil {
		language = grammar.Name
	}

	if !b.allowed(language) {
		return skip(entry.Path, filter.Verdict{Reason: filter.ReasonLanguage, Detail: languages.DisplayName(language)})
	}

	res := linecount.ClassifyContent(content, grammar)

	hash := entry.Hash
	if hash == "" {
		hash = BlobHash(content)
	}

	rec := &FileRecord{
		Path:         entry.Path,
		Language:     language,
		Counts:       res.Counts,
		Size:         int64(len(content)),
		Hash:         hash,
		Unterminated: res.Unterminated,
	}

	if b.KeepLines {
		rec.Lines = res.Lines
	}

	if res.Unterminated {
		b.logger().DebugContext(ctx, "unterminated block comment", "path", entry.Path)
	}

	return outcome{record: rec}
}

func (b *Builder) fail(ctx context.Context, revision, path string, err error) outcome {
	f := failure.New(revision, path, err)

	b.logger().DebugContext(ctx, "file failed", "path", path, "kind", f.Kind(), "error", err)

	return outcome{failure: f}
}

func skip(path string, verdict filter.Verdict) outcome {
	return outcome{ineligible: &Ineligible{Path: path, Reason: verdict.Reason, Detail: verdict.Detail}}
}

func (b *Builder) allowed(language string) bool {
	if len(b.Languages) == 0 {
		return true
	}

	name := languages.DisplayName(language)

	for _, want := range b.Languages {
		if strings.EqualFold(want, name) {
			return true
		}
	}

	return false
}

func (b *Builder) workers() int {
	if b.Workers > 0 {
		return b.Workers
	}

	return runtime.NumCPU()
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}

	return slog.Default()
}

func (b *Builder) tracer() trace.Tracer {
	if b.Tracer != nil {
		return b.Tracer
	}

	return otel.Tracer(tracerName)
}

func sortFailures(fs []*failure.Failure) []*failure.Failure {
	sort.Slice(fs, func(i, j int) bool { return fs[i].Path < fs[j].Path })

	return fs
}

func sortIneligible(in []Ineligible) []Ineligible {
	sort.Slice(in, func(i, j int) bool { return in[i].Path < in[j].Path })

	return in
}
