package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locdiff/internal/config"
	"github.com/Sumatoshi-tech/locdiff/internal/observability"
	"github.com/Sumatoshi-tech/locdiff/pkg/filter"
	"github.com/Sumatoshi-tech/locdiff/pkg/gitlib"
	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/render"
	"github.com/Sumatoshi-tech/locdiff/pkg/report"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
	"github.com/Sumatoshi-tech/locdiff/pkg/version"
)

// StatusError reports a non-OK outcome after the report has been written.
type StatusError struct {
	Status report.Status
}

func (e *StatusError) Error() string {
	return "analysis finished with status " + e.Status.String()
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return report.ExitOK
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status.ExitCode()
	}

	return report.ExitFailed
}

// session is the per-invocation state shared by the analysis commands.
type session struct {
	cfg      *config.Config
	opts     *GlobalOptions
	logger   *slog.Logger
	metrics  *observability.AnalysisMetrics
	provider observability.Providers
	registry *languages.Registry
	filter   *filter.Filter
}

func openSession(cmd *cobra.Command, opts *GlobalOptions) (*session, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	err = opts.apply(cmd, cfg)
	if err != nil {
		return nil, err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	obsCfg := observability.ConfigFromEnv(observability.ModeCLI, version.Version)
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Log.JSON
	obsCfg.DebugTrace = opts.Verbose

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	filterOpts, err := cfg.FilterOptions()
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	flt, err := filter.New(filterOpts)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build filter: %w", err), providers.Shutdown(context.Background()))
	}

	return &session{
		cfg:      cfg,
		opts:     opts,
		logger:   providers.Logger,
		metrics:  metrics,
		provider: providers,
		registry: registry,
		filter:   flt,
	}, nil
}

// close flushes telemetry.
func (s *session) close() {
	err := s.provider.Shutdown(context.Background())
	if err != nil {
		s.logger.Warn("observability shutdown failed", "error", err)
	}
}

// runContext applies the configured timeout to the command context.
func (s *session) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	timeout, _ := s.cfg.TimeoutDuration() //nolint:errcheck // validated in openSession.
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}

	return context.WithCancel(ctx)
}

func (s *session) builder() *snapshot.Builder {
	return &snapshot.Builder{
		Registry:  s.registry,
		Filter:    s.filter,
		Workers:   s.cfg.Analysis.Workers,
		Languages: s.cfg.Languages.Include,
		Logger:    s.logger,
		Metrics:   s.metrics,
		Tracer:    s.provider.Tracer,
	}
}

func (s *session) reportOptions() report.Options {
	return report.Options{ShowFiles: s.cfg.Output.ShowFiles}
}

// openVCS opens the repository at path. The caller must Free the repository.
func (s *session) openVCS(path string) (*gitlib.Repository, *gitlib.VCS, error) {
	repo, err := gitlib.OpenRepository(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	return repo, gitlib.NewVCS(repo), nil
}

// emit renders v to the configured destination and turns a non-OK status
// into a StatusError.
func (s *session) emit(cmd *cobra.Command, v any, status report.Status) error {
	out, err := render.OpenOutput(s.opts.OutputFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	renderErr := render.Render(out, s.cfg.Output.Format, v, render.Options{Color: s.colorEnabled()})

	err = errors.Join(renderErr, out.Close())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if status != report.StatusOK {
		return &StatusError{Status: status}
	}

	return nil
}

func (s *session) colorEnabled() bool {
	if s.opts.NoColor || s.opts.OutputFile != "" {
		return false
	}

	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}

	return !color.NoColor
}
