// Package commands implements CLI command handlers for locdiff.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/locdiff/internal/config"
	"github.com/Sumatoshi-tech/locdiff/pkg/render"
)

// Shared flag names.
const (
	flagFormat         = "output-format"
	flagOutputFile     = "output-file"
	flagShowFiles      = "show-files"
	flagIgnorePatterns = "ignore-patterns"
	flagLanguages      = "languages"
	flagWorkers        = "workers"
	flagTimeout        = "timeout"
	flagFailFast       = "fail-fast"
	flagChurn          = "churn"
	flagConfig         = "config"
	flagVerbose        = "verbose"
	flagQuiet          = "quiet"
	flagNoColor        = "no-color"
	flagLogJSON        = "log-json"
)

// GlobalOptions holds the persistent flags shared by every subcommand.
// Flags left unset fall back to the configuration file and its defaults.
type GlobalOptions struct {
	Format         string
	OutputFile     string
	ShowFiles      bool
	IgnorePatterns []string
	Languages      []string
	Workers        int
	Timeout        string
	FailFast       bool
	Churn          bool
	ConfigPath     string
	Verbose        bool
	Quiet          bool
	NoColor        bool
	LogJSON        bool
}

func (o *GlobalOptions) register(flags *pflag.FlagSet) {
	flags.StringVarP(&o.Format, flagFormat, "f", config.DefaultOutputFormat,
		"Output format: console, json, yaml, csv, markdown, html")
	flags.StringVarP(&o.OutputFile, flagOutputFile, "o", "", "Write output to file (.lz4 suffix compresses)")
	flags.BoolVar(&o.ShowFiles, flagShowFiles, false, "List per-file results")
	flags.StringArrayVar(&o.IgnorePatterns, flagIgnorePatterns, nil, "Additional ignore regexp matched against slash paths (repeatable)")
	flags.StringSliceVar(&o.Languages, flagLanguages, nil, "Only count these languages (comma separated)")
	flags.IntVar(&o.Workers, flagWorkers, config.DefaultWorkers, "Number of parallel workers (0 = use CPU count)")
	flags.StringVar(&o.Timeout, flagTimeout, config.DefaultTimeout, "Abort after this duration (e.g. 30s, 5m)")
	flags.BoolVar(&o.FailFast, flagFailFast, config.DefaultFailFast, "Stop a trend at the first failing commit pair")
	flags.BoolVar(&o.Churn, flagChurn, config.DefaultChurn, "Add added/removed line counts to diff entries")
	flags.StringVar(&o.ConfigPath, flagConfig, "", "Config file (default .locdiff.yaml in CWD or $HOME)")
	flags.BoolVarP(&o.Verbose, flagVerbose, "v", false, "verbose output")
	flags.BoolVarP(&o.Quiet, flagQuiet, "q", false, "suppress output")
	flags.BoolVar(&o.NoColor, flagNoColor, false, "Disable colored console output")
	flags.BoolVar(&o.LogJSON, flagLogJSON, config.DefaultLogJSON, "Write logs to stderr as JSON")
}

// apply overlays the flags the user actually set onto cfg.
func (o *GlobalOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed(flagFormat) {
		cfg.Output.Format = o.Format
	}

	if flags.Changed(flagShowFiles) {
		cfg.Output.ShowFiles = o.ShowFiles
	}

	if flags.Changed(flagIgnorePatterns) {
		cfg.Filter.IgnorePatterns = append(cfg.Filter.IgnorePatterns, o.IgnorePatterns...)
	}

	if flags.Changed(flagLanguages) {
		cfg.Languages.Include = o.Languages
	}

	if flags.Changed(flagWorkers) {
		cfg.Analysis.Workers = o.Workers
	}

	if flags.Changed(flagTimeout) {
		cfg.Analysis.Timeout = o.Timeout
	}

	if flags.Changed(flagFailFast) {
		cfg.Analysis.FailFast = o.FailFast
	}

	if flags.Changed(flagChurn) {
		cfg.Analysis.Churn = o.Churn
	}

	if flags.Changed(flagLogJSON) {
		cfg.Log.JSON = o.LogJSON
	}

	switch {
	case o.Verbose:
		cfg.Log.Level = "debug"
	case o.Quiet:
		cfg.Log.Level = "error"
	}

	err := cfg.Validate()
	if err != nil {
		return err
	}

	return render.ValidateFormat(cfg.Output.Format)
}
