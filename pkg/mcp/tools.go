package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/locdiff/internal/observability"
	"github.com/Sumatoshi-tech/locdiff/pkg/filter"
	"github.com/Sumatoshi-tech/locdiff/pkg/gitlib"
	"github.com/Sumatoshi-tech/locdiff/pkg/history"
	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/linecount"
	"github.com/Sumatoshi-tech/locdiff/pkg/report"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// Tool name constants.
const (
	ToolNameCount = "locdiff_count"
	ToolNameDiff  = "locdiff_diff"
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrMissingLanguage indicates neither language nor filename was given.
	ErrMissingLanguage = errors.New("language or filename parameter is required")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrUnsupportedLanguage indicates the language has no registered grammar.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrEmptyRepoPath indicates the repo_path parameter is empty.
	ErrEmptyRepoPath = errors.New("repo_path parameter is required and must not be empty")
	// ErrRepoPathNotAbsolute indicates the repo_path is not an absolute path.
	ErrRepoPathNotAbsolute = errors.New("repo_path must be an absolute path")
	// ErrRepoNotFound indicates the repository path does not exist.
	ErrRepoNotFound = errors.New("repository path does not exist")
	// ErrMissingRevision indicates a revision parameter is empty.
	ErrMissingRevision = errors.New("from and to revisions are required")
)

// CountInput is the input schema for the locdiff_count tool.
type CountInput struct {
	Code     string `json:"code"               jsonschema:"source code to classify"`
	Language string `json:"language,omitempty" jsonschema:"language name (e.g. Go Python); takes precedence over filename"`
	Filename string `json:"filename,omitempty" jsonschema:"file name used to detect the language (e.g. main.go)"`
}

// DiffInput is the input schema for the locdiff_diff tool.
type DiffInput struct {
	RepoPath  string `json:"repo_path"            jsonschema:"absolute path to a Git repository"`
	From      string `json:"from"                 jsonschema:"base revision (hash, branch, tag or HEAD~n)"`
	To        string `json:"to"                   jsonschema:"target revision"`
	ShowFiles bool   `json:"show_files,omitempty" jsonschema:"list every changed file"`
	Churn     bool   `json:"churn,omitempty"      jsonschema:"add added/removed/changed line counts to modified files"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// CountResult is the locdiff_count payload.
type CountResult struct {
	Language     string                 `json:"language"`
	Counts       linecount.Counts       `json:"counts"`
	Lines        []linecount.LineRecord `json:"lines"`
	Unterminated bool                   `json:"unterminated_comment,omitempty"`
}

type handlers struct {
	registry *languages.Registry
	logger   *slog.Logger
	analysis *observability.AnalysisMetrics
	tracer   trace.Tracer
}

func (h *handlers) count(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input CountInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCountInput(input)
	if err != nil {
		return errorResult(err)
	}

	grammar, err := h.grammarFor(input)
	if err != nil {
		return errorResult(err)
	}

	res := linecount.ClassifyContent([]byte(input.Code), grammar)

	name := languages.PlainText
	if grammar != nil {
		name = grammar.Name
	}

	return jsonResult(CountResult{
		Language:     name,
		Counts:       res.Counts,
		Lines:        res.Lines,
		Unterminated: res.Unterminated,
	})
}

// grammarFor returns nil for undetected file names, which count as plain text.
func (h *handlers) grammarFor(input CountInput) (*languages.Grammar, error) {
	if input.Language != "" {
		g, ok := h.registry.Lookup(input.Language)
		if !ok {
			return nil, fmt.Errorf("%w: %s (known: %s)",
				ErrUnsupportedLanguage, input.Language, strings.Join(h.registry.Names(), ", "))
		}

		return &g, nil
	}

	g, ok := h.registry.Detect(input.Filename, []byte(input.Code))
	if !ok {
		return nil, nil //nolint:nilnil // plain text is not an error.
	}

	return &g, nil
}

func (h *handlers) diff(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input DiffInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateDiffInput(input)
	if err != nil {
		return errorResult(err)
	}

	repo, err := gitlib.OpenRepository(input.RepoPath)
	if err != nil {
		return errorResult(fmt.Errorf("open repository: %w", err))
	}
	defer repo.Free()

	vcs := gitlib.NewVCS(repo)

	builder, err := h.builder()
	if err != nil {
		return errorResult(err)
	}

	cmp, err := history.Compare(ctx, vcs, builder, input.From, input.To)
	if err != nil {
		return errorResult(fmt.Errorf("compare %s..%s: %w", input.From, input.To, err))
	}

	if input.Churn {
		err = history.AttachChurn(ctx, vcs, cmp.Diff)
		if err != nil {
			return errorResult(fmt.Errorf("line churn: %w", err))
		}
	}

	h.analysis.RecordDiff(ctx, history.DiffStats(cmp.Diff))

	return jsonResult(report.FromDiff(cmp.Diff, cmp.From, cmp.To, report.Options{ShowFiles: input.ShowFiles}))
}

func (h *handlers) builder() (*snapshot.Builder, error) {
	flt, err := filter.New(filter.Options{})
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	return &snapshot.Builder{
		Registry: h.registry,
		Filter:   flt,
		Logger:   h.logger,
		Metrics:  h.analysis,
		Tracer:   h.tracer,
	}, nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateCountInput(input CountInput) error {
	if input.Code == "" {
		return ErrEmptyCode
	}

	if input.Language == "" && input.Filename == "" {
		return ErrMissingLanguage
	}

	if len(input.Code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(input.Code), MaxCodeInputBytes)
	}

	return nil
}

func validateDiffInput(input DiffInput) error {
	if input.RepoPath == "" {
		return ErrEmptyRepoPath
	}

	if !filepath.IsAbs(input.RepoPath) {
		return fmt.Errorf("%w: %s", ErrRepoPathNotAbsolute, input.RepoPath)
	}

	_, err := os.Stat(input.RepoPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRepoNotFound, input.RepoPath)
	}

	if input.From == "" || input.To == "" {
		return ErrMissingRevision
	}

	return nil
}
