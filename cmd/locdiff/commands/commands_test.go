package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locdiff/cmd/locdiff/commands"
	"github.com/Sumatoshi-tech/locdiff/pkg/gitlib"
	"github.com/Sumatoshi-tech/locdiff/pkg/render"
	"github.com/Sumatoshi-tech/locdiff/pkg/report"
)

// execute runs the root command with an isolated config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "locdiff.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o600))

	var out bytes.Buffer

	cmd := commands.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", cfgPath))

	err := cmd.Execute()

	return out.String(), err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return dir
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	for _, name := range []string{"count", "diff", "trend", "info", "mcp", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCommand_SharedFlags(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	flags := []string{
		"output-format", "output-file", "show-files", "ignore-patterns", "languages",
		"workers", "timeout", "fail-fast", "churn", "config", "verbose", "quiet",
		"no-color", "log-json",
	}

	for _, flagName := range flags {
		t.Run(flagName, func(t *testing.T) {
			t.Parallel()

			require.NotNil(t, root.PersistentFlags().Lookup(flagName), "flag --%s should be registered", flagName)
		})
	}

	assert.Equal(t, "f", root.PersistentFlags().Lookup("output-format").Shorthand)
	assert.Equal(t, "o", root.PersistentFlags().Lookup("output-file").Shorthand)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, commands.ExitCode(nil))
	assert.Equal(t, 2, commands.ExitCode(&commands.StatusError{Status: report.StatusPartial}))
	assert.Equal(t, 1, commands.ExitCode(&commands.StatusError{Status: report.StatusFailed}))
	assert.Equal(t, 1, commands.ExitCode(commands.ErrMissingRevisions))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "locdiff ")
	assert.Contains(t, out, "commit:")
}

func TestCountCommand_JSON(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"main.go":   "package main\n\n// entry\nfunc main() {}\n",
		"notes.txt": "hello\n",
	})

	out, err := execute(t, "count", "--path", dir, "-f", "json", "--show-files")
	require.NoError(t, err)

	var rep report.CountReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	assert.Equal(t, report.StatusOK, rep.Status)
	assert.Equal(t, 2, rep.Summary.Files)
	assert.Equal(t, 5, rep.Summary.Total)
	assert.Len(t, rep.Files, 2)
}

func TestCountCommand_PositionalPathAndLanguages(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"main.go": "package main\n",
		"lib.py":  "x = 1\ny = 2\n",
	})

	out, err := execute(t, "count", dir, "-f", "json", "--languages", "Python")
	require.NoError(t, err)

	var rep report.CountReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	require.Len(t, rep.Languages, 1)
	assert.Equal(t, "Python", rep.Languages[0].Language)
	assert.Equal(t, 2, rep.Summary.Code)
}

func TestCountCommand_IgnorePatterns(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"main.go":        "package main\n",
		"gen/skip_me.go": "package gen\n",
	})

	out, err := execute(t, "count", "--path", dir, "-f", "json", "--ignore-patterns", "gen/")
	require.NoError(t, err)

	var rep report.CountReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	assert.Equal(t, 1, rep.Summary.Files)
}

func TestCountCommand_CompressedOutputFile(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"main.go": "package main\n"})
	target := filepath.Join(t.TempDir(), "report.json.lz4")

	out, err := execute(t, "count", "--path", dir, "-f", "json", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	f, err := os.Open(target)
	require.NoError(t, err)

	defer f.Close()

	var rep report.CountReport
	require.NoError(t, json.NewDecoder(lz4.NewReader(f)).Decode(&rep))
	assert.Equal(t, 1, rep.Summary.Code)
}

func TestCountCommand_Console(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"main.go": "package main\n"})

	out, err := execute(t, "count", "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Go")
	assert.Contains(t, out, "Status: ok")
}

func TestCountCommand_Errors(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"main.go": "package main\n"})

	_, err := execute(t, "count", "--path", dir, "-f", "xml")
	require.ErrorIs(t, err, render.ErrUnknownFormat)

	_, err = execute(t, "count", "--path", dir, "--workers=-1")
	require.Error(t, err)

	_, err = execute(t, "count", "--path", filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Equal(t, 1, commands.ExitCode(err))
}

// fixture is a scratch repository committed through git2go.
type fixture struct {
	t    *testing.T
	dir  string
	repo *git2go.Repository
	head *git2go.Oid
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return &fixture{t: t, dir: dir, repo: repo}
}

func (f *fixture) write(name, content string) {
	f.t.Helper()

	path := filepath.Join(f.dir, name)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *fixture) remove(name string) {
	f.t.Helper()

	require.NoError(f.t, os.Remove(filepath.Join(f.dir, name)))
}

func (f *fixture) commit(message string) string {
	f.t.Helper()

	index, err := f.repo.Index()
	require.NoError(f.t, err)

	defer index.Free()

	require.NoError(f.t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(f.t, index.UpdateAll([]string{"*"}, nil))
	require.NoError(f.t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(f.t, err)

	tree, err := f.repo.LookupTree(treeID)
	require.NoError(f.t, err)

	defer tree.Free()

	sig := &git2go.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()}

	var parents []*git2go.Commit

	if f.head != nil {
		parent, lookupErr := f.repo.LookupCommit(f.head)
		require.NoError(f.t, lookupErr)

		defer parent.Free()

		parents = append(parents, parent)
	}

	oid, err := f.repo.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(f.t, err)

	f.head = oid

	return oid.String()
}

func TestDiffCommand_JSON(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.write("main.go", "package main\n")
	fx.write("gone.py", "x = 1\n")
	first := fx.commit("init")

	fx.write("main.go", "package main\n\n// entry\nfunc main() {}\n")
	fx.remove("gone.py")
	fx.write("new.rb", "puts 1\n")
	second := fx.commit("change")

	out, err := execute(t, "diff", "--path", fx.dir, "--commit-id-1", first, "--commit-id-2", second,
		"-f", "json", "--show-files", "--churn")
	require.NoError(t, err)

	var rep report.DiffReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	assert.Equal(t, first, rep.From)
	assert.Equal(t, second, rep.To)
	assert.Equal(t, 1, rep.Summary.Added)
	assert.Equal(t, 1, rep.Summary.Modified)
	assert.Equal(t, 1, rep.Summary.Deleted)
	require.Len(t, rep.Entries, 3)
	assert.Equal(t, "modified", rep.Entries[1].Status)
	require.NotNil(t, rep.Entries[1].Churn)
	assert.Equal(t, 3, rep.Entries[1].Churn.Added)
}

func TestDiffCommand_RenamesFrom(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.write("a.txt", "alpha\n")
	first := fx.commit("init")

	fx.remove("a.txt")
	fx.write("b.txt", "completely different\ncontent here\n")
	second := fx.commit("rename")

	patch := filepath.Join(t.TempDir(), "renames.patch")
	require.NoError(t, os.WriteFile(patch, []byte("diff --git a/a.txt b/b.txt\n"+
		"similarity index 40%\nrename from a.txt\nrename to b.txt\n"), 0o600))

	out, err := execute(t, "diff", "--path", fx.dir, "--commit-id-1", first, "--commit-id-2", second,
		"-f", "json", "--renames-from", patch)
	require.NoError(t, err)

	var rep report.DiffReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	assert.Equal(t, 1, rep.Summary.Renamed)
	assert.Zero(t, rep.Summary.Added)
	assert.Zero(t, rep.Summary.Deleted)
}

func TestDiffCommand_Errors(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.write("main.go", "package main\n")
	first := fx.commit("init")

	_, err := execute(t, "diff", "--path", fx.dir, "--commit-id-1", first)
	require.ErrorIs(t, err, commands.ErrMissingRevisions)

	_, err = execute(t, "diff", "--path", fx.dir, "--commit-id-1", first, "--commit-id-2", "no-such-branch")
	require.Error(t, err)
	assert.Equal(t, 1, commands.ExitCode(err))
}

func TestTrendCommand_Revisions(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.write("main.go", "package main\n")
	first := fx.commit("one")

	fx.write("main.go", "package main\n\nfunc main() {}\n")
	fx.commit("two")

	fx.write("util.go", "package main\n\n// helper\n")
	last := fx.commit("three")

	out, err := execute(t, "trend", "--path", fx.dir, "--from", first, "--to", last, "-f", "json")
	require.NoError(t, err)

	var rep report.TrendReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	assert.Equal(t, 3, rep.Commits)
	assert.Equal(t, report.StatusOK, rep.Status)
	require.Len(t, rep.Points, 3)
	assert.Equal(t, first, rep.Points[0].To)
	assert.Equal(t, 1, rep.Points[0].Total)
	assert.Equal(t, 2, rep.Points[1].DeltaTotal)
	assert.Equal(t, 1, rep.Points[2].DeltaComments)
}

func TestTrendCommand_SingleCommitWindow(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.write("main.go", "package main

// entry
func main() {}
")
	only := fx.commit("only")

	out, err := execute(t, "trend", "--path", fx.dir,
		"--start-date", "2000-01-01", "--end-date", "2999-12-31", "-f", "json")
	require.NoError(t, err)

	var rep report.TrendReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	assert.Equal(t, 1, rep.Commits)
	assert.Equal(t, report.StatusOK, rep.Status)
	require.Len(t, rep.Points, 1)
	assert.Equal(t, only, rep.Points[0].To)
	assert.Equal(t, 2, rep.Points[0].Code)
	assert.Equal(t, 1, rep.Points[0].Comments)
	assert.Equal(t, 4, rep.Points[0].Total)
}

func TestTrendCommand_RangeFlags(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "trend", "--path", t.TempDir())
	require.ErrorIs(t, err, commands.ErrRangeRequired)

	_, err = execute(t, "trend", "--path", t.TempDir(), "--start-date", "2024-01-01", "--to", "HEAD")
	require.ErrorIs(t, err, commands.ErrConflictingRange)

	_, err = execute(t, "trend", "--path", t.TempDir(), "--start-date", "2024-01-01")
	require.ErrorIs(t, err, commands.ErrRangeRequired)
}

func TestInfoCommand_JSON(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	fx.write("main.go", "package main\n")
	fx.commit("first commit")

	out, err := execute(t, "info", "--path", fx.dir, "-f", "json")
	require.NoError(t, err)

	var info gitlib.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))

	assert.Equal(t, 1, info.Commits)
	assert.Equal(t, "first commit", info.Last.Message)
}
