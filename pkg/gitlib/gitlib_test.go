package gitlib_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/gitlib"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// testRepo wraps a scratch repository for integration testing.
type testRepo struct {
	t      *testing.T
	path   string
	native *git2go.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return &testRepo{t: t, path: dir, native: repo}
}

func (tr *testRepo) createFile(name, content string) {
	tr.t.Helper()

	path := filepath.Join(tr.path, name)

	require.NoError(tr.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tr.t, os.WriteFile(path, []byte(content), 0o644))
}

func (tr *testRepo) deleteFile(name string) {
	tr.t.Helper()

	require.NoError(tr.t, os.Remove(filepath.Join(tr.path, name)))
}

func (tr *testRepo) commit(message string) gitlib.Hash {
	tr.t.Helper()

	return tr.commitAt(message, time.Now())
}

// commitAt stages every change, deletions included, and commits with the
// given author and committer time.
func (tr *testRepo) commitAt(message string, when time.Time) gitlib.Hash {
	tr.t.Helper()

	index, err := tr.native.Index()
	require.NoError(tr.t, err)

	defer index.Free()

	require.NoError(tr.t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(tr.t, index.UpdateAll([]string{"*"}, nil))
	require.NoError(tr.t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(tr.t, err)

	tree, err := tr.native.LookupTree(treeID)
	require.NoError(tr.t, err)

	defer tree.Free()

	sig := &git2go.Signature{Name: "Test User", Email: "test@example.com", When: when}

	var parents []*git2go.Commit

	head, err := tr.native.Head()
	if err == nil {
		headCommit, lookupErr := tr.native.LookupCommit(head.Target())
		require.NoError(tr.t, lookupErr)

		parents = append(parents, headCommit)

		head.Free()
	}

	oid, err := tr.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(tr.t, err)

	for _, parent := range parents {
		parent.Free()
	}

	return gitlib.HashFromOid(oid)
}

func openVCS(t *testing.T, tr *testRepo) *gitlib.VCS {
	t.Helper()

	repo, err := gitlib.OpenRepository(tr.path)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	return gitlib.NewVCS(repo)
}

func TestHashRoundTrip(t *testing.T) {
	t.Parallel()

	const hex = "0123456789abcdef0123456789abcdef01234567"

	h, err := gitlib.NewHash(hex)
	require.NoError(t, err)
	assert.Equal(t, hex, h.String())
	assert.False(t, h.IsZero())
	assert.Equal(t, h, gitlib.HashFromOid(h.ToOid()))
	assert.True(t, gitlib.HashFromOid(nil).IsZero())

	_, err = gitlib.NewHash("abc")
	require.ErrorIs(t, err, gitlib.ErrInvalidHash)

	_, err = gitlib.NewHash(strings.Repeat("zz", gitlib.HashSize))
	require.ErrorIs(t, err, gitlib.ErrInvalidHash)
}

func TestOpenRepository(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile("a.txt", "a\n")
	tr.commit("initial")

	repo, err := gitlib.OpenRepository(tr.path + string(os.PathSeparator))
	require.NoError(t, err)

	defer repo.Free()

	assert.Equal(t, tr.path, repo.Path())
	assert.NotNil(t, repo.Native())
}

func TestOpenRepositoryErrors(t *testing.T) {
	t.Parallel()

	_, err := gitlib.OpenRepository(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, failure.ErrNotFound)

	for _, uri := range []string{"https://github.com/x/y", "git@github.com:x/y.git"} {
		_, err = gitlib.OpenRepository(uri)
		require.ErrorIs(t, err, gitlib.ErrRemoteNotSupported, uri)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile("a.txt", "a\n")
	first := tr.commit("first")
	tr.createFile("a.txt", "b\n")
	second := tr.commit("second")

	vcs := openVCS(t, tr)
	ctx := context.Background()

	got, err := vcs.Resolve(ctx, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, second.String(), got)

	got, err = vcs.Resolve(ctx, "HEAD~1")
	require.NoError(t, err)
	assert.Equal(t, first.String(), got)

	got, err = vcs.Resolve(ctx, first.String()[:10])
	require.NoError(t, err)
	assert.Equal(t, first.String(), got)

	_, err = vcs.Resolve(ctx, "no-such-branch")
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func TestListFilesAndReadBlob(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile("main.go", "package main\n")
	tr.createFile("pkg/util.py", "# util\nx = 1\n")
	tr.commit("initial")

	vcs := openVCS(t, tr)
	ctx := context.Background()

	entries, err := vcs.ListFiles(ctx, "HEAD")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "main.go", entries[0].Path)
	assert.Equal(t, int64(len("package main\n")), entries[0].Size)
	assert.Equal(t, snapshot.BlobHash([]byte("package main\n")), entries[0].Hash)
	assert.Equal(t, "pkg/util.py", entries[1].Path)

	content, err := vcs.ReadBlob(ctx, "HEAD", "pkg/util.py")
	require.NoError(t, err)
	assert.Equal(t, "# util\nx = 1\n", string(content))

	_, err = vcs.ReadBlob(ctx, "HEAD", "missing.go")
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func TestReadBlobWithoutListing(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile("dir/a.c", "int x;\n")
	tr.commit("initial")

	vcs := openVCS(t, tr)

	content, err := vcs.ReadBlob(context.Background(), "HEAD", "dir/a.c")
	require.NoError(t, err)
	assert.Equal(t, "int x;\n", string(content))

	_, err = vcs.ReadBlob(context.Background(), "HEAD", "dir")
	require.ErrorIs(t, err, failure.ErrNotFound)
}

func TestResolveRenames(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("line of code that stays the same\n", 20)

	tr := newTestRepo(t)
	tr.createFile("old.go", body)
	tr.createFile("keep.go", "package keep\n")
	first := tr.commit("first")

	tr.deleteFile("old.go")
	tr.createFile("new.go", body)
	second := tr.commit("rename")

	vcs := openVCS(t, tr)

	hints, err := vcs.ResolveRenames(context.Background(), first.String(), second.String())
	require.NoError(t, err)
	require.Len(t, hints, 1)
	assert.Equal(t, "new.go", hints["old.go"].NewPath)
	assert.InDelta(t, 1.0, hints["old.go"].Similarity, 1e-9)
}

func TestCommitsBetweenRevisions(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile("a.txt", "1\n")
	c1 := tr.commit("one")
	tr.createFile("a.txt", "2\n")
	c2 := tr.commit("two")
	tr.createFile("a.txt", "3\n")
	c3 := tr.commit("three")

	vcs := openVCS(t, tr)
	ctx := context.Background()

	revs, err := vcs.CommitsBetween(ctx, c1.String(), "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{c1.String(), c2.String(), c3.String()}, revs)

	revs, err = vcs.CommitsBetween(ctx, c2.String(), c2.String())
	require.NoError(t, err)
	assert.Equal(t, []string{c2.String()}, revs)

	_, err = vcs.CommitsBetween(ctx, c3.String(), c1.String())
	require.ErrorIs(t, err, gitlib.ErrNotAncestor)

	_, err = vcs.CommitsBetween(ctx, "2024-01-01", "HEAD")
	require.ErrorIs(t, err, gitlib.ErrMixedBounds)
}

func TestCommitsBetweenDates(t *testing.T) {
	t.Parallel()

	day := func(s string) time.Time {
		d, err := time.Parse(time.DateOnly, s)
		require.NoError(t, err)

		return d.Add(12 * time.Hour)
	}

	tr := newTestRepo(t)
	tr.createFile("a.txt", "1\n")
	tr.commitAt("jan", day("2024-01-01"))
	tr.createFile("a.txt", "2\n")
	feb := tr.commitAt("feb", day("2024-02-01"))
	tr.createFile("a.txt", "3\n")
	mar := tr.commitAt("mar", day("2024-03-01"))

	vcs := openVCS(t, tr)
	ctx := context.Background()

	revs, err := vcs.CommitsBetween(ctx, "2024-01-15", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{feb.String(), mar.String()}, revs)

	revs, err = vcs.CommitsBetween(ctx, "2025-01-01", "2025-02-01")
	require.NoError(t, err)
	assert.Empty(t, revs)

	_, err = vcs.CommitsBetween(ctx, "2024-03-01", "2024-01-01")
	require.ErrorIs(t, err, gitlib.ErrInvalidRange)
}

func TestCommitsBetweenCanceled(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile("a.txt", "1\n")
	c1 := tr.commit("one")
	tr.createFile("a.txt", "2\n")
	tr.commit("two")

	vcs := openVCS(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := vcs.CommitsBetween(ctx, c1.String(), "HEAD")
	require.ErrorIs(t, err, context.Canceled)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.createFile("a.txt", "1\n")
	tr.commit("one")
	tr.createFile("a.txt", "2\n")
	last := tr.commit("two\n\nbody text")

	remote, err := tr.native.Remotes.Create("origin", "https://example.com/repo.git")
	require.NoError(t, err)
	remote.Free()

	vcs := openVCS(t, tr)

	info, err := vcs.Info(context.Background())
	require.NoError(t, err)

	assert.Equal(t, tr.path, info.Path)
	assert.NotEmpty(t, info.Branch)
	assert.NotEqual(t, gitlib.DetachedHead, info.Branch)
	assert.Equal(t, 2, info.Commits)
	assert.Equal(t, last.String(), info.Last.ID)
	assert.Equal(t, "two", info.Last.Message)
	assert.Equal(t, "Test User", info.Last.Author)
	assert.Equal(t, []gitlib.Remote{{Name: "origin", URL: "https://example.com/repo.git"}}, info.Remotes)
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	got, err := gitlib.ParseTime("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year())

	got, err = gitlib.ParseTime("2024-01-02T03:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Hour())

	got, err = gitlib.ParseTime("1h")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), got, time.Minute)

	_, err = gitlib.ParseTime("yesterday-ish")
	require.ErrorIs(t, err, gitlib.ErrInvalidTimeFormat)
}
