package filter_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locdiff/pkg/filter"
)

func newFilter(t *testing.T, opts filter.Options) *filter.Filter {
	t.Helper()

	f, err := filter.New(opts)
	require.NoError(t, err)

	return f
}

func TestCheckPath_Defaults(t *testing.T) {
	t.Parallel()

	f := newFilter(t, filter.Options{})

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{"sub/.git/HEAD", true},
		{"web/node_modules/react/index.js", true},
		{"vendor/github.com/x/y.go", true},
		{"build/app.EXE", true},
		{"pkg/__pycache__/m.cpython-312.pyc", true},
		{".DS_Store", true},
		{"myvendor/x.go", false},
		{"cmd/main.go", false},
		{"environment.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			v := f.CheckPath(tt.path)
			assert.Equal(t, !tt.ignored, v.Eligible)

			if tt.ignored {
				assert.Equal(t, filter.ReasonIgnored, v.Reason)
				assert.NotEmpty(t, v.Detail)
			}
		})
	}
}

func TestCheckPath_FirstMatchWins(t *testing.T) {
	t.Parallel()

	f := newFilter(t, filter.Options{
		NoDefaultIgnores: true,
		IgnorePatterns:   []string{`^gen/`, `\.go$`},
	})

	v := f.CheckPath("gen/x.go")
	assert.False(t, v.Eligible)
	assert.Equal(t, "(?i)^gen/", v.Detail)

	v = f.CheckPath("src/x.go")
	assert.Equal(t, `(?i)\.go$`, v.Detail)

	assert.True(t, f.CheckPath(".git/config").Eligible)
}

func TestCheckDir(t *testing.T) {
	t.Parallel()

	f := newFilter(t, filter.Options{})

	assert.False(t, f.CheckDir("node_modules").Eligible)
	assert.False(t, f.CheckDir("a/.git/").Eligible)
	assert.True(t, f.CheckDir("src").Eligible)
}

func TestCheckPath_SkipVendored(t *testing.T) {
	t.Parallel()

	f := newFilter(t, filter.Options{NoDefaultIgnores: true, SkipVendored: true})

	v := f.CheckPath("third_party/lib/x.c")
	assert.False(t, v.Eligible)
	assert.Equal(t, filter.ReasonVendored, v.Reason)

	assert.True(t, f.CheckPath("src/x.c").Eligible)
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := filter.New(filter.Options{IgnorePatterns: []string{"("}})
	assert.ErrorIs(t, err, filter.ErrInvalidPattern)
}

func TestCheckSize(t *testing.T) {
	t.Parallel()

	f := newFilter(t, filter.Options{MaxFileSize: 100})

	assert.True(t, f.CheckSize(100).Eligible)

	v := f.CheckSize(101)
	assert.False(t, v.Eligible)
	assert.Equal(t, filter.ReasonTooLarge, v.Reason)

	assert.True(t, newFilter(t, filter.Options{}).CheckSize(1<<40).Eligible)
}

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.False(t, filter.IsBinary([]byte("plain text\n")))
	assert.True(t, filter.IsBinary([]byte{'a', 0, 'b'}))

	late := append(bytes.Repeat([]byte("a"), filter.SniffLength), 0)
	assert.False(t, filter.IsBinary(late))

	edge := append(bytes.Repeat([]byte("a"), filter.SniffLength-1), 0)
	assert.True(t, filter.IsBinary(edge))
}

func TestIsEligible(t *testing.T) {
	t.Parallel()

	f := newFilter(t, filter.Options{})

	assert.True(t, f.IsEligible("main.go", []byte("package main\n")))
	assert.False(t, f.IsEligible("main.go", []byte{0x7f, 'E', 'L', 'F', 0}))
	assert.False(t, f.IsEligible(".git/HEAD", []byte("ref: refs/heads/main\n")))
}
