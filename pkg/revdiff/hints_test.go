package revdiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
)

const renamePatch = `diff --git a/old/name.go b/new/name.go
similarity index 100%
rename from old/name.go
rename to new/name.go
diff --git a/util.js b/lib/util.js
similarity index 87%
rename from util.js
rename to lib/util.js
index 1111111..2222222 100644
--- a/util.js
+++ b/lib/util.js
@@ -1,2 +1,2 @@
 a
-b
+c
diff --git a/main.go b/main.go
index 3333333..4444444 100644
--- a/main.go
+++ b/main.go
@@ -1 +1 @@
-x
+y
`

func TestParseRenameHints(t *testing.T) {
	t.Parallel()

	hints, err := revdiff.ParseRenameHints([]byte(renamePatch))
	require.NoError(t, err)

	assert.Equal(t, revdiff.RenameHints{
		"old/name.go": {NewPath: "new/name.go", Similarity: 1},
		"util.js":     {NewPath: "lib/util.js", Similarity: 0.87},
	}, hints)
}

func TestParseRenameHints_Empty(t *testing.T) {
	t.Parallel()

	hints, err := revdiff.ParseRenameHints(nil)
	require.NoError(t, err)
	assert.Empty(t, hints)
}

func TestChurn(t *testing.T) {
	t.Parallel()

	from := []byte("a\nb\nc\nd\n")
	to := []byte("a\nB\nc\nd\ne\nf\n")

	assert.Equal(t, revdiff.LineChurn{Added: 2, Removed: 0, Changed: 1}, revdiff.Churn(from, to))
	assert.Equal(t, revdiff.LineChurn{Removed: 4}, revdiff.Churn(from, nil))
	assert.Equal(t, revdiff.LineChurn{}, revdiff.Churn(from, from))
}
