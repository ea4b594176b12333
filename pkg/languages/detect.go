package languages

import (
	"path"

	"github.com/src-d/enry/v2"
)

// Detect resolves the grammar for a file, falling back to content-based
// detection when the static table has no entry. The fallback only counts
// when the detected language has a registered grammar.
func (r *Registry) Detect(filePath string, content []byte) (Grammar, bool) {
	if g, ok := r.Resolve(filePath); ok {
		return g, true
	}

	name := enry.GetLanguage(path.Base(filePath), content)
	if name == "" {
		return Grammar{}, false
	}

	return r.Lookup(name)
}
