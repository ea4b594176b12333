package languages

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownLanguage indicates an override names a language that is not registered.
var ErrUnknownLanguage = errors.New("unknown language")

// PlainText is the display name used for files whose language is undetected.
const PlainText = "Plain Text"

// Registry maps extensions and file names to grammars.
// Registration is additive and last-write-wins per extension.
type Registry struct {
	mu        sync.RWMutex
	grammars  map[string]Grammar
	byExt     map[string]string
	byName    map[string]string
	longestEx int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		grammars: make(map[string]Grammar),
		byExt:    make(map[string]string),
		byName:   make(map[string]string),
	}
}

// Register validates and adds a grammar. Extensions already claimed by
// another grammar are reassigned to this one.
func (r *Registry) Register(g Grammar) error {
	err := g.Validate()
	if err != nil {
		return err
	}

	g = g.clone()
	key := strings.ToLower(g.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.grammars[key] = g

	for _, ext := range g.Extensions {
		r.claimExt(strings.ToLower(ext), key)
	}

	for _, name := range g.Filenames {
		r.byName[strings.ToLower(name)] = key
	}

	return nil
}

// MustRegister is like Register but panics on a malformed grammar.
func (r *Registry) MustRegister(grammars ...Grammar) {
	for _, g := range grammars {
		err := r.Register(g)
		if err != nil {
			panic(err)
		}
	}
}

// Override maps ext to an already registered language.
func (r *Registry) Override(ext, language string) error {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	key := strings.ToLower(language)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.grammars[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}

	r.claimExt(ext, key)

	return nil
}

func (r *Registry) claimExt(ext, key string) {
	r.byExt[ext] = key
	r.longestEx = max(r.longestEx, len(ext))
}

// Resolve finds the grammar for a path. The longest registered multi-dot
// suffix wins; exact file names are tried first.
func (r *Registry) Resolve(filePath string) (Grammar, bool) {
	base := strings.ToLower(path.Base(strings.ReplaceAll(filePath, "\\", "/")))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if key, ok := r.byName[base]; ok {
		return r.grammars[key], true
	}

	for i := range len(base) {
		if base[i] != '.' || len(base)-i > r.longestEx {
			continue
		}

		if key, ok := r.byExt[base[i:]]; ok {
			return r.grammars[key], true
		}
	}

	return Grammar{}, false
}

// Lookup finds a grammar by language name, case-insensitively.
func (r *Registry) Lookup(name string) (Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.grammars[strings.ToLower(name)]

	return g, ok
}

// Names returns the registered language names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.grammars))
	for _, g := range r.grammars {
		names = append(names, g.Name)
	}

	sort.Strings(names)

	return names
}

// DisplayName returns the report name for a possibly undetected language.
func DisplayName(language string) string {
	if language == "" {
		return PlainText
	}

	return language
}
