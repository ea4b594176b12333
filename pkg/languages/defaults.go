package languages

var (
	cBlock   = []Pair{{Start: "/**", End: "*/"}, {Start: "/*", End: "*/"}}
	cLine    = []string{"//"}
	hashLine = []string{"#"}
	xmlBlock = []Pair{{Start: "<!--", End: "-->"}}

	// Markup keeps double-quoted attribute values; apostrophes in text are prose.
	markupQuotes = []byte{'"'}
	noQuotes     = []byte{}
)

// builtin is the static registration table. Adding a language is an edit here.
var builtin = []Grammar{
	{Name: "Python", Extensions: []string{".py", ".pyw", ".pyi"}, LineMarkers: hashLine,
		BlockPairs: []Pair{{Start: `"""`, End: `"""`}, {Start: "'''", End: "'''"}}},
	{Name: "JavaScript", Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "TypeScript", Extensions: []string{".ts", ".tsx", ".mts", ".cts"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "Java", Extensions: []string{".java"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "C", Extensions: []string{".c"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "C++", Extensions: []string{".cpp", ".cc", ".cxx", ".c++", ".hpp", ".hh", ".hxx"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "C/C++ Header", Extensions: []string{".h"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "C#", Extensions: []string{".cs"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "Go", Extensions: []string{".go"}, LineMarkers: cLine, BlockPairs: []Pair{{Start: "/*", End: "*/"}}},
	{Name: "Rust", Extensions: []string{".rs"}, LineMarkers: cLine, BlockPairs: []Pair{{Start: "/*", End: "*/"}}},
	{Name: "Swift", Extensions: []string{".swift"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "Kotlin", Extensions: []string{".kt", ".kts"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "Scala", Extensions: []string{".scala", ".sc"}, LineMarkers: cLine, BlockPairs: cBlock},
	{Name: "Ruby", Extensions: []string{".rb", ".rake"}, Filenames: []string{"Rakefile", "Gemfile"},
		LineMarkers: hashLine, BlockPairs: []Pair{{Start: "=begin", End: "=end"}}},
	{Name: "PHP", Extensions: []string{".php"}, LineMarkers: []string{"//", "#"},
		BlockPairs: []Pair{{Start: "/*", End: "*/"}}},
	{Name: "Shell", Extensions: []string{".sh", ".bash", ".zsh"}, LineMarkers: hashLine},
	{Name: "Perl", Extensions: []string{".pl", ".pm"}, LineMarkers: hashLine,
		BlockPairs: []Pair{{Start: "=pod", End: "=cut"}}},
	{Name: "R", Extensions: []string{".r"}, LineMarkers: hashLine},
	{Name: "Lua", Extensions: []string{".lua"}, LineMarkers: []string{"--"},
		BlockPairs: []Pair{{Start: "--[[", End: "]]"}}},
	{Name: "Haskell", Extensions: []string{".hs"}, LineMarkers: []string{"--"},
		BlockPairs: []Pair{{Start: "{-", End: "-}"}}},
	{Name: "SQL", Extensions: []string{".sql"}, LineMarkers: []string{"--"},
		BlockPairs: []Pair{{Start: "/*", End: "*/"}}},
	{Name: "HTML", Extensions: []string{".html", ".htm"}, BlockPairs: xmlBlock, Quotes: markupQuotes},
	{Name: "XML", Extensions: []string{".xml", ".xsd", ".svg"}, BlockPairs: xmlBlock, Quotes: markupQuotes},
	{Name: "CSS", Extensions: []string{".css"}, BlockPairs: []Pair{{Start: "/*", End: "*/"}}},
	{Name: "SCSS", Extensions: []string{".scss", ".sass"}, LineMarkers: cLine,
		BlockPairs: []Pair{{Start: "/*", End: "*/"}}},
	{Name: "YAML", Extensions: []string{".yaml", ".yml"}, LineMarkers: hashLine},
	{Name: "TOML", Extensions: []string{".toml"}, LineMarkers: hashLine},
	{Name: "JSON", Extensions: []string{".json"}},
	{Name: "Markdown", Extensions: []string{".md", ".markdown"}, BlockPairs: xmlBlock, Quotes: noQuotes},
	{Name: "Makefile", Extensions: []string{".mk"}, Filenames: []string{"Makefile", "GNUmakefile"}, LineMarkers: hashLine},
	{Name: "Dockerfile", Extensions: []string{".dockerfile"}, Filenames: []string{"Dockerfile"}, LineMarkers: hashLine},
}

// Default returns a new registry populated with the built-in grammars.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(builtin...)

	return r
}
