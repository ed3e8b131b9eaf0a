package source

import (
	"path/filepath"
	"sort"
)

// --- Enums ---

// Language identifies the grammar a file is parsed with.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
)

// SupportedLanguages lists every language tag the parsers understand.
var SupportedLanguages = []Language{LangPython, LangJavaScript, LangTypeScript}

// DefinitionKind classifies a recorded definition.
type DefinitionKind string

const (
	KindFunction DefinitionKind = "function"
	KindClass    DefinitionKind = "class"
	KindMethod   DefinitionKind = "method"
	KindVariable DefinitionKind = "variable"
)

// StarImport is the name recorded for wildcard and namespace imports.
const StarImport = "*"

// --- Models ---

// File is a discovered source file handed to the parsers.
type File struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
}

// Import is a single import statement (or one clause of a multi-name
// Python `import a, b`).
type Import struct {
	Module string   `json:"module"`
	Names  []string `json:"names,omitempty"`
	Alias  string   `json:"alias,omitempty"`
	Line   int      `json:"line"`
	IsStar bool     `json:"isStar,omitempty"`
}

// Definition is a function, class or method declaration.
type Definition struct {
	Name         string         `json:"name"`
	Kind         DefinitionKind `json:"kind"`
	StartLine    int            `json:"startLine"`
	EndLine      int            `json:"endLine"`
	Parent       string         `json:"parent,omitempty"` // enclosing class
	NestingDepth int            `json:"nestingDepth"`
	Calls        []string       `json:"calls,omitempty"`
	Parameters   []string       `json:"parameters,omitempty"`
	Doc          string         `json:"doc,omitempty"`
}

// QualifiedName returns Parent.Name for methods and Name otherwise.
func (d Definition) QualifiedName() string {
	if d.Parent == "" {
		return d.Name
	}
	return d.Parent + "." + d.Name
}

// Comment is a source comment. Owner is set when the comment is the
// declared documentation of a definition.
type Comment struct {
	Text  string `json:"text"`
	Line  int    `json:"line"`
	IsDoc bool   `json:"isDoc,omitempty"`
	Owner string `json:"owner,omitempty"`
}

// ParsedFile is the per-file extraction record every parser emits.
type ParsedFile struct {
	Path        string       `json:"path"`
	Language    Language     `json:"language"`
	Imports     []Import     `json:"imports"`
	Definitions []Definition `json:"definitions"`
	Comments    []Comment    `json:"comments"`
	LinesOfCode int          `json:"linesOfCode"`
	Content     string       `json:"-"`
}

// NewParsedFile returns a record holding only the raw text and its line
// count. Parsers fill in the structural fields on success.
func NewParsedFile(path string, lang Language, content string) *ParsedFile {
	return &ParsedFile{
		Path:        path,
		Language:    lang,
		Content:     content,
		LinesOfCode: CountLines(content),
	}
}

// ImportedNames returns every name the file binds through imports. Star
// imports contribute the module itself.
func (pf *ParsedFile) ImportedNames() map[string]bool {
	names := make(map[string]bool)
	for _, imp := range pf.Imports {
		if imp.IsStar {
			names[imp.Module] = true
			continue
		}
		for _, n := range imp.Names {
			names[n] = true
		}
		if imp.Alias != "" {
			names[imp.Alias] = true
		}
	}
	return names
}

// DefinitionNames returns the bare names of all definitions.
func (pf *ParsedFile) DefinitionNames() map[string]bool {
	names := make(map[string]bool, len(pf.Definitions))
	for _, d := range pf.Definitions {
		names[d.Name] = true
	}
	return names
}

// AllCalls returns the union of call targets across definitions.
func (pf *ParsedFile) AllCalls() map[string]bool {
	calls := make(map[string]bool)
	for _, d := range pf.Definitions {
		for _, c := range d.Calls {
			calls[c] = true
		}
	}
	return calls
}

// Collection holds parse results keyed by file path.
type Collection map[string]*ParsedFile

// Files returns the collection's records ordered by path.
func (c Collection) Files() []*ParsedFile {
	paths := make([]string, 0, len(c))
	for p := range c {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]*ParsedFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, c[p])
	}
	return out
}

// extToLanguage maps file extensions to language tags.
var extToLanguage = map[string]Language{
	".py":  LangPython,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
}

// LanguageForPath returns the language tag for a file extension.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extToLanguage[filepath.Ext(path)]
	return lang, ok
}
