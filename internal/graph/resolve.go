package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/dusk-indust/slopgraph/internal/source"
)

// sourceExtensions are stripped when deriving module names from paths.
var sourceExtensions = []string{".py", ".js", ".jsx", ".ts", ".tsx"}

// probeSuffixes are appended to a relative import's base path, in order.
var probeSuffixes = []string{
	"", ".py", ".js", ".jsx", ".ts", ".tsx",
	"/index.js", "/index.ts", "/index.tsx", "/__init__.py",
}

// Resolver maps import module strings to root-relative file paths. It is
// built once per file graph from the known files and performs no
// filesystem I/O except the workspace scan at construction.
type Resolver struct {
	paths      []string
	fileSet    map[string]bool
	modules    map[string]string
	workspaces map[string]*jsWorkspace
}

// NewResolver indexes the given root-relative slash paths. repoRoot is
// scanned for package.json workspaces; an empty root skips the scan.
func NewResolver(repoRoot string, relPaths []string) *Resolver {
	paths := make([]string, len(relPaths))
	copy(paths, relPaths)
	sort.Strings(paths)

	r := &Resolver{
		paths:      paths,
		fileSet:    make(map[string]bool, len(paths)),
		modules:    make(map[string]string, 3*len(paths)),
		workspaces: make(map[string]*jsWorkspace),
	}
	for _, p := range paths {
		r.fileSet[p] = true
	}
	r.buildModuleIndex()
	if repoRoot != "" {
		r.scanWorkspaces(repoRoot)
	}
	return r
}

// buildModuleIndex fills the module table in three passes: full module
// paths (later files overwrite earlier ones), then package directories,
// then bare filenames, the last two only where no entry exists yet.
func (r *Resolver) buildModuleIndex() {
	for _, p := range r.paths {
		stem := stripSourceExt(p)
		r.modules[stem] = p
		if strings.HasSuffix(p, ".py") {
			r.modules[strings.ReplaceAll(stem, "/", ".")] = p
		}
	}

	for _, p := range r.paths {
		stem := stripSourceExt(p)
		base := path.Base(stem)
		if base != "__init__" && base != "index" {
			continue
		}
		dir := path.Dir(stem)
		if dir == "." {
			continue
		}
		r.setIfAbsent(dir, p)
		if base == "__init__" {
			r.setIfAbsent(strings.ReplaceAll(dir, "/", "."), p)
		}
	}

	for _, p := range r.paths {
		r.setIfAbsent(path.Base(stripSourceExt(p)), p)
	}
}

func (r *Resolver) setIfAbsent(key, p string) {
	if _, ok := r.modules[key]; !ok {
		r.modules[key] = p
	}
}

// Module returns the indexed file for a module string.
func (r *Resolver) Module(name string) (string, bool) {
	p, ok := r.modules[name]
	return p, ok
}

// Resolve returns the files imp refers to when imported from the file at
// fromRel. The importing file itself is never returned.
//
// Resolution stops at the first step that matches: the module index, then
// relative walking (./ and ../ for JavaScript, leading dots for Python),
// then package.json workspaces, then every known path that contains the
// module as a path fragment.
func (r *Resolver) Resolve(imp source.Import, fromRel string, lang source.Language) []string {
	module := imp.Module
	if module == "" {
		return nil
	}

	if p, ok := r.modules[module]; ok {
		return excludeSelf([]string{p}, fromRel)
	}

	if lang == source.LangPython && strings.HasPrefix(module, ".") {
		return excludeSelf(r.resolvePythonRelative(imp, fromRel), fromRel)
	}
	if isRelativeSpecifier(module) {
		base := path.Join(path.Dir(fromRel), module)
		if p, ok := r.probe(base); ok {
			return excludeSelf([]string{p}, fromRel)
		}
		return nil
	}

	if lang != source.LangPython {
		if p, ok := r.resolveWorkspace(module); ok {
			return excludeSelf([]string{p}, fromRel)
		}
	}

	return excludeSelf(r.containing(module), fromRel)
}

// resolvePythonRelative handles `from .x import y` style modules. One dot
// is the importing file's package; each further dot climbs a directory.
// A bare dot probes each imported name as a submodule and falls back to
// the package's __init__.py.
func (r *Resolver) resolvePythonRelative(imp source.Import, fromRel string) []string {
	dots := len(imp.Module) - len(strings.TrimLeft(imp.Module, "."))
	rest := imp.Module[dots:]

	base := path.Dir(fromRel)
	for i := 1; i < dots; i++ {
		base = path.Dir(base)
	}

	if rest != "" {
		if p, ok := r.probe(path.Join(base, strings.ReplaceAll(rest, ".", "/"))); ok {
			return []string{p}
		}
		return nil
	}

	var out []string
	for _, name := range imp.Names {
		if name == source.StarImport {
			continue
		}
		if p, ok := r.probe(path.Join(base, name)); ok {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		if p, ok := r.probe(path.Join(base, "__init__")); ok {
			out = append(out, p)
		}
	}
	return out
}

// probe tries each suffix on base against the known paths.
func (r *Resolver) probe(base string) (string, bool) {
	for _, suffix := range probeSuffixes {
		if candidate := base + suffix; r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// containing returns every known path containing module as a path
// fragment, dots read as separators. This is a heuristic and can match
// unrelated files whose path merely contains the fragment.
func (r *Resolver) containing(module string) []string {
	fragment := strings.ReplaceAll(module, ".", "/")
	if strings.Trim(fragment, "/") == "" {
		return nil
	}
	var out []string
	for _, p := range r.paths {
		if strings.Contains(p, fragment) {
			out = append(out, p)
		}
	}
	return out
}

func isRelativeSpecifier(module string) bool {
	return module == "." || module == ".." ||
		strings.HasPrefix(module, "./") || strings.HasPrefix(module, "../")
}

func stripSourceExt(p string) string {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

func excludeSelf(targets []string, self string) []string {
	out := targets[:0]
	for _, t := range targets {
		if t != self {
			out = append(out, t)
		}
	}
	return out
}
