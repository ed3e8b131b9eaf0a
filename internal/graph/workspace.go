package graph

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// jsWorkspace is one npm/yarn/bun workspace package of the repository.
type jsWorkspace struct {
	dir     string            // root-relative directory, e.g. "packages/db"
	main    string            // default export target
	subpath map[string]string // "./queries" -> "packages/db/src/queries.ts"
}

// packageJSON holds the package.json fields workspace resolution reads.
type packageJSON struct {
	Name       string          `json:"name"`
	Main       string          `json:"main"`
	Workspaces json.RawMessage `json:"workspaces"`
	Exports    json.RawMessage `json:"exports"`
}

// scanWorkspaces registers the workspace packages declared by the root
// package.json. Missing or malformed manifests are ignored.
func (r *Resolver) scanWorkspaces(repoRoot string) {
	var root packageJSON
	if !readPackageJSON(filepath.Join(repoRoot, "package.json"), &root) {
		return
	}

	for _, pattern := range workspacePatterns(root.Workspaces) {
		matches, err := filepath.Glob(filepath.Join(repoRoot, pattern))
		if err != nil {
			continue
		}
		for _, dir := range matches {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				r.addWorkspace(repoRoot, dir)
			}
		}
	}
}

// workspacePatterns accepts both `["packages/*"]` and
// `{"packages": ["packages/*"]}`.
func workspacePatterns(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Packages
	}
	return nil
}

func (r *Resolver) addWorkspace(repoRoot, absDir string) {
	var pkg packageJSON
	if !readPackageJSON(filepath.Join(absDir, "package.json"), &pkg) || pkg.Name == "" {
		return
	}
	rel, err := filepath.Rel(repoRoot, absDir)
	if err != nil {
		return
	}

	ws := &jsWorkspace{dir: filepath.ToSlash(rel), subpath: make(map[string]string)}
	r.readExports(ws, pkg.Exports)

	if ws.main == "" && pkg.Main != "" {
		if p, ok := r.probe(path.Join(ws.dir, pkg.Main)); ok {
			ws.main = p
		}
	}
	if ws.main == "" {
		for _, base := range []string{path.Join(ws.dir, "src", "index"), path.Join(ws.dir, "index")} {
			if p, ok := r.probe(base); ok {
				ws.main = p
				break
			}
		}
	}

	r.workspaces[pkg.Name] = ws
}

// readExports handles a string `exports` or an object of subpath entries,
// each either a string or a conditional object.
func (r *Resolver) readExports(ws *jsWorkspace, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if p, ok := r.probe(path.Join(ws.dir, single)); ok {
			ws.main = p
		}
		return
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return
	}
	for key, val := range entries {
		target := exportTarget(val)
		if target == "" {
			continue
		}
		p, ok := r.probe(path.Join(ws.dir, target))
		if !ok {
			continue
		}
		if key == "." {
			ws.main = p
		} else {
			ws.subpath[key] = p
		}
	}
}

// exportTarget reads a conditional export, preferring import, then
// default, then require.
func exportTarget(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var cond map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cond); err != nil {
		return ""
	}
	for _, key := range []string{"import", "default", "require"} {
		if v, ok := cond[key]; ok {
			return exportTarget(v)
		}
	}
	return ""
}

// resolveWorkspace maps "@scope/pkg", "pkg" and their subpaths to files
// inside a registered workspace package.
func (r *Resolver) resolveWorkspace(module string) (string, bool) {
	if ws, ok := r.workspaces[module]; ok {
		return ws.main, ws.main != ""
	}

	name, sub, ok := splitPackageSpecifier(module)
	if !ok {
		return "", false
	}
	ws, ok := r.workspaces[name]
	if !ok {
		return "", false
	}
	if p, ok := ws.subpath["./"+sub]; ok {
		return p, true
	}
	return r.probe(path.Join(ws.dir, sub))
}

// splitPackageSpecifier splits "@scope/pkg/a/b" into ("@scope/pkg", "a/b")
// and "pkg/a" into ("pkg", "a"). Specifiers without a subpath fail.
func splitPackageSpecifier(module string) (string, string, bool) {
	parts := strings.SplitN(module, "/", 3)
	if strings.HasPrefix(module, "@") {
		if len(parts) < 3 {
			return "", "", false
		}
		return parts[0] + "/" + parts[1], parts[2], true
	}
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], "/"), true
}

func readPackageJSON(file string, into *packageJSON) bool {
	data, err := os.ReadFile(file)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, into) == nil
}
