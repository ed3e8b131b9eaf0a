package source

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// defaultExcludeDirs are directory names never descended into.
var defaultExcludeDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"__pycache__":   true,
	"venv":          true,
	"env":           true,
	".env":          true,
	"dist":          true,
	"build":         true,
	".next":         true,
	".nuxt":         true,
	"coverage":      true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".tox":          true,
}

// DiscoverOptions narrows the files Discover returns.
type DiscoverOptions struct {
	// ExcludeDirs are extra directory names to skip.
	ExcludeDirs []string
	// IgnorePatterns are doublestar globs matched against root-relative
	// slash paths.
	IgnorePatterns []string
	// Languages restricts results; empty means all supported languages.
	Languages []Language
}

// Discover walks root and returns the supported source files under it,
// sorted by path. Unreadable entries are skipped.
func Discover(root string, opts DiscoverOptions) ([]File, error) {
	exclude := make(map[string]bool, len(defaultExcludeDirs)+len(opts.ExcludeDirs))
	for d := range defaultExcludeDirs {
		exclude[d] = true
	}
	for _, d := range opts.ExcludeDirs {
		exclude[d] = true
	}

	allowed := make(map[Language]bool)
	for _, l := range opts.Languages {
		allowed[l] = true
	}

	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if path != root && (exclude[name] || strings.HasSuffix(name, ".egg-info") || ignored(rel+"/", opts.IgnorePatterns)) {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := LanguageForPath(path)
		if !ok || (len(allowed) > 0 && !allowed[lang]) {
			return nil
		}
		if ignored(rel, opts.IgnorePatterns) {
			return nil
		}

		files = append(files, File{Path: path, Language: lang})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func ignored(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		// A bare directory pattern such as "generated/" also covers its contents.
		if strings.HasSuffix(p, "/") && strings.HasPrefix(rel, p) {
			return true
		}
	}
	return false
}
