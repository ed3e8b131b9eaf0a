package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/slopgraph/internal/source"
)

var (
	esImportPattern = regexp.MustCompile(`import\s+(?:\{([^}]+)\}|(\w+)|\*\s+as\s+(\w+))\s+from\s+["']([^"']+)["']`)
	requirePattern  = regexp.MustCompile(`(?:const|let|var)\s+(\w+|\{[^}]+\})\s*=\s*require\(\s*["']([^"']+)["']\s*\)`)
	blockComment    = regexp.MustCompile(`(?s)/\*\*?(.*?)\*/`)
)

// applyFallback replaces the structural fields of pf with what the regex
// scan finds in its raw content. Definitions are never produced here.
func applyFallback(pf *source.ParsedFile) {
	pf.Imports = fallbackImports(pf.Content)
	pf.Definitions = nil
	pf.Comments = fallbackComments(pf.Content)
}

func fallbackImports(content string) []source.Import {
	var imports []source.Import

	for _, m := range esImportPattern.FindAllStringSubmatchIndex(content, -1) {
		imp := source.Import{Module: content[m[8]:m[9]], Line: lineAt(content, m[0])}
		switch {
		case m[2] >= 0:
			imp.Names = splitNames(content[m[2]:m[3]])
		case m[4] >= 0:
			imp.Names = []string{content[m[4]:m[5]]}
		case m[6] >= 0:
			imp.Names = []string{source.StarImport}
			imp.Alias = content[m[6]:m[7]]
			imp.IsStar = true
		}
		imports = append(imports, imp)
	}

	for _, m := range requirePattern.FindAllStringSubmatchIndex(content, -1) {
		binding := content[m[2]:m[3]]
		names := []string{binding}
		if strings.HasPrefix(binding, "{") {
			names = splitNames(strings.Trim(binding, "{}"))
		}
		imports = append(imports, source.Import{
			Module: content[m[4]:m[5]],
			Names:  names,
			Line:   lineAt(content, m[0]),
		})
	}

	sort.SliceStable(imports, func(i, j int) bool { return imports[i].Line < imports[j].Line })
	return imports
}

func fallbackComments(content string) []source.Comment {
	var comments []source.Comment

	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			comments = append(comments, source.Comment{
				Text: strings.TrimSpace(trimmed[2:]),
				Line: i + 1,
			})
		}
	}

	for _, m := range blockComment.FindAllStringSubmatchIndex(content, -1) {
		c := source.Comment{Line: lineAt(content, m[0])}
		body := content[m[2]:m[3]]
		if strings.HasPrefix(content[m[0]:], "/**") {
			c.IsDoc = true
			c.Text = cleanBlockDoc(body)
		} else {
			c.Text = strings.TrimSpace(body)
		}
		comments = append(comments, c)
	}

	sort.SliceStable(comments, func(i, j int) bool { return comments[i].Line < comments[j].Line })
	return comments
}

// splitNames turns "a, b as c" into [a b].
func splitNames(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.Index(part, " as "); i >= 0 {
			part = strings.TrimSpace(part[:i])
		}
		if i := strings.Index(part, ":"); i >= 0 {
			part = strings.TrimSpace(part[:i])
		}
		names = append(names, part)
	}
	return names
}

func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}
