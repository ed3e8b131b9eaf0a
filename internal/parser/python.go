package parser

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/slopgraph/internal/logging"
	"github.com/dusk-indust/slopgraph/internal/source"
)

// PythonParser parses .py files with the tree-sitter Python grammar.
type PythonParser struct {
	log logrus.FieldLogger
}

// NewPythonParser returns a PythonParser logging to log (nil discards).
func NewPythonParser(log logrus.FieldLogger) *PythonParser {
	return &PythonParser{log: logging.OrDiscard(log)}
}

// Parse implements Parser. A file with syntax errors keeps only its text
// and line count.
func (p *PythonParser) Parse(path string) (pf *source.ParsedFile) {
	pf, ok := readSource(path, source.LangPython, p.log)
	if !ok {
		return pf
	}
	defer recoverExtraction(p.log, &pf)

	src := []byte(pf.Content)
	tree, err := parseTree(pythonLanguage, src)
	if err != nil {
		p.log.WithError(err).WithField("path", path).Debug("python parse failed")
		return pf
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() || hasLegacyStatement(root) {
		p.log.WithField("path", path).Debug("python syntax error, keeping raw text only")
		return pf
	}

	e := &pyExtractor{src: src}
	e.extract(root)
	pf.Imports = e.imports
	pf.Definitions = e.defs
	pf.Comments = e.comments
	return pf
}

// pyExtractor accumulates the model of one Python module.
type pyExtractor struct {
	src      []byte
	imports  []source.Import
	defs     []source.Definition
	comments []source.Comment
}

func (e *pyExtractor) extract(root *tree_sitter.Node) {
	walk(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			e.addImport(n)
		case "import_from_statement":
			e.addFromImport(n)
		case "comment":
			text := strings.TrimSpace(strings.TrimPrefix(nodeText(n, e.src), "#"))
			e.comments = append(e.comments, source.Comment{Text: text, Line: startLine(n)})
		}
		return true
	})

	if doc, ok := e.docstring(root); ok {
		e.comments = append(e.comments, source.Comment{Text: doc, Line: 1, IsDoc: true})
	}

	e.collectDefinitions(root, "")

	sort.SliceStable(e.comments, func(i, j int) bool { return e.comments[i].Line < e.comments[j].Line })
}

// addImport records `import a.b` and `import a.b as c`, one Import per
// dotted name.
func (e *pyExtractor) addImport(n *tree_sitter.Node) {
	line := startLine(n)
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "dotted_name":
			name := nodeText(child, e.src)
			e.imports = append(e.imports, source.Import{Module: name, Names: []string{name}, Line: line})
		case "aliased_import":
			name := nodeText(child.ChildByFieldName("name"), e.src)
			if name == "" {
				continue
			}
			e.imports = append(e.imports, source.Import{
				Module: name,
				Names:  []string{name},
				Alias:  nodeText(child.ChildByFieldName("alias"), e.src),
				Line:   line,
			})
		}
	}
}

// addFromImport records `from m import x, y`. Relative forms keep their
// leading dots, so `from . import b` has module ".".
func (e *pyExtractor) addFromImport(n *tree_sitter.Node) {
	module := nodeText(n.ChildByFieldName("module_name"), e.src)
	if module == "" {
		return
	}

	imp := source.Import{Module: module, Line: startLine(n)}
	sawImport := false
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import":
			sawImport = true
		case "dotted_name":
			if sawImport {
				imp.Names = append(imp.Names, nodeText(child, e.src))
			}
		case "aliased_import":
			if sawImport {
				imp.Names = append(imp.Names, nodeText(child.ChildByFieldName("name"), e.src))
			}
		case "wildcard_import":
			imp.Names = append(imp.Names, source.StarImport)
			imp.IsStar = true
		}
	}
	e.imports = append(e.imports, imp)
}

// collectDefinitions records the functions and classes directly in body.
// Compound statements are descended; function bodies are not.
func (e *pyExtractor) collectDefinitions(body *tree_sitter.Node, parent string) {
	if body == nil {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		e.visitStatement(body.NamedChild(i), parent)
	}
}

func (e *pyExtractor) visitStatement(n *tree_sitter.Node, parent string) {
	switch n.Kind() {
	case "function_definition":
		e.addFunction(n, parent)
	case "class_definition":
		e.addClass(n, parent)
	case "decorated_definition":
		if def := n.ChildByFieldName("definition"); def != nil {
			e.visitStatement(def, parent)
		}
	case "if_statement", "elif_clause", "else_clause",
		"for_statement", "while_statement", "with_statement",
		"try_statement", "except_clause", "except_group_clause", "finally_clause",
		"match_statement", "case_clause", "block":
		e.collectDefinitions(n, parent)
	}
}

func (e *pyExtractor) addFunction(n *tree_sitter.Node, parent string) {
	name := nodeText(n.ChildByFieldName("name"), e.src)
	if name == "" {
		return
	}

	kind := source.KindFunction
	if parent != "" {
		kind = source.KindMethod
	}

	def := source.Definition{
		Name:         name,
		Kind:         kind,
		StartLine:    startLine(n),
		EndLine:      endLine(n),
		Parent:       parent,
		NestingDepth: pyNesting(n),
		Calls:        e.calls(n),
		Parameters:   e.parameters(n.ChildByFieldName("parameters")),
	}
	e.attachDocstring(&def, n.ChildByFieldName("body"))
	e.defs = append(e.defs, def)
}

func (e *pyExtractor) addClass(n *tree_sitter.Node, parent string) {
	name := nodeText(n.ChildByFieldName("name"), e.src)
	if name == "" {
		return
	}

	def := source.Definition{
		Name:      name,
		Kind:      source.KindClass,
		StartLine: startLine(n),
		EndLine:   endLine(n),
		Parent:    parent,
	}
	body := n.ChildByFieldName("body")
	e.attachDocstring(&def, body)
	e.defs = append(e.defs, def)

	e.collectDefinitions(body, name)
}

// attachDocstring sets def.Doc and records the docstring as a comment on
// the line of the def or class statement.
func (e *pyExtractor) attachDocstring(def *source.Definition, body *tree_sitter.Node) {
	doc, ok := e.docstring(body)
	if !ok {
		return
	}
	def.Doc = doc
	e.comments = append(e.comments, source.Comment{Text: doc, Line: def.StartLine, IsDoc: true, Owner: def.Name})
}

// docstring returns the cleaned docstring of a module, class or function
// body: its first statement, when that is a plain string literal.
func (e *pyExtractor) docstring(body *tree_sitter.Node) (string, bool) {
	if body == nil {
		return "", false
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt.Kind() == "comment" {
			continue
		}
		if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return "", false
		}
		str := stmt.NamedChild(0)
		if str.Kind() != "string" {
			return "", false
		}
		raw, ok := stringBody(nodeText(str, e.src))
		if !ok {
			return "", false
		}
		doc := cleandoc(raw)
		if doc == "" {
			return "", false
		}
		return doc, true
	}
	return "", false
}

// calls collects call targets anywhere under a function: `f()` gives "f",
// `obj.m()` on a plain name gives "obj.m", and a deeper receiver such as
// `a.b.c()` gives the terminal "c".
func (e *pyExtractor) calls(fn *tree_sitter.Node) []string {
	var set callSet
	walk(fn, func(n *tree_sitter.Node) bool {
		if n.Kind() != "call" {
			return true
		}
		callee := n.ChildByFieldName("function")
		if callee == nil {
			return true
		}
		switch callee.Kind() {
		case "identifier":
			set.add(nodeText(callee, e.src))
		case "attribute":
			obj := callee.ChildByFieldName("object")
			attr := nodeText(callee.ChildByFieldName("attribute"), e.src)
			if obj != nil && obj.Kind() == "identifier" {
				set.add(nodeText(obj, e.src) + "." + attr)
			} else {
				set.add(attr)
			}
		}
		return true
	})
	return set.order
}

// parameters returns positional parameter names, stopping at the first
// `*args`, bare `*` or `**kwargs`.
func (e *pyExtractor) parameters(params *tree_sitter.Node) []string {
	if params == nil {
		return nil
	}
	var names []string
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		switch p.Kind() {
		case "identifier":
			names = append(names, nodeText(p, e.src))
		case "default_parameter", "typed_default_parameter":
			names = append(names, nodeText(p.ChildByFieldName("name"), e.src))
		case "typed_parameter":
			inner := p.NamedChild(0)
			if inner == nil || inner.Kind() != "identifier" {
				return names
			}
			names = append(names, nodeText(inner, e.src))
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			return names
		}
	}
	return names
}

var pyNestingKinds = map[string]bool{
	"if_statement":    true,
	"for_statement":   true,
	"while_statement": true,
	"with_statement":  true,
	"try_statement":   true,
}

// pyNesting returns the deepest chain of compound statements below node.
// Each elif sits one level below the clause before it and an else below
// the last elif, as in the equivalent nested if/else.
func pyNesting(node *tree_sitter.Node) int {
	best, elifs := 0, 0
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		depth := pyNesting(child)
		switch {
		case pyNestingKinds[child.Kind()]:
			depth++
		case child.Kind() == "elif_clause":
			elifs++
			depth += elifs
		case child.Kind() == "else_clause" && node.Kind() == "if_statement":
			depth += elifs
		}
		if depth > best {
			best = depth
		}
	}
	return best
}

// hasLegacyStatement reports Python 2 print and exec statements, which the
// grammar accepts but Python 3 rejects.
func hasLegacyStatement(root *tree_sitter.Node) bool {
	found := false
	walk(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "print_statement", "exec_statement":
			found = true
		}
		return !found
	})
	return found
}

// stringBody strips the prefix and quotes of a Python string literal.
// Byte strings and f-strings are not docstrings.
func stringBody(literal string) (string, bool) {
	quote := strings.IndexAny(literal, `"'`)
	if quote < 0 {
		return "", false
	}
	if strings.ContainsAny(strings.ToLower(literal[:quote]), "bf") {
		return "", false
	}
	body := literal[quote:]
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			return body[len(q) : len(body)-len(q)], true
		}
	}
	return "", false
}

// cleandoc normalises docstring indentation: the first line is stripped,
// the common margin of the remaining lines is removed and blank leading
// and trailing lines are dropped.
func cleandoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")

	margin := -1
	for _, l := range lines[1:] {
		stripped := strings.TrimLeft(l, " ")
		if stripped == "" {
			continue
		}
		if indent := len(l) - len(stripped); margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if margin > 0 && len(lines[i]) >= margin {
			lines[i] = lines[i][margin:]
		}
		lines[i] = strings.TrimRight(lines[i], " \r")
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
