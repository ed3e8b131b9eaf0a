package parser

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/slopgraph/internal/logging"
	"github.com/dusk-indust/slopgraph/internal/source"
)

// JavaScriptParser parses JavaScript and TypeScript files. The grammar is
// picked from the file extension: TypeScript for .ts, TSX for .tsx and
// JavaScript (which covers JSX) for everything else.
type JavaScriptParser struct {
	lang source.Language
	log  logrus.FieldLogger
}

// NewJavaScriptParser returns a parser stamping records with lang.
func NewJavaScriptParser(lang source.Language, log logrus.FieldLogger) *JavaScriptParser {
	return &JavaScriptParser{lang: lang, log: logging.OrDiscard(log)}
}

// Parse implements Parser. When the grammar rejects the file, imports and
// comments come from the regex fallback and no definitions are recorded.
func (p *JavaScriptParser) Parse(path string) (pf *source.ParsedFile) {
	pf, ok := readSource(path, p.lang, p.log)
	if !ok {
		return pf
	}
	defer recoverExtraction(p.log, &pf)

	src := []byte(pf.Content)
	tree, err := parseTree(grammarFor(path), src)
	if err != nil {
		p.log.WithError(err).WithField("path", path).Debug("parse failed, using regex fallback")
		applyFallback(pf)
		return pf
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		p.log.WithField("path", path).Debug("syntax error, using regex fallback")
		applyFallback(pf)
		return pf
	}

	e := &jsExtractor{src: src}
	e.extract(root)
	pf.Imports = e.imports
	pf.Definitions = e.defs
	pf.Comments = e.comments
	return pf
}

func grammarFor(path string) *tree_sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return typescriptLanguage
	case ".tsx":
		return tsxLanguage
	default:
		return javascriptLanguage
	}
}

// jsExtractor accumulates the model of one JavaScript or TypeScript file.
type jsExtractor struct {
	src      []byte
	imports  []source.Import
	defs     []source.Definition
	comments []source.Comment
	docs     []docAnchor
}

// docAnchor remembers where a doc comment ends so it can be attached to
// the definition starting on the following line.
type docAnchor struct {
	comment int
	endLine int
}

func (e *jsExtractor) extract(root *tree_sitter.Node) {
	walk(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			e.addImport(n)
		case "export_statement":
			if from := n.ChildByFieldName("source"); from != nil {
				e.addReexport(n, from)
			}
		case "variable_declarator":
			e.addRequire(n)
		case "comment":
			e.addComment(n)
		}
		return true
	})

	e.collectDefinitions(root)
	e.attachDocs()
}

// addImport handles default, named, namespace and side-effect imports
// along with TypeScript's `import x = require("y")`.
func (e *jsExtractor) addImport(n *tree_sitter.Node) {
	imp := source.Import{Line: startLine(n)}
	from := n.ChildByFieldName("source")

	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "import_clause":
			e.importClause(child, &imp)
		case "import_require_clause":
			from = child.ChildByFieldName("source")
			if id := firstNamedOfKind(child, "identifier"); id != nil {
				imp.Names = append(imp.Names, nodeText(id, e.src))
			}
		}
	}

	imp.Module = stringValue(nodeText(from, e.src))
	if imp.Module == "" {
		return
	}
	e.imports = append(e.imports, imp)
}

func (e *jsExtractor) importClause(clause *tree_sitter.Node, imp *source.Import) {
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		switch child.Kind() {
		case "identifier":
			imp.Names = append(imp.Names, nodeText(child, e.src))
		case "named_imports":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				spec := child.NamedChild(j)
				if spec.Kind() == "import_specifier" {
					imp.Names = append(imp.Names, nodeText(spec.ChildByFieldName("name"), e.src))
				}
			}
		case "namespace_import":
			imp.Names = append(imp.Names, source.StarImport)
			imp.IsStar = true
			if id := firstNamedOfKind(child, "identifier"); id != nil {
				imp.Alias = nodeText(id, e.src)
			}
		}
	}
}

// addReexport records `export { a } from "./x"` and `export * from "./x"`.
func (e *jsExtractor) addReexport(n, from *tree_sitter.Node) {
	imp := source.Import{Module: stringValue(nodeText(from, e.src)), Line: startLine(n)}
	if imp.Module == "" {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "*":
			imp.Names = append(imp.Names, source.StarImport)
			imp.IsStar = true
		case "namespace_export":
			imp.Names = append(imp.Names, source.StarImport)
			imp.IsStar = true
			if child.NamedChildCount() > 0 {
				imp.Alias = stringValue(nodeText(child.NamedChild(0), e.src))
			}
		case "export_clause":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				spec := child.NamedChild(j)
				if spec.Kind() == "export_specifier" {
					imp.Names = append(imp.Names, nodeText(spec.ChildByFieldName("name"), e.src))
				}
			}
		}
	}
	e.imports = append(e.imports, imp)
}

// addRequire records `const x = require("m")`, including object and array
// destructuring of the result.
func (e *jsExtractor) addRequire(decl *tree_sitter.Node) {
	value := decl.ChildByFieldName("value")
	if value == nil || value.Kind() != "call_expression" {
		return
	}
	fn := value.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" || nodeText(fn, e.src) != "require" {
		return
	}
	args := value.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	arg := firstNamedOfKind(args, "string")
	if arg == nil {
		return
	}
	module := stringValue(nodeText(arg, e.src))
	if module == "" {
		return
	}

	line := startLine(decl)
	if parent := decl.Parent(); parent != nil {
		line = startLine(parent)
	}
	e.imports = append(e.imports, source.Import{
		Module: module,
		Names:  e.patternNames(decl.ChildByFieldName("name")),
		Line:   line,
	})
}

func (e *jsExtractor) patternNames(pattern *tree_sitter.Node) []string {
	if pattern == nil {
		return nil
	}
	var names []string
	switch pattern.Kind() {
	case "identifier":
		names = append(names, nodeText(pattern, e.src))
	case "object_pattern":
		for i := uint(0); i < pattern.NamedChildCount(); i++ {
			prop := pattern.NamedChild(i)
			switch prop.Kind() {
			case "shorthand_property_identifier_pattern":
				names = append(names, nodeText(prop, e.src))
			case "pair_pattern":
				names = append(names, nodeText(prop.ChildByFieldName("key"), e.src))
			case "object_assignment_pattern":
				names = append(names, nodeText(prop.ChildByFieldName("left"), e.src))
			}
		}
	case "array_pattern":
		for i := uint(0); i < pattern.NamedChildCount(); i++ {
			if el := pattern.NamedChild(i); el.Kind() == "identifier" {
				names = append(names, nodeText(el, e.src))
			}
		}
	}
	return names
}

func (e *jsExtractor) addComment(n *tree_sitter.Node) {
	raw := nodeText(n, e.src)
	c := source.Comment{Line: startLine(n)}

	if strings.HasPrefix(raw, "//") {
		c.Text = strings.TrimSpace(raw[2:])
		e.comments = append(e.comments, c)
		return
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "/*"), "*/")
	if strings.HasPrefix(inner, "*") || strings.HasPrefix(inner, "!") {
		c.IsDoc = true
		c.Text = cleanBlockDoc(inner[1:])
		e.docs = append(e.docs, docAnchor{comment: len(e.comments), endLine: endLine(n)})
	} else {
		c.Text = strings.TrimSpace(inner)
	}
	e.comments = append(e.comments, c)
}

// attachDocs links each doc comment to the definition that begins on the
// line right after the comment ends.
func (e *jsExtractor) attachDocs() {
	for _, a := range e.docs {
		for i := range e.defs {
			if e.defs[i].StartLine != a.endLine+1 {
				continue
			}
			e.comments[a.comment].Owner = e.defs[i].Name
			e.defs[i].Doc = e.comments[a.comment].Text
			break
		}
	}
}

var jsFunctionKinds = map[string]bool{
	"arrow_function":      true,
	"function_expression": true,
	"function":            true,
	"generator_function":  true,
}

// collectDefinitions records classes, function declarations and functions
// bound to variables. Function bodies are never entered.
func (e *jsExtractor) collectDefinitions(node *tree_sitter.Node) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch kind := child.Kind(); {
		case kind == "class_declaration" || kind == "abstract_class_declaration":
			e.addClass(child)
		case kind == "function_declaration" || kind == "generator_function_declaration":
			name := nodeText(child.ChildByFieldName("name"), e.src)
			if name != "" {
				e.defs = append(e.defs, e.function(name, source.KindFunction, "", child, child))
			}
		case kind == "lexical_declaration" || kind == "variable_declaration":
			e.addBoundFunctions(child)
		case jsFunctionKinds[kind] || kind == "class" || kind == "method_definition":
		default:
			e.collectDefinitions(child)
		}
	}
}

func (e *jsExtractor) addClass(n *tree_sitter.Node) {
	name := nodeText(n.ChildByFieldName("name"), e.src)
	if name == "" {
		return
	}
	e.defs = append(e.defs, source.Definition{
		Name:      name,
		Kind:      source.KindClass,
		StartLine: startLine(n),
		EndLine:   endLine(n),
	})

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		m := body.NamedChild(i)
		if m.Kind() != "method_definition" {
			continue
		}
		key := m.ChildByFieldName("name")
		if key == nil || key.Kind() == "computed_property_name" {
			continue
		}
		e.defs = append(e.defs, e.function(nodeText(key, e.src), source.KindMethod, name, m, m))
	}
}

// addBoundFunctions records `const f = () => {}` style declarations. The
// line range is that of the whole declaration.
func (e *jsExtractor) addBoundFunctions(decl *tree_sitter.Node) {
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		d := decl.NamedChild(i)
		if d.Kind() != "variable_declarator" {
			continue
		}
		id := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if id == nil || id.Kind() != "identifier" || value == nil || !jsFunctionKinds[value.Kind()] {
			continue
		}
		e.defs = append(e.defs, e.function(nodeText(id, e.src), source.KindFunction, "", decl, value))
	}
}

// function builds a definition whose location comes from span and whose
// body metrics come from fn.
func (e *jsExtractor) function(name string, kind source.DefinitionKind, parent string, span, fn *tree_sitter.Node) source.Definition {
	return source.Definition{
		Name:         name,
		Kind:         kind,
		StartLine:    startLine(span),
		EndLine:      endLine(span),
		Parent:       parent,
		NestingDepth: maxNesting(fn, jsNestingKinds),
		Calls:        e.calls(fn),
		Parameters:   e.parameters(fn),
	}
}

// calls keeps `f()` as "f" and `obj.m()` on a plain identifier as "obj.m".
// Every other callee shape is dropped.
func (e *jsExtractor) calls(fn *tree_sitter.Node) []string {
	var set callSet
	walk(fn, func(n *tree_sitter.Node) bool {
		if n.Kind() != "call_expression" {
			return true
		}
		callee := n.ChildByFieldName("function")
		if callee == nil {
			return true
		}
		switch callee.Kind() {
		case "identifier":
			set.add(nodeText(callee, e.src))
		case "member_expression":
			obj := callee.ChildByFieldName("object")
			prop := callee.ChildByFieldName("property")
			if obj != nil && prop != nil && obj.Kind() == "identifier" && prop.Kind() == "property_identifier" {
				set.add(nodeText(obj, e.src) + "." + nodeText(prop, e.src))
			}
		}
		return true
	})
	return set.order
}

func (e *jsExtractor) parameters(fn *tree_sitter.Node) []string {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		if single.Kind() == "identifier" {
			return []string{nodeText(single, e.src)}
		}
		return nil
	}

	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var names []string
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		switch p.Kind() {
		case "identifier":
			names = append(names, nodeText(p, e.src))
		case "required_parameter", "optional_parameter":
			if pat := p.ChildByFieldName("pattern"); pat != nil && pat.Kind() == "identifier" {
				names = append(names, nodeText(pat, e.src))
			}
		}
	}
	return names
}

// jsNestingKinds opens a nesting level each. An else-if is an if nested
// in the else branch, so every link of a chain is one level deeper.
var jsNestingKinds = map[string]bool{
	"if_statement":     true,
	"for_statement":    true,
	"while_statement":  true,
	"do_statement":     true,
	"switch_statement": true,
	"try_statement":    true,
}

func firstNamedOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child.Kind() == kind {
			return child
		}
	}
	return nil
}

// stringValue strips the quotes from a string literal.
func stringValue(literal string) string {
	return strings.Trim(literal, "\"'`")
}

// cleanBlockDoc strips the leading `*` gutter from each line of a block
// comment body.
func cleanBlockDoc(body string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimSpace(strings.TrimPrefix(l, "*"))
		out = append(out, l)
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
