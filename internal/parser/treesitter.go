package parser

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var (
	pythonLanguage     = tree_sitter.NewLanguage(tree_sitter_python.Language())
	javascriptLanguage = tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	typescriptLanguage = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	tsxLanguage        = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
)

// parseTree parses src with lang. A new tree-sitter parser is created per
// call, so callers on different goroutines never share one. The caller
// closes the returned tree.
func parseTree(lang *tree_sitter.Language, src []byte) (*tree_sitter.Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree")
	}
	return tree, nil
}

// walk visits node and its descendants in document order. Returning false
// from visit skips the children of the visited node.
func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node) bool) {
	cursor := node.Walk()
	defer cursor.Close()
	walkCursor(cursor, visit)
}

func walkCursor(cursor *tree_sitter.TreeCursor, visit func(*tree_sitter.Node) bool) {
	if !visit(cursor.Node()) {
		return
	}
	if cursor.GotoFirstChild() {
		walkCursor(cursor, visit)
		for cursor.GotoNextSibling() {
			walkCursor(cursor, visit)
		}
		cursor.GotoParent()
	}
}

// maxNesting returns the deepest chain of statements of the given kinds
// below node.
func maxNesting(node *tree_sitter.Node, kinds map[string]bool) int {
	best := 0
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		depth := maxNesting(child, kinds)
		if kinds[child.Kind()] {
			depth++
		}
		if depth > best {
			best = depth
		}
	}
	return best
}

func nodeText(n *tree_sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(src)
}

func startLine(n *tree_sitter.Node) int { return int(n.StartPosition().Row) + 1 }
func endLine(n *tree_sitter.Node) int   { return int(n.EndPosition().Row) + 1 }

// callSet collects call targets in first-seen order without repeats.
type callSet struct {
	seen  map[string]bool
	order []string
}

func (c *callSet) add(name string) {
	if name == "" || c.seen[name] {
		return
	}
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	c.seen[name] = true
	c.order = append(c.order, name)
}
