// Package parser turns source files into source.ParsedFile records using
// tree-sitter grammars, one variant per language family.
package parser

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/slopgraph/internal/logging"
	"github.com/dusk-indust/slopgraph/internal/source"
)

// Parser extracts the source model of one file.
//
// Parse never fails and never returns nil. An unreadable file yields a
// record with only Path and Language set; a file the grammar rejects
// yields a degraded record (raw text for Python, regex-derived imports
// and comments for JavaScript and TypeScript).
type Parser interface {
	Parse(path string) *source.ParsedFile
}

// ForLanguage returns the parser variant for a language tag.
func ForLanguage(lang source.Language, log logrus.FieldLogger) (Parser, error) {
	log = logging.OrDiscard(log)
	switch lang {
	case source.LangPython:
		return NewPythonParser(log), nil
	case source.LangJavaScript, source.LangTypeScript:
		return NewJavaScriptParser(lang, log), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// readSource loads path into a fresh record. The boolean is false when the
// file could not be read; the returned record is then empty.
func readSource(path string, lang source.Language, log logrus.FieldLogger) (*source.ParsedFile, bool) {
	text, err := source.ReadText(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("unreadable source file")
		return &source.ParsedFile{Path: path, Language: lang}, false
	}
	return source.NewParsedFile(path, lang, text), true
}

// recoverExtraction is deferred by the parser variants. A panic during
// extraction replaces *out with a text-only record so partial structure
// never leaks out.
func recoverExtraction(log logrus.FieldLogger, out **source.ParsedFile) {
	if r := recover(); r != nil {
		pf := *out
		log.WithFields(logrus.Fields{"path": pf.Path, "panic": r}).Warn("extraction panicked, keeping raw text only")
		*out = source.NewParsedFile(pf.Path, pf.Language, pf.Content)
	}
}
