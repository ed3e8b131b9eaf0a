// Package analysis runs the discover, parse, build and analyze stages
// over a project directory.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/slopgraph/internal/config"
	"github.com/dusk-indust/slopgraph/internal/graph"
	"github.com/dusk-indust/slopgraph/internal/logging"
	"github.com/dusk-indust/slopgraph/internal/parser"
	"github.com/dusk-indust/slopgraph/internal/source"
)

// Mode selects which graph a run builds.
type Mode string

const (
	ModeFile   Mode = "file"
	ModeEntity Mode = "entity"
)

// ParseMode validates a mode name. The empty string means ModeFile.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeFile:
		return ModeFile, nil
	case ModeEntity:
		return ModeEntity, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want file or entity)", s)
	}
}

// Options configures a Run.
type Options struct {
	Mode           Mode
	EntryPoints    []string
	ExcludeDirs    []string
	IgnorePatterns []string
	Languages      []source.Language
	Workers        int
	Logger         logrus.FieldLogger
}

// OptionsFromConfig converts a project config into run options.
func OptionsFromConfig(cfg *config.ProjectConfig) (Options, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return Options{}, err
	}
	langs, err := ParseLanguages(cfg.Languages)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Mode:           mode,
		EntryPoints:    cfg.EntryPoints,
		ExcludeDirs:    cfg.ExcludeDirs,
		IgnorePatterns: cfg.IgnorePatterns,
		Languages:      langs,
		Workers:        cfg.Workers,
	}, nil
}

// ParseLanguages validates language names against the supported set.
func ParseLanguages(names []string) ([]source.Language, error) {
	var out []source.Language
	for _, n := range names {
		lang := source.Language(strings.ToLower(n))
		supported := false
		for _, l := range source.SupportedLanguages {
			if l == lang {
				supported = true
				break
			}
		}
		if !supported {
			return nil, fmt.Errorf("unsupported language: %s", n)
		}
		out = append(out, lang)
	}
	return out, nil
}

// Result is the outcome of a Run. Graph carries the in-cycle flags.
type Result struct {
	Root     string            `json:"root"`
	Mode     Mode              `json:"mode"`
	Files    source.Collection `json:"-"`
	Graph    *graph.Graph      `json:"-"`
	Cycles   [][]string        `json:"cycles"`
	Stranded []string          `json:"stranded"`
	Isolated []string          `json:"isolated"`
	Elapsed  time.Duration     `json:"elapsed"`
}

// Analyzer returns an analyzer over the result graph.
func (r *Result) Analyzer() *graph.Analyzer {
	return graph.NewAnalyzer(r.Graph)
}

// Run discovers the supported source files under root, parses them, builds
// the graph selected by opts.Mode and marks its cycles. Only an unusable
// root or a cancelled ctx produce an error.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	log := logging.OrDiscard(opts.Logger)
	start := time.Now()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}
	if opts.Mode == "" {
		opts.Mode = ModeFile
	}

	files, err := source.Discover(abs, source.DiscoverOptions{
		ExcludeDirs:    opts.ExcludeDirs,
		IgnorePatterns: opts.IgnorePatterns,
		Languages:      opts.Languages,
	})
	if err != nil {
		return nil, err
	}
	log.WithField("files", len(files)).Debug("discovered source files")

	parsed, err := parser.ParseAll(ctx, files, parser.Options{Workers: opts.Workers, Logger: log})
	if err != nil {
		return nil, err
	}

	builder := graph.NewBuilder(abs, log)
	var g *graph.Graph
	switch opts.Mode {
	case ModeEntity:
		g = builder.BuildEntityGraph(parsed.Files())
	case ModeFile:
		g = builder.BuildFileGraph(parsed.Files())
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}

	an := graph.NewAnalyzer(g)
	res := &Result{
		Root:     abs,
		Mode:     opts.Mode,
		Files:    parsed,
		Graph:    g,
		Cycles:   an.MarkCycles(),
		Stranded: an.FindStrandedNodes(opts.EntryPoints),
		Isolated: an.FindIsolatedNodes(),
	}
	res.Elapsed = time.Since(start)

	log.WithFields(logrus.Fields{
		"mode":     res.Mode,
		"cycles":   len(res.Cycles),
		"stranded": len(res.Stranded),
		"elapsed":  res.Elapsed.Round(time.Millisecond),
	}).Info("analysis complete")
	return res, nil
}
