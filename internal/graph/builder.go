package graph

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/slopgraph/internal/logging"
	"github.com/dusk-indust/slopgraph/internal/source"
)

// Builder derives file and entity graphs from parse results. It holds no
// state between builds; every Build call returns a new Graph.
type Builder struct {
	root string
	log  logrus.FieldLogger
}

// NewBuilder returns a Builder that computes node ids relative to root.
func NewBuilder(root string, log logrus.FieldLogger) *Builder {
	return &Builder{root: root, log: logging.OrDiscard(log)}
}

// entry pairs a parse result with its root-relative id.
type entry struct {
	rel string
	pf  *source.ParsedFile
}

// entries returns the non-nil files ordered by relative path, so that
// builds do not depend on the order files were discovered or parsed in.
func (b *Builder) entries(files []*source.ParsedFile) []entry {
	out := make([]entry, 0, len(files))
	for _, pf := range files {
		if pf == nil {
			continue
		}
		out = append(out, entry{rel: b.RelPath(pf.Path), pf: pf})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].rel < out[j].rel })
	return out
}

// RelPath returns p relative to the builder root with forward slashes.
// Paths outside the root fall back to their base name.
func (b *Builder) RelPath(p string) string {
	rel, err := filepath.Rel(b.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path.Base(filepath.ToSlash(p))
	}
	return filepath.ToSlash(rel)
}

// BuildFileGraph returns a graph with one node per file and an import
// edge wherever an import resolves to another known file.
func (b *Builder) BuildFileGraph(files []*source.ParsedFile) *Graph {
	g := New()
	entries := b.entries(files)

	rels := make([]string, 0, len(entries))
	for _, e := range entries {
		g.AddNode(Node{
			ID:      e.rel,
			Cluster: dirCluster(e.rel),
			File: &FileAttrs{
				Path:        e.pf.Path,
				Language:    e.pf.Language,
				LinesOfCode: e.pf.LinesOfCode,
				Definitions: len(e.pf.Definitions),
				Imports:     len(e.pf.Imports),
			},
		})
		rels = append(rels, e.rel)
	}

	resolver := NewResolver(b.root, rels)
	unresolved := 0
	for _, e := range entries {
		for _, imp := range e.pf.Imports {
			targets := resolver.Resolve(imp, e.rel, e.pf.Language)
			if len(targets) == 0 {
				unresolved++
				continue
			}
			for _, t := range targets {
				g.AddEdge(e.rel, t, RelationImport)
			}
		}
	}

	b.log.WithFields(logrus.Fields{
		"files":      len(entries),
		"nodes":      g.NodeCount(),
		"edges":      g.EdgeCount(),
		"unresolved": unresolved,
	}).Info("built file graph")
	return g
}

// BuildEntityGraph returns a graph with one node per definition and a
// call edge wherever a recorded call target matches a known definition.
//
// Call targets are matched through a name index holding each definition's
// bare name, Parent.name for methods and <module>.name for top-level
// definitions. Later definitions overwrite earlier ones under the same
// key, so duplicate bare names resolve to the last file in path order.
// A dotted target that misses the index is retried by its last segment.
func (b *Builder) BuildEntityGraph(files []*source.ParsedFile) *Graph {
	g := New()
	entries := b.entries(files)
	names := make(map[string]string)

	for _, e := range entries {
		module := path.Base(stripSourceExt(e.rel))
		for _, d := range e.pf.Definitions {
			id := EntityID(e.rel, d)
			g.AddNode(Node{
				ID:      id,
				Cluster: e.rel,
				Entity: &EntityAttrs{
					Name:         d.Name,
					Kind:         d.Kind,
					File:         e.rel,
					StartLine:    d.StartLine,
					EndLine:      d.EndLine,
					NestingDepth: d.NestingDepth,
					Parent:       d.Parent,
				},
			})

			names[d.Name] = id
			if d.Parent != "" {
				names[d.Parent+"."+d.Name] = id
			} else {
				names[module+"."+d.Name] = id
			}
		}
	}

	for _, e := range entries {
		for _, d := range e.pf.Definitions {
			from := EntityID(e.rel, d)
			for _, call := range d.Calls {
				to, ok := lookupCall(names, call)
				if ok {
					g.AddEdge(from, to, RelationCall)
				}
			}
		}
	}

	b.log.WithFields(logrus.Fields{
		"files": len(entries),
		"nodes": g.NodeCount(),
		"edges": g.EdgeCount(),
	}).Info("built entity graph")
	return g
}

func lookupCall(names map[string]string, call string) (string, bool) {
	if id, ok := names[call]; ok {
		return id, true
	}
	if i := strings.LastIndex(call, "."); i >= 0 {
		id, ok := names[call[i+1:]]
		return id, ok
	}
	return "", false
}

// EntityID returns the node id of a definition in the file at rel.
func EntityID(rel string, d source.Definition) string {
	return rel + "::" + d.QualifiedName()
}

// dirCluster returns the directory of rel, "." at the root.
func dirCluster(rel string) string {
	return path.Dir(rel)
}
