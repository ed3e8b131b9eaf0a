// Package graph holds the file and entity dependency graphs, the import
// resolver and builder that produce them, and the structural analyses run
// over them.
package graph

import (
	"sort"

	"github.com/dusk-indust/slopgraph/internal/source"
)

// --- Enums ---

// Relation classifies edges.
type Relation string

const (
	RelationImport Relation = "import"
	RelationCall   Relation = "call"
)

// --- Models ---

// FileAttrs are the attributes of a file-graph node.
type FileAttrs struct {
	Path        string          `json:"path"`
	Language    source.Language `json:"language"`
	LinesOfCode int             `json:"linesOfCode"`
	Definitions int             `json:"definitions"`
	Imports     int             `json:"imports"`
}

// EntityAttrs are the attributes of an entity-graph node.
type EntityAttrs struct {
	Name         string                `json:"name"`
	Kind         source.DefinitionKind `json:"kind"`
	File         string                `json:"file"`
	StartLine    int                   `json:"startLine"`
	EndLine      int                   `json:"endLine"`
	NestingDepth int                   `json:"nestingDepth"`
	Parent       string                `json:"parent,omitempty"`
}

// Node is a file or a definition. Exactly one of File and Entity is set.
type Node struct {
	ID      string       `json:"id"`
	Cluster string       `json:"cluster"`
	InCycle bool         `json:"inCycle"`
	File    *FileAttrs   `json:"file,omitempty"`
	Entity  *EntityAttrs `json:"entity,omitempty"`
}

// Edge is a directed dependency From -> To.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Relation Relation `json:"relation"`
	InCycle  bool     `json:"inCycle"`
}

// Stats summarizes a graph.
type Stats struct {
	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`
	InCycleNodes int `json:"inCycleNodes"`
	InCycleEdges int `json:"inCycleEdges"`
}

type edgeKey struct{ from, to string }

// Graph is a directed graph without self-loops or parallel edges. Nodes
// and edges keep their insertion order. A Graph has a single writer; it is
// not safe for concurrent mutation.
type Graph struct {
	nodes []*Node
	index map[string]int
	edges []*Edge
	byKey map[edgeKey]*Edge
	out   map[string][]string
	in    map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
		byKey: make(map[edgeKey]*Edge),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}
}

// AddNode inserts n. Adding an existing id replaces its attributes but
// keeps its position and edges.
func (g *Graph) AddNode(n Node) {
	if i, ok := g.index[n.ID]; ok {
		*g.nodes[i] = n
		return
	}
	g.index[n.ID] = len(g.nodes)
	node := n
	g.nodes = append(g.nodes, &node)
}

// AddEdge inserts from -> to. Self-loops, edges touching unknown nodes and
// repeats of an existing edge are ignored; the result reports whether an
// edge was added.
func (g *Graph) AddEdge(from, to string, rel Relation) bool {
	if from == to || !g.HasNode(from) || !g.HasNode(to) {
		return false
	}
	key := edgeKey{from, to}
	if _, ok := g.byKey[key]; ok {
		return false
	}
	e := &Edge{From: from, To: to, Relation: rel}
	g.byKey[key] = e
	g.edges = append(g.edges, e)
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	return true
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Edge returns the edge from -> to.
func (g *Graph) Edge(from, to string) (*Edge, bool) {
	e, ok := g.byKey[edgeKey{from, to}]
	return e, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeIDs returns all node ids, sorted.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

// Successors returns the direct successors of id, sorted. Unknown ids
// have none.
func (g *Graph) Successors(id string) []string { return sortedCopy(g.out[id]) }

// Predecessors returns the direct predecessors of id, sorted.
func (g *Graph) Predecessors(id string) []string { return sortedCopy(g.in[id]) }

func (g *Graph) InDegree(id string) int  { return len(g.in[id]) }
func (g *Graph) OutDegree(id string) int { return len(g.out[id]) }

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Stats counts nodes, edges and their in-cycle flags.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.nodes), Edges: len(g.edges)}
	for _, n := range g.nodes {
		if n.InCycle {
			s.InCycleNodes++
		}
	}
	for _, e := range g.edges {
		if e.InCycle {
			s.InCycleEdges++
		}
	}
	return s
}

func sortedCopy(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}
