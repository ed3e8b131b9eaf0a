package graph

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Analyzer answers structural queries over a Graph. It never adds or
// removes nodes or edges; MarkCycles is the only method that writes, and
// it writes only the InCycle flags.
type Analyzer struct {
	g *Graph
}

// NewAnalyzer returns an Analyzer over g.
func NewAnalyzer(g *Graph) *Analyzer {
	return &Analyzer{g: g}
}

// directed mirrors the graph into a gonum graph. Node i of the result is
// ids[i]; ids are sorted so results are reproducible.
func (a *Analyzer) directed() (*simple.DirectedGraph, []string) {
	ids := a.g.NodeIDs()
	pos := make(map[string]int64, len(ids))
	dg := simple.NewDirectedGraph()
	for i, id := range ids {
		pos[id] = int64(i)
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, e := range a.g.Edges() {
		if e.From == e.To {
			continue
		}
		dg.SetEdge(simple.Edge{F: simple.Node(pos[e.From]), T: simple.Node(pos[e.To])})
	}
	return dg, ids
}

// FindCircularDependencies returns every elementary cycle of two or more
// nodes. Each cycle starts at its smallest id; cycles are ordered shortest
// first, then lexically.
func (a *Analyzer) FindCircularDependencies() (cycles [][]string) {
	defer func() {
		if r := recover(); r != nil {
			cycles = [][]string{}
		}
	}()

	dg, ids := a.directed()
	raw := topo.DirectedCyclesIn(dg)

	cycles = make([][]string, 0, len(raw))
	for _, c := range raw {
		if len(c) > 1 && c[0].ID() == c[len(c)-1].ID() {
			c = c[:len(c)-1]
		}
		if len(c) < 2 {
			continue
		}
		cycle := make([]string, len(c))
		for i, n := range c {
			cycle[i] = ids[n.ID()]
		}
		cycles = append(cycles, rotateToMin(cycle))
	}

	sort.Slice(cycles, func(i, j int) bool {
		if len(cycles[i]) != len(cycles[j]) {
			return len(cycles[i]) < len(cycles[j])
		}
		return strings.Join(cycles[i], "\x00") < strings.Join(cycles[j], "\x00")
	})
	return cycles
}

// MarkCycles recomputes the cycles and overwrites every node and edge
// flag: a node is flagged iff it lies on a returned cycle, an edge iff it
// joins two consecutive members of one.
func (a *Analyzer) MarkCycles() [][]string {
	cycles := a.FindCircularDependencies()

	for _, n := range a.g.Nodes() {
		n.InCycle = false
	}
	for _, e := range a.g.Edges() {
		e.InCycle = false
	}

	for _, c := range cycles {
		for i, id := range c {
			if n, ok := a.g.Node(id); ok {
				n.InCycle = true
			}
			if e, ok := a.g.Edge(id, c[(i+1)%len(c)]); ok {
				e.InCycle = true
			}
		}
	}
	return cycles
}

// FindStrandedNodes returns, sorted, the nodes nothing depends on whose
// id contains none of the entry-point fragments. Empty fragments are
// ignored.
func (a *Analyzer) FindStrandedNodes(entryPoints []string) []string {
	stranded := []string{}
	for _, id := range a.g.NodeIDs() {
		if a.g.InDegree(id) > 0 || matchesAny(id, entryPoints) {
			continue
		}
		stranded = append(stranded, id)
	}
	return stranded
}

// FindIsolatedNodes returns, sorted, the nodes with no edges at all.
func (a *Analyzer) FindIsolatedNodes() []string {
	isolated := []string{}
	for _, id := range a.g.NodeIDs() {
		if a.g.InDegree(id) == 0 && a.g.OutDegree(id) == 0 {
			isolated = append(isolated, id)
		}
	}
	return isolated
}

// CalculateCentrality returns the shortest-path betweenness centrality of
// every node, normalized by 1/((n-1)(n-2)) when n > 2. An empty graph, or
// any failure inside the computation, yields an empty map.
func (a *Analyzer) CalculateCentrality() (scores map[string]float64) {
	scores = make(map[string]float64)
	defer func() {
		if r := recover(); r != nil {
			scores = make(map[string]float64)
		}
	}()

	n := a.g.NodeCount()
	if n == 0 {
		return scores
	}

	dg, ids := a.directed()
	raw := network.Betweenness(dg)

	scale := 1.0
	if n > 2 {
		scale = 1 / float64((n-1)*(n-2))
	}
	for i, id := range ids {
		scores[id] = raw[int64(i)] * scale
	}
	return scores
}

// Ranked is a node id with a score.
type Ranked struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// TopCentral returns the k most central nodes, highest first, ties by id.
// k <= 0 returns all nodes.
func (a *Analyzer) TopCentral(k int) []Ranked {
	scores := a.CalculateCentrality()
	ranked := make([]Ranked, 0, len(scores))
	for id, s := range scores {
		ranked = append(ranked, Ranked{ID: id, Score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// GetDependencies returns the direct successors of id, sorted; empty when
// id is unknown.
func (a *Analyzer) GetDependencies(id string) []string { return a.g.Successors(id) }

// GetDependents returns the direct predecessors of id, sorted; empty when
// id is unknown.
func (a *Analyzer) GetDependents(id string) []string { return a.g.Predecessors(id) }

func matchesAny(id string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(id, f) {
			return true
		}
	}
	return false
}

// rotateToMin rotates a cycle so that its smallest id comes first.
func rotateToMin(cycle []string) []string {
	first := 0
	for i, id := range cycle {
		if id < cycle[first] {
			first = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[first:]...)
	return append(out, cycle[:first]...)
}
