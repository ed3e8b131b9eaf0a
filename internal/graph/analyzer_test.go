package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzer_FindCircularDependencies(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c", "d", "e"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "a"}, // 3-cycle
		{"d", "e"}, {"e", "d"}, // 2-cycle
		{"c", "d"},
	})

	cycles := NewAnalyzer(g).FindCircularDependencies()
	assert.Equal(t, [][]string{{"d", "e"}, {"a", "b", "c"}}, cycles)
}

func TestAnalyzer_FindCircularDependencies_Acyclic(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	cycles := NewAnalyzer(g).FindCircularDependencies()
	assert.NotNil(t, cycles)
	assert.Empty(t, cycles)

	assert.Empty(t, NewAnalyzer(New()).FindCircularDependencies())
}

func TestAnalyzer_FindCircularDependencies_Overlapping(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c"}, [][2]string{
		{"a", "b"}, {"b", "a"}, {"b", "c"}, {"c", "b"}, {"c", "a"},
	})

	cycles := NewAnalyzer(g).FindCircularDependencies()
	assert.Equal(t, [][]string{{"a", "b"}, {"b", "c"}, {"a", "b", "c"}}, cycles)
}

func TestAnalyzer_MarkCycles(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c", "d"}, [][2]string{
		{"a", "b"}, {"b", "a"}, {"b", "c"}, {"d", "c"},
	})
	an := NewAnalyzer(g)

	// Stale flags from an earlier run must be cleared.
	stale, _ := g.Node("d")
	stale.InCycle = true
	staleEdge, _ := g.Edge("d", "c")
	staleEdge.InCycle = true

	cycles := an.MarkCycles()
	require.Equal(t, [][]string{{"a", "b"}}, cycles)

	members := make(map[string]bool)
	for _, c := range cycles {
		for _, id := range c {
			members[id] = true
		}
	}
	for _, n := range g.Nodes() {
		assert.Equal(t, members[n.ID], n.InCycle, n.ID)
	}

	inCycle := map[[2]string]bool{{"a", "b"}: true, {"b", "a"}: true}
	for _, e := range g.Edges() {
		assert.Equal(t, inCycle[[2]string{e.From, e.To}], e.InCycle, "%s -> %s", e.From, e.To)
	}

	// Idempotent.
	assert.Equal(t, cycles, an.MarkCycles())
	assert.Equal(t, 2, g.Stats().InCycleNodes)
	assert.Equal(t, 4, g.NodeCount(), "membership is untouched")
	assert.Equal(t, 4, g.EdgeCount(), "membership is untouched")
}

func TestAnalyzer_FindStrandedNodes(t *testing.T) {
	g := newTestGraph(t,
		[]string{"main.py", "lib.py", "orphan.py", "pkg/__init__.py", "isolated.py"},
		[][2]string{{"main.py", "lib.py"}, {"pkg/__init__.py", "lib.py"}},
	)
	an := NewAnalyzer(g)

	entries := []string{"main.py", "__init__.py", ""}
	stranded := an.FindStrandedNodes(entries)
	assert.Equal(t, []string{"isolated.py", "orphan.py"}, stranded)

	for _, id := range g.NodeIDs() {
		want := g.InDegree(id) == 0 && !matchesAny(id, entries)
		assert.Equal(t, want, contains(stranded, id), id)
	}

	assert.Empty(t, an.FindStrandedNodes([]string{".py"}), "a fragment matching every id protects every node")
	assert.Equal(t, []string{"isolated.py", "main.py", "orphan.py", "pkg/__init__.py"}, an.FindStrandedNodes(nil))
}

func TestAnalyzer_FindIsolatedNodes(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}})
	assert.Equal(t, []string{"c"}, NewAnalyzer(g).FindIsolatedNodes())
}

func TestAnalyzer_CalculateCentrality(t *testing.T) {
	// a -> b -> c: every shortest path from a to c passes through b.
	g := newTestGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	scores := NewAnalyzer(g).CalculateCentrality()

	require.Len(t, scores, 3)
	assert.InDelta(t, 0.0, scores["a"], 1e-9)
	assert.InDelta(t, 0.5, scores["b"], 1e-9, "1 pair / ((3-1)(3-2))")
	assert.InDelta(t, 0.0, scores["c"], 1e-9)
}

func TestAnalyzer_CalculateCentrality_Star(t *testing.T) {
	// Every ordered pair of leaves has exactly one shortest path, through h.
	g := newTestGraph(t, []string{"h", "x", "y", "z"}, [][2]string{
		{"x", "h"}, {"h", "x"}, {"y", "h"}, {"h", "y"}, {"z", "h"}, {"h", "z"},
	})
	scores := NewAnalyzer(g).CalculateCentrality()

	assert.InDelta(t, 1.0, scores["h"], 1e-9)
	assert.InDelta(t, 0.0, scores["x"], 1e-9)
}

func TestAnalyzer_CalculateCentrality_Degenerate(t *testing.T) {
	assert.Empty(t, NewAnalyzer(New()).CalculateCentrality())

	g := newTestGraph(t, []string{"a", "b"}, nil)
	scores := NewAnalyzer(g).CalculateCentrality()
	assert.Equal(t, map[string]float64{"a": 0, "b": 0}, scores)
}

func TestAnalyzer_TopCentral(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}})
	top := NewAnalyzer(g).TopCentral(2)

	require.Len(t, top, 2)
	assert.Equal(t, []string{"b", "c"}, []string{top[0].ID, top[1].ID})
	assert.Len(t, NewAnalyzer(g).TopCentral(0), 4)
}

func TestAnalyzer_DirectNeighbours(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "c"}, {"a", "b"}, {"b", "c"}})
	an := NewAnalyzer(g)

	assert.Equal(t, []string{"b", "c"}, an.GetDependencies("a"))
	assert.Equal(t, []string{"a", "b"}, an.GetDependents("c"))
	assert.Empty(t, an.GetDependencies("missing"))
	assert.Empty(t, an.GetDependents("missing"))
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
