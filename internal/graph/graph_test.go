package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestGraph builds a file-style graph from ids and from->to pairs.
func newTestGraph(t *testing.T, ids []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range ids {
		g.AddNode(Node{ID: id, Cluster: dirCluster(id)})
	}
	for _, e := range edges {
		require.True(t, g.AddEdge(e[0], e[1], RelationImport), "edge %s -> %s", e[0], e[1])
	}
	return g
}

func TestGraph_AddNodeOverwriteKeepsPosition(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a", Cluster: "first"})
	g.AddNode(Node{ID: "b"})
	g.AddNode(Node{ID: "a", Cluster: "second"})

	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].ID)
	assert.Equal(t, "second", nodes[0].Cluster)
	assert.Equal(t, "b", nodes[1].ID)
}

func TestGraph_AddEdge(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, nil)

	assert.True(t, g.AddEdge("a", "b", RelationImport))
	assert.False(t, g.AddEdge("a", "b", RelationImport), "duplicate edges collapse")
	assert.False(t, g.AddEdge("a", "a", RelationImport), "self-edges are rejected")
	assert.False(t, g.AddEdge("a", "missing", RelationImport), "unknown endpoints are rejected")

	assert.Equal(t, 1, g.EdgeCount())
	e, ok := g.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, RelationImport, e.Relation)
	_, ok = g.Edge("b", "a")
	assert.False(t, ok)
}

func TestGraph_Neighbours(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c", "d"}, [][2]string{
		{"a", "d"}, {"a", "b"}, {"c", "b"},
	})

	assert.Equal(t, []string{"b", "d"}, g.Successors("a"))
	assert.Equal(t, []string{"a", "c"}, g.Predecessors("b"))
	assert.Empty(t, g.Successors("missing"))
	assert.NotNil(t, g.Successors("missing"))
	assert.Equal(t, 2, g.InDegree("b"))
	assert.Equal(t, 0, g.OutDegree("d"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, g.NodeIDs())
}

func TestGraph_Stats(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "a"}, {"b", "c"}})
	NewAnalyzer(g).MarkCycles()

	assert.Equal(t, Stats{Nodes: 3, Edges: 3, InCycleNodes: 2, InCycleEdges: 2}, g.Stats())
}
