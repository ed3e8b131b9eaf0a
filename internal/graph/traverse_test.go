package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependencyChains(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c", "d"}, [][2]string{
		{"a", "d"}, {"a", "b"}, {"b", "c"},
	})
	an := NewAnalyzer(g)

	assert.Equal(t, []DependencyChain{
		{Nodes: []string{"a", "b"}, Depth: 1},
		{Nodes: []string{"a", "d"}, Depth: 1},
		{Nodes: []string{"a", "b", "c"}, Depth: 2},
	}, an.DependencyChains("a", DirectionDependencies, 5))

	assert.Len(t, an.DependencyChains("a", DirectionDependencies, 1), 2)

	assert.Equal(t, []DependencyChain{
		{Nodes: []string{"c", "b"}, Depth: 1},
		{Nodes: []string{"c", "b", "a"}, Depth: 2},
	}, an.DependencyChains("c", DirectionDependents, 5))

	assert.Empty(t, an.DependencyChains("missing", DirectionDependencies, 3))
	assert.Empty(t, an.DependencyChains("a", DirectionDependencies, 0))
}

func TestDependencyChains_Cycle(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
	chains := NewAnalyzer(g).DependencyChains("a", DirectionDependencies, 10)
	assert.Equal(t, []DependencyChain{{Nodes: []string{"a", "b"}, Depth: 1}}, chains)
}

func TestAssessImpact(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c", "d", "e"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"d", "c"}, {"e", "a"},
	})

	impact := NewAnalyzer(g).AssessImpact([]string{"c"})
	assert.Equal(t, []string{"b", "d"}, impact.DirectlyAffected)
	assert.Equal(t, []string{"a", "b", "d", "e"}, impact.TransitivelyAffected)
	assert.InDelta(t, 0.8, impact.RiskScore, 1e-9)

	none := NewAnalyzer(g).AssessImpact([]string{"e"})
	assert.Empty(t, none.DirectlyAffected)
	assert.Empty(t, none.TransitivelyAffected)
	assert.Zero(t, none.RiskScore)
}
