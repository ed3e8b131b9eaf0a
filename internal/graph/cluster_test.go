package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clusterGraph(t *testing.T) *Graph {
	t.Helper()
	return newTestGraph(t,
		[]string{"src/pkg/a.py", "src/pkg/b.py", "src/other/c.py", "d.py"},
		[][2]string{{"src/pkg/a.py", "src/pkg/b.py"}, {"src/pkg/b.py", "src/other/c.py"}},
	)
}

func TestClusters_ByAttribute(t *testing.T) {
	clusters := NewAnalyzer(clusterGraph(t)).Clusters()

	require.Len(t, clusters, 3)
	assert.Equal(t, Cluster{Name: ".", Cohesion: 0, Members: []string{"d.py"}}, clusters[0])
	assert.Equal(t, Cluster{Name: "src/other", Cohesion: 0, Members: []string{"src/other/c.py"}}, clusters[1])
	assert.Equal(t, "src/pkg", clusters[2].Name)
	assert.Equal(t, []string{"src/pkg/a.py", "src/pkg/b.py"}, clusters[2].Members)
	assert.InDelta(t, 0.5, clusters[2].Cohesion, 1e-9, "one internal edge, one external")
}

func TestComponents(t *testing.T) {
	components := NewAnalyzer(clusterGraph(t)).Components()

	require.Len(t, components, 1, "singletons are skipped")
	assert.Equal(t, "src/", components[0].Name)
	assert.Equal(t, []string{"src/other/c.py", "src/pkg/a.py", "src/pkg/b.py"}, components[0].Members)
	assert.InDelta(t, 1.0, components[0].Cohesion, 1e-9)
}

func TestComponents_NoEdges(t *testing.T) {
	g := newTestGraph(t, []string{"a.py", "b.py"}, nil)
	assert.Empty(t, NewAnalyzer(g).Components())
}

func TestLongestCommonPrefix(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  string
	}{
		{"empty", nil, ""},
		{"single", []string{"src/a.py"}, "src/a.py"},
		{"same dir", []string{"src/pkg/a.py", "src/pkg/b.py"}, "src/pkg/"},
		{"partial segment", []string{"a/b/c", "a/bc/d"}, "a/"},
		{"no common dir", []string{"x.py", "y.py"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, longestCommonPrefix(tt.paths))
		})
	}
}
