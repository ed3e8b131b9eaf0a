package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/slopgraph/internal/analysis"
	"github.com/dusk-indust/slopgraph/internal/graph"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fixtureAbsPath returns the absolute path to a test fixture directory.
// Tests run from internal/mcptools/, so fixtures live two levels up.
func fixtureAbsPath(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("../../testdata/fixtures", name))
	require.NoError(t, err)
	return abs
}

// diamondService returns a service whose last result is a diamond
// dependency graph:
//
//	A -> B
//	A -> C
//	B -> D
//	C -> D
func diamondService(t *testing.T) *CodeIntelService {
	t.Helper()
	g := graph.New()
	for _, id := range []string{"A.py", "B.py", "C.py", "D.py"} {
		g.AddNode(graph.Node{ID: id, Cluster: ".", File: &graph.FileAttrs{Path: id}})
	}
	for _, e := range [][2]string{{"A.py", "B.py"}, {"A.py", "C.py"}, {"B.py", "D.py"}, {"C.py", "D.py"}} {
		require.True(t, g.AddEdge(e[0], e[1], graph.RelationImport))
	}

	svc := NewCodeIntelService(nil)
	svc.last = &analysis.Result{Mode: analysis.ModeFile, Graph: g}
	return svc
}

// ---------------------------------------------------------------------------
// TestBuildGraph
// ---------------------------------------------------------------------------

func TestBuildGraph(t *testing.T) {
	ctx := context.Background()

	t.Run("analyzes python_cycle fixture", func(t *testing.T) {
		svc := NewCodeIntelService(nil)
		_, out, err := svc.BuildGraph(ctx, nil, BuildGraphInput{RepoPath: fixtureAbsPath(t, "python_cycle")})
		require.NoError(t, err)

		assert.Equal(t, "file", out.Mode)
		assert.Equal(t, 4, out.Files)
		assert.Equal(t, 4, out.Stats.Nodes)
		assert.Equal(t, 3, out.Stats.Edges)
		assert.Equal(t, [][]string{{"a.py", "b.py"}}, out.Cycles)
		assert.Equal(t, []string{"orphan.py"}, out.Stranded)
		assert.Equal(t, []string{"orphan.py"}, out.Isolated)
	})

	t.Run("entity mode", func(t *testing.T) {
		svc := NewCodeIntelService(nil)
		_, out, err := svc.BuildGraph(ctx, nil, BuildGraphInput{
			RepoPath: fixtureAbsPath(t, "python_cycle"),
			Mode:     "entity",
		})
		require.NoError(t, err)
		assert.Equal(t, "entity", out.Mode)
		assert.Equal(t, [][]string{{"a.py::fa", "b.py::fb"}}, out.Cycles)
	})

	t.Run("reads project config", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "slopgraph.yml"), []byte("entryPoints: [cli.py]\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cli.py"), []byte("import lib\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.py"), []byte("x = 1\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("y = 2\n"), 0o644))

		svc := NewCodeIntelService(nil)
		_, out, err := svc.BuildGraph(ctx, nil, BuildGraphInput{RepoPath: dir})
		require.NoError(t, err)
		assert.Equal(t, []string{"main.py"}, out.Stranded, "main.py is not an entry point here")

		_, out, err = svc.BuildGraph(ctx, nil, BuildGraphInput{RepoPath: dir, EntryPoints: []string{"main.py", "cli.py"}})
		require.NoError(t, err)
		assert.Empty(t, out.Stranded)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc := NewCodeIntelService(nil)

		_, _, err := svc.BuildGraph(ctx, nil, BuildGraphInput{})
		assert.Error(t, err)

		_, _, err = svc.BuildGraph(ctx, nil, BuildGraphInput{RepoPath: filepath.Join(t.TempDir(), "missing")})
		assert.Error(t, err)

		_, _, err = svc.BuildGraph(ctx, nil, BuildGraphInput{RepoPath: fixtureAbsPath(t, "python_cycle"), Mode: "module"})
		assert.Error(t, err)

		_, _, err = svc.BuildGraph(ctx, nil, BuildGraphInput{RepoPath: fixtureAbsPath(t, "python_cycle"), Languages: []string{"go"}})
		assert.Error(t, err)
	})
}

// ---------------------------------------------------------------------------
// TestGetDependencies
// ---------------------------------------------------------------------------

func TestGetDependencies(t *testing.T) {
	ctx := context.Background()
	svc := diamondService(t)

	t.Run("dependencies by default", func(t *testing.T) {
		_, out, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{NodeID: "A.py"})
		require.NoError(t, err)
		assert.Equal(t, []string{"B.py", "C.py"}, out.Direct)
		assert.Equal(t, []graph.DependencyChain{
			{Nodes: []string{"A.py", "B.py"}, Depth: 1},
			{Nodes: []string{"A.py", "C.py"}, Depth: 1},
			{Nodes: []string{"A.py", "B.py", "D.py"}, Depth: 2},
		}, out.Chains)
	})

	t.Run("dependents", func(t *testing.T) {
		_, out, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{NodeID: "D.py", Direction: "Dependents"})
		require.NoError(t, err)
		assert.Equal(t, []string{"B.py", "C.py"}, out.Direct)
		require.Len(t, out.Chains, 3)
		assert.Equal(t, []string{"D.py", "B.py", "A.py"}, out.Chains[2].Nodes)
	})

	t.Run("max depth", func(t *testing.T) {
		_, out, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{NodeID: "A.py", MaxDepth: 1})
		require.NoError(t, err)
		assert.Len(t, out.Chains, 2)
	})

	t.Run("errors", func(t *testing.T) {
		_, _, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{})
		assert.Error(t, err)

		_, _, err = svc.GetDependencies(ctx, nil, GetDependenciesInput{NodeID: "Z.py"})
		assert.Error(t, err)

		_, _, err = NewCodeIntelService(nil).GetDependencies(ctx, nil, GetDependenciesInput{NodeID: "A.py"})
		assert.ErrorIs(t, err, errNoGraph)
	})
}

// ---------------------------------------------------------------------------
// TestGetCentrality
// ---------------------------------------------------------------------------

func TestGetCentrality(t *testing.T) {
	ctx := context.Background()

	_, out, err := diamondService(t).GetCentrality(ctx, nil, GetCentralityInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Nodes, 2)
	assert.Equal(t, "B.py", out.Nodes[0].ID)
	assert.Equal(t, "C.py", out.Nodes[1].ID)
	assert.InDelta(t, 1.0/12, out.Nodes[0].Score, 1e-9, "half of the A->D paths, normalized by 1/6")

	_, out, err = diamondService(t).GetCentrality(ctx, nil, GetCentralityInput{})
	require.NoError(t, err)
	assert.Len(t, out.Nodes, 4)

	_, _, err = NewCodeIntelService(nil).GetCentrality(ctx, nil, GetCentralityInput{})
	assert.ErrorIs(t, err, errNoGraph)
}

// ---------------------------------------------------------------------------
// TestAssessImpact
// ---------------------------------------------------------------------------

func TestAssessImpact(t *testing.T) {
	ctx := context.Background()
	svc := diamondService(t)

	_, out, err := svc.AssessImpact(ctx, nil, AssessImpactInput{Changed: []string{"D.py"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B.py", "C.py"}, out.Impact.DirectlyAffected)
	assert.Equal(t, []string{"A.py", "B.py", "C.py"}, out.Impact.TransitivelyAffected)
	assert.InDelta(t, 0.75, out.Impact.RiskScore, 1e-9)

	_, out, err = svc.AssessImpact(ctx, nil, AssessImpactInput{Changed: []string{"A.py"}})
	require.NoError(t, err)
	assert.Empty(t, out.Impact.TransitivelyAffected)
	assert.Zero(t, out.Impact.RiskScore)

	_, _, err = svc.AssessImpact(ctx, nil, AssessImpactInput{})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// TestGetClusters
// ---------------------------------------------------------------------------

func TestGetClusters(t *testing.T) {
	ctx := context.Background()
	svc := NewCodeIntelService(nil)
	_, _, err := svc.BuildGraph(ctx, nil, BuildGraphInput{RepoPath: fixtureAbsPath(t, "js_project")})
	require.NoError(t, err)

	_, out, err := svc.GetClusters(ctx, nil, GetClustersInput{})
	require.NoError(t, err)
	names := make([]string, 0, len(out.Clusters))
	for _, c := range out.Clusters {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"src", "src/api", "src/lib"}, names)

	_, out, err = svc.GetClusters(ctx, nil, GetClustersInput{Connected: true})
	require.NoError(t, err)
	require.Len(t, out.Clusters, 1)
	assert.Equal(t, "src/", out.Clusters[0].Name)
	assert.Len(t, out.Clusters[0].Members, 4)
	assert.InDelta(t, 1.0, out.Clusters[0].Cohesion, 1e-9)
}
