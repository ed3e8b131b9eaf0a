package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/slopgraph/internal/analysis"
)

func TestBuildReport(t *testing.T) {
	res, err := analysis.Run(context.Background(), "../../testdata/fixtures/python_cycle", analysis.Options{
		EntryPoints: []string{"main.py"},
	})
	require.NoError(t, err)

	r := BuildReport(res, ReportOptions{TopCentral: 2, WithClusters: true, WithFiles: true})
	assert.Equal(t, analysis.ModeFile, r.Mode)
	assert.Equal(t, 4, r.Stats.Nodes)
	assert.Equal(t, 3, r.Stats.Edges)
	assert.Equal(t, 2, r.Stats.InCycleNodes)
	assert.Equal(t, [][]string{{"a.py", "b.py"}}, r.Cycles)
	assert.Equal(t, []string{"orphan.py"}, r.Stranded)
	assert.Len(t, r.Central, 2)
	assert.Equal(t, "a.py", r.Central[0].ID)
	require.Len(t, r.Clusters, 1)
	assert.Len(t, r.Files, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "file", decoded["mode"])
	assert.Contains(t, decoded, "nodes")
	assert.Contains(t, decoded, "files")
}

func TestBuildReport_OptionalSectionsOmitted(t *testing.T) {
	res, err := analysis.Run(context.Background(), "../../testdata/fixtures/python_cycle", analysis.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, BuildReport(res, ReportOptions{})))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.NotContains(t, decoded, "central")
	assert.NotContains(t, decoded, "clusters")
	assert.NotContains(t, decoded, "files")
}
