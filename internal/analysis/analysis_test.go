package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/slopgraph/internal/config"
	"github.com/dusk-indust/slopgraph/internal/source"
)

const cycleFixture = "../../testdata/fixtures/python_cycle"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeFile, false},
		{"file", ModeFile, false},
		{"Entity", ModeEntity, false},
		{"module", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLanguages(t *testing.T) {
	langs, err := ParseLanguages([]string{"Python", "typescript"})
	require.NoError(t, err)
	assert.Equal(t, []source.Language{source.LangPython, source.LangTypeScript}, langs)

	_, err = ParseLanguages([]string{"go"})
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, ModeFile, opts.Mode)
	assert.Equal(t, config.DefaultEntryPoints, opts.EntryPoints)

	cfg.Mode = "graph"
	_, err = OptionsFromConfig(cfg)
	assert.Error(t, err)
}

func TestRun_FileMode(t *testing.T) {
	res, err := Run(context.Background(), cycleFixture, Options{EntryPoints: config.DefaultEntryPoints})
	require.NoError(t, err)

	assert.Equal(t, ModeFile, res.Mode)
	assert.Len(t, res.Files, 4)
	assert.Equal(t, [][]string{{"a.py", "b.py"}}, res.Cycles)
	assert.Equal(t, []string{"orphan.py"}, res.Stranded)
	assert.Equal(t, []string{"orphan.py"}, res.Isolated)

	a, ok := res.Graph.Node("a.py")
	require.True(t, ok)
	assert.True(t, a.InCycle)
	m, ok := res.Graph.Node("main.py")
	require.True(t, ok)
	assert.False(t, m.InCycle)

	e, ok := res.Graph.Edge("b.py", "a.py")
	require.True(t, ok)
	assert.True(t, e.InCycle)
}

func TestRun_EntityMode(t *testing.T) {
	res, err := Run(context.Background(), cycleFixture, Options{
		Mode:        ModeEntity,
		EntryPoints: config.DefaultEntryPoints,
	})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a.py::fa", "b.py::fb"}}, res.Cycles)
	assert.Equal(t, []string{"orphan.py::unused"}, res.Stranded)
	assert.Equal(t, []string{"a.py::fa"}, res.Analyzer().GetDependencies("main.py::main"))
}

func TestRun_LanguageFilter(t *testing.T) {
	res, err := Run(context.Background(), "../../testdata/fixtures/js_project", Options{
		Languages: []source.Language{source.LangTypeScript},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib/util.ts"}, res.Graph.NodeIDs())
}

func TestRun_BadRoot(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))
	_, err = Run(context.Background(), file, Options{})
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cycleFixture, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
