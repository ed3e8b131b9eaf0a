package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/slopgraph/internal/analysis"
	"github.com/dusk-indust/slopgraph/internal/graph"
	"github.com/dusk-indust/slopgraph/internal/source"
)

// Report is the top-level JSON export structure.
type Report struct {
	Root       string               `json:"root"`
	Mode       analysis.Mode        `json:"mode"`
	ExportedAt string               `json:"exportedAt"`
	Stats      graph.Stats          `json:"stats"`
	Cycles     [][]string           `json:"cycles"`
	Stranded   []string             `json:"stranded"`
	Isolated   []string             `json:"isolated"`
	Central    []graph.Ranked       `json:"central,omitempty"`
	Clusters   []graph.Cluster      `json:"clusters,omitempty"`
	Nodes      []*graph.Node        `json:"nodes"`
	Edges      []*graph.Edge        `json:"edges"`
	Files      []*source.ParsedFile `json:"files,omitempty"`
}

// ReportOptions selects the optional report sections.
type ReportOptions struct {
	// TopCentral is the number of most central nodes to include; 0 omits
	// the section.
	TopCentral   int
	WithClusters bool
	WithFiles    bool
}

// BuildReport assembles a Report from an analysis result.
func BuildReport(res *analysis.Result, opts ReportOptions) *Report {
	an := res.Analyzer()
	r := &Report{
		Root:       res.Root,
		Mode:       res.Mode,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      res.Graph.Stats(),
		Cycles:     res.Cycles,
		Stranded:   res.Stranded,
		Isolated:   res.Isolated,
		Nodes:      res.Graph.Nodes(),
		Edges:      res.Graph.Edges(),
	}
	if opts.TopCentral > 0 {
		r.Central = an.TopCentral(opts.TopCentral)
	}
	if opts.WithClusters {
		r.Clusters = an.Clusters()
	}
	if opts.WithFiles {
		r.Files = res.Files.Files()
	}
	return r
}

// WriteJSON writes r as indented JSON followed by a newline.
func WriteJSON(w io.Writer, r *Report) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = w.Write(append(out, '\n'))
	return err
}
