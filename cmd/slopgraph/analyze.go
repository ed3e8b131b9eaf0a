package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/slopgraph/internal/analysis"
	"github.com/dusk-indust/slopgraph/internal/export"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Build the dependency graph and report cycles, stranded nodes and centrality",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	addGraphFlags(cmd)
	cmd.Flags().String("format", "text", "output format: text|json")
	cmd.Flags().Int("centrality", 10, "number of most central nodes to report (0 = none)")
	cmd.Flags().Bool("clusters", false, "include clusters in the report")
	cmd.Flags().Bool("with-files", false, "include the per-file source model in JSON output")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dir := targetDir(args)
	opts, err := runOptions(cmd, dir)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	res, err := analysis.Run(cmd.Context(), dir, opts)
	if err != nil {
		return err
	}

	reportOpts := export.ReportOptions{}
	reportOpts.TopCentral, _ = cmd.Flags().GetInt("centrality")
	reportOpts.WithClusters, _ = cmd.Flags().GetBool("clusters")
	reportOpts.WithFiles, _ = cmd.Flags().GetBool("with-files")
	report := export.BuildReport(res, reportOpts)

	if format == "json" {
		return export.WriteJSON(cmd.OutOrStdout(), report)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(w io.Writer, r *export.Report) {
	fmt.Fprintf(w, "%s graph of %s\n", r.Mode, r.Root)
	fmt.Fprintf(w, "  nodes: %d  edges: %d  in cycles: %d nodes, %d edges\n",
		r.Stats.Nodes, r.Stats.Edges, r.Stats.InCycleNodes, r.Stats.InCycleEdges)

	fmt.Fprintf(w, "\nCircular dependencies (%d)\n", len(r.Cycles))
	for _, c := range r.Cycles {
		fmt.Fprintf(w, "  %s -> %s\n", strings.Join(c, " -> "), c[0])
	}

	fmt.Fprintf(w, "\nStranded (%d)\n", len(r.Stranded))
	for _, id := range r.Stranded {
		fmt.Fprintf(w, "  %s\n", id)
	}

	if len(r.Central) > 0 {
		fmt.Fprintf(w, "\nMost central\n")
		for _, n := range r.Central {
			fmt.Fprintf(w, "  %.4f  %s\n", n.Score, n.ID)
		}
	}

	if len(r.Clusters) > 0 {
		fmt.Fprintf(w, "\nClusters\n")
		for _, c := range r.Clusters {
			fmt.Fprintf(w, "  %-40s %3d members  cohesion %.2f\n", c.Name, len(c.Members), c.Cohesion)
		}
	}
}
