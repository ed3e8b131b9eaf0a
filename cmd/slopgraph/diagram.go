package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/slopgraph/internal/analysis"
	"github.com/dusk-indust/slopgraph/internal/export"
)

func newDiagramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagram [dir]",
		Short: "Print the dependency graph as a Mermaid diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDiagram,
	}
	addGraphFlags(cmd)
	return cmd
}

func runDiagram(cmd *cobra.Command, args []string) error {
	dir := targetDir(args)
	opts, err := runOptions(cmd, dir)
	if err != nil {
		return err
	}

	res, err := analysis.Run(cmd.Context(), dir, opts)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), export.GenerateMermaid(res.Graph))
	return nil
}
