package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/slopgraph/internal/analysis"
	"github.com/dusk-indust/slopgraph/internal/config"
	"github.com/dusk-indust/slopgraph/internal/logging"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slopgraph",
		Short: "Dependency graphs for Python, JavaScript and TypeScript codebases",
		Long: `slopgraph parses a codebase with tree-sitter, builds a file graph from its
imports or an entity graph from its calls, and reports circular
dependencies, stranded code and the most central nodes.

Settings are read from slopgraph.yml in the analyzed directory; flags
override them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging on stderr")

	root.AddCommand(newAnalyzeCmd(), newDiagramCmd(), newServeMCPCmd())
	return root
}

// addGraphFlags registers the flags shared by commands that build a graph.
func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "graph to build: file|entity (default from config, else file)")
	cmd.Flags().StringSlice("entry-point", nil, "entry-point filename fragment (repeatable)")
	cmd.Flags().StringSlice("language", nil, "restrict to languages: python,javascript,typescript")
	cmd.Flags().StringSlice("exclude-dir", nil, "extra directory name to skip (repeatable)")
	cmd.Flags().StringSlice("ignore", nil, "glob of root-relative paths to skip (repeatable)")
	cmd.Flags().Int("workers", 0, "parallel parsers (0 = number of CPUs)")
}

// runOptions loads dir's config and applies the command's flags over it.
func runOptions(cmd *cobra.Command, dir string) (analysis.Options, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return analysis.Options{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("entry-point") {
		cfg.EntryPoints, _ = flags.GetStringSlice("entry-point")
	}
	if flags.Changed("language") {
		cfg.Languages, _ = flags.GetStringSlice("language")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	extraDirs, _ := flags.GetStringSlice("exclude-dir")
	cfg.ExcludeDirs = append(cfg.ExcludeDirs, extraDirs...)
	extraIgnores, _ := flags.GetStringSlice("ignore")
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, extraIgnores...)

	opts, err := analysis.OptionsFromConfig(cfg)
	if err != nil {
		return analysis.Options{}, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	opts.Logger = logging.New(verbose || cfg.Verbose)
	return opts, nil
}

func targetDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
