package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/slopgraph/internal/logging"
	"github.com/dusk-indust/slopgraph/internal/mcptools"
)

func newServeMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run as an MCP server exposing the graph tools",
		Args:  cobra.NoArgs,
		RunE:  runServeMCP,
	}
	cmd.Flags().String("addr", "", "listen address for streamable HTTP (default: stdio)")
	return cmd
}

func runServeMCP(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := logging.New(verbose)
	if addr != "" {
		log.WithField("addr", addr).Info("serving MCP over HTTP")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mcptools.RunMCPServer(ctx, mcptools.NewCodeIntelService(log), addr)
}
