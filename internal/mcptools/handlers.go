package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/slopgraph/internal/analysis"
	"github.com/dusk-indust/slopgraph/internal/config"
	"github.com/dusk-indust/slopgraph/internal/graph"
	"github.com/dusk-indust/slopgraph/internal/logging"
)

var errNoGraph = errors.New("no graph built yet; call build_graph first")

// CodeIntelService holds the most recent analysis used by the MCP tool
// handlers. build_graph replaces it; the query tools read it.
type CodeIntelService struct {
	log logrus.FieldLogger

	mu   sync.RWMutex
	last *analysis.Result
}

// NewCodeIntelService creates a CodeIntelService. A nil logger discards.
func NewCodeIntelService(log logrus.FieldLogger) *CodeIntelService {
	return &CodeIntelService{log: logging.OrDiscard(log)}
}

func (s *CodeIntelService) result() (*analysis.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, errNoGraph
	}
	return s.last, nil
}

// BuildGraph analyzes a repository and keeps the result for the query
// tools. Settings from the repository's slopgraph.yml apply unless the
// input overrides them.
func (s *CodeIntelService) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	if input.RepoPath == "" {
		return nil, BuildGraphOutput{}, fmt.Errorf("repoPath is required")
	}

	cfg, err := config.Load(input.RepoPath)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("load config: %w", err)
	}
	if input.Mode != "" {
		cfg.Mode = input.Mode
	}
	if len(input.EntryPoints) > 0 {
		cfg.EntryPoints = input.EntryPoints
	}
	if len(input.Languages) > 0 {
		cfg.Languages = input.Languages
	}
	cfg.ExcludeDirs = append(cfg.ExcludeDirs, input.ExcludeDirs...)
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, input.IgnorePatterns...)

	opts, err := analysis.OptionsFromConfig(cfg)
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}
	opts.Logger = s.log

	res, err := analysis.Run(ctx, input.RepoPath, opts)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("build graph: %w", err)
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	return nil, BuildGraphOutput{
		Root:     res.Root,
		Mode:     string(res.Mode),
		Files:    len(res.Files),
		Stats:    res.Graph.Stats(),
		Cycles:   res.Cycles,
		Stranded: res.Stranded,
		Isolated: res.Isolated,
	}, nil
}

// GetDependencies returns the direct neighbours of a node and the
// dependency chains reachable from it.
func (s *CodeIntelService) GetDependencies(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.NodeID == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("nodeId is required")
	}
	res, err := s.result()
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}
	if !res.Graph.HasNode(input.NodeID) {
		return nil, GetDependenciesOutput{}, fmt.Errorf("unknown node: %s", input.NodeID)
	}

	direction := graph.DirectionDependencies
	if strings.EqualFold(input.Direction, string(graph.DirectionDependents)) {
		direction = graph.DirectionDependents
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	an := res.Analyzer()
	direct := an.GetDependencies(input.NodeID)
	if direction == graph.DirectionDependents {
		direct = an.GetDependents(input.NodeID)
	}

	return nil, GetDependenciesOutput{
		Direct: direct,
		Chains: an.DependencyChains(input.NodeID, direction, maxDepth),
	}, nil
}

// GetCentrality returns the most central nodes of the last graph.
func (s *CodeIntelService) GetCentrality(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetCentralityInput,
) (*mcp.CallToolResult, GetCentralityOutput, error) {
	res, err := s.result()
	if err != nil {
		return nil, GetCentralityOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	return nil, GetCentralityOutput{Nodes: res.Analyzer().TopCentral(limit)}, nil
}

// AssessImpact computes the blast radius of modifying a set of nodes.
func (s *CodeIntelService) AssessImpact(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.Changed) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changed is required")
	}
	res, err := s.result()
	if err != nil {
		return nil, AssessImpactOutput{}, err
	}
	return nil, AssessImpactOutput{Impact: res.Analyzer().AssessImpact(input.Changed)}, nil
}

// GetClusters returns the clusters of the last graph.
func (s *CodeIntelService) GetClusters(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	res, err := s.result()
	if err != nil {
		return nil, GetClustersOutput{}, err
	}
	an := res.Analyzer()
	if input.Connected {
		return nil, GetClustersOutput{Clusters: an.Components()}, nil
	}
	return nil, GetClustersOutput{Clusters: an.Clusters()}, nil
}
