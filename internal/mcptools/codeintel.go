package mcptools

import (
	"github.com/dusk-indust/slopgraph/internal/graph"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK generates each tool's JSON schema from these struct tags.

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	RepoPath       string   `json:"repoPath" jsonschema:"the absolute path to the repository to analyze"`
	Mode           string   `json:"mode,omitempty" jsonschema:"graph to build: file (imports) or entity (calls). Default: file"`
	EntryPoints    []string `json:"entryPoints,omitempty" jsonschema:"filename fragments of program entry points, never reported as stranded"`
	Languages      []string `json:"languages,omitempty" jsonschema:"languages to analyze (default: all). Values: python, javascript, typescript"`
	ExcludeDirs    []string `json:"excludeDirs,omitempty" jsonschema:"directory names to skip (e.g. vendor)"`
	IgnorePatterns []string `json:"ignorePatterns,omitempty" jsonschema:"glob patterns of root-relative paths to skip"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Root     string      `json:"root"`
	Mode     string      `json:"mode"`
	Files    int         `json:"files"`
	Stats    graph.Stats `json:"stats"`
	Cycles   [][]string  `json:"cycles"`
	Stranded []string    `json:"stranded"`
	Isolated []string    `json:"isolated"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	NodeID    string `json:"nodeId" jsonschema:"file path or entity id (path::name) from the last build"`
	Direction string `json:"direction,omitempty" jsonschema:"dependencies (what it uses) or dependents (what uses it). Default: dependencies"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Direct []string                `json:"direct"`
	Chains []graph.DependencyChain `json:"chains"`
}

// GetCentralityInput is the input for the get_centrality MCP tool.
type GetCentralityInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of nodes to return, most central first (default: 10)"`
}

// GetCentralityOutput is the result of the get_centrality MCP tool.
type GetCentralityOutput struct {
	Nodes []graph.Ranked `json:"nodes"`
}

// AssessImpactInput is the input for the assess_impact MCP tool.
type AssessImpactInput struct {
	Changed []string `json:"changed" jsonschema:"node ids (file paths or entity ids) that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact MCP tool.
type AssessImpactOutput struct {
	Impact graph.Impact `json:"impact"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct {
	Connected bool `json:"connected,omitempty" jsonschema:"group by connected component instead of directory or owning file"`
}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []graph.Cluster `json:"clusters"`
}
