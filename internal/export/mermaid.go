package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/slopgraph/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a graph.
// Nodes are grouped by cluster; in-cycle nodes and edges are highlighted.
func GenerateMermaid(g *graph.Graph) string {
	clusters := graph.NewAnalyzer(g).Clusters()

	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(id string) string {
		if mid, ok := nodeIDs[id]; ok {
			return mid
		}
		mid := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[id] = mid
		return mid
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var cycleNodes []string
	for i, c := range clusters {
		fmt.Fprintf(&sb, "  subgraph C%d[\"%.40s\"]\n", i, escape(c.Name))
		for _, member := range c.Members {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", getID(member), escape(label(g, member)))
			if n, ok := g.Node(member); ok && n.InCycle {
				cycleNodes = append(cycleNodes, getID(member))
			}
		}
		sb.WriteString("  end\n")
	}

	var cycleEdges []string
	for i, e := range g.Edges() {
		fmt.Fprintf(&sb, "  %s --> %s\n", getID(e.From), getID(e.To))
		if e.InCycle {
			cycleEdges = append(cycleEdges, fmt.Sprint(i))
		}
	}

	if len(cycleNodes) > 0 {
		sb.WriteString("  classDef cycle fill:#fdd,stroke:#c00\n")
		fmt.Fprintf(&sb, "  class %s cycle\n", strings.Join(cycleNodes, ","))
	}
	if len(cycleEdges) > 0 {
		fmt.Fprintf(&sb, "  linkStyle %s stroke:#c00\n", strings.Join(cycleEdges, ","))
	}

	return sb.String()
}

// label is the qualified name for entities and the last two path
// segments for files.
func label(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok && n.Entity != nil {
		if _, qualified, found := strings.Cut(id, "::"); found {
			return qualified
		}
	}
	return shortPath(id)
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
