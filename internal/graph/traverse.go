package graph

import "sort"

// Direction controls dependency traversal.
type Direction string

const (
	// DirectionDependencies follows edges forward: what id depends on.
	DirectionDependencies Direction = "dependencies"
	// DirectionDependents follows edges backward: what depends on id.
	DirectionDependents Direction = "dependents"
)

// DependencyChain is a path of node ids starting at the queried node.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// Impact describes the nodes affected by changing a set of nodes.
type Impact struct {
	DirectlyAffected     []string `json:"directlyAffected"`
	TransitivelyAffected []string `json:"transitivelyAffected"`
	RiskScore            float64  `json:"riskScore"` // affected share of all nodes
}

// DependencyChains walks breadth-first from id for up to maxDepth hops
// and returns one chain per node reached, each the first path found to
// it. Neighbours are visited in sorted order.
func (a *Analyzer) DependencyChains(id string, direction Direction, maxDepth int) []DependencyChain {
	chains := []DependencyChain{}
	if maxDepth <= 0 || !a.g.HasNode(id) {
		return chains
	}

	type step struct {
		id   string
		path []string
	}

	visited := map[string]bool{id: true}
	queue := []step{{id: id, path: []string{id}}}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []step
		for _, s := range queue {
			for _, nb := range a.neighbors(s.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				p := make([]string, len(s.path), len(s.path)+1)
				copy(p, s.path)
				p = append(p, nb)
				chains = append(chains, DependencyChain{Nodes: p, Depth: len(p) - 1})
				next = append(next, step{id: nb, path: p})
			}
		}
		queue = next
	}
	return chains
}

func (a *Analyzer) neighbors(id string, direction Direction) []string {
	if direction == DirectionDependents {
		return a.g.Predecessors(id)
	}
	return a.g.Successors(id)
}

// AssessImpact returns the dependents of the changed nodes: those with an
// edge into a changed node, and the full closure of nodes reaching one.
// Changed nodes are never reported as affected.
func (a *Analyzer) AssessImpact(changed []string) Impact {
	changedSet := make(map[string]bool, len(changed))
	for _, id := range changed {
		changedSet[id] = true
	}

	direct := make(map[string]bool)
	for _, id := range changed {
		for _, p := range a.g.Predecessors(id) {
			if !changedSet[p] {
				direct[p] = true
			}
		}
	}

	all := make(map[string]bool, len(direct))
	frontier := make([]string, 0, len(direct))
	for id := range direct {
		all[id] = true
		frontier = append(frontier, id)
	}
	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, p := range a.g.Predecessors(id) {
				if changedSet[p] || all[p] {
					continue
				}
				all[p] = true
				next = append(next, p)
			}
		}
		frontier = next
	}

	impact := Impact{
		DirectlyAffected:     setToSortedSlice(direct),
		TransitivelyAffected: setToSortedSlice(all),
	}
	if n := a.g.NodeCount(); n > 0 {
		impact.RiskScore = float64(len(all)) / float64(n)
	}
	return impact
}

func setToSortedSlice(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
