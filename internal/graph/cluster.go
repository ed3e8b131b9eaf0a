package graph

import (
	"sort"
	"strings"
)

// Cluster is a named group of nodes with a cohesion score:
// internal / (internal + external) edges, 0 when the group has no edges.
type Cluster struct {
	Name     string   `json:"name"`
	Cohesion float64  `json:"cohesion"`
	Members  []string `json:"members"`
}

// Clusters groups nodes by their Cluster attribute (directory for file
// graphs, owning file for entity graphs), ordered by name.
func (a *Analyzer) Clusters() []Cluster {
	groups := make(map[string][]string)
	for _, id := range a.g.NodeIDs() {
		n, _ := a.g.Node(id)
		groups[n.Cluster] = append(groups[n.Cluster], id)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Cluster, 0, len(names))
	for _, name := range names {
		members := groups[name]
		out = append(out, Cluster{Name: name, Cohesion: a.cohesion(members), Members: members})
	}
	return out
}

// Components finds the weakly connected components with at least two
// nodes and names each after the longest common path prefix of its
// members. Components come back ordered by their smallest member.
func (a *Analyzer) Components() []Cluster {
	adj := a.undirected()
	visited := make(map[string]bool, len(adj))

	out := []Cluster{}
	for _, id := range a.g.NodeIDs() {
		if visited[id] {
			continue
		}
		component := bfsComponent(id, adj, visited)
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		out = append(out, Cluster{
			Name:     longestCommonPrefix(component),
			Cohesion: a.cohesion(component),
			Members:  component,
		})
	}
	return out
}

// undirected builds a symmetric adjacency list over the graph's edges.
func (a *Analyzer) undirected() map[string]map[string]bool {
	adj := make(map[string]map[string]bool, a.g.NodeCount())
	for _, id := range a.g.NodeIDs() {
		adj[id] = make(map[string]bool)
	}
	for _, e := range a.g.Edges() {
		adj[e.From][e.To] = true
		adj[e.To][e.From] = true
	}
	return adj
}

// bfsComponent returns every node reachable from start, marking each as
// visited.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for nb := range adj[node] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return component
}

// cohesion counts directed edges with both ends in members as internal
// and edges with exactly one end in members as external.
func (a *Analyzer) cohesion(members []string) float64 {
	in := make(map[string]bool, len(members))
	for _, m := range members {
		in[m] = true
	}

	internal, external := 0, 0
	for _, e := range a.g.Edges() {
		switch from, to := in[e.From], in[e.To]; {
		case from && to:
			internal++
		case from || to:
			external++
		}
	}

	if internal+external == 0 {
		return 0
	}
	return float64(internal) / float64(internal+external)
}

// longestCommonPrefix returns the longest directory prefix (ending in "/")
// shared by all paths, or "" when they share none.
func longestCommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if len(paths) == 1 {
		return paths[0]
	}

	prefix := paths[0]
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			trimmed := strings.TrimRight(prefix, "/")
			idx := strings.LastIndex(trimmed, "/")
			if idx < 0 {
				return ""
			}
			prefix = trimmed[:idx+1]
		}
	}

	if !strings.HasSuffix(prefix, "/") {
		if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
			prefix = prefix[:idx+1]
		} else {
			prefix = ""
		}
	}
	return prefix
}
