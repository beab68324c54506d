// Package costgraph models which derived costs depend on which source prices.
// Edges point from a source (ingredient, packaging, recipe) to the entity
// whose cost it feeds (recipe or product).
package costgraph

import (
	"fmt"
	"sort"
)

// Kind is the entity type of a node.
type Kind uint8

const (
	Ingredient Kind = iota + 1
	Packaging
	Recipe
	Product
)

func (k Kind) String() string {
	switch k {
	case Ingredient:
		return "ingredient"
	case Packaging:
		return "packaging"
	case Recipe:
		return "recipe"
	case Product:
		return "product"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Node identifies one entity.
type Node struct {
	Kind Kind
	ID   string
}

func (n Node) String() string {
	return n.Kind.String() + ":" + n.ID
}

// Graph holds adjacency lists keyed by source node.
type Graph struct {
	dependents map[Node]map[Node]struct{}
}

func New() *Graph {
	return &Graph{dependents: make(map[Node]map[Node]struct{})}
}

// Link records that to's cost depends on from's. Duplicate links are ignored.
func (g *Graph) Link(from, to Node) {
	set, ok := g.dependents[from]
	if !ok {
		set = make(map[Node]struct{})
		g.dependents[from] = set
	}
	set[to] = struct{}{}
}

// Dependents returns the direct dependents of n, sorted.
func (g *Graph) Dependents(n Node) []Node {
	set := g.dependents[n]
	out := make([]Node, 0, len(set))
	for dep := range set {
		out = append(out, dep)
	}
	sortNodes(out)
	return out
}

// Affected walks the graph breadth-first from start and returns every node
// reachable from it whose kind is in kinds (all kinds when none are given).
// Start nodes are never part of the result. Nodes come out layer by layer,
// each layer sorted, so a node is always listed after the nodes it depends on
// within the walk. Cycles are tolerated.
func (g *Graph) Affected(start []Node, kinds ...Kind) []Node {
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	visited := make(map[Node]bool, len(start))
	frontier := make([]Node, 0, len(start))
	for _, n := range start {
		if !visited[n] {
			visited[n] = true
			frontier = append(frontier, n)
		}
	}
	sortNodes(frontier)

	var out []Node
	for len(frontier) > 0 {
		var next []Node
		for _, n := range frontier {
			for _, dep := range g.Dependents(n) {
				if visited[dep] {
					continue
				}
				visited[dep] = true
				next = append(next, dep)
			}
		}
		sortNodes(next)
		for _, n := range next {
			if len(want) == 0 || want[n.Kind] {
				out = append(out, n)
			}
		}
		frontier = next
	}
	return out
}

// Nodes builds nodes of one kind from raw identifiers.
func Nodes(kind Kind, ids []string) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, Node{Kind: kind, ID: id})
	}
	return out
}

// IDs extracts identifiers of the given kind, preserving order.
func IDs(nodes []Node, kind Kind) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == kind {
			out = append(out, n.ID)
		}
	}
	return out
}

func sortNodes(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Kind != nodes[j].Kind {
			return nodes[i].Kind < nodes[j].Kind
		}
		return nodes[i].ID < nodes[j].ID
	})
}
