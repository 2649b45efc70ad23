// Package propagation provides a queue-based topological resolver over a
// directed dependency graph. It knows nothing about bytecode: nodes are any
// comparable identity and edges carry an arbitrary payload, so the resolution
// front can be tested in isolation from the instruction model.
package propagation

// Graph is an adjacency list keyed by node identity. Edges are recorded on
// their source node and consumed exactly once during Resolve.
type Graph[K comparable, E any] struct {
	edges map[K][]E
	order []K
}

func NewGraph[K comparable, E any]() *Graph[K, E] {
	return &Graph[K, E]{edges: make(map[K][]E)}
}

// Add records an edge on src. Insertion order of sources is preserved for
// deterministic iteration.
func (g *Graph[K, E]) Add(src K, edge E) {
	if _, seen := g.edges[src]; !seen {
		g.order = append(g.order, src)
	}
	g.edges[src] = append(g.edges[src], edge)
}

// Edges returns the edges recorded on src, in insertion order.
func (g *Graph[K, E]) Edges(src K) []E {
	return g.edges[src]
}

// Sources returns every node with outgoing edges, in insertion order.
func (g *Graph[K, E]) Sources() []K {
	return g.order
}

// EdgeCount returns the total number of edges still recorded.
func (g *Graph[K, E]) EdgeCount() int {
	n := 0
	for _, es := range g.edges {
		n += len(es)
	}
	return n
}

// Resolve runs a FIFO worklist seeded with already-resolved nodes. For each
// dequeued node its edge list is consumed exactly once: apply performs the
// caller's mutation for the edge and returns the newly-resolved node, which
// is enqueued in turn. A node dequeued again after its edges were consumed is
// a no-op, so duplicate enqueues are harmless. Returns the number of edges
// applied.
func (g *Graph[K, E]) Resolve(seeds []K, apply func(src K, edge E) K) int {
	queue := append([]K(nil), seeds...)
	applied := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		edges, ok := g.edges[cur]
		if !ok {
			continue
		}
		delete(g.edges, cur)
		for _, e := range edges {
			queue = append(queue, apply(cur, e))
			applied++
		}
	}
	return applied
}
