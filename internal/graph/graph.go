// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package graph implements the append-only, content-addressed hash graph
// every DRP object is built on: vertex storage, frontier tracking, lowest
// common ancestor computation, and deterministic linearization. It is
// grounded on the topological vertex DAG in
// Final-Project-13520137/avalanche-parallel-dag's pkg/consensus/dag.go and
// on the real avalanchego Topological consensus engine (snow/consensus),
// generalized from "vertices carry a decided/accepted status" to
// "vertices carry an immutable operation replayed during linearization."
package graph

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
)

// ErrUnknownDependency is returned by AddVertex when a dependency hash is
// not present in the graph.
var ErrUnknownDependency = fmt.Errorf("graph: unknown dependency")

// ErrAlreadyPresent is returned by AddVertex for a hash already stored.
var ErrAlreadyPresent = fmt.Errorf("graph: vertex already present")

// HashGraph is the single causal DAG a DRPObject and its ACL are both
// tracked on: one hash graph backing two independent state caches.
type HashGraph struct {
	vertices   map[dhash.Hash]drp.Vertex
	dependents map[dhash.Hash]set.Set[dhash.Hash] // dep -> vertices that name it
	frontier   set.Set[dhash.Hash]                // current sink set (no known dependents yet)
}

// New returns a graph containing only the sentinel root vertex.
func New() *HashGraph {
	root := drp.NewRoot()
	g := &HashGraph{
		vertices:   map[dhash.Hash]drp.Vertex{root.Hash: root},
		dependents: map[dhash.Hash]set.Set[dhash.Hash]{},
		frontier:   set.Of(root.Hash),
	}
	return g
}

// AddVertex admits v into the graph. Every dependency named by v must
// already be present; v's dependencies are removed from the frontier and
// v itself becomes a new frontier member.
func (g *HashGraph) AddVertex(v drp.Vertex) error {
	if _, ok := g.vertices[v.Hash]; ok {
		return ErrAlreadyPresent
	}
	for _, dep := range v.Dependencies {
		if _, ok := g.vertices[dep]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDependency, dep)
		}
	}
	g.vertices[v.Hash] = v
	for _, dep := range v.Dependencies {
		if g.dependents[dep] == nil {
			g.dependents[dep] = set.Empty[dhash.Hash]()
		}
		g.dependents[dep].Add(v.Hash)
		g.frontier.Remove(dep)
	}
	g.frontier.Add(v.Hash)
	return nil
}

// Get returns the vertex stored at h.
func (g *HashGraph) Get(h dhash.Hash) (drp.Vertex, bool) {
	v, ok := g.vertices[h]
	return v, ok
}

// Has reports whether h is present in the graph.
func (g *HashGraph) Has(h dhash.Hash) bool {
	_, ok := g.vertices[h]
	return ok
}

// Len returns the number of vertices in the graph.
func (g *HashGraph) Len() int {
	return len(g.vertices)
}

// Frontier returns the current sink set, sorted lexicographically for
// determinism.
func (g *HashGraph) Frontier() []dhash.Hash {
	out := g.frontier.List()
	dhash.SortHashes(out)
	return out
}

// Dependents returns the vertices that directly name h as a dependency,
// sorted lexicographically.
func (g *HashGraph) Dependents(h dhash.Hash) []dhash.Hash {
	s, ok := g.dependents[h]
	if !ok {
		return nil
	}
	out := s.List()
	dhash.SortHashes(out)
	return out
}
