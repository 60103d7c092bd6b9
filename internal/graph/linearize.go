// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"fmt"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
)

// ErrCycle is returned by Linearize if the subgraph cannot be fully
// ordered, which would only happen given a caller bug upstream (a
// dependency cycle, or a subgraph missing an edge's endpoint).
var ErrCycle = fmt.Errorf("graph: subgraph has no valid topological order")

// Linearize produces the deterministic, total replay order for one kind's
// operations over subgraph: a Kahn's-algorithm topological sort (grounded
// on the kahnNode/frontier bookkeeping in the pack's avalanchego
// Topological consensus engine and on ParallelEngine.DecideTxs in
// pkg/consensus/adapter.go) whose "ready set" — vertices with every
// in-subgraph dependency already emitted — is resolved through obj
// whenever more than one ready vertex belongs to kind, i.e. whenever they
// are mutually concurrent. Vertices of the other kind are walked for
// topological completeness but never passed to the resolver or emitted.
func Linearize(subgraph map[dhash.Hash]drp.Vertex, kind drp.Kind, obj drp.Object) ([]drp.Vertex, error) {
	indegree := make(map[dhash.Hash]int, len(subgraph))
	dependents := make(map[dhash.Hash][]dhash.Hash, len(subgraph))
	for h, v := range subgraph {
		if _, ok := indegree[h]; !ok {
			indegree[h] = 0
		}
		for _, dep := range v.Dependencies {
			if _, ok := subgraph[dep]; !ok {
				continue // dependency outside the subgraph: already linearized, not a blocker
			}
			indegree[h]++
			dependents[dep] = append(dependents[dep], h)
		}
	}

	var ready []dhash.Hash
	for h, deg := range indegree {
		if deg == 0 {
			ready = append(ready, h)
		}
	}
	dhash.SortHashes(ready)

	var out []drp.Vertex
	processed := 0
	for processed < len(subgraph) {
		if len(ready) == 0 {
			return nil, ErrCycle
		}

		var kindReady []drp.Vertex
		for _, h := range ready {
			v := subgraph[h]
			if v.Operation.DRPType == kind {
				kindReady = append(kindReady, v)
			}
		}
		accepted, err := resolveReadySet(obj, kindReady)
		if err != nil {
			return nil, err
		}
		out = append(out, accepted...)

		var next []dhash.Hash
		for _, h := range ready {
			processed++
			for _, dep := range dependents[h] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		dhash.SortHashes(next)
		ready = next
	}
	return out, nil
}

// resolveReadySet applies obj's conflict-resolution protocol to a set of
// mutually concurrent, same-kind vertices (an antichain in the dependency
// order: none depends on another, so their relative replay order is not
// forced by causality and must instead be forced by the resolver).
// Vertices are first sorted by hash so the fold below is itself
// deterministic.
func resolveReadySet(obj drp.Object, vertices []drp.Vertex) ([]drp.Vertex, error) {
	if len(vertices) <= 1 {
		return vertices, nil
	}
	sortVerticesByHash(vertices)

	switch obj.Semantics() {
	case drp.Multiple:
		return resolveMultiple(obj, vertices)
	default:
		return resolvePairwise(obj, vertices)
	}
}

func resolveMultiple(obj drp.Object, vertices []drp.Vertex) ([]drp.Vertex, error) {
	ops := make([]drp.Operation, len(vertices))
	for i, v := range vertices {
		ops[i] = v.Operation
	}
	accepted, err := obj.ResolveConflicts(ops)
	if err != nil {
		return nil, err
	}
	used := make([]bool, len(vertices))
	out := make([]drp.Vertex, 0, len(accepted))
	for _, op := range accepted {
		for i, v := range vertices {
			if used[i] {
				continue
			}
			if v.Operation.Equal(op) {
				out = append(out, v)
				used[i] = true
				break
			}
		}
	}
	return out, nil
}

// resolvePairwise invokes the resolver once per unordered pair (a,b) in
// vertices (already sorted by hash), per spec: each verdict either leaves
// both operands standing (NoConflict), drops one (DropLeft/DropRight,
// encoded as a single-element survivor), or drops both. A dropped vertex
// stays dropped regardless of how it fares against any other pair — this
// is the "loses-to" graph's transitive closure without needing to build
// the graph explicitly, since losing even one comparison is disqualifying.
// The surviving vertices are emitted in their original hash-sorted order,
// which is the deterministic topological emission order required of
// mutually-incomparable (NoConflict) survivors.
func resolvePairwise(obj drp.Object, vertices []drp.Vertex) ([]drp.Vertex, error) {
	n := len(vertices)
	dropped := make([]bool, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			result, err := obj.ResolveConflicts([]drp.Operation{vertices[i].Operation, vertices[j].Operation})
			if err != nil {
				return nil, err
			}
			switch len(result) {
			case 2:
				// NoConflict: both stand, at least against each other.
			case 1:
				switch {
				case result[0].Equal(vertices[i].Operation):
					dropped[j] = true
				case result[0].Equal(vertices[j].Operation):
					dropped[i] = true
				default:
					return nil, fmt.Errorf("graph: pairwise resolver returned an operation not among its inputs")
				}
			case 0:
				dropped[i] = true
				dropped[j] = true
			default:
				return nil, fmt.Errorf("graph: pairwise resolver returned %d operations, expected 0-2", len(result))
			}
		}
	}
	accepted := make([]drp.Vertex, 0, n)
	for i, v := range vertices {
		if !dropped[i] {
			accepted = append(accepted, v)
		}
	}
	return accepted, nil
}

func sortVerticesByHash(vs []drp.Vertex) {
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j].Hash.Less(vs[j-1].Hash); j-- {
			vs[j], vs[j-1] = vs[j-1], vs[j]
		}
	}
}
