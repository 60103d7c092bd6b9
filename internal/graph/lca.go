// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
)

// ErrEmptyHeads is returned by LCA when given no heads.
var ErrEmptyHeads = fmt.Errorf("graph: LCA requires at least one head")

// ancestors returns the set of h and every vertex reachable from h by
// following dependency edges backward, including h itself.
func (g *HashGraph) ancestors(h dhash.Hash) set.Set[dhash.Hash] {
	seen := set.Of(h)
	stack := []dhash.Hash{h}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v, ok := g.vertices[cur]
		if !ok {
			continue
		}
		for _, dep := range v.Dependencies {
			if !seen.Contains(dep) {
				seen.Add(dep)
				stack = append(stack, dep)
			}
		}
	}
	return seen
}

// isAncestor reports whether anc is h or a transitive dependency of h.
func (g *HashGraph) isAncestor(anc, h dhash.Hash) bool {
	if anc == h {
		return true
	}
	return g.ancestors(h).Contains(anc)
}

// LCA computes the lowest common ancestor of heads: the common ancestor
// that is itself a descendant of every other common ancestor. When
// several vertices tie for "lowest" (the common-ancestor set has more
// than one maximal element, which a DAG with concurrent merges can
// produce), the lexicographically smallest hash is chosen, the same
// tie-break rule used everywhere else in this package.
func (g *HashGraph) LCA(heads []dhash.Hash) (dhash.Hash, error) {
	if len(heads) == 0 {
		return dhash.Zero, ErrEmptyHeads
	}
	if len(heads) == 1 {
		return heads[0], nil
	}

	common := g.ancestors(heads[0])
	for _, h := range heads[1:] {
		common = set.Intersection(common, g.ancestors(h))
	}
	if common.Len() == 0 {
		return dhash.Zero, fmt.Errorf("graph: heads share no common ancestor")
	}

	candidates := common.List()
	var lowest []dhash.Hash
	for _, c := range candidates {
		isLowest := true
		for _, other := range candidates {
			if other == c {
				continue
			}
			// c is not lowest if some other common ancestor strictly
			// descends from c (i.e. c is an ancestor of other, not the
			// reverse) and is itself still a common ancestor.
			if g.isAncestor(c, other) && c != other {
				isLowest = false
				break
			}
		}
		if isLowest {
			lowest = append(lowest, c)
		}
	}
	dhash.SortHashes(lowest)
	if len(lowest) == 0 {
		return dhash.Zero, fmt.Errorf("graph: no maximal common ancestor found")
	}
	return lowest[0], nil
}

// Subgraph populates the set of vertices strictly between lca (exclusive)
// and every head (inclusive), by walking backward from each head until
// lca is reached. Per the resolved Open Question in SPEC_FULL.md §5.2,
// this walk always runs in full regardless of how many heads or
// dependencies are involved — the "skip when there is a single
// dependency" shortcut the source takes is unsound whenever that single
// dependency is not itself the LCA, so it is never applied here.
func (g *HashGraph) Subgraph(lca dhash.Hash, heads []dhash.Hash) (map[dhash.Hash]drp.Vertex, error) {
	out := map[dhash.Hash]drp.Vertex{}
	// Only descendants of lca can lie on a path from lca to a head.
	below := set.Of(lca)
	stack := []dhash.Hash{lca}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for d := range g.dependents[cur] {
			if !below.Contains(d) {
				below.Add(d)
				stack = append(stack, d)
			}
		}
	}
	for _, h := range heads {
		if err := g.collectBetween(lca, h, below, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (g *HashGraph) collectBetween(lca, h dhash.Hash, below set.Set[dhash.Hash], out map[dhash.Hash]drp.Vertex) error {
	if h == lca || !below.Contains(h) {
		return nil
	}
	if _, already := out[h]; already {
		return nil
	}
	v, ok := g.vertices[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDependency, h)
	}
	out[h] = v
	for _, dep := range v.Dependencies {
		if err := g.collectBetween(lca, dep, out); err != nil {
			return err
		}
	}
	return nil
}
