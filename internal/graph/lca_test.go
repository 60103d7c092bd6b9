// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
)

// buildDiamond constructs root -> a, root -> b, {a,b} -> c and returns the
// graph plus the three non-root vertices.
func buildDiamond(t *testing.T) (*HashGraph, drp.Vertex, drp.Vertex, drp.Vertex) {
	t.Helper()
	g := New()
	a := mkVertex(t, "a", []dhash.Hash{drp.RootHash}, drp.KindDRP)
	b := mkVertex(t, "b", []dhash.Hash{drp.RootHash}, drp.KindDRP)
	require.NoError(t, g.AddVertex(a))
	require.NoError(t, g.AddVertex(b))
	c := mkVertex(t, "c", []dhash.Hash{a.Hash, b.Hash}, drp.KindDRP)
	require.NoError(t, g.AddVertex(c))
	return g, a, b, c
}

func TestLCASingleHead(t *testing.T) {
	g, a, _, _ := buildDiamond(t)
	lca, err := g.LCA([]dhash.Hash{a.Hash})
	require.NoError(t, err)
	require.Equal(t, a.Hash, lca)
}

func TestLCAConcurrentHeadsIsRoot(t *testing.T) {
	g, a, b, _ := buildDiamond(t)
	lca, err := g.LCA([]dhash.Hash{a.Hash, b.Hash})
	require.NoError(t, err)
	require.Equal(t, drp.RootHash, lca)
}

func TestLCAMergeVertexIsOwnAncestor(t *testing.T) {
	g, a, b, c := buildDiamond(t)
	lca, err := g.LCA([]dhash.Hash{c.Hash})
	require.NoError(t, err)
	require.Equal(t, c.Hash, lca)
	require.NotEqual(t, a.Hash, lca)
	require.NotEqual(t, b.Hash, lca)
}

func TestSubgraphBetweenRootAndConcurrentHeads(t *testing.T) {
	g, a, b, _ := buildDiamond(t)
	lca, err := g.LCA([]dhash.Hash{a.Hash, b.Hash})
	require.NoError(t, err)
	require.Equal(t, drp.RootHash, lca)

	sub, err := g.Subgraph(lca, []dhash.Hash{a.Hash, b.Hash})
	require.NoError(t, err)
	require.Len(t, sub, 2)
	require.Contains(t, sub, a.Hash)
	require.Contains(t, sub, b.Hash)
}

func TestSubgraphExcludesLCAItself(t *testing.T) {
	g, a, b, c := buildDiamond(t)
	sub, err := g.Subgraph(c.Hash, []dhash.Hash{c.Hash})
	require.NoError(t, err)
	require.Empty(t, sub)
	require.NotContains(t, sub, a.Hash)
	require.NotContains(t, sub, b.Hash)
}
