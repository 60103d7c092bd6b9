// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
)

// fakeCounter is a Multiple-semantics DRP that accepts every concurrent
// operation in hash order (an append-only counter never drops a write).
type fakeCounter struct{}

func (fakeCounter) Semantics() drp.Semantics { return drp.Multiple }
func (fakeCounter) ResolveConflicts(ops []drp.Operation) ([]drp.Operation, error) {
	return ops, nil
}
func (fakeCounter) Operations() map[string]drp.OpDescriptor   { return nil }
func (fakeCounter) Clone() drp.Object                         { return fakeCounter{} }
func (fakeCounter) Attributes() map[string]any                { return nil }
func (fakeCounter) LoadAttributes(map[string]any) error       { return nil }

// fakeLWW is a Pairwise-semantics DRP that always keeps the
// lexicographically larger opType string ("last writer wins" by value).
type fakeLWW struct{}

func (fakeLWW) Semantics() drp.Semantics { return drp.Pairwise }
func (fakeLWW) ResolveConflicts(ops []drp.Operation) ([]drp.Operation, error) {
	if len(ops) != 2 {
		return ops, nil
	}
	if ops[0].OpType == ops[1].OpType {
		return ops, nil
	}
	if ops[0].OpType > ops[1].OpType {
		return []drp.Operation{ops[0]}, nil
	}
	return []drp.Operation{ops[1]}, nil
}
func (fakeLWW) Operations() map[string]drp.OpDescriptor   { return nil }
func (fakeLWW) Clone() drp.Object                          { return fakeLWW{} }
func (fakeLWW) Attributes() map[string]any                 { return nil }
func (fakeLWW) LoadAttributes(map[string]any) error        { return nil }

func TestLinearizeDiamondEmitsMergeVertexLast(t *testing.T) {
	g, a, b, c := buildDiamond(t)
	lca := drp.RootHash
	sub, err := g.Subgraph(lca, []dhash.Hash{c.Hash})
	require.NoError(t, err)
	require.Len(t, sub, 3)

	out, err := Linearize(sub, drp.KindDRP, fakeCounter{})
	require.NoError(t, err)
	require.Len(t, out, 3)

	// a and b are concurrent (antichain), c depends on both: c must come last.
	require.Equal(t, c.Hash, out[2].Hash)
	hashes := []dhash.Hash{out[0].Hash, out[1].Hash}
	require.Contains(t, hashes, a.Hash)
	require.Contains(t, hashes, b.Hash)
}

func TestLinearizeMultipleNeverDropsConcurrentWrites(t *testing.T) {
	g, a, b, _ := buildDiamond(t)
	sub, err := g.Subgraph(drp.RootHash, []dhash.Hash{a.Hash, b.Hash})
	require.NoError(t, err)

	out, err := Linearize(sub, drp.KindDRP, fakeCounter{})
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestLinearizePairwiseDropsLoserDeterministically(t *testing.T) {
	g := New()
	// Two concurrent writes to the same register, same deps, opType
	// values "set:x" and "set:y" differ so fakeLWW can order them.
	opLo := drp.Operation{DRPType: drp.KindDRP, OpType: "set:x", Value: []any{"x"}}
	opHi := drp.Operation{DRPType: drp.KindDRP, OpType: "set:y", Value: []any{"y"}}
	hLo, err := drp.ComputeHash(opLo, []dhash.Hash{drp.RootHash}, dhash.PeerID{}, 1)
	require.NoError(t, err)
	hHi, err := drp.ComputeHash(opHi, []dhash.Hash{drp.RootHash}, dhash.PeerID{}, 2)
	require.NoError(t, err)
	vLo := drp.Vertex{Hash: hLo, Operation: opLo, Dependencies: []dhash.Hash{drp.RootHash}, Timestamp: 1}
	vHi := drp.Vertex{Hash: hHi, Operation: opHi, Dependencies: []dhash.Hash{drp.RootHash}, Timestamp: 2}
	require.NoError(t, g.AddVertex(vLo))
	require.NoError(t, g.AddVertex(vHi))

	sub, err := g.Subgraph(drp.RootHash, []dhash.Hash{vLo.Hash, vHi.Hash})
	require.NoError(t, err)

	out, err := Linearize(sub, drp.KindDRP, fakeLWW{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "set:y", out[0].Operation.OpType)
}

func TestLinearizeIgnoresOtherKindVertices(t *testing.T) {
	g := New()
	aclOp := drp.Operation{DRPType: drp.KindACL, OpType: "grant", Value: []any{"peer"}}
	hACL, err := drp.ComputeHash(aclOp, []dhash.Hash{drp.RootHash}, dhash.PeerID{}, 1)
	require.NoError(t, err)
	vACL := drp.Vertex{Hash: hACL, Operation: aclOp, Dependencies: []dhash.Hash{drp.RootHash}, Timestamp: 1}
	require.NoError(t, g.AddVertex(vACL))

	drpOp := drp.Operation{DRPType: drp.KindDRP, OpType: "increment", Value: nil}
	hDRP, err := drp.ComputeHash(drpOp, []dhash.Hash{vACL.Hash}, dhash.PeerID{}, 2)
	require.NoError(t, err)
	vDRP := drp.Vertex{Hash: hDRP, Operation: drpOp, Dependencies: []dhash.Hash{vACL.Hash}, Timestamp: 2}
	require.NoError(t, g.AddVertex(vDRP))

	sub, err := g.Subgraph(drp.RootHash, []dhash.Hash{vDRP.Hash})
	require.NoError(t, err)
	require.Len(t, sub, 2)

	out, err := Linearize(sub, drp.KindDRP, fakeCounter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, vDRP.Hash, out[0].Hash)
}

// Two concurrent vertices carrying structurally identical operation
// values (same opType, same args, different authors) must each still be
// emitted exactly once: resolveMultiple must bind an accepted op back to
// a distinct vertex rather than matching the first vertex twice.
func TestResolveMultipleDistinguishesVerticesWithEqualOperations(t *testing.T) {
	g := New()
	op := drp.Operation{DRPType: drp.KindDRP, OpType: "increment", Value: []any{1}}
	var peer1, peer2 dhash.PeerID
	peer1[0] = 1
	peer2[0] = 2
	h1, err := drp.ComputeHash(op, []dhash.Hash{drp.RootHash}, peer1, 1)
	require.NoError(t, err)
	h2, err := drp.ComputeHash(op, []dhash.Hash{drp.RootHash}, peer2, 1)
	require.NoError(t, err)
	v1 := drp.Vertex{Hash: h1, PeerID: peer1, Operation: op, Dependencies: []dhash.Hash{drp.RootHash}, Timestamp: 1}
	v2 := drp.Vertex{Hash: h2, PeerID: peer2, Operation: op, Dependencies: []dhash.Hash{drp.RootHash}, Timestamp: 1}
	require.NoError(t, g.AddVertex(v1))
	require.NoError(t, g.AddVertex(v2))

	sub, err := g.Subgraph(drp.RootHash, []dhash.Hash{v1.Hash, v2.Hash})
	require.NoError(t, err)

	out, err := Linearize(sub, drp.KindDRP, fakeCounter{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotEqual(t, out[0].Hash, out[1].Hash)
	hashes := []dhash.Hash{out[0].Hash, out[1].Hash}
	require.Contains(t, hashes, v1.Hash)
	require.Contains(t, hashes, v2.Hash)
}

func TestSortVerticesByHashIsStableAcrossRuns(t *testing.T) {
	a := mkVertexNoDeps(t, "p")
	b := mkVertexNoDeps(t, "q")
	vs := []drp.Vertex{b, a}
	sortVerticesByHash(vs)
	require.True(t, sort.SliceIsSorted(vs, func(i, j int) bool { return vs[i].Hash.Less(vs[j].Hash) }))
}

func mkVertexNoDeps(t *testing.T, seed string) drp.Vertex {
	t.Helper()
	return mkVertex(t, seed, nil, drp.KindDRP)
}
