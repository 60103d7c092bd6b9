// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
	"github.com/drplabs/hashgraph/internal/testutil"
)

func newTestEngine(t *testing.T, peer dhash.PeerID, drpObj drp.Object, clock func() int64) *Engine {
	t.Helper()
	e, err := New(Options{
		PeerID:           peer,
		PublicCredential: &peer,
		DRP:              drpObj,
		Logger:           zap.NewNop(),
		Clock:            clock,
	})
	require.NoError(t, err)
	return e
}

func fixedClock(ts int64) func() int64 {
	return func() int64 { return ts }
}

// Counter starting at 0, three local increments: frontier size 1, graph
// size 4 (incl. root), value 3.
func TestScenarioCounterThreeIncrements(t *testing.T) {
	p1 := testutil.Peer(1)
	e := newTestEngine(t, p1, &testutil.Counter{}, fixedClock(100))

	for i := 0; i < 3; i++ {
		_, err := e.ApplyLocal(drp.KindDRP, "increment", []any{1})
		require.NoError(t, err)
	}

	require.Len(t, e.Frontier(), 1)
	require.Equal(t, 4, e.VertexCount())

	counter, ok := e.DRP().(*testutil.Counter)
	require.True(t, ok)
	require.Equal(t, 3, counter.Value)
}

// A query_* call leaves vertex count and frontier unchanged and returns
// the current value.
func TestScenarioQueryReadIsPure(t *testing.T) {
	p1 := testutil.Peer(1)
	e := newTestEngine(t, p1, &testutil.Counter{}, fixedClock(100))
	_, err := e.ApplyLocal(drp.KindDRP, "increment", []any{5})
	require.NoError(t, err)

	before := e.VertexCount()
	frontierBefore := e.Frontier()

	result, err := e.ApplyLocal(drp.KindDRP, "query_read", nil)
	require.NoError(t, err)
	require.Equal(t, 5, result)

	require.Equal(t, before, e.VertexCount())
	require.Equal(t, frontierBefore, e.Frontier())
}

// Two peers, PAIRWISE LWW register, concurrent writes "A" and "B" on
// root; merging both ways converges on the lexicographically larger
// value with two frontier heads.
func TestScenarioConcurrentLWWConverges(t *testing.T) {
	p1, p2 := testutil.Peer(1), testutil.Peer(2)
	e1 := newTestEngine(t, p1, &testutil.Register{}, fixedClock(10))
	e2 := newTestEngine(t, p2, &testutil.Register{}, fixedClock(11))

	_, err := e1.ApplyLocal(drp.KindDRP, "write", []any{"A"})
	require.NoError(t, err)
	_, err = e2.ApplyLocal(drp.KindDRP, "write", []any{"B"})
	require.NoError(t, err)

	var vA, vB drp.Vertex
	for _, h := range e1.Frontier() {
		v, _ := e1.graph.Get(h)
		if v.Hash != drp.RootHash {
			vA = v
		}
	}
	for _, h := range e2.Frontier() {
		v, _ := e2.graph.Get(h)
		if v.Hash != drp.RootHash {
			vB = v
		}
	}

	allMerged, missing := e1.Merge([]drp.Vertex{vB})
	require.True(t, allMerged)
	require.Empty(t, missing)
	allMerged, missing = e2.Merge([]drp.Vertex{vA})
	require.True(t, allMerged)
	require.Empty(t, missing)

	require.Len(t, e1.Frontier(), 2)
	require.Len(t, e2.Frontier(), 2)

	reg1, ok := e1.DRP().(*testutil.Register)
	require.True(t, ok)
	reg2, ok := e2.DRP().(*testutil.Register)
	require.True(t, ok)
	require.Equal(t, "B", reg1.Value)
	require.Equal(t, "B", reg2.Value)
}

// A tampered hash fails validation and is reported in missing rather
// than admitted.
func TestScenarioTamperedHashRejected(t *testing.T) {
	p1 := testutil.Peer(1)
	e := newTestEngine(t, p1, &testutil.Counter{}, fixedClock(10))
	_, err := e.ApplyLocal(drp.KindDRP, "increment", []any{1})
	require.NoError(t, err)

	var v drp.Vertex
	for _, h := range e.Frontier() {
		v, _ = e.graph.Get(h)
	}
	v.Hash[0] ^= 0xFF // tamper

	err = e.ValidateVertex(v)
	require.Error(t, err)

	allMerged, missing := e.Merge([]drp.Vertex{v})
	require.False(t, allMerged)
	require.Contains(t, missing, v.Hash)
}

// A vertex from a non-writer peer is rejected.
func TestScenarioNonWriterRejected(t *testing.T) {
	p1, stranger := testutil.Peer(1), testutil.Peer(9)
	e := newTestEngine(t, p1, &testutil.Counter{}, fixedClock(10))

	// Lock down the ACL so only p1 may write.
	_, err := e.ApplyLocal(drp.KindACL, "setPermissionless", []any{false})
	require.NoError(t, err)

	op := drp.Operation{DRPType: drp.KindDRP, OpType: "increment", Value: []any{1}}
	deps := e.Frontier()
	h, err := drp.ComputeHash(op, deps, stranger, 11)
	require.NoError(t, err)
	v := drp.Vertex{Hash: h, PeerID: stranger, Operation: op, Dependencies: deps, Timestamp: 11}

	allMerged, missing := e.Merge([]drp.Vertex{v})
	require.False(t, allMerged)
	require.Contains(t, missing, v.Hash)
}

// The default permissionless ACL admits any peer until toggled, after
// which non-admin writes fail on recipients.
func TestScenarioPermissionlessDefaultThenLocked(t *testing.T) {
	p1, p2 := testutil.Peer(1), testutil.Peer(2)
	e := newTestEngine(t, p1, &testutil.Counter{}, fixedClock(10))

	op := drp.Operation{DRPType: drp.KindDRP, OpType: "increment", Value: []any{1}}
	deps := e.Frontier()
	h, err := drp.ComputeHash(op, deps, p2, 11)
	require.NoError(t, err)
	v := drp.Vertex{Hash: h, PeerID: p2, Operation: op, Dependencies: deps, Timestamp: 11}

	allMerged, missing := e.Merge([]drp.Vertex{v})
	require.True(t, allMerged)
	require.Empty(t, missing)

	_, err = e.ApplyLocal(drp.KindACL, "setPermissionless", []any{false})
	require.NoError(t, err)

	op2 := drp.Operation{DRPType: drp.KindDRP, OpType: "increment", Value: []any{1}}
	deps2 := e.Frontier()
	h2, err := drp.ComputeHash(op2, deps2, p2, 12)
	require.NoError(t, err)
	v2 := drp.Vertex{Hash: h2, PeerID: p2, Operation: op2, Dependencies: deps2, Timestamp: 12}

	allMerged, missing = e.Merge([]drp.Vertex{v2})
	require.False(t, allMerged)
	require.Contains(t, missing, v2.Hash)
}

func TestMergeIdempotent(t *testing.T) {
	p1 := testutil.Peer(1)
	e := newTestEngine(t, p1, &testutil.Counter{}, fixedClock(10))
	_, err := e.ApplyLocal(drp.KindDRP, "increment", []any{1})
	require.NoError(t, err)

	var v drp.Vertex
	for _, h := range e.Frontier() {
		v, _ = e.graph.Get(h)
	}

	countBefore := e.VertexCount()
	allMerged, missing := e.Merge([]drp.Vertex{v})
	require.True(t, allMerged)
	require.Empty(t, missing)
	require.Equal(t, countBefore, e.VertexCount())
}

func TestSubscribeReceivesCallFnAndMergeEvents(t *testing.T) {
	p1, p2 := testutil.Peer(1), testutil.Peer(2)
	e1 := newTestEngine(t, p1, &testutil.Counter{}, fixedClock(10))
	e2 := newTestEngine(t, p2, &testutil.Counter{}, fixedClock(11))

	var events []Origin
	e1.Subscribe(func(_ *Engine, origin Origin, vertices []drp.Vertex) {
		events = append(events, origin)
	})

	_, err := e1.ApplyLocal(drp.KindDRP, "increment", []any{1})
	require.NoError(t, err)

	_, err = e2.ApplyLocal(drp.KindDRP, "increment", []any{2})
	require.NoError(t, err)
	var vFromE2 drp.Vertex
	for _, h := range e2.Frontier() {
		vFromE2, _ = e2.graph.Get(h)
	}
	_, _ = e1.Merge([]drp.Vertex{vFromE2})

	require.Equal(t, []Origin{OriginCallFn, OriginMerge}, events)
}

func TestConstructionRequiresExactlyOneACLSource(t *testing.T) {
	p1 := testutil.Peer(1)
	_, err := New(Options{PeerID: p1, Logger: zap.NewNop()})
	require.ErrorIs(t, err, ErrConstruction)
}

func newACLOnlyEngine(t *testing.T, peer dhash.PeerID, clock func() int64) *Engine {
	t.Helper()
	e, err := New(Options{
		PeerID:           peer,
		PublicCredential: &peer,
		Logger:           zap.NewNop(),
		Clock:            clock,
	})
	require.NoError(t, err)
	return e
}

// A local ACL edit against an ACL-only engine (no DRP track registered)
// must not panic: there is no opposite (DRP) track to reconstruct, so
// that step is skipped rather than dereferencing a nil Object.
func TestApplyLocalACLOnlyModeDoesNotPanic(t *testing.T) {
	p1 := testutil.Peer(1)
	e := newACLOnlyEngine(t, p1, fixedClock(10))
	require.True(t, e.ACLOnly())

	_, err := e.ApplyLocal(drp.KindACL, "grant", []any{p1.String()})
	require.NoError(t, err)
	require.Equal(t, 2, e.VertexCount())
}

// Merging a remote ACL-kind vertex into an ACL-only engine must still
// cache that vertex's ACL state and finality bootstrap, so a second
// vertex depending on it can be reconstructed rather than failing with
// an internal state error.
func TestMergeACLOnlyModeCachesChainedState(t *testing.T) {
	p1, p2 := testutil.Peer(1), testutil.Peer(2)
	e := newACLOnlyEngine(t, p1, fixedClock(10))

	op1 := drp.Operation{DRPType: drp.KindACL, OpType: "addAdmin", Value: []any{p2.String()}}
	deps1 := e.Frontier()
	h1, err := drp.ComputeHash(op1, deps1, p2, 11)
	require.NoError(t, err)
	v1 := drp.Vertex{Hash: h1, PeerID: p2, Operation: op1, Dependencies: deps1, Timestamp: 11}

	allMerged, missing := e.Merge([]drp.Vertex{v1})
	require.True(t, allMerged)
	require.Empty(t, missing)

	op2 := drp.Operation{DRPType: drp.KindACL, OpType: "setPermissionless", Value: []any{false}}
	deps2 := []dhash.Hash{v1.Hash}
	h2, err := drp.ComputeHash(op2, deps2, p2, 12)
	require.NoError(t, err)
	v2 := drp.Vertex{Hash: h2, PeerID: p2, Operation: op2, Dependencies: deps2, Timestamp: 12}

	allMerged, missing = e.Merge([]drp.Vertex{v2})
	require.True(t, allMerged)
	require.Empty(t, missing)
}

// A DRP-kind vertex offered to an ACL-only engine has no track to replay
// against and is rejected rather than admitted or panicking.
func TestMergeACLOnlyModeRejectsDRPVertex(t *testing.T) {
	p1, p2 := testutil.Peer(1), testutil.Peer(2)
	e := newACLOnlyEngine(t, p1, fixedClock(10))

	op := drp.Operation{DRPType: drp.KindDRP, OpType: "increment", Value: []any{1}}
	deps := e.Frontier()
	h, err := drp.ComputeHash(op, deps, p2, 11)
	require.NoError(t, err)
	v := drp.Vertex{Hash: h, PeerID: p2, Operation: op, Dependencies: deps, Timestamp: 11}

	allMerged, missing := e.Merge([]drp.Vertex{v})
	require.False(t, allMerged)
	require.Contains(t, missing, v.Hash)
}
