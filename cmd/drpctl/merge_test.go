// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drplabs/hashgraph/internal/drp"
)

func TestVertexSpecToVertexComputesHash(t *testing.T) {
	spec := vertexSpec{
		PeerID:    "0202020202020202020202020202020202020202",
		OpType:    "increment",
		Value:     []any{float64(1)},
		Deps:      nil,
		Timestamp: 42,
	}
	v, err := spec.toVertex()
	require.NoError(t, err)

	want, err := drp.ComputeHash(v.Operation, v.Dependencies, v.PeerID, v.Timestamp)
	require.NoError(t, err)
	require.Equal(t, want, v.Hash)
	require.Equal(t, "increment", v.Operation.OpType)
}

func TestVertexSpecToVertexHonorsExplicitHash(t *testing.T) {
	tampered := "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	spec := vertexSpec{
		PeerID:    "0303030303030303030303030303030303030303",
		OpType:    "increment",
		Value:     []any{float64(1)},
		Timestamp: 1,
		Hash:      tampered,
	}
	v, err := spec.toVertex()
	require.NoError(t, err)
	require.Equal(t, tampered, v.Hash.String())
}

func TestResolvePeerDefaultsWhenEmpty(t *testing.T) {
	p, err := resolvePeer("")
	require.NoError(t, err)
	require.False(t, p.IsZero())
}
