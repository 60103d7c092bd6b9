// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package drp

import (
	"sort"

	"github.com/drplabs/hashgraph/internal/dhash"
)

// Vertex is an immutable, content-addressed node in the hash graph.
type Vertex struct {
	Hash         dhash.Hash    `cbor:"-"`
	PeerID       dhash.PeerID  `cbor:"peerId"`
	Operation    Operation     `cbor:"operation"`
	Dependencies []dhash.Hash  `cbor:"deps"`
	Timestamp    int64         `cbor:"timestamp"`
	Signature    []byte        `cbor:"-"`
}

// preimage is the exact tuple the canonical hash is computed over. It
// excludes Hash (being computed) and Signature (not part of the content
// address; the signature authenticates the hash, it is not hashed itself).
type preimage struct {
	Operation Operation    `cbor:"operation"`
	Deps      []dhash.Hash `cbor:"deps"`
	PeerID    dhash.PeerID `cbor:"peerId"`
	Timestamp int64        `cbor:"timestamp"`
}

// ComputeHash returns the canonical content hash for a vertex with the
// given fields, sorting deps first so the preimage never depends on
// caller-supplied dependency order.
func ComputeHash(op Operation, deps []dhash.Hash, peer dhash.PeerID, ts int64) (dhash.Hash, error) {
	sorted := append([]dhash.Hash(nil), deps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return dhash.Compute(preimage{
		Operation: op,
		Deps:      sorted,
		PeerID:    peer,
		Timestamp: ts,
	})
}

// Recompute returns the hash v.Hash should equal; used by validation.
func (v Vertex) Recompute() (dhash.Hash, error) {
	return ComputeHash(v.Operation, v.Dependencies, v.PeerID, v.Timestamp)
}

// IsRoot reports whether v is the sentinel root vertex.
func (v Vertex) IsRoot() bool {
	return v.Hash == RootHash
}

// NewRoot builds the fixed, engine-defined root vertex.
func NewRoot() Vertex {
	return Vertex{
		Hash:         RootHash,
		Operation:    RootOperation,
		Dependencies: nil,
		Timestamp:    0,
	}
}
