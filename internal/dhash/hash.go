// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dhash implements the content address used throughout the hash
// graph: a 32-byte digest over a canonical encoding of a vertex's
// (peerId, operation, dependencies, timestamp) tuple.
package dhash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/fxamacker/cbor/v2"
)

// Len is the byte length of a Hash.
const Len = 32

// ErrWrongLength is returned when decoding a hex string of the wrong size.
var ErrWrongLength = errors.New("dhash: wrong length")

// Hash is a 32-byte content address, hex-encoded at the interface boundary.
// It plays the same structural role as avalanchego's ids.ID (also a
// [32]byte array keyed by content) but is hex- rather than CB58-encoded.
type Hash [Len]byte

// Zero is the zero-value Hash, never a valid vertex hash.
var Zero Hash

// FromHex decodes a lowercase hex string into a Hash.
func FromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != Len {
		return h, ErrWrongLength
	}
	copy(h[:], b)
	return h, nil
}

// String returns the lowercase hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Less implements the lexicographic tie-break order used for frontier
// ordering, LCA tie-breaking, and PAIRWISE emission order.
func (h Hash) Less(o Hash) bool {
	return bytes.Compare(h[:], o[:]) < 0
}

// Bytes returns a copy of the underlying digest.
func (h Hash) Bytes() []byte {
	b := make([]byte, Len)
	copy(b, h[:])
	return b
}

// SortHashes sorts hashes in place by lexicographic byte order, the
// determinism rule used for frontier enumeration and tie-breaking.
func SortHashes(hs []Hash) {
	bytesSort(hs)
}

func bytesSort(hs []Hash) {
	// Insertion sort on Less, kept local rather than importing sort for a
	// one-line comparator.
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && hs[j].Less(hs[j-1]); j-- {
			hs[j], hs[j-1] = hs[j-1], hs[j]
		}
	}
}

// PeerID identifies a peer. It mirrors the byte layout of avalanchego's
// ids.NodeID (20 bytes, content-addressed from a peer's credential) so
// embedders already holding a NodeID can convert for free.
type PeerID [20]byte

// NodeID converts p to the avalanchego NodeID it is shaped after.
func (p PeerID) NodeID() ids.NodeID {
	return ids.NodeID(p)
}

// PeerIDFromNodeID converts an avalanchego NodeID into a PeerID.
func PeerIDFromNodeID(n ids.NodeID) PeerID {
	return PeerID(n)
}

// PeerIDFromHex decodes a lowercase hex string into a PeerID.
func PeerIDFromHex(s string) (PeerID, error) {
	var p PeerID
	b, err := hex.DecodeString(s)
	if err != nil {
		return p, err
	}
	if len(b) != len(p) {
		return p, ErrWrongLength
	}
	copy(p[:], b)
	return p, nil
}

func (p PeerID) String() string {
	return hex.EncodeToString(p[:])
}

// IsZero reports whether p is the zero PeerID.
func (p PeerID) IsZero() bool {
	return p == PeerID{}
}

// canonicalEncMode is the deterministic CBOR encoder behind the canonical
// hash preimage: RFC 7049 canonical CBOR encoding sorts map keys and
// forbids indefinite-length items, giving sorted keys and no insignificant
// whitespace without a hand-rolled canonical JSON writer.
var canonicalEncMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(err) // fixed, valid options; cannot fail at runtime
	}
	return mode
}()

// CanonicalEncode serializes v using the canonical CBOR encoding that
// backs every content hash in this engine.
func CanonicalEncode(v any) ([]byte, error) {
	return canonicalEncMode.Marshal(v)
}

// Compute hashes the canonical encoding of v with SHA-256.
func Compute(v any) (Hash, error) {
	preimage, err := CanonicalEncode(v)
	if err != nil {
		return Zero, err
	}
	return Hash(sha256.Sum256(preimage)), nil
}
