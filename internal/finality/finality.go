// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package finality implements the FinalityStore: per-vertex bookkeeping
// of which peers are required to attest a vertex, and which already have,
// bootstrapped from the ACL's signer set at the moment a vertex is
// admitted to the graph. Grounded on the accept/reject bookkeeping in
// pkg/blockchain/block.go (Accept/Reject mutating a Status field) and on
// the frontier/decided-set bookkeeping in pkg/consensus/dag.go, generalized
// from "one global decided status" to "one required-signer set per
// vertex, snapshotted at admission time."
package finality

import (
	"fmt"

	"github.com/drplabs/hashgraph/internal/dhash"
)

// ErrUnknownVertex is returned when an operation names a vertex that was
// never bootstrapped into the store.
var ErrUnknownVertex = fmt.Errorf("finality: unknown vertex")

// ErrNotASigner is returned when Attest is called by a peer outside a
// vertex's required signer set.
var ErrNotASigner = fmt.Errorf("finality: peer is not a required signer")

// record is the per-vertex bookkeeping entry.
type record struct {
	required    map[dhash.PeerID]struct{}
	attested    map[dhash.PeerID]struct{}
}

// Store tracks finality attestations for every admitted vertex.
type Store struct {
	entries map[dhash.Hash]*record
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: map[dhash.Hash]*record{}}
}

// Bootstrap snapshots required as the signer set for h, called exactly
// once when h is admitted to the graph. Calling it twice for the same
// hash is a caller bug; it overwrites the prior snapshot rather than
// panicking, since the ACL can legitimately be re-read after a reorg of
// the speculative-apply path.
func (s *Store) Bootstrap(h dhash.Hash, required map[dhash.PeerID]struct{}) {
	req := make(map[dhash.PeerID]struct{}, len(required))
	for p := range required {
		req[p] = struct{}{}
	}
	s.entries[h] = &record{required: req, attested: map[dhash.PeerID]struct{}{}}
}

// Attest records that peer signed h. Returns ErrUnknownVertex if h was
// never bootstrapped, ErrNotASigner if peer is outside the required set
// snapshotted for h.
func (s *Store) Attest(h dhash.Hash, peer dhash.PeerID) error {
	rec, ok := s.entries[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVertex, h)
	}
	if _, ok := rec.required[peer]; !ok {
		return fmt.Errorf("%w: %s", ErrNotASigner, peer)
	}
	rec.attested[peer] = struct{}{}
	return nil
}

// IsFinal reports whether every required signer for h has attested.
// A vertex with an empty required set (permissionless ACL with no
// designated signers) is vacuously final as soon as it is bootstrapped.
func (s *Store) IsFinal(h dhash.Hash) (bool, error) {
	rec, ok := s.entries[h]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownVertex, h)
	}
	for p := range rec.required {
		if _, ok := rec.attested[p]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// RequiredSigners returns the signer set snapshotted for h.
func (s *Store) RequiredSigners(h dhash.Hash) (map[dhash.PeerID]struct{}, error) {
	rec, ok := s.entries[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVertex, h)
	}
	out := make(map[dhash.PeerID]struct{}, len(rec.required))
	for p := range rec.required {
		out[p] = struct{}{}
	}
	return out, nil
}

// Attestations returns the peers that have attested h so far.
func (s *Store) Attestations(h dhash.Hash) (map[dhash.PeerID]struct{}, error) {
	rec, ok := s.entries[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVertex, h)
	}
	out := make(map[dhash.PeerID]struct{}, len(rec.attested))
	for p := range rec.attested {
		out[p] = struct{}{}
	}
	return out, nil
}

// Has reports whether h has been bootstrapped into the store.
func (s *Store) Has(h dhash.Hash) bool {
	_, ok := s.entries[h]
	return ok
}
