// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package acl implements the default access-control-list DRP: a
// replicated object, tracked on the same hash graph as the user DRP, that
// answers "may peer P write given this dependency set" and "who are the
// current finality signers."
package acl

import (
	"fmt"
	"sort"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
)

// ACL is the default, permission-list implementation of drp.Object used
// whenever an embedder does not supply its own. A non-default ACL is any
// other drp.Object satisfying the same contract; the engine never assumes
// this concrete type.
type ACL struct {
	// Permissionless, when true, makes query_is_writer admit any peer.
	Permissionless  bool
	Admins          map[dhash.PeerID]struct{}
	Writers         map[dhash.PeerID]struct{}
	FinalitySigners map[dhash.PeerID]struct{}
}

// New constructs a permissionless default ACL: when no explicit ACL is
// supplied at construction, it is instantiated with the creator's public
// credential as sole admin.
func New(creator dhash.PeerID) *ACL {
	return &ACL{
		Permissionless:  true,
		Admins:          map[dhash.PeerID]struct{}{creator: {}},
		Writers:         map[dhash.PeerID]struct{}{},
		FinalitySigners: map[dhash.PeerID]struct{}{creator: {}},
	}
}

// Semantics implements drp.Object. Conflicting ACL edits are rare (only
// admins can make them) and are resolved deterministically below, so
// Pairwise is sufficient and cheaper than collecting the whole concurrent
// set.
func (a *ACL) Semantics() drp.Semantics { return drp.Pairwise }

// ResolveConflicts implements drp.Object for exactly two concurrent ACL
// operations: the one whose canonical-encoded value sorts first wins.
// This is a simple, total, content-only order (no timestamps or hashes
// are visible to a resolver), matching the determinism requirement that
// linearization never depends on admission order.
func (a *ACL) ResolveConflicts(ops []drp.Operation) ([]drp.Operation, error) {
	if len(ops) != 2 {
		return nil, fmt.Errorf("acl: pairwise resolver requires exactly 2 operations, got %d", len(ops))
	}
	ea, err := dhash.CanonicalEncode(ops[0].Value)
	if err != nil {
		return nil, err
	}
	eb, err := dhash.CanonicalEncode(ops[1].Value)
	if err != nil {
		return nil, err
	}
	if compareBytes(ea, eb) <= 0 {
		return []drp.Operation{ops[0]}, nil
	}
	return []drp.Operation{ops[1]}, nil
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Clone implements drp.Object with a deep copy.
func (a *ACL) Clone() drp.Object {
	clone := &ACL{
		Permissionless:  a.Permissionless,
		Admins:          make(map[dhash.PeerID]struct{}, len(a.Admins)),
		Writers:         make(map[dhash.PeerID]struct{}, len(a.Writers)),
		FinalitySigners: make(map[dhash.PeerID]struct{}, len(a.FinalitySigners)),
	}
	for k := range a.Admins {
		clone.Admins[k] = struct{}{}
	}
	for k := range a.Writers {
		clone.Writers[k] = struct{}{}
	}
	for k := range a.FinalitySigners {
		clone.FinalitySigners[k] = struct{}{}
	}
	return clone
}

// Attributes implements drp.Object.
func (a *ACL) Attributes() map[string]any {
	return map[string]any{
		"permissionless":  a.Permissionless,
		"admins":          sortedPeers(a.Admins),
		"writers":         sortedPeers(a.Writers),
		"finalitySigners": sortedPeers(a.FinalitySigners),
	}
}

func sortedPeers(set map[dhash.PeerID]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p.String())
	}
	sort.Strings(out)
	return out
}

// LoadAttributes implements drp.Object, the inverse of Attributes. A key
// absent from attrs (as in the empty root record) leaves the receiver's
// current value for that field in place.
func (a *ACL) LoadAttributes(attrs map[string]any) error {
	permissionless := a.Permissionless
	if v, present := attrs["permissionless"]; present {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("acl: attribute \"permissionless\" is %T, want bool", v)
		}
		permissionless = b
	}
	admins, writers, signers := a.Admins, a.Writers, a.FinalitySigners
	var err error
	if v, present := attrs["admins"]; present {
		if admins, err = peerSetFromAny(v); err != nil {
			return fmt.Errorf("acl: admins: %w", err)
		}
	}
	if v, present := attrs["writers"]; present {
		if writers, err = peerSetFromAny(v); err != nil {
			return fmt.Errorf("acl: writers: %w", err)
		}
	}
	if v, present := attrs["finalitySigners"]; present {
		if signers, err = peerSetFromAny(v); err != nil {
			return fmt.Errorf("acl: finalitySigners: %w", err)
		}
	}
	a.Permissionless = permissionless
	a.Admins = admins
	a.Writers = writers
	a.FinalitySigners = signers
	return nil
}

// peerSetFromAny accepts either []string (the shape Attributes emits) or
// []any (the shape a round trip through canonical CBOR decoding produces,
// since a generic decoder has no way to know the element type ahead of
// time) and builds a PeerID set from it.
func peerSetFromAny(v any) (map[dhash.PeerID]struct{}, error) {
	out := map[dhash.PeerID]struct{}{}
	switch list := v.(type) {
	case nil:
		return out, nil
	case []string:
		for _, s := range list {
			p, err := dhash.PeerIDFromHex(s)
			if err != nil {
				return nil, err
			}
			out[p] = struct{}{}
		}
	case []any:
		for _, elem := range list {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("expected string peer id, got %T", elem)
			}
			p, err := dhash.PeerIDFromHex(s)
			if err != nil {
				return nil, err
			}
			out[p] = struct{}{}
		}
	default:
		return nil, fmt.Errorf("expected peer id list, got %T", v)
	}
	return out, nil
}

// IsWriter reports whether peer may author a vertex. Permissionless ACLs
// admit everyone; otherwise peer must be an admin or an explicit writer.
func (a *ACL) IsWriter(peer dhash.PeerID) bool {
	if a.Permissionless {
		return true
	}
	if _, ok := a.Admins[peer]; ok {
		return true
	}
	_, ok := a.Writers[peer]
	return ok
}

// FinalitySignerSet returns the current required-signer set, read by the
// FinalityStore at vertex-admission time.
func (a *ACL) FinalitySignerSet() map[dhash.PeerID]struct{} {
	out := make(map[dhash.PeerID]struct{}, len(a.FinalitySigners))
	for k := range a.FinalitySigners {
		out[k] = struct{}{}
	}
	return out
}
