// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package testutil

import "github.com/drplabs/hashgraph/internal/dhash"

// Peer returns a deterministic, distinguishable PeerID for tests: every
// byte of the id is set to b.
func Peer(b byte) dhash.PeerID {
	var p dhash.PeerID
	for i := range p {
		p[i] = b
	}
	return p
}
