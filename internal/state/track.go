// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "github.com/drplabs/hashgraph/internal/dhash"

// Track is the per-vertex state cache for one kind (DRP or ACL). The
// engine holds exactly two Tracks, keyed by drp.Kind: a single generic
// state track abstraction parameterized by kind, instead of two
// hand-duplicated code paths.
type Track struct {
	cache map[dhash.Hash]Record
}

// NewTrack returns an empty Track seeded with the empty record at the
// root hash: root state is empty for both DRP and ACL caches at
// construction.
func NewTrack(root dhash.Hash) *Track {
	t := &Track{cache: make(map[dhash.Hash]Record)}
	t.cache[root] = Record{}
	return t
}

// Get returns the cached record at h, if any.
func (t *Track) Get(h dhash.Hash) (Record, bool) {
	r, ok := t.cache[h]
	return r, ok
}

// Set writes the record at h. A state entry is never mutated after it is
// written; callers must not call Set twice for the same hash.
func (t *Track) Set(h dhash.Hash, r Record) {
	t.cache[h] = r
}

// Has reports whether a record is cached at h.
func (t *Track) Has(h dhash.Hash) bool {
	_, ok := t.cache[h]
	return ok
}

// Len returns the number of cached states, for metrics/tests.
func (t *Track) Len() int {
	return len(t.cache)
}
