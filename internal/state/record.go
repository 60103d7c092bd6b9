// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state implements a typed, explicit DRPState/ACLState record in
// place of a reflective key-assignment-and-deep-equality approach: an
// ordered (key, value) sequence with a canonical equality and a canonical
// serialization.
package state

import (
	"sort"

	"github.com/drplabs/hashgraph/internal/dhash"
)

// Entry is one (key, value) pair of a Record.
type Entry struct {
	Key   string `cbor:"key"`
	Value any    `cbor:"value"`
}

// Record is the ordered, unique-keyed attribute snapshot of a DRP or ACL
// at a particular vertex. Keys are exactly the non-function attribute
// names of the object it describes.
type Record struct {
	Entries []Entry `cbor:"entries"`
}

// FromAttributes builds a canonicalized Record (keys sorted) from a plain
// attribute map, as produced by drp.Object.Attributes().
func FromAttributes(attrs map[string]any) Record {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: attrs[k]})
	}
	return Record{Entries: entries}
}

// ToAttributes expands a Record back into a plain attribute map, the
// inverse of FromAttributes, used to seed a cloned object from cached
// state by assigning every (key, value) onto the clone.
func (r Record) ToAttributes() map[string]any {
	attrs := make(map[string]any, len(r.Entries))
	for _, e := range r.Entries {
		attrs[e.Key] = e.Value
	}
	return attrs
}

// Equal reports canonical equality: same keys, in the same order (both
// are already sorted by FromAttributes), with byte-identical canonical
// encodings per value. This is an explicit, serialization-based
// comparison rather than a reflective deep-equality-over-attribute-keys
// one.
func (r Record) Equal(other Record) bool {
	if len(r.Entries) != len(other.Entries) {
		return false
	}
	for i := range r.Entries {
		if r.Entries[i].Key != other.Entries[i].Key {
			return false
		}
		av, aerr := dhash.CanonicalEncode(r.Entries[i].Value)
		bv, berr := dhash.CanonicalEncode(other.Entries[i].Value)
		if aerr != nil || berr != nil || len(av) != len(bv) {
			return false
		}
		for j := range av {
			if av[j] != bv[j] {
				return false
			}
		}
	}
	return true
}

// CanonicalBytes returns the canonical CBOR encoding of the whole record.
// Track caches Record values as they are, and Equal compares the encodings
// entry by entry.
func (r Record) CanonicalBytes() ([]byte, error) {
	return dhash.CanonicalEncode(r)
}
