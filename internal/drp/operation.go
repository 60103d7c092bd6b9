// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package drp

import "github.com/drplabs/hashgraph/internal/dhash"

// Operation is the immutable record of a single intercepted call: which
// track it targets, the dotted operation name, and its opaque argument
// list. opType never names a query_* descriptor — those are pass-through
// and never become an Operation.
type Operation struct {
	DRPType Kind   `cbor:"drpType"`
	OpType  string `cbor:"opType"`
	Value   []any  `cbor:"value"`
}

// Equal reports whether two operations are structurally identical. Used
// when matching a resolver's output back against its input (e.g. to
// decide which operand survived a Pairwise resolution).
func (o Operation) Equal(other Operation) bool {
	if o.DRPType != other.DRPType || o.OpType != other.OpType {
		return false
	}
	if len(o.Value) != len(other.Value) {
		return false
	}
	for i := range o.Value {
		if !equalValue(o.Value[i], other.Value[i]) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	// Operation arguments are opaque and only ever round-tripped through
	// canonical CBOR, so comparing their canonical encodings is both
	// correct and avoids a reflect.DeepEqual dependency on argument types
	// the engine never needs to understand.
	ab, aerr := dhash.CanonicalEncode(a)
	bb, berr := dhash.CanonicalEncode(b)
	if aerr != nil || berr != nil {
		return false
	}
	if len(ab) != len(bb) {
		return false
	}
	for i := range ab {
		if ab[i] != bb[i] {
			return false
		}
	}
	return true
}
