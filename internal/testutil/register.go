// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package testutil

import (
	"fmt"

	"github.com/drplabs/hashgraph/internal/drp"
)

// Register is a PAIRWISE-semantics last-writer-wins register: when two
// writes are concurrent, the resolver keeps the one
// whose value sorts lexicographically greater, a deterministic,
// content-only stand-in for "latest write wins" that needs no timestamp
// visible to the resolver itself.
type Register struct {
	Value string
}

func (r *Register) Semantics() drp.Semantics { return drp.Pairwise }

func (r *Register) ResolveConflicts(ops []drp.Operation) ([]drp.Operation, error) {
	if len(ops) != 2 {
		return ops, nil
	}
	a, ok := valueOf(ops[0])
	if !ok {
		return nil, fmt.Errorf("register: operation %q has no string value", ops[0].OpType)
	}
	b, ok := valueOf(ops[1])
	if !ok {
		return nil, fmt.Errorf("register: operation %q has no string value", ops[1].OpType)
	}
	if a >= b {
		return []drp.Operation{ops[0]}, nil
	}
	return []drp.Operation{ops[1]}, nil
}

func valueOf(op drp.Operation) (string, bool) {
	if len(op.Value) != 1 {
		return "", false
	}
	s, ok := op.Value[0].(string)
	return s, ok
}

func (r *Register) Operations() map[string]drp.OpDescriptor {
	return map[string]drp.OpDescriptor{
		"write": {
			Name:     "write",
			Mutating: true,
			Invoke: func(d drp.Object, args []any) (any, error) {
				self, ok := d.(*Register)
				if !ok {
					return nil, fmt.Errorf("register: Invoke called against %T", d)
				}
				if len(args) != 1 {
					return nil, fmt.Errorf("register: write wants 1 arg, got %d", len(args))
				}
				v, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("register: write wants a string arg")
				}
				self.Value = v
				return v, nil
			},
		},
		"query_read": {
			Name:     "query_read",
			Mutating: false,
			Invoke: func(d drp.Object, _ []any) (any, error) {
				self, ok := d.(*Register)
				if !ok {
					return nil, fmt.Errorf("register: Invoke called against %T", d)
				}
				return self.Value, nil
			},
		},
	}
}

func (r *Register) Clone() drp.Object { return &Register{Value: r.Value} }

func (r *Register) Attributes() map[string]any {
	return map[string]any{"value": r.Value}
}

func (r *Register) LoadAttributes(attrs map[string]any) error {
	v, ok := attrs["value"]
	if !ok {
		r.Value = ""
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("register: attribute \"value\" is %T, want string", v)
	}
	r.Value = s
	return nil
}
