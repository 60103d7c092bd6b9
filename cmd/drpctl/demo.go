// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/drplabs/hashgraph/internal/drp"
)

// counter is the CLI's own worked-example DRP: a MULTIPLE-semantics
// accumulator, grounded the same way internal/testutil.Counter is but
// kept separate since testutil exists only for this module's own tests.
// Specific DRPs are out of scope for the engine itself.
type counter struct {
	Value int
}

func (c *counter) Semantics() drp.Semantics { return drp.Multiple }

func (c *counter) ResolveConflicts(ops []drp.Operation) ([]drp.Operation, error) {
	return ops, nil
}

func (c *counter) Operations() map[string]drp.OpDescriptor {
	return map[string]drp.OpDescriptor{
		"increment": {
			Name:     "increment",
			Mutating: true,
			Invoke: func(d drp.Object, args []any) (any, error) {
				self, ok := d.(*counter)
				if !ok {
					return nil, fmt.Errorf("counter: Invoke called against %T", d)
				}
				if len(args) != 1 {
					return nil, fmt.Errorf("counter: increment wants 1 arg, got %d", len(args))
				}
				n, ok := args[0].(int)
				if !ok {
					return nil, fmt.Errorf("counter: increment wants an int arg")
				}
				self.Value += n
				return self.Value, nil
			},
		},
		"query_read": {
			Name:     "query_read",
			Mutating: false,
			Invoke: func(d drp.Object, _ []any) (any, error) {
				self, ok := d.(*counter)
				if !ok {
					return nil, fmt.Errorf("counter: Invoke called against %T", d)
				}
				return self.Value, nil
			},
		},
	}
}

func (c *counter) Clone() drp.Object { return &counter{Value: c.Value} }

func (c *counter) Attributes() map[string]any {
	return map[string]any{"value": c.Value}
}

func (c *counter) LoadAttributes(attrs map[string]any) error {
	v, ok := attrs["value"]
	if !ok {
		c.Value = 0
		return nil
	}
	n, ok := v.(int)
	if !ok {
		return fmt.Errorf("counter: attribute \"value\" is %T, want int", v)
	}
	c.Value = n
	return nil
}
