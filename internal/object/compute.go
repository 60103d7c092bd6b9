// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"fmt"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
	"github.com/drplabs/hashgraph/internal/graph"
	"github.com/drplabs/hashgraph/internal/state"
)

// other returns the companion kind: DRP for ACL and vice versa.
func other(kind drp.Kind) drp.Kind {
	if kind == drp.KindDRP {
		return drp.KindACL
	}
	return drp.KindDRP
}

func (e *Engine) original(kind drp.Kind) drp.Object {
	if kind == drp.KindDRP {
		return e.originalDRP
	}
	return e.originalACL
}

func (e *Engine) track(kind drp.Kind) *state.Track {
	if kind == drp.KindDRP {
		return e.drpStates
	}
	return e.aclStates
}

// compute reconstructs the pure object state at deps for the given
// kind (the DRP or ACL track), parameterized so both tracks share one
// implementation instead of two near-duplicates.
// optionally applying opOverride last. pre, if non-nil, short-circuits
// the LCA/subgraph computation (step 1's "pre?" parameter) for callers
// that already computed it for the companion kind.
func (e *Engine) compute(kind drp.Kind, deps []dhash.Hash, pre *precomputed, opOverride *drp.Operation) (drp.Object, error) {
	original := e.original(kind)
	if original == nil {
		return nil, nil // ACL-only mode, no DRP track to reconstruct
	}

	if pre == nil {
		computed, err := e.precompute(deps)
		if err != nil {
			return nil, err
		}
		pre = computed
	}
	lca, subgraph := pre.lca, pre.subgraph

	obj := original.Clone()

	cached, ok := e.track(kind).Get(lca)
	if !ok {
		return nil, fmt.Errorf("%w: no cached %s state at %s", ErrState, kind, lca)
	}
	if err := obj.LoadAttributes(cached.ToAttributes()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrState, err)
	}

	ordered, err := e.linearizeFor(kind, subgraph, obj)
	if err != nil {
		return nil, err
	}
	for _, v := range ordered {
		if err := e.invokeMutating(obj, v.Operation); err != nil {
			return nil, fmt.Errorf("%w: replaying %s: %v", ErrState, v.Hash, err)
		}
	}

	if opOverride != nil && opOverride.DRPType == kind {
		if err := e.invokeMutating(obj, *opOverride); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOperation, err)
		}
	}
	return obj, nil
}

// precomputed carries an already-computed LCA/subgraph pair so that
// computing both the DRP and the ACL state for the same dependency set
// only walks the graph once.
type precomputed struct {
	lca      dhash.Hash
	subgraph map[dhash.Hash]drp.Vertex
}

func (e *Engine) precompute(deps []dhash.Hash) (*precomputed, error) {
	lca, err := e.graph.LCA(deps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraph, err)
	}
	subgraph, err := e.graph.Subgraph(lca, deps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraph, err)
	}
	if len(subgraph) > e.cfg.MaxSubgraphSize {
		return nil, fmt.Errorf("%w: subgraph of %d vertices exceeds configured max of %d",
			ErrGraph, len(subgraph), e.cfg.MaxSubgraphSize)
	}
	return &precomputed{lca: lca, subgraph: subgraph}, nil
}

func (e *Engine) linearizeFor(kind drp.Kind, subgraph map[dhash.Hash]drp.Vertex, resolver drp.Object) ([]drp.Vertex, error) {
	out, err := graph.Linearize(subgraph, kind, resolver)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraph, err)
	}
	return out, nil
}

// invokeMutating dispatches op against obj through its own operation
// descriptor table, ignoring the return value (replay only cares about
// the resulting state).
func (e *Engine) invokeMutating(obj drp.Object, op drp.Operation) error {
	desc, ok := obj.Operations()[op.OpType]
	if !ok {
		return fmt.Errorf("%w: unknown opType %q", ErrOperation, op.OpType)
	}
	if !desc.Mutating {
		return fmt.Errorf("%w: opType %q is not mutating", ErrOperation, op.OpType)
	}
	_, err := desc.Invoke(obj, op.Value)
	return err
}

func attributesEqual(a, b drp.Object) bool {
	return state.FromAttributes(a.Attributes()).Equal(state.FromAttributes(b.Attributes()))
}
