// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
	"github.com/drplabs/hashgraph/internal/state"
)

func (e *Engine) liveObject(kind drp.Kind) drp.Object {
	if kind == drp.KindDRP {
		return e.drp
	}
	return e.acl
}

// ApplyLocal is the interception shim's entry point. query_* style
// (non-mutating) descriptors are pure pass-through reads against the
// live object. Mutating descriptors go through the speculative-
// apply-and-compare pipeline that turns a state change into a new
// Vertex.
//
// Re-entrant calls — depth > 0, meaning this call originates from inside
// a resolver or from inside another ApplyLocal already in flight — are
// also pass-through, invoked directly against the live object rather than
// against the speculative clone the outer call is mutating. A depth
// counter stands in for inspecting the call stack; this is a deliberate
// simplification for the rare case of an embedder's resolver calling
// back into its own DRP's mutating methods.
func (e *Engine) ApplyLocal(kind drp.Kind, opType string, args []any) (any, error) {
	target := e.liveObject(kind)
	if target == nil {
		return nil, fmt.Errorf("%w: no live %s object (ACL-only mode)", ErrOperation, kind)
	}

	desc, ok := target.Operations()[opType]
	if !ok {
		err := fmt.Errorf("%w: unknown opType %q", ErrOperation, opType)
		e.logger.Warn("apply_local: unknown operation", zap.String("opType", opType), zap.Error(err))
		return nil, err
	}

	if !desc.Mutating || e.depth > 0 {
		return desc.Invoke(target, args)
	}

	e.depth++
	defer func() { e.depth-- }()

	deps := e.graph.Frontier()
	pre, err := e.precompute(deps)
	if err != nil {
		return nil, err
	}
	base, err := e.compute(kind, deps, pre, nil)
	if err != nil {
		return nil, err
	}

	candidate := base.Clone()
	result, invokeErr := desc.Invoke(candidate, args)
	if invokeErr != nil {
		e.logger.Warn("apply_local: operation error, treated as no-op",
			zap.String("opType", opType), zap.Error(invokeErr))
		return result, nil
	}

	if attributesEqual(base, candidate) {
		return result, nil
	}

	ts := e.clock()
	op := drp.Operation{DRPType: kind, OpType: opType, Value: args}
	h, err := drp.ComputeHash(op, deps, e.peerID, ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrState, err)
	}
	vertex := drp.Vertex{Hash: h, PeerID: e.peerID, Operation: op, Dependencies: deps, Timestamp: ts}
	if err := e.graph.AddVertex(vertex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraph, err)
	}

	e.track(kind).Set(h, state.FromAttributes(candidate.Attributes()))

	var oppObj drp.Object
	if !e.ACLOnly() {
		oppObj, err = e.compute(other(kind), deps, pre, nil)
		if err != nil {
			return nil, err
		}
		e.track(other(kind)).Set(h, state.FromAttributes(oppObj.Attributes()))
	}

	signers, err := e.signerSetFor(kind, candidate, oppObj)
	if err != nil {
		return nil, err
	}
	e.finality.Bootstrap(h, signers)

	if kind == drp.KindDRP {
		e.drp = candidate
	} else {
		aclCandidate, ok := candidate.(ACLObject)
		if !ok {
			return nil, fmt.Errorf("%w: ACL track object does not implement ACLObject", ErrConstruction)
		}
		e.acl = aclCandidate
	}

	e.metrics.vertexAdmissions.WithLabelValues(kind.String(), string(OriginCallFn)).Inc()
	e.metrics.frontierSize.Set(float64(len(e.graph.Frontier())))

	e.notify(OriginCallFn, []drp.Vertex{vertex})
	return result, nil
}

// signerSetFor returns the finality-signer set to bootstrap for a newly
// admitted vertex of the given kind: the just-mutated ACL candidate if
// this vertex is itself an ACL edit, otherwise the ACL reconstructed at
// the vertex's dependency set (oppObj, when kind is DRP).
func (e *Engine) signerSetFor(kind drp.Kind, candidate, oppObj drp.Object) (map[dhash.PeerID]struct{}, error) {
	var aclObj drp.Object
	if kind == drp.KindACL {
		aclObj = candidate
	} else {
		aclObj = oppObj
	}
	acl, ok := aclObj.(ACLObject)
	if !ok {
		return nil, fmt.Errorf("%w: ACL track object does not implement ACLObject", ErrConstruction)
	}
	return acl.FinalitySignerSet(), nil
}
