// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
	"github.com/drplabs/hashgraph/internal/state"
)

// ValidateVertex checks every admission rule a remote vertex must pass
// before entering the graph. Exported so embedders can pre-screen a
// vertex before offering it to Merge.
func (e *Engine) ValidateVertex(v drp.Vertex) error {
	recomputed, err := v.Recompute()
	if err != nil {
		return fmt.Errorf("%w: recomputing hash for %s: %v", ErrValidation, v.Hash, err)
	}
	if recomputed != v.Hash {
		return fmt.Errorf("%w: hash mismatch for %s", ErrValidation, v.Hash)
	}

	if len(v.Dependencies) == 0 {
		return fmt.Errorf("%w: vertex %s has no dependencies", ErrValidation, v.Hash)
	}
	for _, d := range v.Dependencies {
		dv, ok := e.graph.Get(d)
		if !ok {
			return fmt.Errorf("%w: vertex %s depends on unknown %s", ErrValidation, v.Hash, d)
		}
		if dv.Timestamp > v.Timestamp {
			return fmt.Errorf("%w: vertex %s has a dependency with a later timestamp", ErrValidation, v.Hash)
		}
	}

	skew := int64(e.cfg.ClockSkewTolerance / time.Second)
	if v.Timestamp > e.clock()+skew {
		return fmt.Errorf("%w: vertex %s has a timestamp in the future", ErrValidation, v.Hash)
	}

	aclAtDeps, err := e.compute(drp.KindACL, v.Dependencies, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: reconstructing ACL at deps of %s: %v", ErrValidation, v.Hash, err)
	}
	acl, ok := aclAtDeps.(ACLObject)
	if !ok {
		return fmt.Errorf("%w: ACL track does not implement ACLObject", ErrValidation)
	}
	if !acl.IsWriter(v.PeerID) {
		return fmt.Errorf("%w: peer %s is not a writer at deps of %s", ErrValidation, v.PeerID, v.Hash)
	}
	return nil
}

// Merge admits a batch of remote vertices, validating each independently
// and reporting the hashes that could not be admitted rather than
// failing the whole batch.
func (e *Engine) Merge(vertices []drp.Vertex) (bool, map[dhash.Hash]struct{}) {
	missing := map[dhash.Hash]struct{}{}
	var admitted []drp.Vertex

	for _, v := range vertices {
		if e.graph.Has(v.Hash) {
			e.metrics.mergeOutcomes.WithLabelValues("duplicate").Inc()
			continue
		}
		if v.Operation.OpType == "" {
			missing[v.Hash] = struct{}{}
			e.metrics.mergeOutcomes.WithLabelValues("missing").Inc()
			continue
		}
		if err := e.ValidateVertex(v); err != nil {
			e.logger.Debug("merge: rejecting vertex", zap.String("hash", v.Hash.String()), zap.Error(err))
			missing[v.Hash] = struct{}{}
			e.metrics.mergeOutcomes.WithLabelValues("missing").Inc()
			continue
		}

		if err := e.admitWithState(v); err != nil {
			e.logger.Debug("merge: rejecting vertex after validation", zap.String("hash", v.Hash.String()), zap.Error(err))
			missing[v.Hash] = struct{}{}
			e.metrics.mergeOutcomes.WithLabelValues("missing").Inc()
			continue
		}

		if err := e.graph.AddVertex(v); err != nil {
			missing[v.Hash] = struct{}{}
			e.metrics.mergeOutcomes.WithLabelValues("missing").Inc()
			continue
		}
		admitted = append(admitted, v)
		e.metrics.vertexAdmissions.WithLabelValues(v.Operation.DRPType.String(), string(OriginMerge)).Inc()
		e.metrics.mergeOutcomes.WithLabelValues("admitted").Inc()
	}

	if len(admitted) > 0 {
		e.refreshLiveReferences()
		e.metrics.frontierSize.Set(float64(len(e.graph.Frontier())))
		e.notify(OriginMerge, admitted)
	}
	return len(missing) == 0, missing
}

// admitWithState performs merge steps 3-4: compute the LCA/subgraph once
// for v's dependency set, replay the same-kind linearization with v's own
// operation applied last, compute the opposite-kind state at the same
// deps, and cache both at v.Hash along with the finality bootstrap.
//
// In ACL-only mode (no DRP track registered) a DRP-kind vertex has no
// track to replay against and is rejected; an ACL-kind vertex still gets
// its own (same-kind) state and finality bootstrap cached — only the
// opposite (DRP) track's compute/cache is skipped, mirroring the guard
// apply_local takes for the same reason.
func (e *Engine) admitWithState(v drp.Vertex) error {
	op := v.Operation
	if op.DRPType == drp.KindDRP && e.ACLOnly() {
		return fmt.Errorf("%w: vertex %s carries a DRP operation but no DRP track is registered (ACL-only mode)", ErrValidation, v.Hash)
	}

	pre, err := e.precompute(v.Dependencies)
	if err != nil {
		return err
	}
	sameObj, err := e.compute(op.DRPType, v.Dependencies, pre, &op)
	if err != nil {
		return err
	}
	e.track(op.DRPType).Set(v.Hash, state.FromAttributes(sameObj.Attributes()))

	var oppObj drp.Object
	if !e.ACLOnly() {
		oppObj, err = e.compute(other(op.DRPType), v.Dependencies, pre, nil)
		if err != nil {
			return err
		}
		e.track(other(op.DRPType)).Set(v.Hash, state.FromAttributes(oppObj.Attributes()))
	}

	signers, err := e.signerSetFor(op.DRPType, sameObj, oppObj)
	if err != nil {
		return err
	}
	e.finality.Bootstrap(v.Hash, signers)
	return nil
}

// refreshLiveReferences recomputes the live DRP/ACL references at the
// current frontier after a merge batch.
func (e *Engine) refreshLiveReferences() {
	deps := e.graph.Frontier()
	pre, err := e.precompute(deps)
	if err != nil {
		e.logger.Error("refreshLiveReferences: precompute failed", zap.Error(err))
		return
	}
	if !e.ACLOnly() {
		if drpObj, err := e.compute(drp.KindDRP, deps, pre, nil); err == nil {
			e.drp = drpObj
		} else {
			e.logger.Error("refreshLiveReferences: recomputing DRP failed", zap.Error(err))
		}
	}
	if aclObj, err := e.compute(drp.KindACL, deps, pre, nil); err == nil {
		if acl, ok := aclObj.(ACLObject); ok {
			e.acl = acl
		}
	} else {
		e.logger.Error("refreshLiveReferences: recomputing ACL failed", zap.Error(err))
	}
}
