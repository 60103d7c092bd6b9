// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

// Package object implements the DRPObject / ObjectEngine: the state
// machine that owns a HashGraph plus the two per-kind state tracks (DRP,
// ACL), drives apply_local/merge/validate_vertex/subscribe, and invokes
// the embedder's DRP through the operation-descriptor interception shim.
// Grounded on pkg/blockchain/blockchain.go's head-of-chain bookkeeping and
// blockchain/consensus/hybrid.go's zap-logged state machine, generalized
// from one fixed chain state to two independently-tracked DRP/ACL tracks
// over a shared causal graph.
package object

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/drplabs/hashgraph/internal/acl"
	"github.com/drplabs/hashgraph/internal/config"
	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
	"github.com/drplabs/hashgraph/internal/finality"
	"github.com/drplabs/hashgraph/internal/graph"
	"github.com/drplabs/hashgraph/internal/state"
)

// ACLObject is the capability surface required of the ACL track
// specifically, beyond the generic drp.Object contract every track
// implements: the writer check and the finality-signer set the engine
// reads directly rather than through the opaque operation table.
type ACLObject interface {
	drp.Object
	IsWriter(peer dhash.PeerID) bool
	FinalitySignerSet() map[dhash.PeerID]struct{}
}

// Origin identifies which path notified a subscriber.
type Origin string

const (
	OriginCallFn Origin = "callFn"
	OriginMerge  Origin = "merge"
)

// SubscribeFunc is the callback shape subscribe() registers.
type SubscribeFunc func(e *Engine, origin Origin, vertices []drp.Vertex)

// Options configures New. Exactly one of {PublicCredential, ACL} must be
// supplied.
type Options struct {
	PeerID           dhash.PeerID `validate:"required"`
	PublicCredential *dhash.PeerID
	ACL              ACLObject
	DRP              drp.Object
	ID               *dhash.Hash
	Config           *config.Config
	Logger           *zap.Logger
	// Clock returns the current wall-clock unix timestamp; overridable in
	// tests for deterministic fixtures. Defaults to time.Now().Unix.
	Clock func() int64
	// Registry, when non-nil, registers the engine's Prometheus collectors
	// against it. Tests typically leave this nil.
	Registry prometheus.Registerer
}

var optsValidate = validator.New()

// Engine is the DRPObject / ObjectEngine: the state machine that owns a
// hash graph plus the DRP and ACL state tracks. Its scheduling model is
// single-threaded cooperative: callers must not invoke Engine methods
// concurrently from multiple goroutines.
type Engine struct {
	id     dhash.Hash
	peerID dhash.PeerID

	drp drp.Object // nil in ACL-only mode
	acl ACLObject

	graph     *graph.HashGraph
	drpStates *state.Track
	aclStates *state.Track
	finality  *finality.Store

	originalDRP drp.Object // pristine clone every replay starts from
	originalACL drp.Object

	subscribers []SubscribeFunc
	depth       int // apply_local re-entrancy depth counter

	cfg    config.Config
	logger *zap.Logger
	clock  func() int64
	metrics *metricsSet
}

func defaultLogger() *zap.Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// New constructs an Engine.
func New(opts Options) (*Engine, error) {
	if err := optsValidate.StructPartial(&opts, "PeerID"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	if (opts.PublicCredential == nil) == (opts.ACL == nil) {
		return nil, fmt.Errorf("%w: exactly one of PublicCredential or ACL must be supplied", ErrConstruction)
	}

	var aclObj ACLObject
	if opts.ACL != nil {
		aclObj = opts.ACL
	} else {
		aclObj = acl.New(*opts.PublicCredential)
	}

	id := opts.ID
	var engineID dhash.Hash
	if id != nil {
		engineID = *id
	} else {
		computed, err := newObjectIdentity(opts.PeerID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
		}
		engineID = computed
	}

	cfg := config.Default()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() int64 { return time.Now().Unix() }
	}

	e := &Engine{
		id:          engineID,
		peerID:      opts.PeerID,
		drp:         opts.DRP,
		acl:         aclObj,
		graph:       graph.New(),
		drpStates:   state.NewTrack(drp.RootHash),
		aclStates:   state.NewTrack(drp.RootHash),
		finality:    finality.New(),
		originalDRP: opts.DRP,
		originalACL: aclObj,
		cfg:         cfg,
		logger:      logger,
		clock:       clock,
		metrics:     newMetrics(opts.Registry, "drp_object_engine"),
	}
	e.finality.Bootstrap(drp.RootHash, aclObj.FinalitySignerSet())
	return e, nil
}

func newObjectIdentity(peer dhash.PeerID) (dhash.Hash, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return dhash.Zero, err
	}
	return dhash.Compute(peer.String() + hex.EncodeToString(nonce[:]))
}

// ID returns the engine's object identity.
func (e *Engine) ID() dhash.Hash { return e.id }

// PeerID returns this engine's local peer identity.
func (e *Engine) PeerID() dhash.PeerID { return e.peerID }

// DRP returns the live, observable DRP reference, or nil in ACL-only mode.
func (e *Engine) DRP() drp.Object { return e.drp }

// ACL returns the live, observable ACL reference.
func (e *Engine) ACL() ACLObject { return e.acl }

// VertexCount returns the number of vertices admitted to the graph,
// including the root.
func (e *Engine) VertexCount() int { return e.graph.Len() }

// Frontier returns the current frontier, sorted by hash.
func (e *Engine) Frontier() []dhash.Hash { return e.graph.Frontier() }

// ACLOnly reports whether the engine was constructed with no user DRP.
func (e *Engine) ACLOnly() bool { return e.drp == nil }
