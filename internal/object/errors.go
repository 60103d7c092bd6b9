// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import "errors"

// The five error kinds, as sentinel values wrapped with
// fmt.Errorf("...: %w", err) at each call site so embedders can match
// with errors.Is/errors.As.
var (
	// ErrConstruction: neither an ACL nor a credential was supplied to New.
	ErrConstruction = errors.New("object: construction error")

	// ErrGraph: vertex insertion with an unknown dependency, a duplicate
	// insertion, or a would-be cycle.
	ErrGraph = errors.New("object: graph error")

	// ErrValidation: hash mismatch, missing deps, timestamp violation,
	// future timestamp, or permission denied.
	ErrValidation = errors.New("object: validation error")

	// ErrOperation: unknown opType path, a non-mutating target invoked as
	// mutating, or an error returned from inside the DRP/ACL method.
	ErrOperation = errors.New("object: operation error")

	// ErrState: missing cached state at a hash expected to exist. This
	// indicates an internal bug and is treated as a fatal engine fault.
	ErrState = errors.New("object: state error (internal bug)")
)
