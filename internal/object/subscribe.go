// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package object

import "github.com/drplabs/hashgraph/internal/drp"

// Subscribe registers cb to be invoked after every batch of vertices
// admitted through ApplyLocal (origin "callFn", always exactly one
// vertex) or Merge (origin "merge", one call per successful batch naming
// every newly admitted vertex). Subscribers observe events in admission
// order; this engine is single-threaded, so no locking is required
// around the subscriber list.
func (e *Engine) Subscribe(cb SubscribeFunc) {
	e.subscribers = append(e.subscribers, cb)
}

func (e *Engine) notify(origin Origin, vertices []drp.Vertex) {
	if len(vertices) == 0 {
		return
	}
	for _, cb := range e.subscribers {
		cb(e, origin, vertices)
	}
}
