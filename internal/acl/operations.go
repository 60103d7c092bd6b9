// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package acl

import (
	"fmt"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
)

// Operations implements drp.Object: the descriptor table backing
// apply_local's dispatch for this ACL, covering the two required
// query_* reads plus the mutating edits a writer-set management surface
// needs.
func (a *ACL) Operations() map[string]drp.OpDescriptor {
	return map[string]drp.OpDescriptor{
		"query_is_writer": {
			Name:     "query_is_writer",
			Mutating: false,
			Invoke: func(d drp.Object, args []any) (any, error) {
				acl, peer, err := asACLWithPeerArg(d, args)
				if err != nil {
					return nil, err
				}
				return acl.IsWriter(peer), nil
			},
		},
		"query_get_finality_signers": {
			Name:     "query_get_finality_signers",
			Mutating: false,
			Invoke: func(d drp.Object, args []any) (any, error) {
				acl, ok := d.(*ACL)
				if !ok {
					return nil, fmt.Errorf("acl: Invoke called against %T", d)
				}
				return sortedPeers(acl.FinalitySigners), nil
			},
		},
		"setPermissionless": {
			Name:     "setPermissionless",
			Mutating: true,
			Invoke: func(d drp.Object, args []any) (any, error) {
				acl, ok := d.(*ACL)
				if !ok {
					return nil, fmt.Errorf("acl: Invoke called against %T", d)
				}
				if len(args) != 1 {
					return nil, fmt.Errorf("acl: setPermissionless wants 1 arg, got %d", len(args))
				}
				v, ok := args[0].(bool)
				if !ok {
					return nil, fmt.Errorf("acl: setPermissionless wants a bool arg")
				}
				acl.Permissionless = v
				return nil, nil
			},
		},
		"addAdmin": {
			Name:     "addAdmin",
			Mutating: true,
			Invoke: func(d drp.Object, args []any) (any, error) {
				acl, peer, err := asACLWithPeerArg(d, args)
				if err != nil {
					return nil, err
				}
				acl.Admins[peer] = struct{}{}
				return nil, nil
			},
		},
		"removeAdmin": {
			Name:     "removeAdmin",
			Mutating: true,
			Invoke: func(d drp.Object, args []any) (any, error) {
				acl, peer, err := asACLWithPeerArg(d, args)
				if err != nil {
					return nil, err
				}
				delete(acl.Admins, peer)
				return nil, nil
			},
		},
		"grant": {
			Name:     "grant",
			Mutating: true,
			Invoke: func(d drp.Object, args []any) (any, error) {
				acl, peer, err := asACLWithPeerArg(d, args)
				if err != nil {
					return nil, err
				}
				acl.Writers[peer] = struct{}{}
				return nil, nil
			},
		},
		"revoke": {
			Name:     "revoke",
			Mutating: true,
			Invoke: func(d drp.Object, args []any) (any, error) {
				acl, peer, err := asACLWithPeerArg(d, args)
				if err != nil {
					return nil, err
				}
				delete(acl.Writers, peer)
				return nil, nil
			},
		},
	}
}

func asACLWithPeerArg(d drp.Object, args []any) (*ACL, dhash.PeerID, error) {
	acl, ok := d.(*ACL)
	if !ok {
		return nil, dhash.PeerID{}, fmt.Errorf("acl: Invoke called against %T", d)
	}
	if len(args) != 1 {
		return nil, dhash.PeerID{}, fmt.Errorf("acl: wants exactly 1 peer id arg, got %d", len(args))
	}
	peer, err := peerFromArg(args[0])
	if err != nil {
		return nil, dhash.PeerID{}, err
	}
	return acl, peer, nil
}

func peerFromArg(v any) (dhash.PeerID, error) {
	switch t := v.(type) {
	case dhash.PeerID:
		return t, nil
	case string:
		return dhash.PeerIDFromHex(t)
	default:
		return dhash.PeerID{}, fmt.Errorf("acl: expected a peer id argument, got %T", v)
	}
}
