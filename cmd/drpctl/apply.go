// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
	"github.com/drplabs/hashgraph/internal/object"
)

func applyCmd(v *viper.Viper) *cobra.Command {
	var peerHex string
	var increments []int

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a sequence of local increments against a fresh counter engine",
		Long: `apply constructs a new engine seeded with the built-in counter DRP and a
permissionless ACL naming the local peer as its creator, then applies each
--value in order, printing the resulting vertex count, frontier, and
counter value. This exercises the apply_local / speculative-clone-and-
compare path described for the engine's local-write side.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, level, err := loadConfig(v, cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(level)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			peer, err := resolvePeer(peerHex)
			if err != nil {
				return err
			}

			e, err := object.New(object.Options{
				PeerID:           peer,
				PublicCredential: &peer,
				DRP:              &counter{},
				Config:           &cfg,
				Logger:           logger,
			})
			if err != nil {
				return fmt.Errorf("constructing engine: %w", err)
			}

			if len(increments) == 0 {
				increments = []int{1, 1, 1}
			}
			for _, n := range increments {
				if _, err := e.ApplyLocal(drp.KindDRP, "increment", []any{n}); err != nil {
					return fmt.Errorf("applying increment(%d): %w", n, err)
				}
			}

			result, err := e.ApplyLocal(drp.KindDRP, "query_read", nil)
			if err != nil {
				return fmt.Errorf("reading counter value: %w", err)
			}

			fmt.Printf("engine id:      %s\n", e.ID())
			fmt.Printf("vertex count:   %d\n", e.VertexCount())
			fmt.Printf("frontier:       %s\n", formatHashes(e.Frontier()))
			fmt.Printf("counter value:  %v\n", result)
			return nil
		},
	}

	cmd.Flags().StringVar(&peerHex, "peer", "", "hex-encoded local peer id (a fixed default id if omitted)")
	cmd.Flags().IntSliceVar(&increments, "value", nil, "increment amount, repeatable (default 1 1 1)")
	return cmd
}

func resolvePeer(hexID string) (dhash.PeerID, error) {
	if hexID == "" {
		return dhash.PeerIDFromHex("0101010101010101010101010101010101010101")
	}
	return dhash.PeerIDFromHex(hexID)
}

func formatHashes(hs []dhash.Hash) string {
	if len(hs) == 0 {
		return "(empty)"
	}
	out := ""
	for i, h := range hs {
		if i > 0 {
			out += ", "
		}
		out += h.String()
	}
	return out
}
