// Copyright (C) 2024, DRP Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drplabs/hashgraph/internal/dhash"
	"github.com/drplabs/hashgraph/internal/drp"
	"github.com/drplabs/hashgraph/internal/object"
)

// vertexSpec is the JSON-friendly shape a vertex batch file describes a
// would-be remote vertex in; drp.Vertex itself only carries cbor tags,
// reserved for the canonical hash preimage, so the CLI's file format gets
// its own small schema instead.
type vertexSpec struct {
	PeerID    string `json:"peerId"`
	OpType    string `json:"opType"`
	Value     []any  `json:"value"`
	Deps      []string `json:"deps"`
	Timestamp int64  `json:"timestamp"`
	// Hash, if set, is used verbatim instead of being recomputed — the
	// hook a batch file uses to demonstrate a tampered-hash rejection.
	Hash string `json:"hash,omitempty"`
}

func mergeCmd(v *viper.Viper) *cobra.Command {
	var peerHex string
	var batchPath string
	var seedIncrements int

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a vertex batch read from a file into a fresh counter engine",
		Long: `merge constructs a new engine, seeds its frontier with --seed local
increments so the batch has something to depend on, then reads a JSON
array of vertex descriptions from --batch and merges them in one call,
reporting which were admitted versus rejected by validation.`,
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

			if batchPath == "" {
				return fmt.Errorf("--batch is required")
			}

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

			for i := 0; i < seedIncrements; i++ {
				if _, err := e.ApplyLocal(drp.KindDRP, "increment", []any{1}); err != nil {
					return fmt.Errorf("seeding increment: %w", err)
				}
			}

			specs, err := readBatch(batchPath)
			if err != nil {
				return err
			}
			vertices := make([]drp.Vertex, 0, len(specs))
			for i, spec := range specs {
				vtx, err := spec.toVertex()
				if err != nil {
					return fmt.Errorf("batch entry %d: %w", i, err)
				}
				vertices = append(vertices, vtx)
			}

			allMerged, missing := e.Merge(vertices)

			fmt.Printf("engine id:      %s\n", e.ID())
			fmt.Printf("batch size:     %d\n", len(vertices))
			fmt.Printf("all admitted:   %t\n", allMerged)
			fmt.Printf("rejected:       %d\n", len(missing))
			for h := range missing {
				fmt.Printf("  - %s\n", h)
			}
			fmt.Printf("vertex count:   %d\n", e.VertexCount())
			fmt.Printf("frontier:       %s\n", formatHashes(e.Frontier()))

			result, err := e.ApplyLocal(drp.KindDRP, "query_read", nil)
			if err != nil {
				return fmt.Errorf("reading counter value: %w", err)
			}
			fmt.Printf("counter value:  %v\n", result)
			return nil
		},
	}

	cmd.Flags().StringVar(&peerHex, "peer", "", "hex-encoded local peer id (a fixed default id if omitted)")
	cmd.Flags().StringVar(&batchPath, "batch", "", "path to a JSON vertex batch file (required)")
	cmd.Flags().IntVar(&seedIncrements, "seed", 1, "local increments applied before merging, to give the batch dependencies")
	return cmd
}

func readBatch(path string) ([]vertexSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	var specs []vertexSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	return specs, nil
}

// normalizeJSONArgs undoes encoding/json's float64-for-every-number
// decoding across a batch entry's argument list, so it reaches the
// counter DRP's increment(int) the way a direct in-process call
// (apply.go's IntSliceVar) already does.
func normalizeJSONArgs(args []any) []any {
	out := make([]any, len(args))
	for i, v := range args {
		out[i] = normalizeJSONNumbers(v)
	}
	return out
}

// normalizeJSONNumbers recursively turns any whole-number float64 into an
// int, through nested slices and maps. Non-whole floats pass through
// unchanged since no descriptor in this CLI expects one.
func normalizeJSONNumbers(v any) any {
	switch t := v.(type) {
	case float64:
		if i := int(t); float64(i) == t {
			return i
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = normalizeJSONNumbers(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = normalizeJSONNumbers(elem)
		}
		return out
	default:
		return v
	}
}

func (s vertexSpec) toVertex() (drp.Vertex, error) {
	peer, err := dhash.PeerIDFromHex(s.PeerID)
	if err != nil {
		return drp.Vertex{}, fmt.Errorf("peerId: %w", err)
	}
	deps := make([]dhash.Hash, 0, len(s.Deps))
	for _, d := range s.Deps {
		h, err := dhash.FromHex(d)
		if err != nil {
			return drp.Vertex{}, fmt.Errorf("deps: %w", err)
		}
		deps = append(deps, h)
	}
	op := drp.Operation{DRPType: drp.KindDRP, OpType: s.OpType, Value: normalizeJSONArgs(s.Value)}

	h, err := drp.ComputeHash(op, deps, peer, s.Timestamp)
	if err != nil {
		return drp.Vertex{}, fmt.Errorf("computing hash: %w", err)
	}
	if s.Hash != "" {
		tampered, err := dhash.FromHex(s.Hash)
		if err != nil {
			return drp.Vertex{}, fmt.Errorf("hash: %w", err)
		}
		h = tampered
	}

	return drp.Vertex{
		Hash:         h,
		PeerID:       peer,
		Operation:    op,
		Dependencies: deps,
		Timestamp:    s.Timestamp,
	}, nil
}
