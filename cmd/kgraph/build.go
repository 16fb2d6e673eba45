package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/config"
	"github.com/h7lu/modkg/services/kgraph/extract"
	"github.com/h7lu/modkg/services/kgraph/graph"
	"github.com/h7lu/modkg/services/kgraph/rank"
)

func newBuildCmd() *cobra.Command {
	var (
		chunksPath  string
		out         string
		projectRoot string
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build graph artefacts from a JSONL chunk file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), chunksPath, out, projectRoot, workers)
		},
	}

	cmd.Flags().StringVar(&chunksPath, "chunks", "", "path to the input JSONL chunk file (required)")
	cmd.Flags().StringVar(&out, "out", ".", "base path of the graph artefacts (written as <out>.nodes.tsv, <out>.csr.bin, <out>.csc.bin, <out>.pagerank.tsv)")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "project root to load kgraph.config.yaml from, if present")
	cmd.Flags().IntVar(&workers, "workers", 0, "extraction worker count (default: the config's worker_count, else number of CPUs)")
	cmd.MarkFlagRequired("chunks")

	return cmd
}

func runBuild(ctx context.Context, chunksPath, out, projectRoot string, workers int) error {
	buildID := uuid.New().String()
	slog.Info("build starting", slog.String("build_id", buildID), slog.String("chunks", chunksPath))

	records, err := chunk.ReadJSONLFile(chunksPath)
	if err != nil {
		return fmt.Errorf("kgraph build %s: %w", buildID, err)
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		return fmt.Errorf("kgraph build: %w", err)
	}

	builder, err := extract.NewBuilder(extract.Options{
		Config:      cfg,
		WorkerCount: workers,
		Progress: func(p extract.BuildProgress) {
			slog.Info("build progress",
				slog.String("phase", p.Phase.String()),
				slog.Int("chunks_total", p.ChunksTotal),
				slog.Int("chunks_complete", p.ChunksComplete),
				slog.Int("edges_emitted", p.EdgesEmitted),
			)
		},
	})
	if err != nil {
		return fmt.Errorf("kgraph build: %w", err)
	}

	edges, err := builder.Extract(ctx, records)
	if err != nil {
		return fmt.Errorf("kgraph build: %w", err)
	}

	_, nodes, csr, csc, err := graph.Build(records, edges, out)
	if err != nil {
		return fmt.Errorf("kgraph build: writing graph artefacts: %w", err)
	}

	scores := rank.Compute(csr, csc, nodes.Len())
	_, _, _, pagerankPath := graph.ArtefactPaths(out)
	if err := rank.Write(pagerankPath, nodes, scores); err != nil {
		return fmt.Errorf("kgraph build: writing pagerank: %w", err)
	}

	slog.Info("build complete",
		slog.String("build_id", buildID),
		slog.Int("nodes", nodes.Len()),
		slog.Int("edges", len(edges)),
		slog.String("out", out),
	)
	return nil
}
