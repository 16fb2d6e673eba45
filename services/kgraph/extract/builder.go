package extract

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/config"
	"github.com/h7lu/modkg/services/kgraph/graph"
)

var tracer = otel.Tracer("github.com/h7lu/modkg/services/kgraph/extract")

// Options configures a Builder (§4).
type Options struct {
	// Config drives extraction-mode selection and the linkable-field,
	// namespace and Def-reference tables. Default() is used if nil.
	Config *config.Config

	// WorkerCount bounds Phase 1-3 fan-out. When <= 0, the configured
	// Config.Extraction.WorkerCount is used, and runtime.NumCPU() when that
	// is also <= 0.
	WorkerCount int

	// Progress receives build progress updates. May be nil.
	Progress ProgressFunc

	// Logger receives structured build logs. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) workerCount() int {
	if o.WorkerCount > 0 {
		return o.WorkerCount
	}
	if o.Config != nil && o.Config.Extraction.WorkerCount > 0 {
		return o.Config.Extraction.WorkerCount
	}
	return runtime.NumCPU()
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Builder runs the four extraction phases over a chunk set and produces
// the edge multiset graph.Build consumes. Builder is stateless and safe
// to reuse across builds.
type Builder struct {
	opts Options
}

// NewBuilder constructs a Builder, filling in config.Default() if opts.Config
// is nil.
func NewBuilder(opts Options) (*Builder, error) {
	if opts.Config == nil {
		cfg, err := config.Default()
		if err != nil {
			return nil, fmt.Errorf("extract.NewBuilder: %w", err)
		}
		opts.Config = cfg
	}
	return &Builder{opts: opts}, nil
}

// Extract runs all four phases over chunks and returns the combined edge
// multiset, ready for graph.Build. It never returns a partial-but-silent
// result: per-chunk extraction errors are swallowed at the phase level
// (syntactic/heuristic extraction degrades gracefully per §4.1), but a
// cancelled context is always surfaced.
func (b *Builder) Extract(ctx context.Context, chunks []chunk.Record) ([]graph.Edge, error) {
	ctx, span := tracer.Start(ctx, "Builder.Extract", trace.WithAttributes(
		attribute.Int("chunk_count", len(chunks)),
	))
	defer span.End()

	log := b.opts.logger()
	start := time.Now()
	workers := b.opts.workerCount()

	codeIdx := buildShortNameIndex(chunks)
	defs := buildDefIndex(chunks)
	fields := newLinkableFieldSet(b.opts.Config)
	cache := newResolutionCache()

	var codeChunks, xmlChunks []chunk.Record
	for _, c := range chunks {
		if c.IsXML() {
			xmlChunks = append(xmlChunks, c)
		} else {
			codeChunks = append(codeChunks, c)
		}
	}

	extractCode := extractSyntactic
	if b.opts.Config.Extraction.Mode == config.ModeSemantic {
		extractCode = extractSemantic
	}

	b.report(PhaseCodeToCode, len(chunks), 0, 0)
	phase1, err := b.runPhase(ctx, workers, codeChunks, func(c chunk.Record) []graph.Edge {
		return extractCode(c, codeIdx, cache)
	})
	if err != nil {
		return nil, fmt.Errorf("extract: phase1 code_to_code: %w", err)
	}
	log.Info("phase1 complete", slog.Int("edges", len(phase1)), slog.Int("chunks", len(codeChunks)))

	b.report(PhaseXMLToCode, len(chunks), len(codeChunks), len(phase1))
	phase2, err := b.runPhase(ctx, workers, xmlChunks, func(c chunk.Record) []graph.Edge {
		return extractXMLToCode(c, fields, codeIdx, cache, b.opts.Config)
	})
	if err != nil {
		return nil, fmt.Errorf("extract: phase2 xml_to_code: %w", err)
	}
	log.Info("phase2 complete", slog.Int("edges", len(phase2)), slog.Int("chunks", len(xmlChunks)))

	b.report(PhaseXMLToXML, len(chunks), len(codeChunks)+len(xmlChunks), len(phase1)+len(phase2))
	phase3, err := b.runPhase(ctx, workers, xmlChunks, func(c chunk.Record) []graph.Edge {
		return extractXMLToXML(c, defs, b.opts.Config)
	})
	if err != nil {
		return nil, fmt.Errorf("extract: phase3 xml_to_xml: %w", err)
	}
	log.Info("phase3 complete", slog.Int("edges", len(phase3)), slog.Int("chunks", len(xmlChunks)))

	forward := make([]graph.Edge, 0, len(phase1)+len(phase2)+len(phase3))
	forward = append(forward, phase1...)
	forward = append(forward, phase2...)
	forward = append(forward, phase3...)

	b.report(PhaseReverseEdges, len(chunks), len(chunks), len(forward))
	reverse := generateReverseEdges(forward)
	log.Info("phase4 complete", slog.Int("edges", len(reverse)))

	all := append(forward, reverse...)

	span.SetAttributes(attribute.Int("edges_emitted", len(all)))
	log.Info("extract complete",
		slog.Int("total_edges", len(all)),
		slog.Duration("duration", time.Since(start)),
	)
	return all, nil
}

// runPhase fans a chunk slice out across a bounded worker pool, collecting
// edges into per-worker shards (§5) and draining them only after every
// worker has returned.
func (b *Builder) runPhase(ctx context.Context, workers int, chunks []chunk.Record, fn func(chunk.Record) []graph.Edge) ([]graph.Edge, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	shardSink := newSink(workers)
	g, gctx := errgroup.WithContext(ctx)
	chunkCh := make(chan int)

	g.Go(func() error {
		defer close(chunkCh)
		for i := range chunks {
			select {
			case chunkCh <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		shard := w
		g.Go(func() error {
			for i := range chunkCh {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				edges := fn(chunks[i])
				if len(edges) > 0 {
					shardSink.emit(shard, edges...)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return shardSink.drain(), nil
}

func (b *Builder) report(phase ProgressPhase, total, complete, edges int) {
	if b.opts.Progress == nil {
		return
	}
	b.opts.Progress(BuildProgress{
		Phase:          phase,
		ChunksTotal:    total,
		ChunksComplete: complete,
		EdgesEmitted:   edges,
	})
}
