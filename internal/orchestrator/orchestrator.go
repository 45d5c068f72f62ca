// Package orchestrator resolves a natural-language query to validated SQL,
// enforcing cache semantics and the validation gate: a response is written
// to the cache if and only if it passed validation.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/queryforge/queryforge/internal/cache"
	"github.com/queryforge/queryforge/internal/guard"
	"github.com/queryforge/queryforge/internal/metrics"
	qferrors "github.com/queryforge/queryforge/pkg/errors"
)

const tracerName = "queryforge"

// Source identifies where a resolved answer came from.
type Source string

const (
	// SourceCache means the answer was served from a cache hit.
	SourceCache Source = "cache"

	// SourceGenerated means the answer was freshly generated and validated.
	SourceGenerated Source = "generated"
)

// Result is a successfully resolved query.
type Result struct {
	// SQL is the generated (or cached) SQL statement.
	SQL string

	// Source records whether the answer came from the cache or generation.
	Source Source

	// Elapsed is the wall-clock time the resolution took.
	Elapsed time.Duration

	// CachedPrompt is the prompt the cached entry was stored under.
	// Only meaningful for semantic cache hits.
	CachedPrompt string

	// Distance is the embedding distance of the hit. Semantic hits only.
	Distance float64
}

// Gateway is the cache contract the orchestrator depends on.
type Gateway interface {
	Lookup(ctx context.Context, query string, strat cache.Strategy) ([]cache.Entry, error)
	Store(ctx context.Context, query, response string, strat cache.Strategy, metadata map[string]any) error
}

// GuardedGenerator is the generation-and-validation capability.
type GuardedGenerator interface {
	Generate(ctx context.Context, query string) (*guard.Outcome, error)
}

// Orchestrator wires the cache gateway and the guarded generator together.
// Dependencies are passed in at construction; there is no ambient state.
type Orchestrator struct {
	gateway Gateway
	guard   GuardedGenerator
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates an orchestrator. The logger may be nil.
func New(gateway Gateway, guarded GuardedGenerator, logger *slog.Logger) (*Orchestrator, error) {
	if gateway == nil {
		return nil, fmt.Errorf("cache gateway is required")
	}
	if guarded == nil {
		return nil, fmt.Errorf("guarded generator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		gateway: gateway,
		guard:   guarded,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Resolve answers a single query. The cache is probed first; on a miss the
// guarded generator runs and, only if validation passed, the result is
// stored and returned. Every failure is terminal for this query alone.
func (o *Orchestrator) Resolve(ctx context.Context, query string, strat cache.Strategy) (*Result, error) {
	start := time.Now()

	ctx, span := o.tracer.Start(ctx, "resolve",
		trace.WithAttributes(attribute.String("cache.strategy", strat.Name())))
	defer span.End()

	entries, err := o.gateway.Lookup(ctx, query, strat)
	if err != nil {
		o.logger.Error("cache lookup failed", "strategy", strat.Name(), "error", err)
		metrics.ResolveErrors.WithLabelValues(qferrors.AsQueryError(err).Type).Inc()
		return nil, err
	}

	if len(entries) > 0 {
		// Hit: entries arrive closest-first; take the first.
		hit := entries[0]
		elapsed := time.Since(start)

		metrics.CacheHits.WithLabelValues(strat.Name()).Inc()
		metrics.ResolveDuration.WithLabelValues(strat.Name(), string(SourceCache)).Observe(elapsed.Seconds())
		span.SetAttributes(attribute.Bool("cache.hit", true))
		o.logger.Debug("cache hit", "strategy", strat.Name(), "distance", hit.Distance, "elapsed", elapsed)

		return &Result{
			SQL:          hit.Response,
			Source:       SourceCache,
			Elapsed:      elapsed,
			CachedPrompt: hit.Prompt,
			Distance:     hit.Distance,
		}, nil
	}

	metrics.CacheMisses.WithLabelValues(strat.Name()).Inc()
	span.SetAttributes(attribute.Bool("cache.hit", false))

	outcome, err := o.guard.Generate(ctx, query)
	if err != nil {
		// Transport-level failure; nothing is cached.
		o.logger.Error("generation failed", "error", err)
		metrics.GenerationTotal.WithLabelValues("error").Inc()
		metrics.ResolveErrors.WithLabelValues(qferrors.TypeUnexpected).Inc()
		return nil, qferrors.NewUnexpectedError(err)
	}

	if !outcome.Passed || outcome.Validated == nil {
		detail := outcome.Detail
		if detail == "" {
			detail = "validation produced no structured output"
		}
		o.logger.Warn("generation output rejected", "detail", detail)
		metrics.GenerationTotal.WithLabelValues("rejected").Inc()
		metrics.ResolveErrors.WithLabelValues(qferrors.TypeGeneration).Inc()
		return nil, qferrors.NewGenerationError(detail)
	}

	metrics.GenerationTotal.WithLabelValues("validated").Inc()
	generatedSQL := outcome.Validated.GeneratedSQL

	// Metadata carries the generation timestamp; the semantic path attaches
	// it to the stored embedding, the exact path records its own.
	var metadata map[string]any
	if _, ok := strat.(cache.Semantic); ok {
		metadata = map[string]any{"generated_at": time.Now().Unix()}
	}

	if err := o.gateway.Store(ctx, query, generatedSQL, strat, metadata); err != nil {
		o.logger.Error("cache store failed", "strategy", strat.Name(), "error", err)
		metrics.ResolveErrors.WithLabelValues(qferrors.AsQueryError(err).Type).Inc()
		return nil, err
	}
	metrics.CacheStores.WithLabelValues(strat.Name()).Inc()

	elapsed := time.Since(start)
	metrics.ResolveDuration.WithLabelValues(strat.Name(), string(SourceGenerated)).Observe(elapsed.Seconds())
	o.logger.Debug("query resolved", "strategy", strat.Name(), "elapsed", elapsed)

	return &Result{
		SQL:     generatedSQL,
		Source:  SourceGenerated,
		Elapsed: elapsed,
	}, nil
}
