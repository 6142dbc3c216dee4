package book

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bodul/wordsearch/internal/puzzle"
)

var tracer = otel.Tracer("wordsearch.book")

var (
	// puzzlesGenerated counts finished puzzles by result (ok, shortfall).
	puzzlesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordsearch_puzzles_generated_total",
		Help: "Puzzles generated by result",
	}, []string{"result"})

	placementAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordsearch_placement_attempts_total",
		Help: "Word placement attempts across all puzzles",
	})

	densityRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordsearch_density_retries_total",
		Help: "Puzzle repopulations caused by low density",
	})

	profanityHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordsearch_profanity_hits_total",
		Help: "Blocked words found in generated grids",
	})

	puzzleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wordsearch_puzzle_generation_seconds",
		Help:    "Time to generate one puzzle including retries",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	puzzleDensity = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wordsearch_puzzle_density",
		Help:    "Final word density of generated puzzles",
		Buckets: prometheus.LinearBuckets(0.3, 0.05, 12),
	})
)

func recordPuzzle(p *puzzle.Puzzle, st puzzle.Stats, shortfall bool, hits int) {
	result := "ok"
	if shortfall {
		result = "shortfall"
	}
	puzzlesGenerated.WithLabelValues(result).Inc()
	placementAttempts.Add(float64(st.Attempts))
	densityRetries.Add(float64(st.Retries))
	profanityHits.Add(float64(hits))
	puzzleDuration.Observe(st.Duration.Seconds())
	puzzleDensity.Observe(p.Density)
}

func startPuzzleSpan(ctx context.Context, index int, title string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Builder.generatePuzzle",
		trace.WithAttributes(
			attribute.Int("puzzle.index", index),
			attribute.String("puzzle.title", title),
		),
	)
}

func setPuzzleSpanResult(span trace.Span, p *puzzle.Puzzle, st puzzle.Stats, err error) {
	if p == nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.Int("puzzle.rows", p.Rows),
		attribute.Int("puzzle.columns", p.Columns),
		attribute.Float64("puzzle.density", p.Density),
		attribute.Int("puzzle.attempts", st.Attempts),
		attribute.Int("puzzle.retries", st.Retries),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
