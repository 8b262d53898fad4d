package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/geo-position-etl/internal/domain"
	"github.com/couchcryptid/geo-position-etl/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw source message into a sink message.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline orchestrates the extract-normalize-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int

	ready    atomic.Bool
	loaded   atomic.Int64
	rejected atomic.Int64
}

// Stats is a snapshot of pipeline counters since start.
type Stats struct {
	Loaded   int64 `json:"loaded"`
	Rejected int64 `json:"rejected"`
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one
// batch, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any positions yet")
	}
	return nil
}

// Stats returns the number of loaded and rejected messages.
func (p *Pipeline) Stats() Stats {
	return Stats{Loaded: p.loaded.Load(), Rejected: p.rejected.Load()}
}

// Run executes the batch loop until the context is cancelled. Extract and
// load failures are retried with exponential backoff; rejected messages are
// logged, counted, committed and skipped.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	r := retry{delay: initialBackoff}
	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		if !p.runBatch(ctx, &r) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// runBatch performs one extract-transform-load cycle and reports whether
// the loop should continue.
func (p *Pipeline) runBatch(ctx context.Context, r *retry) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return r.wait(ctx)
	}
	if len(batch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	r.reset()

	out, accepted := p.transform(ctx, batch)
	if len(out) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		return r.wait(ctx)
	}

	p.metrics.MessagesProduced.Add(float64(len(out)))
	p.loaded.Add(int64(len(out)))
	for _, raw := range accepted {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// transform converts every message in the batch. Rejected messages are
// committed immediately so a poison message is never redelivered; accepted
// ones are returned alongside their outputs and committed after the load.
func (p *Pipeline) transform(ctx context.Context, batch []domain.RawEvent) ([]domain.OutputEvent, []domain.RawEvent) {
	out := make([]domain.OutputEvent, 0, len(batch))
	accepted := make([]domain.RawEvent, 0, len(batch))

	for _, raw := range batch {
		event, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			kind := errorKindLabel(err)
			p.logger.Warn("transform failed, skipping message",
				"error", err,
				"kind", kind,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.WithLabelValues(kind).Inc()
			p.rejected.Add(1)
			p.commit(ctx, raw)
			continue
		}
		out = append(out, event)
		accepted = append(accepted, raw)
	}
	return out, accepted
}

// commit acknowledges the message if the source supplied a commit callback.
func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// errorKindLabel maps a transform error to its coordinate error kind, or
// "other" for decoding and serialization failures.
func errorKindLabel(err error) string {
	if kind := domain.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "other"
}

// retry is an exponential backoff: 200ms doubling up to 5s.
type retry struct {
	delay time.Duration
}

func (r *retry) reset() { r.delay = initialBackoff }

// wait sleeps for the current delay and doubles it. It returns false if the
// context ends first.
func (r *retry) wait(ctx context.Context) bool {
	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	r.delay *= 2
	if r.delay > maxBackoff {
		r.delay = maxBackoff
	}
	return true
}
