package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ridgecast/forecast-sms/internal/domain"
	"github.com/ridgecast/forecast-sms/internal/observability"
)

// Extractor reads the next raw message from the inbound topic, blocking
// until one arrives or the context is cancelled.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawMessage, error)
}

// Responder turns one raw inbound message into a compiled reply.
type Responder interface {
	Respond(ctx context.Context, raw domain.RawMessage) (domain.OutboundMessage, error)
}

// Loader writes one reply to the outbound topic.
type Loader interface {
	Load(ctx context.Context, out domain.OutboundMessage) error
}

// Pipeline orchestrates the extract-respond-load loop. Messages are handled
// one at a time; a forecast reply is only worth sending while the sender is
// still waiting for it, so there is nothing to gain from batching.
type Pipeline struct {
	extractor Extractor
	responder Responder
	loader    Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, r Responder, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		responder: r,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil if the pipeline has produced at least one reply,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not produced any replies yet")
	}
	return nil
}

// Ready reports whether the pipeline has produced at least one reply.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run executes the respond loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processOne(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processOne runs one extract-respond-load cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processOne(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.MessagesConsumed.Inc()
	*backoff = 200 * time.Millisecond

	start := time.Now()

	out, err := p.responder.Respond(ctx, raw)
	if err != nil {
		// Message-scoped failure: the payload cannot produce a reply, so
		// retrying would fail the same way. Commit and move on.
		p.logger.Warn("respond failed, skipping message",
			"error", err,
			"topic", raw.Topic,
			"partition", raw.Partition,
			"offset", raw.Offset,
		)
		p.metrics.RespondErrors.Inc()
		p.commitOffset(ctx, raw)
		return true
	}

	if err := p.loader.Load(ctx, out); err != nil {
		// Transport-scoped failure: the offset stays uncommitted so the
		// message is redelivered after restart. The deterministic reply ID
		// keeps redelivery safe for the gateway.
		p.logger.Error("load failed", "error", err, "reply_id", out.ReplyID)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.RepliesProduced.Inc()
	p.metrics.SegmentsProduced.Add(float64(out.SegmentCount))
	p.metrics.CharactersProduced.Add(float64(out.CharacterCount))
	p.metrics.RespondDuration.Observe(time.Since(start).Seconds())

	p.commitOffset(ctx, raw)
	p.ready.Store(true)
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should
// stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
