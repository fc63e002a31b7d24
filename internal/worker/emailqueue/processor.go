// Package emailqueue drains the outbound email queue. Each invocation claims
// a small batch of due entries with an optimistic-locking status update, so
// overlapping invocations (ticker and manual trigger, or two instances)
// never double-send.
package emailqueue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nightgate/internal/monitoring"
	"nightgate/internal/pkg/backoff"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/usecase/queries"

	"github.com/google/uuid"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Provider is the outbound mail API. Send returns the provider-assigned
// message id used to correlate delivery webhooks later.
type Provider interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type QueueStore interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*queries.EmailJobView, error)
	MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error
	ScheduleRetry(ctx context.Context, id uuid.UUID, attempts int32, nextRetryAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int32, reason string) error
}

type Processor struct {
	store    QueueStore
	provider Provider
	policy   backoff.Policy
	batch    int
	interval time.Duration
	clock    clock.Clock

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewProcessor(store QueueStore, provider Provider, policy backoff.Policy, batchSize int, interval time.Duration, clk clock.Clock) *Processor {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Processor{
		store:    store,
		provider: provider,
		policy:   policy,
		batch:    batchSize,
		interval: interval,
		clock:    clk,
		stop:     make(chan struct{}),
	}
}

func (p *Processor) Start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Processor) Stop() {
	p.once.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}

func (p *Processor) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := p.ProcessBatch(context.Background()); err != nil {
				slog.Error("email batch processing failed", "error", err.Error())
			}
		case <-p.stop:
			return
		}
	}
}

// ProcessBatch claims and works one batch. One entry's failure never aborts
// the rest of the batch. Returns the number of entries claimed.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	now := p.clock.Now()

	jobs, err := p.store.ClaimDue(ctx, now, p.batch)
	monitoring.RecordEmailBatch(len(jobs))
	if err != nil {
		// Entries claimed before the failure are still processed.
		slog.Warn("claiming email batch failed partway", "claimed", len(jobs), "error", err.Error())
	}

	for _, job := range jobs {
		p.processJob(ctx, job)
	}

	return len(jobs), err
}

func (p *Processor) processJob(ctx context.Context, job *queries.EmailJobView) {
	providerID, sendErr := p.provider.Send(ctx, Message{
		To:      job.Recipient,
		Subject: job.Subject,
		Body:    job.Body,
	})

	if sendErr == nil {
		monitoring.RecordEmailAttempt("sent")
		if err := p.store.MarkSent(ctx, job.ID, providerID); err != nil {
			slog.Error("failed to record sent email", "job_id", job.ID.String(), "error", err.Error())
		}
		return
	}

	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		monitoring.RecordEmailAttempt("final_failure")
		slog.Error("email delivery permanently failed",
			"job_id", job.ID.String(),
			"recipient", job.Recipient,
			"attempts", attempts,
			"error", sendErr.Error())
		if err := p.store.MarkFailed(ctx, job.ID, attempts, "final_failure: "+sendErr.Error()); err != nil {
			slog.Error("failed to record email failure", "job_id", job.ID.String(), "error", err.Error())
		}
		return
	}

	monitoring.RecordEmailAttempt("retry")
	nextRetry := p.policy.NextRetryAt(p.clock.Now(), int(job.Attempts))
	if err := p.store.ScheduleRetry(ctx, job.ID, attempts, nextRetry, sendErr.Error()); err != nil {
		slog.Error("failed to schedule email retry", "job_id", job.ID.String(), "error", err.Error())
	}
}
