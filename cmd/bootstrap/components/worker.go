package components

import (
	"context"

	"nightgate/internal/infra/mailer"
	"nightgate/internal/pkg/backoff"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/config"
	"nightgate/internal/worker/audit"
	"nightgate/internal/worker/emailqueue"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		fx.Annotate(
			newAuditWriter,
			fx.As(new(audit.Emitter)),
		),
		fx.Annotate(
			newEmailProvider,
			fx.As(new(emailqueue.Provider)),
		),
		newEmailProcessor,
	),
	// The processor has no consumer in the graph; force construction.
	fx.Invoke(func(*emailqueue.Processor) {}),
)

func newAuditWriter(lc fx.Lifecycle, store audit.AuditStore) *audit.Writer {
	writer := audit.NewWriter(store)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			writer.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			writer.Stop()
			return nil
		},
	})

	return writer
}

func newEmailProvider(cfg config.Config) *mailer.Client {
	return mailer.NewClient(cfg.Email)
}

func newEmailProcessor(
	lc fx.Lifecycle,
	store emailqueue.QueueStore,
	provider emailqueue.Provider,
	policy backoff.Policy,
	cfg config.Config,
	clk clock.Clock,
) *emailqueue.Processor {
	processor := emailqueue.NewProcessor(
		store,
		provider,
		policy,
		cfg.Queue.EmailBatchSize,
		cfg.Queue.EmailPollInterval,
		clk,
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			processor.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			processor.Stop()
			return nil
		},
	})

	return processor
}
