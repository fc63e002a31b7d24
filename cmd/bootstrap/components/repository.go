package components

import (
	repo_impl "nightgate/internal/infra/repository"
	"nightgate/internal/infra/uow"
	"nightgate/internal/usecase/commands"
	"nightgate/internal/usecase/queries"
	"nightgate/internal/usecase/shared"
	"nightgate/internal/worker/audit"
	"nightgate/internal/worker/emailqueue"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Ticket
		fx.Annotate(
			repo_impl.NewTicketRepository,
			fx.As(new(commands.TicketStore)),
			fx.As(new(commands.TicketWriter)),
			fx.As(new(queries.SnapshotReader)),
		),
		// VIP reservation and guest passes
		fx.Annotate(
			repo_impl.NewVIPRepository,
			fx.As(new(commands.GuestPassStore)),
			fx.As(new(commands.VIPWriter)),
			fx.As(new(queries.GuestPassSnapshotReader)),
		),
		// Scan audit trail
		fx.Annotate(
			repo_impl.NewScanAuditRepository,
			fx.As(new(audit.AuditStore)),
			fx.As(new(queries.ScanAuditReader)),
		),
		// Email queue
		fx.Annotate(
			repo_impl.NewEmailQueueRepository,
			fx.As(new(commands.EmailEnqueuer)),
			fx.As(new(commands.EmailStatusStore)),
			fx.As(new(emailqueue.QueueStore)),
			fx.As(new(queries.EmailQueueReader)),
		),
		// Processed webhook events
		fx.Annotate(
			repo_impl.NewWebhookEventRepository,
			fx.As(new(commands.ProcessedEventStore)),
		),
		// Staff
		fx.Annotate(
			repo_impl.NewStaffRepository,
			fx.As(new(commands.StaffReader)),
		),
	),
)
