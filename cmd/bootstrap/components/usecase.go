package components

import (
	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/config"
	"nightgate/internal/pkg/qrtoken"
	"nightgate/internal/usecase/commands"
	"nightgate/internal/usecase/queries"
	"nightgate/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewScanUseCase,
		commands.NewAuthUseCase,
		commands.NewEmailWebhookUseCase,
		newPaymentUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewInspectionQueries,
	),
)

func newPaymentUseCase(
	tickets commands.TicketWriter,
	vips commands.VIPWriter,
	processedEvents commands.ProcessedEventStore,
	emails commands.EmailEnqueuer,
	unitOfWork shared.UnitOfWork,
	signer *qrtoken.Signer,
	cfg config.Config,
	clk clock.Clock,
) commands.PaymentCommands {
	return commands.NewPaymentUseCase(
		tickets,
		vips,
		processedEvents,
		emails,
		unitOfWork,
		signer,
		cfg.Queue.EmailMaxAttempts,
		clk,
	)
}
