package components

import (
	"nightgate/internal/handler"
	"nightgate/internal/handler/api"
	"nightgate/internal/handler/middleware"
	"nightgate/internal/pkg/config"
	"nightgate/internal/usecase/commands"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewScanHandler,
		api.NewInspectHandler,
		newWebhookHandler,
		middleware.NewAuthMiddleware,
		fx.Annotate(
			middleware.NewManualEntryLimiter,
			fx.As(new(api.ManualLimiter)),
		),
	),
	fx.Invoke(handler.NewRouter),
)

func newWebhookHandler(
	payments commands.PaymentCommands,
	emailEvents commands.EmailWebhookCommands,
	cfg config.Config,
) *api.WebhookHandler {
	return api.NewWebhookHandler(payments, emailEvents, cfg.Stripe, cfg.Email)
}
