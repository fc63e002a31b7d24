package bootstrap

import (
	"nightgate/internal/pkg/backoff"
	"nightgate/internal/pkg/config"
	"nightgate/internal/pkg/qrtoken"

	"go.uber.org/fx"
)

var SigningModule = fx.Module("signing",
	fx.Provide(
		NewQRSigner,
		NewBackoffPolicy,
	),
)

func NewQRSigner(cfg config.Config) *qrtoken.Signer {
	return qrtoken.NewSigner(cfg.Signing.QRSecret)
}

func NewBackoffPolicy(cfg config.Config) backoff.Policy {
	return backoff.NewPolicy(cfg.Queue.BackoffBase, cfg.Queue.BackoffMax)
}
