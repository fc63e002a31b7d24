package shared

import (
	"context"

	"nightgate/internal/infra/db"
)

// UnitOfWork scopes repository calls to one transaction. Within runs fn in a
// read-committed transaction and retries serialization failures; WithDB runs
// fn against the pool directly for single-statement operations.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
}
