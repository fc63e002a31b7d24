package repository

import (
	"context"
	"errors"

	"nightgate/internal/infra"
	"nightgate/internal/infra/db"
	"nightgate/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
)

type StaffRepository struct {
	db db.DBTX
}

func NewStaffRepository(pool db.DBTX) *StaffRepository {
	return &StaffRepository{db: pool}
}

func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*queries.StaffView, error) {
	var v queries.StaffView
	err := r.db.QueryRow(ctx, `
		SELECT id, email, role, password_hash, is_active
		FROM staff
		WHERE email = $1`,
		email,
	).Scan(&v.ID, &v.Email, &v.Role, &v.PasswordHash, &v.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("staff member not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to query staff member", err)
	}
	return &v, nil
}
