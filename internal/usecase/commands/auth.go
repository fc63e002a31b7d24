package commands

import (
	"context"

	"nightgate/internal/infra"
	"nightgate/internal/pkg/errs"
	"nightgate/internal/pkg/jwt"
	"nightgate/internal/pkg/password"
	"nightgate/internal/usecase/queries"
)

var (
	ErrInvalidCredentials = errs.New("invalid credentials")
	ErrStaffInactive      = errs.New("staff account is inactive")
)

type StaffReader interface {
	FindByEmail(ctx context.Context, email string) (*queries.StaffView, error)
}

type LoginResult struct {
	Token string
	Staff *queries.StaffView
}

type AuthCommands interface {
	// Login authenticates a staff member and issues a token bound to the
	// gate device they are operating.
	Login(ctx context.Context, email, plainPassword, deviceID string) (*LoginResult, error)
}

type authUseCaseImpl struct {
	staff StaffReader
	jwt   *jwt.Service
}

func NewAuthUseCase(staff StaffReader, jwtService *jwt.Service) AuthCommands {
	return &authUseCaseImpl{staff: staff, jwt: jwtService}
}

func (a *authUseCaseImpl) Login(ctx context.Context, email, plainPassword, deviceID string) (*LoginResult, error) {
	staff, err := a.staff.FindByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	if !staff.IsActive {
		return nil, ErrStaffInactive
	}

	if err := password.Compare(staff.PasswordHash, plainPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := a.jwt.GenerateToken(staff.ID, deviceID, staff.Role)
	if err != nil {
		return nil, errs.Wrap(err, "failed to issue token")
	}

	return &LoginResult{Token: token, Staff: staff}, nil
}
