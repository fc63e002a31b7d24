package response

import (
	"nightgate/internal/usecase/commands"

	"github.com/google/uuid"
)

type LoginResponse struct {
	Token string    `json:"token"`
	Staff StaffInfo `json:"staff"`
}

type StaffInfo struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func FromLoginResult(r *commands.LoginResult) *LoginResponse {
	return &LoginResponse{
		Token: r.Token,
		Staff: StaffInfo{
			ID:    r.Staff.ID,
			Email: r.Staff.Email,
			Role:  r.Staff.Role,
		},
	}
}
