package dto

import (
	"time"

	"github.com/spec-kit/game-rental-service/internal/verification"
)

// RolePatchRequest payload assigning a role by email.
type RolePatchRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GuardCodeSetRequest payload for an operator filling in a guard code.
type GuardCodeSetRequest struct {
	Code string `json:"code"`
}

// GuardRequestResponse is one waiting guard-code request.
type GuardRequestResponse struct {
	AccountID   string    `json:"account_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewGuardRequestResponses maps pending store records.
func NewGuardRequestResponses(pending []verification.Pending) []GuardRequestResponse {
	out := make([]GuardRequestResponse, 0, len(pending))
	for _, p := range pending {
		out = append(out, GuardRequestResponse{
			AccountID:   p.Subject,
			RequestedAt: p.Record.RequestedAt,
		})
	}
	return out
}
