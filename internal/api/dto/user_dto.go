package dto

import (
	"time"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// UpdateProfileRequest payload for direct profile edits.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// PasswordChangeRequest payload starting a password change.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// EmailChangeRequest payload starting an email change.
type EmailChangeRequest struct {
	NewEmail string `json:"new_email"`
}

// CodeConfirmRequest payload completing any request/confirm pair.
type CodeConfirmRequest struct {
	Code string `json:"code"`
}

// PasswordResetRequest payload for the unauthenticated recovery entry.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload redeeming a reset token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// OrderResponse is one purchase in the profile history.
type OrderResponse struct {
	ID              int64     `json:"id"`
	GameID          int64     `json:"game_id"`
	AccountID       int64     `json:"account_id"`
	TotalPriceCents int64     `json:"total_price_cents"`
	OrderDate       time.Time `json:"order_date"`
	ReceiptURL      *string   `json:"receipt_url"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID,
		GameID:          order.GameID,
		AccountID:       order.AccountID,
		TotalPriceCents: order.TotalPriceCents,
		OrderDate:       order.OrderDate,
		ReceiptURL:      order.ReceiptURL,
	}
}

// NewOrderResponses maps a list.
func NewOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderResponse(order))
	}
	return out
}
