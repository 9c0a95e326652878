package payment

import (
	"context"
	"errors"
)

var (
	// ErrPaymentFailed covers provider-side failures; the raw provider
	// message never reaches the caller.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrPaymentNotSucceeded means the intent exists but has not settled.
	ErrPaymentNotSucceeded = errors.New("payment not successful")
)

// Intent is the client-facing handle for an in-progress payment.
type Intent struct {
	ID           string
	ClientSecret string
}

// Provider is the contract the purchase flow needs from a payment backend.
type Provider interface {
	// CreateIntent opens a payment of amountCents tagged with the game id.
	CreateIntent(ctx context.Context, amountCents int64, gameID int64) (*Intent, error)
	// VerifyIntent fails with ErrPaymentNotSucceeded unless the intent settled.
	VerifyIntent(ctx context.Context, intentID string) error
	// ReceiptURL returns the settled intent's receipt link, if any.
	ReceiptURL(ctx context.Context, intentID string) (string, error)
}
