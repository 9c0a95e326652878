package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider builds a provider with its own API client; no global
// stripe state is mutated.
func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api}
}

// CreateIntent opens a card payment intent in USD.
func (p *StripeProvider) CreateIntent(ctx context.Context, amountCents int64, gameID int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.AddMetadata("game_id", fmt.Sprintf("%d", gameID))

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create intent: %v", ErrPaymentFailed, err)
	}
	if intent.ClientSecret == "" {
		return nil, ErrPaymentFailed
	}
	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// VerifyIntent checks that the intent settled.
func (p *StripeProvider) VerifyIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := p.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return fmt.Errorf("%w: retrieve intent: %v", ErrPaymentFailed, err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return ErrPaymentNotSucceeded
	}
	return nil
}

// ReceiptURL resolves the receipt of the intent's latest charge.
func (p *StripeProvider) ReceiptURL(ctx context.Context, intentID string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := p.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return "", fmt.Errorf("%w: retrieve intent: %v", ErrPaymentFailed, err)
	}
	if intent.LatestCharge == nil {
		return "", nil
	}

	chargeParams := &stripe.ChargeParams{}
	chargeParams.Context = ctx
	charge, err := p.api.Charges.Get(intent.LatestCharge.ID, chargeParams)
	if err != nil {
		return "", fmt.Errorf("%w: retrieve charge: %v", ErrPaymentFailed, err)
	}
	return charge.ReceiptURL, nil
}
