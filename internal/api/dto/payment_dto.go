package dto

import (
	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/payment"
)

// IntentCreateRequest payload opening a payment.
type IntentCreateRequest struct {
	GameID int64 `json:"game_id"`
}

// IntentResponse hands the client the provider handle to settle.
type IntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// NewIntentResponse maps a provider intent.
func NewIntentResponse(intent *payment.Intent) IntentResponse {
	return IntentResponse{ID: intent.ID, ClientSecret: intent.ClientSecret}
}

// PurchaseCompleteRequest payload finalizing a purchase.
type PurchaseCompleteRequest struct {
	GameID   int64  `json:"game_id"`
	IntentID string `json:"intent_id"`
}

// AccountCredentialsResponse hands the renter the rented account login.
type AccountCredentialsResponse struct {
	SteamID64   int64  `json:"steam_id_64"`
	AccountName string `json:"account_name"`
	Password    string `json:"password"`
}

// NewAccountCredentialsResponse maps a game account.
func NewAccountCredentialsResponse(account *domain.GameAccount) AccountCredentialsResponse {
	return AccountCredentialsResponse{
		SteamID64:   account.SteamID64,
		AccountName: account.AccountName,
		Password:    account.Password,
	}
}
