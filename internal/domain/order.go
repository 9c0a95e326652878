package domain

import "time"

// Order records a completed purchase of rental time on a game account.
type Order struct {
	ID              int64
	UserID          int64
	GameID          int64
	AccountID       int64
	TotalPriceCents int64
	OrderDate       time.Time
	ReceiptURL      *string
}
