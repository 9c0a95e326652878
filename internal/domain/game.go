package domain

import "time"

// Game is a rentable catalog entry. PriceCents avoids float money math.
type Game struct {
	ID          int64
	Title       string
	Genre       *string
	ReleaseDate *time.Time
	Description string
	ImageURL    string
	PriceCents  int64
	CreatedAt   time.Time
}

// ChangeRequestStatus tracks the moderation lifecycle of a catalog edit.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "PENDING"
	ChangeRequestApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestRejected ChangeRequestStatus = "REJECTED"
)

// GameChangeRequest is a moderator-submitted catalog edit awaiting an
// admin decision. Changes holds the proposed field values as a JSON map.
type GameChangeRequest struct {
	ID          int64
	GameID      int64
	ModeratorID int64
	Changes     map[string]string
	Status      ChangeRequestStatus
	RequestedAt time.Time
}
