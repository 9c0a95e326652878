package domain

import "time"

// Feedback is a user review on a catalog game, rating 1..5.
type Feedback struct {
	ID        int64
	UserID    int64
	Username  string
	GameID    int64
	Text      string
	Rating    int
	CreatedAt time.Time
}
