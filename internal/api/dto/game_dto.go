package dto

import (
	"time"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// GameResponse is one catalog entry.
type GameResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Genre       *string    `json:"genre"`
	ReleaseDate *time.Time `json:"release_date"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	PriceCents  int64      `json:"price_cents"`
}

// NewGameResponse maps a domain game.
func NewGameResponse(game *domain.Game) GameResponse {
	return GameResponse{
		ID:          game.ID,
		Title:       game.Title,
		Genre:       game.Genre,
		ReleaseDate: game.ReleaseDate,
		Description: game.Description,
		ImageURL:    game.ImageURL,
		PriceCents:  game.PriceCents,
	}
}

// NewGameResponses maps a list.
func NewGameResponses(games []*domain.Game) []GameResponse {
	out := make([]GameResponse, 0, len(games))
	for _, game := range games {
		out = append(out, NewGameResponse(game))
	}
	return out
}

// ChangeRequestCreate payload for a moderator's proposed edit.
type ChangeRequestCreate struct {
	Changes map[string]string `json:"changes"`
}

// ChangeRequestResponse is one moderation queue entry.
type ChangeRequestResponse struct {
	ID          int64             `json:"id"`
	GameID      int64             `json:"game_id"`
	Changes     map[string]string `json:"changes"`
	Status      string            `json:"status"`
	RequestedAt time.Time         `json:"requested_at"`
}

// NewChangeRequestResponse maps a domain change request.
func NewChangeRequestResponse(req *domain.GameChangeRequest) ChangeRequestResponse {
	return ChangeRequestResponse{
		ID:          req.ID,
		GameID:      req.GameID,
		Changes:     req.Changes,
		Status:      string(req.Status),
		RequestedAt: req.RequestedAt,
	}
}

// NewChangeRequestResponses maps a list.
func NewChangeRequestResponses(reqs []*domain.GameChangeRequest) []ChangeRequestResponse {
	out := make([]ChangeRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, NewChangeRequestResponse(req))
	}
	return out
}

// FeedbackCreateRequest payload for a game review.
type FeedbackCreateRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// FeedbackResponse is one review.
type FeedbackResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFeedbackResponse maps a domain feedback entry.
func NewFeedbackResponse(fb *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        fb.ID,
		Username:  fb.Username,
		Text:      fb.Text,
		Rating:    fb.Rating,
		CreatedAt: fb.CreatedAt,
	}
}

// NewFeedbackResponses maps a list.
func NewFeedbackResponses(fbs []*domain.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(fbs))
	for _, fb := range fbs {
		out = append(out, NewFeedbackResponse(fb))
	}
	return out
}
