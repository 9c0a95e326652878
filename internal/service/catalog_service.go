package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/repository"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

const (
	defaultGamePageSize  = 20
	maxGamePageSize      = 100
	feedbackListLimit    = 50
	maxFeedbackRating    = 5
	feedbackTextMaxChars = 2000
)

// CatalogService serves the public game listing, moderator change-request
// submission, and per-game feedback.
type CatalogService struct {
	games          repository.GameRepository
	changeRequests repository.ChangeRequestRepository
	feedback       repository.FeedbackRepository
	users          repository.UserRepository
}

// CatalogDependencies encapsulates collaborator requirements.
type CatalogDependencies struct {
	GameRepo          repository.GameRepository
	ChangeRequestRepo repository.ChangeRequestRepository
	FeedbackRepo      repository.FeedbackRepository
	UserRepo          repository.UserRepository
}

// NewCatalogService builds the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		games:          deps.GameRepo,
		changeRequests: deps.ChangeRequestRepo,
		feedback:       deps.FeedbackRepo,
		users:          deps.UserRepo,
	}
}

// ListGames pages through the catalog.
func (s *CatalogService) ListGames(ctx context.Context, limit, offset int) ([]*domain.Game, error) {
	if limit <= 0 {
		limit = defaultGamePageSize
	}
	if limit > maxGamePageSize {
		limit = maxGamePageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.games.List(ctx, limit, offset)
}

// GetGame loads one catalog entry.
func (s *CatalogService) GetGame(ctx context.Context, id int64) (*domain.Game, error) {
	game, err := s.games.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("game", map[string]any{"id": id})
		}
		return nil, err
	}
	return game, nil
}

// SubmitChangeRequest records a moderator's proposed catalog edit for admin
// review. Nothing is applied to the game until an admin approves. The
// proposed values are validated up front so admins only ever review
// applicable requests.
func (s *CatalogService) SubmitChangeRequest(ctx context.Context, moderatorUKey string, gameID int64, changes map[string]string) (*domain.GameChangeRequest, error) {
	if len(changes) == 0 {
		return nil, apperrors.NewValidationError("no changes supplied", nil)
	}

	moderator, err := s.userByUKey(ctx, moderatorUKey)
	if err != nil {
		return nil, err
	}

	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	// Dry-run against a copy to catch unknown fields and bad values now.
	probe := *game
	if err := applyGameChanges(&probe, changes); err != nil {
		return nil, err
	}

	req := &domain.GameChangeRequest{
		GameID:      gameID,
		ModeratorID: moderator.ID,
		Changes:     changes,
		Status:      domain.ChangeRequestPending,
	}
	if err := s.changeRequests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// CreateFeedback stores a review on a game under the caller's username.
func (s *CatalogService) CreateFeedback(ctx context.Context, ukey string, gameID int64, text string, rating int) (*domain.Feedback, error) {
	if rating < 1 || rating > maxFeedbackRating {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	if text == "" || len(text) > feedbackTextMaxChars {
		return nil, apperrors.NewValidationError("feedback text is empty or too long", nil)
	}

	user, err := s.userByUKey(ctx, ukey)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	username := user.Email
	if user.Username != nil {
		username = *user.Username
	}

	fb := &domain.Feedback{
		UserID:   user.ID,
		Username: username,
		GameID:   gameID,
		Text:     text,
		Rating:   rating,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// ListFeedback returns the most recent reviews for a game.
func (s *CatalogService) ListFeedback(ctx context.Context, gameID int64) ([]*domain.Feedback, error) {
	if _, err := s.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.feedback.ListByGame(ctx, gameID, feedbackListLimit)
}

func (s *CatalogService) userByUKey(ctx context.Context, ukey string) (*domain.User, error) {
	user, err := s.users.GetByUKey(ctx, ukey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}
