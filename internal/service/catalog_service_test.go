package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/game-rental-service/internal/domain"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *fakeUserRepo, *fakeChangeRequestRepo) {
	t.Helper()
	users := newFakeUserRepo()
	requests := newFakeChangeRequestRepo()
	svc := NewCatalogService(CatalogDependencies{
		GameRepo:          newFakeGameRepo(&domain.Game{ID: 1, Title: "Portal", PriceCents: 1999}),
		ChangeRequestRepo: requests,
		FeedbackRepo:      newFakeFeedbackRepo(),
		UserRepo:          users,
	})
	return svc, users, requests
}

func TestGetGame(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)

	game, err := svc.GetGame(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Portal", game.Title)

	_, err = svc.GetGame(context.Background(), 404)
	require.True(t, apperrors.IsNotFound(err))
}

func TestSubmitChangeRequestStaysPending(t *testing.T) {
	svc, users, requests := newCatalogFixture(t)
	moderator := seedUser(t, users, "mod@example.com", domain.RoleSupportModerator)
	ctx := context.Background()

	req, err := svc.SubmitChangeRequest(ctx, moderator.UKey, 1, map[string]string{"title": "Portal 2"})
	require.NoError(t, err)
	require.Equal(t, domain.ChangeRequestPending, req.Status)
	require.Equal(t, moderator.ID, req.ModeratorID)

	// Submission never mutates the game itself.
	game, err := svc.GetGame(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Portal", game.Title)

	stored, err := requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"title": "Portal 2"}, stored.Changes)
}

func TestSubmitChangeRequestValidatesUpFront(t *testing.T) {
	svc, users, _ := newCatalogFixture(t)
	moderator := seedUser(t, users, "mod@example.com", domain.RoleSupportModerator)
	ctx := context.Background()

	var domainErr *apperrors.DomainError

	_, err := svc.SubmitChangeRequest(ctx, moderator.UKey, 1, nil)
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	_, err = svc.SubmitChangeRequest(ctx, moderator.UKey, 1, map[string]string{"publisher": "Valve"})
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	_, err = svc.SubmitChangeRequest(ctx, moderator.UKey, 404, map[string]string{"title": "x"})
	require.True(t, apperrors.IsNotFound(err))
}

func TestFeedback(t *testing.T) {
	svc, users, _ := newCatalogFixture(t)
	user := seedUser(t, users, "ada@example.com", domain.RoleUser)
	ctx := context.Background()

	_, err := svc.CreateFeedback(ctx, user.UKey, 1, "great", 6)
	require.Error(t, err)
	_, err = svc.CreateFeedback(ctx, user.UKey, 1, "", 4)
	require.Error(t, err)

	fb, err := svc.CreateFeedback(ctx, user.UKey, 1, "great puzzles", 5)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", fb.Username) // falls back to email without a username

	list, err := svc.ListFeedback(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 5, list[0].Rating)
}
