package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/game-rental-service/internal/api/dto"
	"github.com/spec-kit/game-rental-service/internal/auth"
	"github.com/spec-kit/game-rental-service/internal/service"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// GamesHandler exposes the catalog and its moderation/feedback endpoints.
type GamesHandler struct {
	catalog *service.CatalogService
}

// NewGamesHandler constructs handler.
func NewGamesHandler(catalogService *service.CatalogService) *GamesHandler {
	return &GamesHandler{catalog: catalogService}
}

// List handles GET /games.
func (h *GamesHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	games, err := h.catalog.ListGames(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"games": dto.NewGameResponses(games)}})
}

// Get handles GET /games/:id.
func (h *GamesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	game, err := h.catalog.GetGame(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"game": dto.NewGameResponse(game)}})
}

// SubmitChangeRequest handles POST /games/:id/change-requests. The route
// requires at least SUPPORT_MODERATOR.
func (h *GamesHandler) SubmitChangeRequest(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.ChangeRequestCreate
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	created, err := h.catalog.SubmitChangeRequest(c.Context(), claims.UKey, id, req.Changes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"change_request": dto.NewChangeRequestResponse(created)},
	})
}

// ListFeedback handles GET /games/:id/feedback.
func (h *GamesHandler) ListFeedback(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	feedback, err := h.catalog.ListFeedback(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"feedback": dto.NewFeedbackResponses(feedback)}})
}

// CreateFeedback handles POST /games/:id/feedback.
func (h *GamesHandler) CreateFeedback(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.FeedbackCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	created, err := h.catalog.CreateFeedback(c.Context(), claims.UKey, id, req.Text, req.Rating)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"feedback": dto.NewFeedbackResponse(created)},
	})
}

// pathID parses a numeric path parameter.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequest("invalid " + name)
	}
	return id, nil
}
