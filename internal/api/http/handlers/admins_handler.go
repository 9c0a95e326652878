package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/game-rental-service/internal/api/dto"
	"github.com/spec-kit/game-rental-service/internal/auth"
	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/service"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// guardQueueLimit bounds the operator guard-code listing.
const guardQueueLimit = 100

// AdminsHandler exposes the privileged surface. Every route requires at
// least ADMIN; per-target rules are enforced in the service.
type AdminsHandler struct {
	admin *service.AdminService
}

// NewAdminsHandler constructs handler.
func NewAdminsHandler(adminService *service.AdminService) *AdminsHandler {
	return &AdminsHandler{admin: adminService}
}

// PatchRole handles PATCH /admins/me/roles.
func (h *AdminsHandler) PatchRole(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	var req dto.RolePatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" || req.Role == "" {
		return apperrors.NewBadRequest("email and role required")
	}

	user, err := h.admin.PatchRole(c.Context(), claims.Role, req.Email, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// ListChangeRequests handles GET /admins/me/change-requests.
func (h *AdminsHandler) ListChangeRequests(c *fiber.Ctx) error {
	requests, err := h.admin.ListChangeRequests(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"change_requests": dto.NewChangeRequestResponses(requests)},
	})
}

// ApproveChangeRequest handles POST /admins/me/change-requests/:id/approve.
func (h *AdminsHandler) ApproveChangeRequest(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	game, err := h.admin.ApproveChangeRequest(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"game": dto.NewGameResponse(game)}})
}

// RejectChangeRequest handles POST /admins/me/change-requests/:id/reject.
func (h *AdminsHandler) RejectChangeRequest(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	req, err := h.admin.RejectChangeRequest(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"change_request": dto.NewChangeRequestResponse(req)}})
}

// ListGuardRequests handles GET /admins/me/guard-codes.
func (h *AdminsHandler) ListGuardRequests(c *fiber.Ctx) error {
	pending, err := h.admin.ListGuardRequests(c.Context(), guardQueueLimit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"requests": dto.NewGuardRequestResponses(pending)},
	})
}

// SetGuardCode handles POST /admins/me/guard-codes/:account_id.
func (h *AdminsHandler) SetGuardCode(c *fiber.Ctx) error {
	accountID, err := pathID(c, "account_id")
	if err != nil {
		return err
	}

	var req dto.GuardCodeSetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Code == "" {
		return apperrors.NewBadRequest("code required")
	}

	if err := h.admin.SetGuardCode(c.Context(), accountID, req.Code); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"set": true}})
}
