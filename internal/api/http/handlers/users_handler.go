package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/game-rental-service/internal/api/dto"
	"github.com/spec-kit/game-rental-service/internal/auth"
	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/service"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// UsersHandler exposes the authenticated user's own account endpoints.
type UsersHandler struct {
	accounts *service.AccountService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accountService *service.AccountService) *UsersHandler {
	return &UsersHandler{accounts: accountService}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	user, err := h.accounts.GetByUKey(c.Context(), claims.UKey)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// UpdateMe handles PATCH /users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	user, err := h.accounts.UpdatePersonalInfo(c.Context(), claims.UKey, req.FirstName, req.LastName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

// RequestPasswordChange handles POST /users/me/password/request.
func (h *UsersHandler) RequestPasswordChange(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewBadRequest("current and new password required")
	}

	if err := h.accounts.RequestPasswordChange(c.Context(), claims.UKey, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// ConfirmPasswordChange handles POST /users/me/password/confirm.
func (h *UsersHandler) ConfirmPasswordChange(c *fiber.Ctx) error {
	return h.confirmWithCode(c, h.accounts.ConfirmPasswordChange)
}

// RequestEmailChange handles POST /users/me/email/request.
func (h *UsersHandler) RequestEmailChange(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	var req dto.EmailChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.NewEmail == "" {
		return apperrors.NewBadRequest("new email required")
	}

	if err := h.accounts.RequestEmailChange(c.Context(), claims.UKey, req.NewEmail); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// ConfirmEmailChange handles POST /users/me/email/confirm.
func (h *UsersHandler) ConfirmEmailChange(c *fiber.Ctx) error {
	return h.confirmWithCode(c, h.accounts.ConfirmEmailChange)
}

// RequestEnableMFA handles POST /users/me/2fa/enable/request.
func (h *UsersHandler) RequestEnableMFA(c *fiber.Ctx) error {
	return h.requestMFAToggle(c, true)
}

// ConfirmEnableMFA handles POST /users/me/2fa/enable/confirm.
func (h *UsersHandler) ConfirmEnableMFA(c *fiber.Ctx) error {
	return h.confirmMFAToggle(c, true)
}

// RequestDisableMFA handles POST /users/me/2fa/disable/request.
func (h *UsersHandler) RequestDisableMFA(c *fiber.Ctx) error {
	return h.requestMFAToggle(c, false)
}

// ConfirmDisableMFA handles POST /users/me/2fa/disable/confirm.
func (h *UsersHandler) ConfirmDisableMFA(c *fiber.Ctx) error {
	return h.confirmMFAToggle(c, false)
}

// RequestPasswordReset handles POST /password-reset/request. No auth: this
// is the recovery path, and it answers identically for any email.
func (h *UsersHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewBadRequest("email required")
	}

	if err := h.accounts.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// ConfirmPasswordReset handles POST /password-reset/confirm.
func (h *UsersHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewBadRequest("token and new password required")
	}

	if _, err := h.accounts.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

// Orders handles GET /users/me/orders.
func (h *UsersHandler) Orders(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	orders, err := h.accounts.Orders(c.Context(), claims.UKey)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"orders": dto.NewOrderResponses(orders)}})
}

// confirmWithCode factors the shared confirm-step shape: parse the code,
// call the service, return the refreshed profile.
func (h *UsersHandler) confirmWithCode(c *fiber.Ctx, confirm func(context.Context, string, string) (*domain.User, error)) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	var req dto.CodeConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Code == "" {
		return apperrors.NewBadRequest("code required")
	}

	user, err := confirm(c.Context(), claims.UKey, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

func (h *UsersHandler) requestMFAToggle(c *fiber.Ctx, enable bool) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	if err := h.accounts.RequestMFAToggle(c.Context(), claims.UKey, enable); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

func (h *UsersHandler) confirmMFAToggle(c *fiber.Ctx, enable bool) error {
	return h.confirmWithCode(c, func(ctx context.Context, ukey, code string) (*domain.User, error) {
		return h.accounts.ConfirmMFAToggle(ctx, ukey, code, enable)
	})
}
