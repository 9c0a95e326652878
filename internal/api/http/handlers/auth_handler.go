package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/game-rental-service/internal/api/dto"
	"github.com/spec-kit/game-rental-service/internal/auth"
	"github.com/spec-kit/game-rental-service/internal/service"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// mfaRequiredHeader tells the client whether a second login step is pending.
const mfaRequiredHeader = "X-MFA-Required"

// AuthHandler exposes login and registration endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewBadRequest("email and password required")
	}

	result, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Set(mfaRequiredHeader, boolHeader(result.MFARequired))
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(result.User),
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// ConfirmSecondFactor handles POST /login/auth. The route only admits
// PARTIALLY_LOGGED_IN tokens.
func (h *AuthHandler) ConfirmSecondFactor(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	var req dto.SecondFactorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Code == "" {
		return apperrors.NewBadRequest("code required")
	}

	result, err := h.auth.ConfirmSecondFactor(c.Context(), claims, req.Code)
	if err != nil {
		return err
	}

	c.Set(mfaRequiredHeader, boolHeader(false))
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(result.User),
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewBadRequest("email and password required")
	}

	user, err := h.auth.Register(c.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

// RegisterTemporary handles POST /register/temporary.
func (h *AuthHandler) RegisterTemporary(c *fiber.Ctx) error {
	var req dto.TempRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewBadRequest("email required")
	}

	user, token, exp, err := h.auth.RegisterTemporary(c.Context(), req.Email)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// SendTempVerification handles POST /register/temporary/send-code.
func (h *AuthHandler) SendTempVerification(c *fiber.Ctx) error {
	var req dto.TempRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewBadRequest("email required")
	}

	if err := h.auth.SendTempVerification(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// ConvertTemporary handles POST /register/convert-temp.
func (h *AuthHandler) ConvertTemporary(c *fiber.Ctx) error {
	var req dto.ConvertTempRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Code == "" {
		return apperrors.NewBadRequest("email, password and code required")
	}

	user, err := h.auth.ConvertTemporary(c.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	}, req.Code)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

func boolHeader(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
