package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/game-rental-service/internal/api/dto"
	"github.com/spec-kit/game-rental-service/internal/auth"
	"github.com/spec-kit/game-rental-service/internal/service"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// PaymentsHandler exposes the purchase and rented-account access endpoints.
type PaymentsHandler struct {
	payments *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(paymentService *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: paymentService}
}

// CreateIntent handles POST /payments/intent.
func (h *PaymentsHandler) CreateIntent(c *fiber.Ctx) error {
	var req dto.IntentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.GameID <= 0 {
		return apperrors.NewBadRequest("game_id required")
	}

	intent, err := h.payments.CreateIntent(c.Context(), req.GameID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"intent": dto.NewIntentResponse(intent)},
	})
}

// CompletePurchase handles POST /payments/complete.
func (h *PaymentsHandler) CompletePurchase(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("missing token claims")
	}

	var req dto.PurchaseCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.GameID <= 0 || req.IntentID == "" {
		return apperrors.NewBadRequest("game_id and intent_id required")
	}

	result, err := h.payments.CompletePurchase(c.Context(), claims.UKey, req.GameID, req.IntentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"order":   dto.NewOrderResponse(result.Order),
			"account": dto.NewAccountCredentialsResponse(result.Account),
		},
	})
}

// RequestGuardCode handles POST /accounts/:account_id/guard-code.
func (h *PaymentsHandler) RequestGuardCode(c *fiber.Ctx) error {
	accountID, err := pathID(c, "account_id")
	if err != nil {
		return err
	}

	if err := h.payments.RequestGuardCode(c.Context(), accountID); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"requested": true}})
}

// GuardCode handles GET /accounts/:account_id/guard-code.
func (h *PaymentsHandler) GuardCode(c *fiber.Ctx) error {
	accountID, err := pathID(c, "account_id")
	if err != nil {
		return err
	}

	code, ready, err := h.payments.GuardCode(c.Context(), accountID)
	if err != nil {
		return err
	}
	if !ready {
		return c.JSON(fiber.Map{"data": fiber.Map{"ready": false}})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ready": true, "code": code}})
}
