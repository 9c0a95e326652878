package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/game-rental-service/internal/config"
	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/payment"
	"github.com/spec-kit/game-rental-service/internal/repository"
	"github.com/spec-kit/game-rental-service/internal/verification"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// PaymentService drives the rental purchase flow and, once an account has
// been handed over, the renter side of the guard-code exchange.
type PaymentService struct {
	provider payment.Provider
	users    repository.UserRepository
	games    repository.GameRepository
	accounts repository.AccountRepository
	orders   repository.OrderRepository
	codes    *verification.Store
	guardTTL time.Duration
}

// PaymentDependencies encapsulates collaborator requirements.
type PaymentDependencies struct {
	Provider    payment.Provider
	UserRepo    repository.UserRepository
	GameRepo    repository.GameRepository
	AccountRepo repository.AccountRepository
	OrderRepo   repository.OrderRepository
	CodeStore   *verification.Store
}

// NewPaymentService builds the service.
func NewPaymentService(cfg config.Config, deps PaymentDependencies) *PaymentService {
	return &PaymentService{
		provider: deps.Provider,
		users:    deps.UserRepo,
		games:    deps.GameRepo,
		accounts: deps.AccountRepo,
		orders:   deps.OrderRepo,
		codes:    deps.CodeStore,
		guardTTL: cfg.Auth.GuardCodeTTL(),
	}
}

// PurchaseResult bundles the recorded order with the credentials of the
// rented account.
type PurchaseResult struct {
	Order   *domain.Order
	Account *domain.GameAccount
}

// CreateIntent opens a payment for the game's listed price and returns the
// provider handle for the client to settle.
func (s *PaymentService) CreateIntent(ctx context.Context, gameID int64) (*payment.Intent, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("game", map[string]any{"id": gameID})
		}
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, game.PriceCents, game.ID)
	if err != nil {
		return nil, apperrors.NewBadRequest("could not start payment")
	}
	return intent, nil
}

// CompletePurchase verifies the settled intent, reserves an available
// account for the game and records the order. Verification happens against
// the provider, never against client-supplied state.
func (s *PaymentService) CompletePurchase(ctx context.Context, ukey string, gameID int64, intentID string) (*PurchaseResult, error) {
	user, err := s.users.GetByUKey(ctx, ukey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("game", map[string]any{"id": gameID})
		}
		return nil, err
	}

	if err := s.provider.VerifyIntent(ctx, intentID); err != nil {
		if errors.Is(err, payment.ErrPaymentNotSucceeded) {
			return nil, apperrors.NewBadRequest("payment has not succeeded")
		}
		return nil, apperrors.NewBadRequest("could not verify payment")
	}

	account, err := s.accounts.FindAvailableForGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("no accounts available for this game", map[string]any{"game_id": gameID})
		}
		return nil, err
	}

	receiptURL, err := s.provider.ReceiptURL(ctx, intentID)
	if err != nil {
		receiptURL = "" // the order still stands without a receipt link
	}

	order := &domain.Order{
		UserID:          user.ID,
		GameID:          game.ID,
		AccountID:       account.SteamID64,
		TotalPriceCents: game.PriceCents,
		ReceiptURL:      optional(receiptURL),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	return &PurchaseResult{Order: order, Account: account}, nil
}

// RequestGuardCode registers that a renter needs the login guard code for
// a rented account. An operator fills the code in later; re-requesting
// just restarts the wait.
func (s *PaymentService) RequestGuardCode(ctx context.Context, accountID int64) error {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("game account", map[string]any{"account_id": accountID})
		}
		return err
	}
	return s.codes.Issue(ctx, verification.NamespaceGuardCode, guardSubject(accountID), "", "", s.guardTTL)
}

// GuardCode polls the request. It returns the code once an operator has
// completed the request; before that ready is false.
func (s *PaymentService) GuardCode(ctx context.Context, accountID int64) (code string, ready bool, err error) {
	record, err := s.codes.Peek(ctx, verification.NamespaceGuardCode, guardSubject(accountID))
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			return "", false, apperrors.NewNotFound("guard code request", map[string]any{"account_id": accountID})
		}
		return "", false, err
	}
	if record.Status != verification.StatusCompleted {
		return "", false, nil
	}
	return record.Code, true, nil
}

func guardSubject(accountID int64) string {
	return strconv.FormatInt(accountID, 10)
}
