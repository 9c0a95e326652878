package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/game-rental-service/internal/auth"
	"github.com/spec-kit/game-rental-service/internal/config"
	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/events"
	"github.com/spec-kit/game-rental-service/internal/repository"
	"github.com/spec-kit/game-rental-service/internal/verification"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// recentOrdersLimit caps the purchase-history listing on the profile page.
const recentOrdersLimit = 10

// AccountService handles the authenticated user's own account: profile
// reads and edits plus every request/confirm pair that mutates a
// sensitive attribute behind an out-of-band code.
type AccountService struct {
	users      repositoryUsers
	orders     repository.OrderRepository
	codes      *verification.Store
	dispatcher events.Dispatcher
	authCfg    config.AuthConfig
}

// AccountDependencies encapsulates collaborator requirements.
type AccountDependencies struct {
	UserRepo   repositoryUsers
	OrderRepo  repository.OrderRepository
	CodeStore  *verification.Store
	Dispatcher events.Dispatcher
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	return &AccountService{
		users:      deps.UserRepo,
		orders:     deps.OrderRepo,
		codes:      deps.CodeStore,
		dispatcher: deps.Dispatcher,
		authCfg:    cfg.Auth,
	}
}

// GetByUKey loads the profile behind the token identity.
func (s *AccountService) GetByUKey(ctx context.Context, ukey string) (*domain.User, error) {
	user, err := s.users.GetByUKey(ctx, ukey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdatePersonalInfo edits the non-sensitive profile fields directly,
// without a confirmation code.
func (s *AccountService) UpdatePersonalInfo(ctx context.Context, ukey, firstName, lastName string) (*domain.User, error) {
	user, err := s.GetByUKey(ctx, ukey)
	if err != nil {
		return nil, err
	}

	if firstName != "" {
		user.FirstName = optional(firstName)
	}
	if lastName != "" {
		user.LastName = optional(lastName)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordChange verifies the current password, hashes the new one
// and parks the hash behind a confirmation code. Nothing is persisted
// until the code is confirmed.
func (s *AccountService) RequestPasswordChange(ctx context.Context, ukey, currentPassword, newPassword string) error {
	user, err := s.GetByUKey(ctx, ukey)
	if err != nil {
		return err
	}
	if user.PasswordHash == nil {
		return apperrors.NewBadRequest("account has no password set")
	}
	if err := auth.ComparePassword(*user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewForbidden("current password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword, s.authCfg.BcryptCost)
	if err != nil {
		return err
	}

	code := verification.GenerateCode()
	if err := s.codes.Issue(ctx, verification.NamespacePasswordChange, ukey, code, hash, s.authCfg.CodeTTL()); err != nil {
		return err
	}
	s.deliverCode(ctx, user, "password_change", "Confirm your password change", code)
	return nil
}

// ConfirmPasswordChange consumes the code and installs the parked hash.
func (s *AccountService) ConfirmPasswordChange(ctx context.Context, ukey, code string) (*domain.User, error) {
	user, err := s.GetByUKey(ctx, ukey)
	if err != nil {
		return nil, err
	}

	hash, err := s.consume(ctx, verification.NamespacePasswordChange, ukey, code)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = &hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestEmailChange parks the new address behind a confirmation code sent
// to the current address, so a hijacked session alone cannot steal the
// account's mailbox binding.
func (s *AccountService) RequestEmailChange(ctx context.Context, ukey, newEmail string) error {
	user, err := s.GetByUKey(ctx, ukey)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByEmail(ctx, newEmail); err == nil {
		return apperrors.NewConflict("user with such email address already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	code := verification.GenerateCode()
	if err := s.codes.Issue(ctx, verification.NamespaceEmailChange, ukey, code, newEmail, s.authCfg.CodeTTL()); err != nil {
		return err
	}
	s.deliverCode(ctx, user, "email_change", "Confirm your email change", code)
	return nil
}

// ConfirmEmailChange consumes the code and swaps in the parked address.
func (s *AccountService) ConfirmEmailChange(ctx context.Context, ukey, code string) (*domain.User, error) {
	user, err := s.GetByUKey(ctx, ukey)
	if err != nil {
		return nil, err
	}

	newEmail, err := s.consume(ctx, verification.NamespaceEmailChange, ukey, code)
	if err != nil {
		return nil, err
	}

	user.Email = newEmail
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset is the unauthenticated recovery entry point. For an
// unknown email it silently succeeds without issuing anything, so the
// endpoint cannot be used to enumerate accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	token := verification.GenerateResetToken()
	// Keyed by the token itself: possession of the link is the credential.
	if err := s.codes.Issue(ctx, verification.NamespacePasswordReset, token, token, user.Email, s.authCfg.CodeTTL()); err != nil {
		return err
	}

	s.publishEvent(ctx, user.UKey, events.CodeIssuedPayload{
		Purpose: "password_reset",
		Email:   user.Email,
		Code:    token,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Use this token to reset your password:\n\n%s\n\nIf you did not request a reset, ignore this message.", token),
	})
	return nil
}

// ConfirmPasswordReset redeems a reset token and sets the new password for
// the account stored in the token's payload.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (*domain.User, error) {
	emailAddr, err := s.consume(ctx, verification.NamespacePasswordReset, token, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewBadRequest("user is not found")
		}
		return nil, err
	}

	hash, err := auth.HashPassword(newPassword, s.authCfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = &hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestMFAToggle issues the code guarding an MFA state flip. Enabling
// and disabling use separate namespaces so a code issued for one cannot
// confirm the other.
func (s *AccountService) RequestMFAToggle(ctx context.Context, ukey string, enable bool) error {
	user, err := s.GetByUKey(ctx, ukey)
	if err != nil {
		return err
	}
	if user.MFAEnabled == enable {
		return apperrors.NewBadRequest("two-factor authentication is already in the requested state")
	}

	ns := verification.NamespaceMFADisable
	subject := "Confirm disabling two-factor authentication"
	if enable {
		ns = verification.NamespaceMFAEnable
		subject = "Confirm enabling two-factor authentication"
	}

	code := verification.GenerateCode()
	if err := s.codes.Issue(ctx, ns, ukey, code, "", s.authCfg.CodeTTL()); err != nil {
		return err
	}
	s.deliverCode(ctx, user, "mfa_toggle", subject, code)
	return nil
}

// ConfirmMFAToggle consumes the toggle code and persists the new state.
func (s *AccountService) ConfirmMFAToggle(ctx context.Context, ukey, code string, enable bool) (*domain.User, error) {
	user, err := s.GetByUKey(ctx, ukey)
	if err != nil {
		return nil, err
	}

	ns := verification.NamespaceMFADisable
	if enable {
		ns = verification.NamespaceMFAEnable
	}
	if _, err := s.consume(ctx, ns, ukey, code); err != nil {
		return nil, err
	}

	user.MFAEnabled = enable
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Orders lists the caller's most recent purchases.
func (s *AccountService) Orders(ctx context.Context, ukey string) ([]*domain.Order, error) {
	user, err := s.GetByUKey(ctx, ukey)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, user.ID, recentOrdersLimit)
}

// consume maps store errors onto the API taxonomy: a wrong code is a
// privilege failure, a missing or expired record is a plain client error.
func (s *AccountService) consume(ctx context.Context, ns verification.Namespace, subject, code string) (string, error) {
	payload, err := s.codes.Consume(ctx, ns, subject, code)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrNotFound):
			return "", apperrors.NewBadRequest("code not found or expired")
		case errors.Is(err, verification.ErrCodeMismatch):
			return "", apperrors.NewForbidden("incorrect code")
		default:
			return "", err
		}
	}
	return payload, nil
}

func (s *AccountService) deliverCode(ctx context.Context, user *domain.User, purpose, subject, code string) {
	s.publishEvent(ctx, user.UKey, events.CodeIssuedPayload{
		Purpose: purpose,
		Email:   user.Email,
		Code:    code,
		Subject: subject,
		Body:    fmt.Sprintf("Your code is:\n\n%s\n\nDo not share.", code),
	})
}

func (s *AccountService) publishEvent(ctx context.Context, ukey string, payload events.CodeIssuedPayload) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventCodeIssued, ukey, payload))
}
