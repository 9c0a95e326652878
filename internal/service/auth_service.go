package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/game-rental-service/internal/auth"
	"github.com/spec-kit/game-rental-service/internal/config"
	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/events"
	"github.com/spec-kit/game-rental-service/internal/verification"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// AuthService coordinates login, second-factor confirmation, registration,
// and temporary-account conversion.
type AuthService struct {
	users      repositoryUsers
	codes      *verification.Store
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	authCfg    config.AuthConfig
}

// repositoryUsers is the slice of persistence the auth flows need.
type repositoryUsers interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUKey(ctx context.Context, ukey string) (*domain.User, error)
}

// AuthDependencies encapsulates collaborator requirements for auth service.
type AuthDependencies struct {
	UserRepo   repositoryUsers
	CodeStore  *verification.Store
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		codes:      deps.CodeStore,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.PartialTokenTTL()),
		dispatcher: deps.Dispatcher,
		authCfg:    cfg.Auth,
	}
}

// LoginResult is the outcome of a credentials or second-factor check.
type LoginResult struct {
	User        *domain.User
	Token       string
	ExpiresAt   time.Time
	MFARequired bool
}

// RegisterInput carries the fields of a full registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// Login verifies credentials. With MFA disabled it mints a full token;
// with MFA enabled it mints a partial token and issues a side-channel
// code the client must confirm. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthenticated("email or password is invalid")
		}
		return nil, err
	}
	if user.PasswordHash == nil {
		// Temporary accounts have no password; same generic failure.
		return nil, apperrors.NewUnauthenticated("email or password is invalid")
	}
	if err := auth.ComparePassword(*user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthenticated("email or password is invalid")
	}

	if user.MFAEnabled {
		token, exp, err := s.tokenMgr.GeneratePartial(user.UKey, user.Email)
		if err != nil {
			return nil, err
		}
		code := verification.GenerateCode()
		if err := s.codes.Issue(ctx, verification.NamespaceLoginMFA, user.UKey, code, "", s.authCfg.CodeTTL()); err != nil {
			return nil, err
		}
		s.publishCode(ctx, user, "login_2fa", "Your login code", code)
		return &LoginResult{User: user, Token: token, ExpiresAt: exp, MFARequired: true}, nil
	}

	token, exp, err := s.tokenMgr.Generate(user.UKey, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// ConfirmSecondFactor consumes the login challenge code for the identity on
// a partial token and mints a full token carrying the user's current
// persisted role.
func (s *AuthService) ConfirmSecondFactor(ctx context.Context, claims *auth.Claims, code string) (*LoginResult, error) {
	user, err := s.users.GetByUKey(ctx, claims.UKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewBadRequest("user not found")
		}
		return nil, err
	}

	if _, err := s.codes.Consume(ctx, verification.NamespaceLoginMFA, claims.UKey, code); err != nil {
		if errors.Is(err, verification.ErrCodeMismatch) || errors.Is(err, verification.ErrNotFound) {
			return nil, apperrors.NewForbidden("invalid authorization code")
		}
		return nil, err
	}

	token, exp, err := s.tokenMgr.Generate(user.UKey, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Register creates a permanent account with the default USER role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := s.ensureEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UKey:         verification.GenerateUKey(),
		FirstName:    optional(input.FirstName),
		LastName:     optional(input.LastName),
		Username:     optional(input.Username),
		Email:        input.Email,
		PasswordHash: &hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, user.UKey, events.EventUserRegistered,
		events.UserRegisteredPayload{Email: user.Email})
	return user, nil
}

// RegisterTemporary creates a password-less, flagged-temporary account and
// issues it a full USER token immediately.
func (s *AuthService) RegisterTemporary(ctx context.Context, email string) (*domain.User, string, time.Time, error) {
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		UKey:      verification.GenerateUKey(),
		Email:     email,
		Role:      domain.RoleUser,
		Temporary: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.Generate(user.UKey, user.Email, domain.RoleUser)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, user.UKey, events.EventUserRegistered,
		events.UserRegisteredPayload{Email: user.Email, Temporary: true})
	return user, token, exp, nil
}

// SendTempVerification issues the conversion code for a temporary account
// and dispatches it by email. Re-requesting overwrites the previous code.
func (s *AuthService) SendTempVerification(ctx context.Context, email string) error {
	user, err := s.temporaryUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	code := verification.GenerateCode()
	if err := s.codes.Issue(ctx, verification.NamespaceTempConvert, user.UKey, code, "", s.authCfg.TempCodeTTL()); err != nil {
		return err
	}

	s.publishCode(ctx, user, "temp_conversion", "Your registration verification code", code)
	return nil
}

// ConvertTemporary upgrades a temporary account: the out-of-band code must
// match, then missing profile fields and the hashed password are filled in
// and the temporary flag cleared.
func (s *AuthService) ConvertTemporary(ctx context.Context, input RegisterInput, code string) (*domain.User, error) {
	user, err := s.temporaryUserByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	if _, err := s.codes.Consume(ctx, verification.NamespaceTempConvert, user.UKey, code); err != nil {
		switch {
		case errors.Is(err, verification.ErrNotFound):
			return nil, apperrors.NewBadRequest("code not found or expired")
		case errors.Is(err, verification.ErrCodeMismatch):
			return nil, apperrors.NewForbidden("incorrect code")
		default:
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user.FirstName = optional(input.FirstName)
	user.LastName = optional(input.LastName)
	user.Username = optional(input.Username)
	user.PasswordHash = &hash
	user.Temporary = false

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if existing.Temporary {
		// A temporary identity owns this email; the conversion flow is the
		// only way to claim it, since it proves mailbox control.
		return apperrors.NewConflict("email belongs to a temporary account; complete registration instead", nil)
	}
	return apperrors.NewConflict("user with such email address already exists", nil)
}

func (s *AuthService) temporaryUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewBadRequest("user is not found")
		}
		return nil, err
	}
	if !user.Temporary {
		return nil, apperrors.NewBadRequest("user is not temporary")
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, ukey string, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.NewEvent(eventType, ukey, payload))
}

func (s *AuthService) publishCode(ctx context.Context, user *domain.User, purpose, subject, code string) {
	s.publish(ctx, user.UKey, events.EventCodeIssued, events.CodeIssuedPayload{
		Purpose: purpose,
		Email:   user.Email,
		Code:    code,
		Subject: subject,
		Body:    fmt.Sprintf("Your code is:\n\n%s\n\nDo not share.", code),
	})
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
