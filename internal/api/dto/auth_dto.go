package dto

import (
	"time"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// LoginRequest payload for the first login step.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SecondFactorRequest payload confirming a login challenge.
type SecondFactorRequest struct {
	Code string `json:"code"`
}

// RegisterRequest payload for full registration.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// TempRegisterRequest payload for email-only registration.
type TempRegisterRequest struct {
	Email string `json:"email"`
}

// ConvertTempRequest payload upgrading a temporary account.
type ConvertTempRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Code      string `json:"code"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public projection of an account. The numeric row id
// and password hash never appear here.
type UserResponse struct {
	UKey       string    `json:"ukey"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	Username   *string   `json:"username"`
	Email      string    `json:"email"`
	MFAEnabled bool      `json:"mfa_enabled"`
	Role       string    `json:"role"`
	Temporary  bool      `json:"temporary"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UKey:       user.UKey,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Username:   user.Username,
		Email:      user.Email,
		MFAEnabled: user.MFAEnabled,
		Role:       string(user.Role),
		Temporary:  user.Temporary,
		CreatedAt:  user.CreatedAt,
	}
}
