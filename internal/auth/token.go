package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/game-rental-service/internal/domain"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// TokenManager issues and validates JWT bearer tokens. A token is the only
// session state: nothing is persisted per login and nothing is revocable
// before expiry.
type TokenManager struct {
	secret     []byte
	ttl        time.Duration
	partialTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl, partialTTL time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if partialTTL <= 0 {
		partialTTL = 5 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, partialTTL: partialTTL}
}

// Claims describes the JWT payload.
type Claims struct {
	UKey  string      `json:"ukey"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Generate builds and signs a full access token carrying the user's role.
func (tm *TokenManager) Generate(ukey, email string, role domain.Role) (string, time.Time, error) {
	return tm.sign(ukey, email, role, tm.ttl)
}

// GeneratePartial builds a token accepted only by the second-factor
// endpoint: role is pinned to PARTIALLY_LOGGED_IN with a short lifetime.
func (tm *TokenManager) GeneratePartial(ukey, email string) (string, time.Time, error) {
	return tm.sign(ukey, email, domain.RolePartiallyLoggedIn, tm.partialTTL)
}

func (tm *TokenManager) sign(ukey, email string, role domain.Role, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UKey:  ukey,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ukey,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the token signature and expiry, then applies the role
// policy against required. Signature/expiry problems surface as
// UNAUTHENTICATED; a failed role check as FORBIDDEN.
func (tm *TokenManager) Verify(tokenStr string, required domain.Role, exact bool) (*Claims, error) {
	claims, err := tm.parse(tokenStr)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid or expired token")
	}

	if exact {
		if !claims.Role.Exact(required) {
			return nil, apperrors.NewForbidden("access forbidden")
		}
	} else if !claims.Role.AtLeast(required) {
		return nil, apperrors.NewForbidden("access forbidden")
	}
	return claims, nil
}

func (tm *TokenManager) parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, errors.New("unknown role claim")
	}
	return claims, nil
}
