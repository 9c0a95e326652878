package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/game-rental-service/internal/domain"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

func newAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *recordingDispatcher) {
	t.Helper()
	users := newFakeUserRepo()
	store, _ := newTestStore(t)
	dispatcher := &recordingDispatcher{}
	svc := NewAuthService(newTestConfig(), AuthDependencies{
		UserRepo:   users,
		CodeStore:  store,
		Dispatcher: dispatcher,
	})
	return svc, users, dispatcher
}

func registerUser(t *testing.T, svc *AuthService, email string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     email,
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	svc, _, _ := newAuthService(t)

	user := registerUser(t, svc, "ada@example.com")

	require.Equal(t, domain.RoleUser, user.Role)
	require.Len(t, user.UKey, 12)
	require.NotNil(t, user.PasswordHash)
	require.NotEqual(t, "s3cret-pass", *user.PasswordHash)
	require.False(t, user.Temporary)
}

func TestRegisterRejectsExistingEmail(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerUser(t, svc, "ada@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "ada@example.com",
		Password: "another-pass",
	})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "CONFLICT", domainErr.Code)
}

func TestLoginWithoutMFAMintsFullToken(t *testing.T) {
	svc, _, _ := newAuthService(t)
	user := registerUser(t, svc, "ada@example.com")

	result, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.False(t, result.MFARequired)

	claims, err := svc.TokenManager().Verify(result.Token, domain.RoleUser, false)
	require.NoError(t, err)
	require.Equal(t, user.UKey, claims.UKey)
	require.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginFailureIsGeneric(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerUser(t, svc, "ada@example.com")

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	_, wrongErr := svc.Login(context.Background(), "ada@example.com", "wrong-pass")

	// Unknown email and wrong password must be indistinguishable.
	require.True(t, apperrors.IsUnauthenticated(unknownErr))
	require.True(t, apperrors.IsUnauthenticated(wrongErr))
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginWithMFAIssuesPartialTokenAndCode(t *testing.T) {
	svc, users, dispatcher := newAuthService(t)
	user := registerUser(t, svc, "ada@example.com")
	user.MFAEnabled = true
	require.NoError(t, users.Update(context.Background(), user))

	result, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.True(t, result.MFARequired)

	// The partial token must not open the full surface.
	_, err = svc.TokenManager().Verify(result.Token, domain.RoleUser, false)
	require.True(t, apperrors.IsForbidden(err))
	claims, err := svc.TokenManager().Verify(result.Token, domain.RolePartiallyLoggedIn, true)
	require.NoError(t, err)

	code := dispatcher.lastCode(t).Code
	require.Len(t, code, 6)

	confirmed, err := svc.ConfirmSecondFactor(context.Background(), claims, code)
	require.NoError(t, err)
	require.False(t, confirmed.MFARequired)

	fullClaims, err := svc.TokenManager().Verify(confirmed.Token, domain.RoleUser, false)
	require.NoError(t, err)
	require.Equal(t, user.UKey, fullClaims.UKey)
}

func TestConfirmSecondFactorWrongCodeKeepsChallenge(t *testing.T) {
	svc, users, dispatcher := newAuthService(t)
	user := registerUser(t, svc, "ada@example.com")
	user.MFAEnabled = true
	require.NoError(t, users.Update(context.Background(), user))

	result, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	claims, err := svc.TokenManager().Verify(result.Token, domain.RolePartiallyLoggedIn, true)
	require.NoError(t, err)

	_, err = svc.ConfirmSecondFactor(context.Background(), claims, "000000")
	require.True(t, apperrors.IsForbidden(err))

	// A typo must not burn the real code.
	_, err = svc.ConfirmSecondFactor(context.Background(), claims, dispatcher.lastCode(t).Code)
	require.NoError(t, err)

	// But consuming it once does.
	_, err = svc.ConfirmSecondFactor(context.Background(), claims, dispatcher.lastCode(t).Code)
	require.True(t, apperrors.IsForbidden(err))
}

func TestConfirmSecondFactorUsesPersistedRole(t *testing.T) {
	svc, users, dispatcher := newAuthService(t)
	user := registerUser(t, svc, "ada@example.com")
	user.MFAEnabled = true
	require.NoError(t, users.Update(context.Background(), user))

	result, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	claims, err := svc.TokenManager().Verify(result.Token, domain.RolePartiallyLoggedIn, true)
	require.NoError(t, err)

	// Role changes between challenge and confirmation must win.
	_, err = users.UpdateRoleByEmail(context.Background(), user.Email, domain.RoleAdmin)
	require.NoError(t, err)

	confirmed, err := svc.ConfirmSecondFactor(context.Background(), claims, dispatcher.lastCode(t).Code)
	require.NoError(t, err)

	fullClaims, err := svc.TokenManager().Verify(confirmed.Token, domain.RoleAdmin, false)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, fullClaims.Role)
}

func TestTemporaryRegistrationAndConversion(t *testing.T) {
	svc, _, dispatcher := newAuthService(t)
	ctx := context.Background()

	user, token, _, err := svc.RegisterTemporary(ctx, "temp@example.com")
	require.NoError(t, err)
	require.True(t, user.Temporary)
	require.Nil(t, user.PasswordHash)

	// The temporary account gets a working USER token right away.
	_, err = svc.TokenManager().Verify(token, domain.RoleUser, false)
	require.NoError(t, err)

	// No password means no credentials login.
	_, err = svc.Login(ctx, "temp@example.com", "")
	require.True(t, apperrors.IsUnauthenticated(err))

	require.NoError(t, svc.SendTempVerification(ctx, "temp@example.com"))
	code := dispatcher.lastCode(t).Code

	_, err = svc.ConvertTemporary(ctx, RegisterInput{
		FirstName: "Grace",
		Email:     "temp@example.com",
		Password:  "fresh-pass",
	}, "999999")
	require.True(t, apperrors.IsForbidden(err))

	converted, err := svc.ConvertTemporary(ctx, RegisterInput{
		FirstName: "Grace",
		Email:     "temp@example.com",
		Password:  "fresh-pass",
	}, code)
	require.NoError(t, err)
	require.False(t, converted.Temporary)
	require.NotNil(t, converted.PasswordHash)

	result, err := svc.Login(ctx, "temp@example.com", "fresh-pass")
	require.NoError(t, err)
	require.False(t, result.MFARequired)
}

func TestSendTempVerificationRejectsPermanentAccount(t *testing.T) {
	svc, _, _ := newAuthService(t)
	registerUser(t, svc, "ada@example.com")

	err := svc.SendTempVerification(context.Background(), "ada@example.com")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "BAD_REQUEST", domainErr.Code)
}

func TestReissuedLoginCodeInvalidatesPrevious(t *testing.T) {
	svc, users, dispatcher := newAuthService(t)
	user := registerUser(t, svc, "ada@example.com")
	user.MFAEnabled = true
	require.NoError(t, users.Update(context.Background(), user))

	_, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	firstCode := dispatcher.lastCode(t).Code

	second, err := svc.Login(context.Background(), "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	secondCode := dispatcher.lastCode(t).Code
	claims, err := svc.TokenManager().Verify(second.Token, domain.RolePartiallyLoggedIn, true)
	require.NoError(t, err)

	if firstCode != secondCode {
		_, err = svc.ConfirmSecondFactor(context.Background(), claims, firstCode)
		require.True(t, apperrors.IsForbidden(err))
	}
	_, err = svc.ConfirmSecondFactor(context.Background(), claims, secondCode)
	require.NoError(t, err)
}
