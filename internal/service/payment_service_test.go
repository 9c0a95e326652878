package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/payment"
	"github.com/spec-kit/game-rental-service/internal/verification"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

func newPaymentFixture(t *testing.T) (*PaymentService, *AdminService, *fakeUserRepo, *fakeAccountRepo, *fakeProvider) {
	t.Helper()
	users := newFakeUserRepo()
	games := newFakeGameRepo(&domain.Game{ID: 1, Title: "Portal", PriceCents: 1999})
	accounts := newFakeAccountRepo()
	orders := newFakeOrderRepo()
	provider := newFakeProvider()
	store, _ := newTestStore(t)
	cfg := newTestConfig()

	paySvc := NewPaymentService(cfg, PaymentDependencies{
		Provider:    provider,
		UserRepo:    users,
		GameRepo:    games,
		AccountRepo: accounts,
		OrderRepo:   orders,
		CodeStore:   store,
	})
	adminSvc := NewAdminService(cfg, AdminDependencies{
		UserRepo:          users,
		GameRepo:          games,
		ChangeRequestRepo: newFakeChangeRequestRepo(),
		CodeStore:         store,
		BlobRemover:       &fakeBlobRemover{},
		Dispatcher:        &recordingDispatcher{},
	})
	return paySvc, adminSvc, users, accounts, provider
}

func TestCreateIntentUsesListedPrice(t *testing.T) {
	svc, _, _, _, provider := newPaymentFixture(t)

	intent, err := svc.CreateIntent(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, intent.ClientSecret)
	require.Equal(t, int64(1999), provider.settled[intent.ID])

	_, err = svc.CreateIntent(context.Background(), 404)
	require.True(t, apperrors.IsNotFound(err))
}

func TestCompletePurchase(t *testing.T) {
	svc, _, users, accounts, _ := newPaymentFixture(t)
	ctx := context.Background()
	user := seedUser(t, users, "buyer@example.com", domain.RoleUser)
	accounts.add(&domain.GameAccount{SteamID64: 7600001, Email: "acc@example.com", AccountName: "rental01", Password: "acc-pass"}, 1)

	intent, err := svc.CreateIntent(ctx, 1)
	require.NoError(t, err)

	result, err := svc.CompletePurchase(ctx, user.UKey, 1, intent.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7600001), result.Account.SteamID64)
	require.Equal(t, int64(1999), result.Order.TotalPriceCents)
	require.NotNil(t, result.Order.ReceiptURL)
}

func TestCompletePurchaseRejectsUnsettledPayment(t *testing.T) {
	svc, _, users, accounts, provider := newPaymentFixture(t)
	ctx := context.Background()
	user := seedUser(t, users, "buyer@example.com", domain.RoleUser)
	accounts.add(&domain.GameAccount{SteamID64: 7600001}, 1)

	intent, err := svc.CreateIntent(ctx, 1)
	require.NoError(t, err)

	provider.verifyErr = payment.ErrPaymentNotSucceeded
	_, err = svc.CompletePurchase(ctx, user.UKey, 1, intent.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "BAD_REQUEST", domainErr.Code)
}

func TestCompletePurchaseWithoutAvailableAccount(t *testing.T) {
	svc, _, users, _, _ := newPaymentFixture(t)
	ctx := context.Background()
	user := seedUser(t, users, "buyer@example.com", domain.RoleUser)

	intent, err := svc.CreateIntent(ctx, 1)
	require.NoError(t, err)

	_, err = svc.CompletePurchase(ctx, user.UKey, 1, intent.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "CONFLICT", domainErr.Code)
}

func TestGuardCodeLifecycle(t *testing.T) {
	svc, adminSvc, _, accounts, _ := newPaymentFixture(t)
	ctx := context.Background()
	accounts.add(&domain.GameAccount{SteamID64: 7600001}, 1)

	// Polling before any request exists is a not-found.
	_, _, err := svc.GuardCode(ctx, 7600001)
	require.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.RequestGuardCode(ctx, 7600001))

	_, ready, err := svc.GuardCode(ctx, 7600001)
	require.NoError(t, err)
	require.False(t, ready)

	pending, err := adminSvc.ListGuardRequests(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "7600001", pending[0].Subject)
	require.Equal(t, verification.StatusPending, pending[0].Record.Status)

	require.NoError(t, adminSvc.SetGuardCode(ctx, 7600001, "G4RD5"))

	code, ready, err := svc.GuardCode(ctx, 7600001)
	require.NoError(t, err)
	require.True(t, ready)
	require.Equal(t, "G4RD5", code)

	// Completed requests leave the operator queue.
	pending, err = adminSvc.ListGuardRequests(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestRequestGuardCodeUnknownAccount(t *testing.T) {
	svc, _, _, _, _ := newPaymentFixture(t)

	err := svc.RequestGuardCode(context.Background(), 424242)
	require.True(t, apperrors.IsNotFound(err))
}
