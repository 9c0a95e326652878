package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client), mr
}

func TestIssueAndConsume(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Issue(ctx, NamespaceLoginMFA, "UKEY12345678", "123456", "", 5*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	payload, err := store.Consume(ctx, NamespaceLoginMFA, "UKEY12345678", "123456")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if payload != "" {
		t.Fatalf("unexpected payload %q", payload)
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Issue(ctx, NamespacePasswordChange, "UKEY12345678", "123456", "new-hash", 5*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := store.Consume(ctx, NamespacePasswordChange, "UKEY12345678", "123456"); err != nil {
		t.Fatalf("first Consume failed: %v", err)
	}
	if _, err := store.Consume(ctx, NamespacePasswordChange, "UKEY12345678", "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Consume should fail with ErrNotFound, got %v", err)
	}
}

func TestConsumeWrongCodeKeepsRecord(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Issue(ctx, NamespaceEmailChange, "UKEY12345678", "123456", "new@example.com", 5*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := store.Consume(ctx, NamespaceEmailChange, "UKEY12345678", "000000"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}

	// A wrong guess must not burn the valid code.
	payload, err := store.Consume(ctx, NamespaceEmailChange, "UKEY12345678", "123456")
	if err != nil {
		t.Fatalf("Consume after mismatch failed: %v", err)
	}
	if payload != "new@example.com" {
		t.Fatalf("unexpected payload %q", payload)
	}
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Issue(ctx, NamespaceMFAEnable, "UKEY12345678", "111111", "", 5*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := store.Issue(ctx, NamespaceMFAEnable, "UKEY12345678", "222222", "", 5*time.Minute); err != nil {
		t.Fatalf("re-Issue failed: %v", err)
	}

	if _, err := store.Consume(ctx, NamespaceMFAEnable, "UKEY12345678", "111111"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("old code should no longer match, got %v", err)
	}
	if _, err := store.Consume(ctx, NamespaceMFAEnable, "UKEY12345678", "222222"); err != nil {
		t.Fatalf("new code rejected: %v", err)
	}
}

func TestConsumeExpiredCode(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Issue(ctx, NamespaceTempConvert, "UKEY12345678", "123456", "", 3*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	mr.FastForward(3*time.Minute + time.Second)

	if _, err := store.Consume(ctx, NamespaceTempConvert, "UKEY12345678", "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestNamespacesDoNotCollide(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Issue(ctx, NamespaceMFAEnable, "UKEY12345678", "123456", "", 5*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := store.Consume(ctx, NamespaceMFADisable, "UKEY12345678", "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("code leaked across namespaces: %v", err)
	}
}

func TestGuardCodeLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Renter opens a guard-code request; no code exists yet.
	if err := store.Issue(ctx, NamespaceGuardCode, "76561198000001", "", "account login", 3*time.Hour); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	pending, err := store.ScanPending(ctx, NamespaceGuardCode, 50)
	if err != nil {
		t.Fatalf("ScanPending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Subject != "76561198000001" {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	// Operator fills the code in.
	if err := store.Complete(ctx, NamespaceGuardCode, "76561198000001", "GUARD", 3*time.Hour); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	record, err := store.Peek(ctx, NamespaceGuardCode, "76561198000001")
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if record.Status != StatusCompleted || record.Code != "GUARD" {
		t.Fatalf("unexpected record after completion: %+v", record)
	}

	// Completed requests disappear from the review queue.
	pending, err = store.ScanPending(ctx, NamespaceGuardCode, 50)
	if err != nil {
		t.Fatalf("ScanPending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("completed request still listed: %+v", pending)
	}
}

func TestCompleteWithoutRequestFails(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Complete(context.Background(), NamespaceGuardCode, "76561198000002", "GUARD", 3*time.Hour)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScanPendingHonorsLimit(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, subject := range []string{"a", "b", "c", "d", "e"} {
		if err := store.Issue(ctx, NamespaceGuardCode, subject, "", "", time.Hour); err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
	}

	pending, err := store.ScanPending(ctx, NamespaceGuardCode, 3)
	if err != nil {
		t.Fatalf("ScanPending failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("limit not honored: got %d records", len(pending))
	}
}

func TestGeneratedCodeShapes(t *testing.T) {
	if got := GenerateCode(); len(got) != 6 {
		t.Errorf("GenerateCode length = %d", len(got))
	}
	if got := GenerateUKey(); len(got) != 12 {
		t.Errorf("GenerateUKey length = %d", len(got))
	}
	if got := GenerateResetToken(); len(got) != 256 {
		t.Errorf("GenerateResetToken length = %d", len(got))
	}
	if GenerateUKey() == GenerateUKey() {
		t.Error("consecutive ukeys collided")
	}
}
