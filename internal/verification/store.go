package verification

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace isolates one verification purpose's keys from every other
// purpose sharing the cache. Each namespace has exactly one purpose.
type Namespace string

const (
	// NamespaceLoginMFA holds the second-factor login challenge codes.
	NamespaceLoginMFA Namespace = "auth_2fa_request"
	// NamespaceMFAEnable and NamespaceMFADisable hold MFA toggle codes.
	NamespaceMFAEnable  Namespace = "2fa_setup_request"
	NamespaceMFADisable Namespace = "2fa_disable_request"
	// NamespacePasswordChange holds the new password hash pending confirmation.
	NamespacePasswordChange Namespace = "password_change_request"
	// NamespaceEmailChange holds the new email pending confirmation.
	NamespaceEmailChange Namespace = "email_change_request"
	// NamespacePasswordReset is keyed by the opaque reset token itself;
	// the payload is the account email.
	NamespacePasswordReset Namespace = "password_reset_request"
	// NamespaceTempConvert holds temporary-account conversion codes.
	NamespaceTempConvert Namespace = "temp_user_code_request"
	// NamespaceGuardCode holds operator-assigned login guard codes with an
	// explicit status instead of delete-on-use.
	NamespaceGuardCode Namespace = "guard_code_request"
)

// Status tracks the lifecycle of a record. Generated codes are issued
// PENDING and deleted on consumption; guard codes flip to COMPLETED once an
// operator fills them in and then expire by TTL.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// Record is the stored value for one outstanding code. Keeping the code
// inside the value (rather than in the key) leaves exactly one outstanding
// record per subject and namespace, so re-issuing always invalidates the
// previous code.
type Record struct {
	Code        string    `json:"code"`
	Payload     string    `json:"payload"`
	Status      Status    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
}

// Pending pairs a record with the subject it was issued for.
type Pending struct {
	Subject string
	Record  Record
}

var (
	// ErrNotFound means no outstanding record exists: never issued, expired,
	// or already consumed.
	ErrNotFound = errors.New("verification code not found")
	// ErrCodeMismatch means a record exists but the supplied code is wrong.
	// The record stays in place so a typo does not burn a valid code.
	ErrCodeMismatch = errors.New("verification code mismatch")
)

// consumeLua atomically loads, compares, and deletes a pending record.
// Doing the compare-and-delete inside Redis closes the window where two
// concurrent confirmations could both read the same code before either
// deletes it.
// KEYS[1] = record key, ARGV[1] = supplied code.
var consumeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end
local rec = cjson.decode(data)
if rec.status ~= 'PENDING' then
  return {err='not_found'}
end
if rec.code ~= ARGV[1] then
  return {err='mismatch'}
end
redis.call('DEL', KEYS[1])
return data
`)

// Store keeps single-use, time-boxed verification codes in Redis, keyed
// "<namespace>:<subject>" with native per-key expiry.
type Store struct {
	client redis.UniversalClient
}

// NewStore wraps a shared Redis client.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) key(ns Namespace, subject string) string {
	return string(ns) + ":" + subject
}

// Issue writes a pending record under the subject's key with the given TTL.
// Overwrite semantics: any prior outstanding code for the same subject and
// namespace is invalidated.
func (s *Store) Issue(ctx context.Context, ns Namespace, subject, code, payload string, ttl time.Duration) error {
	record := Record{
		Code:        code,
		Payload:     payload,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(ns, subject), data, ttl).Err(); err != nil {
		return fmt.Errorf("issue %s code: %w", ns, err)
	}
	return nil
}

// Consume validates the supplied code against the outstanding record and
// deletes it in the same atomic step, returning the stored payload. A wrong
// code returns ErrCodeMismatch and leaves the record untouched; a missing,
// expired, or already-consumed record returns ErrNotFound.
func (s *Store) Consume(ctx context.Context, ns Namespace, subject, code string) (string, error) {
	result, err := consumeLua.Run(ctx, s.client, []string{s.key(ns, subject)}, code).Result()
	if err != nil {
		switch err.Error() {
		case "not_found":
			return "", ErrNotFound
		case "mismatch":
			return "", ErrCodeMismatch
		default:
			return "", fmt.Errorf("consume %s code: %w", ns, err)
		}
	}

	data, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("consume %s code: unexpected script result", ns)
	}
	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return "", fmt.Errorf("consume %s code: %w", ns, err)
	}

	// Lua string comparison is not constant-time; re-check here so the
	// equality the caller relies on is.
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return "", ErrCodeMismatch
	}
	return record.Payload, nil
}

// Peek reads the outstanding record without consuming it.
func (s *Store) Peek(ctx context.Context, ns Namespace, subject string) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(ns, subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("peek %s code: %w", ns, err)
	}
	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("peek %s code: %w", ns, err)
	}
	return &record, nil
}

// Complete overwrites an existing record with the operator-assigned code
// and a COMPLETED status, resetting the TTL. Fails with ErrNotFound when no
// request is outstanding for the subject.
func (s *Store) Complete(ctx context.Context, ns Namespace, subject, code string, ttl time.Duration) error {
	record := Record{
		Code:        code,
		Status:      StatusCompleted,
		RequestedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	set, err := s.client.SetXX(ctx, s.key(ns, subject), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("complete %s code: %w", ns, err)
	}
	if !set {
		return ErrNotFound
	}
	return nil
}

// ScanPending enumerates outstanding records in the namespace for operator
// review, skipping completed ones, bounded by limit. Each call starts a
// fresh cursor; there is no pagination across calls.
func (s *Store) ScanPending(ctx context.Context, ns Namespace, limit int) ([]Pending, error) {
	prefix := string(ns) + ":"
	pending := make([]Pending, 0, limit)

	iter := s.client.Scan(ctx, 0, prefix+"*", int64(limit)).Iterator()
	for iter.Next(ctx) {
		if len(pending) >= limit {
			break
		}
		key := iter.Val()

		data, err := s.client.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and read
			}
			return nil, fmt.Errorf("scan %s codes: %w", ns, err)
		}

		var record Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			continue
		}
		if record.Status == StatusCompleted {
			continue
		}

		pending = append(pending, Pending{
			Subject: strings.TrimPrefix(key, prefix),
			Record:  record,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s codes: %w", ns, err)
	}
	return pending, nil
}
