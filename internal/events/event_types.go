package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/game-rental-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered       EventType = "user_registered"
	EventCodeIssued           EventType = "code_issued"
	EventChangeRequestDecided EventType = "change_request_decided"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserUKey  string      `json:"user_ukey,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps a payload with an identifier and timestamp.
func NewEvent(eventType EventType, userUKey string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserUKey:  userUKey,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email     string `json:"email"`
	Temporary bool   `json:"temporary"`
}

// CodeIssuedPayload carries a side-channel code to deliver. The code value
// itself stays out of logs; only the delivery handler reads it.
type CodeIssuedPayload struct {
	Purpose string `json:"purpose"`
	Email   string `json:"email"`
	Code    string `json:"-"`
	Subject string `json:"subject"`
	Body    string `json:"-"`
}

// ChangeRequestDecidedPayload payload.
type ChangeRequestDecidedPayload struct {
	RequestID int64                      `json:"request_id"`
	GameID    int64                      `json:"game_id"`
	Status    domain.ChangeRequestStatus `json:"status"`
}
