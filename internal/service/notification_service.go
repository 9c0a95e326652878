package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/game-rental-service/internal/email"
	"github.com/spec-kit/game-rental-service/internal/events"
)

// NotificationService delivers side-channel mail for domain events so the
// request path never blocks on SMTP.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     email.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender email.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventCodeIssued, n.handleCodeIssued)
	n.dispatcher.Subscribe(events.EventChangeRequestDecided, n.handleChangeRequestDecided)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("ukey", event.UserUKey))
	return nil
}

func (n *NotificationService) handleCodeIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CodeIssuedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("CodeIssued",
		zap.String("ukey", event.UserUKey),
		zap.String("purpose", payload.Purpose))

	if err := n.sender.Send(payload.Subject, payload.Body, []string{payload.Email}); err != nil {
		n.logger.Error("failed to deliver code email",
			zap.String("purpose", payload.Purpose), zap.Error(err))
		return err
	}
	return nil
}

func (n *NotificationService) handleChangeRequestDecided(ctx context.Context, event events.Event) error {
	n.logger.Info("ChangeRequestDecided", zap.Any("payload", event.Payload))
	return nil
}
