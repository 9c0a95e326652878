package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/game-rental-service/internal/config"
)

// Sender delivers side-channel messages. Delivery is fire-and-forget from
// the auth core's perspective; failures surface as generic server errors.
type Sender interface {
	Send(subject, body string, to []string) error
}

// SMTPSender delivers mail over authenticated SMTP with STARTTLS.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender builds a sender from config.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers a plain-text message.
func (s *SMTPSender) Send(subject, body string, to []string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(addr, auth, s.cfg.From, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogSender logs instead of delivering; used when SMTP is not configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a logging sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message body at debug level.
func (s *LogSender) Send(subject, body string, to []string) error {
	s.logger.Debug("email suppressed (smtp not configured)",
		zap.String("subject", subject),
		zap.Strings("to", to),
		zap.String("body", body),
	)
	return nil
}

// NewSender picks SMTP when a host is configured, otherwise the log sender.
func NewSender(cfg config.SMTPConfig, logger *zap.Logger) Sender {
	if cfg.Host == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg)
}
