// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-be/internal/pkg/config"
)

// Mailer delivers a plain-text message
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer for development
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With(slog.String("mailer", "log"))}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "email would be sent",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body))
	return nil
}

// SMTPMailer relays through a plain SMTP server
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a relay mailer. auth may be nil for an open relay.
func NewSMTPMailer(addr, from string, auth smtp.Auth) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from, auth: auth, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.from, to, subject, body,
	))
	if err := m.send(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NewMailer picks SMTP when an address is configured, otherwise the log mailer
func NewMailer(cfg *config.CheckoutConfig, logger *slog.Logger) Mailer {
	if cfg.SMTPAddr == "" {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, nil)
}

// NotificationProcessor sends order confirmations
type NotificationProcessor struct {
	mailer Mailer
	logger *slog.Logger
}

// NewNotificationProcessor creates a new notification processor
func NewNotificationProcessor(mailer Mailer, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		mailer: mailer,
		logger: logger.With(slog.String("processor", "notification")),
	}
}

// SendOrderConfirmation handles TypeOrderConfirmation
func (p *NotificationProcessor) SendOrderConfirmation(ctx context.Context, t *asynq.Task) error {
	var payload OrderConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Email == "" || payload.OrderID == "" {
		return fmt.Errorf("order confirmation missing email or order id: %w", asynq.SkipRetry)
	}

	subject := fmt.Sprintf("Your order %s is confirmed", payload.OrderID)
	if err := p.mailer.Send(ctx, payload.Email, subject, renderConfirmation(&payload)); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "order confirmation sent",
		slog.String("order_id", payload.OrderID))
	return nil
}

func renderConfirmation(p *OrderConfirmationPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", strings.TrimSpace(p.Name))
	fmt.Fprintf(&b, "Thanks for your order. We've received order %s", p.OrderID)
	if !p.PlacedAt.IsZero() {
		fmt.Fprintf(&b, " placed on %s", p.PlacedAt.Format("January 2, 2006"))
	}
	b.WriteString(".\r\n\r\n")
	fmt.Fprintf(&b, "Items: %d\r\n", p.ItemCount)
	fmt.Fprintf(&b, "Shipping: %s\r\n", p.ShippingMethod)
	fmt.Fprintf(&b, "Paid with: %s\r\n", p.MaskedCard)
	fmt.Fprintf(&b, "Total: $%s\r\n", p.Total)
	return b.String()
}
