// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"

	"github.com/dalemusser/clubsphere/internal/domain/models"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Email is one outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers an Email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// Config configures SendGrid delivery.
type Config struct {
	APIKey   string
	From     string
	FromName string
	// Host overrides the API host. Tests point it at httptest.
	Host string
}

// SendGrid sends mail through the SendGrid v3 API.
type SendGrid struct {
	cfg Config
}

func NewSendGrid(cfg Config) *SendGrid {
	if cfg.Host == "" {
		cfg.Host = "https://api.sendgrid.com"
	}
	return &SendGrid{cfg: cfg}
}

func (s *SendGrid) Send(ctx context.Context, e Email) error {
	from := mail.NewEmail(s.cfg.FromName, s.cfg.From)
	to := mail.NewEmail("", e.To)
	message := mail.NewSingleEmail(from, e.Subject, to, e.TextBody, e.HTMLBody)

	req := sendgrid.GetRequest(s.cfg.APIKey, "/v3/mail/send", s.cfg.Host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Nop drops every message. Used when no API key is configured.
type Nop struct{}

func (Nop) Send(context.Context, Email) error { return nil }

// Receipts sends membership receipts after a reconciled payment.
type Receipts struct {
	Sender       Sender
	SiteName     string
	DashboardURL string
	Log          *zap.Logger
}

// MembershipActivated mails p.CustomerEmail a receipt for p.
func (r Receipts) MembershipActivated(ctx context.Context, p models.Payment) error {
	e := BuildReceiptEmail(ReceiptEmailData{
		SiteName:      r.SiteName,
		ClubName:      p.ClubName,
		Amount:        p.Amount,
		Currency:      p.Currency,
		TransactionID: p.TransactionID,
		PaidAt:        p.PaidAt,
		DashboardURL:  r.DashboardURL,
	})
	e.To = p.CustomerEmail
	if err := r.Sender.Send(ctx, e); err != nil {
		return err
	}
	if r.Log != nil {
		r.Log.Info("receipt sent",
			zap.String("to", p.CustomerEmail),
			zap.String("transaction_id", p.TransactionID))
	}
	return nil
}
