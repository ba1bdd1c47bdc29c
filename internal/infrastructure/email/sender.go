package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"github.com/scottring/compliant-connect-sub001/internal/application/notify"
	"github.com/scottring/compliant-connect-sub001/pkg/config"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

var _ notify.Sender = (*Sender)(nil)

// Sender delivers notification emails through the Resend HTTP API, falling
// back to plain SMTP when no API key is configured. With neither configured
// every email is dropped with a warning: notification delivery is
// best-effort and must never break the calling flow.
type Sender struct {
	cfg    config.NotifyConfig
	client *http.Client
	log    *logger.Logger
}

// NewSender builds the email adapter.
func NewSender(cfg config.NotifyConfig, log *logger.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one email.
func (s *Sender) Send(ctx context.Context, e notify.Email) error {
	switch {
	case s.cfg.ResendAPIKey != "":
		return s.sendViaResend(ctx, e)
	case s.cfg.SMTPHost != "":
		return s.sendViaSMTP(e)
	default:
		s.log.Warn().Str("to", e.To).Str("subject", e.Subject).Msg("no email transport configured, dropping")
		return nil
	}
}

func (s *Sender) sendViaResend(ctx context.Context, e notify.Email) error {
	body := resendRequest{
		From:    s.cfg.FromEmail,
		To:      []string{e.To},
		Subject: e.Subject,
		HTML:    e.HTML,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendAPIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}
	return nil
}

func (s *Sender) sendViaSMTP(e notify.Email) error {
	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	msg := "From: " + s.cfg.FromEmail + "\r\n" +
		"To: " + e.To + "\r\n" +
		"Subject: " + e.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		e.HTML

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{e.To}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
