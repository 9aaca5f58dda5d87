package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/metrics"
)

type EmailConfig struct {
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	// To defaults to SMTPUser.
	To string
}

// Sender abstracts the SMTP transport.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailNotifier struct {
	cfg    EmailConfig
	sender Sender
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.To == "" {
		cfg.To = cfg.SMTPUser
	}
	n := &EmailNotifier{cfg: cfg}
	if n.Enabled() {
		n.sender = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		logging.Warn().Msg("SMTP user or password not configured, alert emails are disabled")
	}
	return n
}

// WithSender swaps the transport, mainly for tests.
func (n *EmailNotifier) WithSender(s Sender) *EmailNotifier {
	n.sender = s
	return n
}

func (n *EmailNotifier) Enabled() bool {
	return n.cfg.SMTPUser != "" && n.cfg.SMTPPass != ""
}

func (n *EmailNotifier) SendAlert(ctx context.Context, alertType, message string) Result {
	subject := fmt.Sprintf("[Smart Parking] Alert: %s", alertType)
	res := Result{
		To:      n.cfg.To,
		Subject: subject,
		Body:    message,
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		metrics.EmailNotifications.WithLabelValues("failed").Inc()
		return res
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), senderDomain(n.cfg.SMTPUser))

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.cfg.SMTPUser, "Smart Parking")
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", message)

	if err := n.send(ctx, m); err != nil {
		res.Err = fmt.Errorf("send email: %w", err)
		metrics.EmailNotifications.WithLabelValues("failed").Inc()
		logging.Error().Err(err).Str("alert_type", alertType).Str("to", n.cfg.To).Msg("alert email failed")
		return res
	}

	res.Success = true
	res.MessageID = messageID
	metrics.EmailNotifications.WithLabelValues("success").Inc()
	logging.Info().Str("alert_type", alertType).Str("to", n.cfg.To).Str("message_id", messageID).Msg("alert email sent")
	return res
}

// send runs the SMTP exchange and gives up when ctx ends. gomail has no context
// support, so an abandoned exchange finishes in the background.
func (n *EmailNotifier) send(ctx context.Context, m *gomail.Message) error {
	done := make(chan error, 1)
	go func() { done <- n.sender.DialAndSend(m) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func senderDomain(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "smart-parking.local"
}
