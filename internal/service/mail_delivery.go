package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Email is a rendered message ready for transport.
type Email struct {
	To      []string
	CC      []string
	BCC     []string
	ReplyTo string
	Subject string
	Body    string
}

// MailDelivery is the transport seam. The core never sends mail itself; it
// hands fully aggregated messages to a provider.
type MailDelivery interface {
	Deliver(ctx context.Context, mail Email) error
}

// LogMailDelivery is a provider that logs outgoing mail instead of sending
// it. Used in development and as the default when no transport is configured.
type LogMailDelivery struct {
	logger zerolog.Logger
}

// NewLogMailDelivery constructs a logging provider.
func NewLogMailDelivery(logger zerolog.Logger) *LogMailDelivery {
	return &LogMailDelivery{logger: logger.With().Str("component", "mail_delivery").Logger()}
}

// Deliver logs the mail and reports success.
func (l *LogMailDelivery) Deliver(ctx context.Context, mail Email) error {
	l.logger.Info().
		Strs("to", maskEmailAddresses(mail.To)).
		Int("cc", len(mail.CC)).
		Int("bcc", len(mail.BCC)).
		Str("subject", mail.Subject).
		Msg("mail delivered to log")
	return nil
}

func maskEmailAddresses(addresses []string) []string {
	masked := make([]string, 0, len(addresses))
	for _, address := range addresses {
		masked = append(masked, maskEmailAddress(address))
	}
	return masked
}

func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***"
	}
	local := parts[0]
	domain := parts[1]
	if len(local) <= 2 {
		local = local[:1] + "***"
	} else {
		local = local[:1] + "***" + local[len(local)-1:]
	}
	return local + "@" + domain
}
