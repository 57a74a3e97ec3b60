// Package mail holds the development mail transport.
package mail

import (
	"context"
	"log/slog"

	"github.com/policy-letter-api/internal/domain"
)

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg domain.Email) error {
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.Email)
	}
	cc := make([]string, 0, len(msg.CC))
	for _, a := range msg.CC {
		cc = append(cc, a.Email)
	}
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Name)
	}
	m.log.InfoContext(ctx, "[DEV] email",
		"to", to,
		"cc", cc,
		"subject", msg.Subject,
		"attachments", names,
		"html", msg.HTML,
	)
	return nil
}
