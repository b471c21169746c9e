// Package notify delivers operator notifications for pipeline failures
// and batch sweep summaries.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/kart-io/logger"
)

// Notifier delivers a notification to the pipeline operator.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// LogNotifier writes notifications to the structured log. It is the
// default when no mail transport is configured.
type LogNotifier struct{}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the notification at warn level so it survives log filtering
// in production configurations.
func (n *LogNotifier) Notify(_ context.Context, subject, body string) error {
	logger.Warnw("operator notification", "subject", subject, "body", body)
	return nil
}

// SMTPConfig holds the mail transport settings for SMTPNotifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// SMTPNotifier sends notifications as plain-text mail.
type SMTPNotifier struct {
	config SMTPConfig
	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates a mail-backed notifier.
func NewSMTPNotifier(config SMTPConfig) (*SMTPNotifier, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if config.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if len(config.To) == 0 {
		return nil, fmt.Errorf("at least one smtp recipient is required")
	}
	if config.Port == 0 {
		config.Port = 25
	}

	return &SMTPNotifier{
		config: config,
		send:   smtp.SendMail,
	}, nil
}

// Notify sends the notification to all configured recipients.
func (n *SMTPNotifier) Notify(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	msg := n.buildMessage(subject, body)
	if err := n.send(addr, auth, n.config.From, n.config.To, msg); err != nil {
		logger.Errorw("failed to send notification mail",
			"host", n.config.Host,
			"recipients", len(n.config.To),
			"error", err,
		)
		return fmt.Errorf("send notification mail: %w", err)
	}

	return nil
}

func (n *SMTPNotifier) buildMessage(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.config.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
