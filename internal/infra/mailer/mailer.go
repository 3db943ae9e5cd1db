// Package mailer sends rendered digests over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"daily-digest/internal/observability/metrics"
)

// Well-known submission ports that select the TLS mode.
const (
	portImplicitTLS = 465
	portSTARTTLS    = 587
)

// SMTPConfig contains configuration for the SMTP transport.
type SMTPConfig struct {
	// Host is the SMTP server hostname
	Host string

	// Port selects the TLS mode: 465 implicit TLS, 587 STARTTLS, anything
	// else plain (useful only against local relays)
	Port int

	// Username and Password authenticate against the server. An empty
	// Username skips authentication.
	Username string
	Password string

	// Timeout bounds the connection dial and is combined with the caller's
	// context
	Timeout time.Duration
}

// SMTPMailer delivers digest messages through one SMTP server.
type SMTPMailer struct {
	config      SMTPConfig
	rateLimiter *RateLimiter
}

// NewSMTPMailer creates a new SMTPMailer with the given configuration.
// Sending is rate limited to 1 message per second with a burst of 1; digest
// runs are infrequent, so anything faster indicates a scheduling mistake.
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &SMTPMailer{
		config:      config,
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// Send delivers the message, choosing implicit TLS or STARTTLS from the
// configured port. It blocks on the rate limiter first, so a canceled
// context aborts before any connection is made.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := m.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := msg.Build()
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	start := time.Now()
	if err := m.deliver(ctx, msg, body); err != nil {
		metrics.RecordDigestSent(false)
		return fmt.Errorf("deliver to %s:%d: %w", m.config.Host, m.config.Port, err)
	}
	metrics.RecordDigestSent(true)

	slog.Default().Info("digest sent",
		slog.Int("recipients", len(msg.To)),
		slog.String("subject", msg.Subject),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, msg Message, body []byte) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	dialer := &net.Dialer{Timeout: m.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	if m.config.Port == portImplicitTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: m.config.Host, MinVersion: tls.VersionTLS12})
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			slog.Default().Debug("smtp close", slog.Any("error", cerr))
		}
	}()

	if m.config.Port == portSTARTTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.config.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if m.config.Username != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}
