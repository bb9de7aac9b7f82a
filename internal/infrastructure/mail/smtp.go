// Package mail sends assistant email over SMTP with STARTTLS.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// SendFunc matches smtp.SendMail so tests can capture messages.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer implements ports.Mailer.
type SMTPMailer struct {
	server   string
	port     int
	sender   string
	name     string
	password string
	send     SendFunc
	now      func() time.Time
}

// NewSMTPMailer builds a mailer from config. The password comes from the
// environment variable named in the config.
func NewSMTPMailer(cfg domain.Config) *SMTPMailer {
	return &SMTPMailer{
		server:   cfg.Email.SMTPServer,
		port:     cfg.GetSMTPPort(),
		sender:   cfg.Email.SenderEmail,
		name:     cfg.Email.SenderName,
		password: cfg.GetSMTPPassword(),
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

// WithSendFunc swaps the transport.
func (m *SMTPMailer) WithSendFunc(fn SendFunc) *SMTPMailer {
	m.send = fn
	return m
}

// Configured reports whether server, sender and password are all present.
func (m *SMTPMailer) Configured() bool {
	return m.server != "" && m.sender != "" && m.password != ""
}

// Send delivers one plain-text message. smtp.SendMail upgrades with STARTTLS
// when the server offers it.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if !m.Configured() {
		return domain.ErrNotConfigured
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.server, strconv.Itoa(m.port))
	auth := smtp.PlainAuth("", m.sender, m.password, m.server)
	msg := m.compose(to, subject, body)

	done := make(chan error, 1)
	go func() { done <- m.send(addr, auth, m.sender, []string{to}, msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SMTPMailer) compose(to, subject, body string) []byte {
	from := (&mail.Address{Name: m.name, Address: m.sender}).String()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return buf.Bytes()
}

var _ ports.Mailer = (*SMTPMailer)(nil)
