// Package mail provides the outbound email capability the notification
// dispatcher hands composed messages to: a small Sender interface plus an
// SMTP implementation. The dispatcher decides when and what to send; this
// package only carries the message.
package mail

import (
	"context"
	"fmt"

	"github.com/editorialhq/editorial-api/internal/config"
	gomail "github.com/wneessen/go-mail"
)

// Message is a fully composed outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a composed message. Implementations must be safe for
// concurrent use; the reminder batch fans out.
type Sender interface {
	// Send delivers the message, returning an error on transport failure.
	Send(ctx context.Context, msg Message) error
}

// SMTPSender implements Sender over SMTP using go-mail.
type SMTPSender struct {
	client   *gomail.Client
	fromAddr string
	fromName string
}

// NewSMTPSender creates an SMTPSender from the mail configuration.
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPSender{
		client:   client,
		fromAddr: cfg.FromAddress,
		fromName: cfg.FromName,
	}, nil
}

// Ensure SMTPSender implements the Sender interface
var _ Sender = (*SMTPSender)(nil)

// Send implements Sender.Send
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.fromAddr); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}
