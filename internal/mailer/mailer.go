// Package mailer sends outbound email. Handlers depend on the Sender
// interface so the SMTP transport can be swapped out in tests.
package mailer

import (
	"fmt"
	"net/smtp"
)

// Sender delivers a plain-text email to a single recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender implements Sender over an authenticated SMTP relay.
type SMTPSender struct {
	host string
	port string
	from string
	auth smtp.Auth
}

// NewSMTPSender creates an SMTPSender for the given relay and account
func NewSMTPSender(host, port, username, password string) *SMTPSender {
	return &SMTPSender{
		host: host,
		port: port,
		from: username,
		auth: smtp.PlainAuth("", username, password, host),
	}
}

// Send delivers the message via the configured relay
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	if err := smtp.SendMail(s.host+":"+s.port, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
