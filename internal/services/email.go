package services

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/dimitrije/capsule-api/internal/config"
)

type EmailService struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg, send: smtp.SendMail}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send is a no-op when SMTP is not configured.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return ErrInvalidInput
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	return s.send(addr, auth, s.cfg.From, []string{to}, s.buildMessage(to, subject, body))
}

func (s *EmailService) buildMessage(to, subject, body string) []byte {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)
	return []byte(msg)
}

// SendCapsuleInvite mails an invite code for a pending capsule.
func (s *EmailService) SendCapsuleInvite(to, inviterName, code string) error {
	subject := "You've been invited to share a capsule"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Capsule Invitation</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has invited you to share a capsule with them.</p>
			<p>Join with this invite code: <strong>%s</strong></p>
			<p>The code works once. After someone joins, it stops working.</p>
		</body>
		</html>
	`, html.EscapeString(inviterName), html.EscapeString(code))

	return s.Send(to, subject, body)
}
