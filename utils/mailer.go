package utils

import (
	"log"

	"gopkg.in/gomail.v2"

	"github.com/kartify/kartify-backend-go/config"
)

// Mailer sends outbound email. Handlers depend on the interface so tests and
// SMTP-less environments can swap the implementation.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}

// LogMailer logs instead of sending. Used when SMTP is unconfigured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	log.Printf("mail not configured, skipping send to=%s subject=%q", to, subject)
	return nil
}

// MailerFromEnv picks the SMTP mailer when SMTP_HOST is set, the log mailer
// otherwise.
func MailerFromEnv() Mailer {
	host := config.GetEnv("SMTP_HOST", "")
	if host == "" {
		return LogMailer{}
	}

	return NewSMTPMailer(
		host,
		config.GetEnvInt("SMTP_PORT", 587),
		config.GetEnv("SMTP_USER", ""),
		config.GetEnv("SMTP_PASS", ""),
		config.GetEnv("SMTP_FROM", "noreply@kartify.io"),
	)
}
