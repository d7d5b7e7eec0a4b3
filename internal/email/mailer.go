package email

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer is the outbound email boundary. Services depend on this interface;
// delivery details stay out of the business logic.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: Secret Santa <%s>\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		log.Printf("email: send to %s failed: %v", to, err)
		return err
	}
	return nil
}

// LogMailer is used when no SMTP relay is configured; it logs instead of
// sending so local development works without mail setup.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	log.Printf("email (dry run) to=%s subject=%q\n%s", to, subject, body)
	return nil
}
