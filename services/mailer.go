// services/mailer.go
package services

import (
	"fmt"
	"os"

	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers outbound email. Controllers depend on the interface so
// tests can capture messages without an SMTP server.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through the SMTP relay configured in the environment.
type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", smtpUser)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	if err := d.DialAndSend(msg); err != nil {
		return NewDependencyError("send email", err)
	}
	return nil
}

// ContactInquiryBody formats a contact-form submission for the inbox that
// receives them.
func ContactInquiryBody(name, email, phone, company, message string) string {
	body := fmt.Sprintf("New contact inquiry from %s <%s>\n", name, email)
	if phone != "" {
		body += fmt.Sprintf("Phone: %s\n", phone)
	}
	if company != "" {
		body += fmt.Sprintf("Company: %s\n", company)
	}
	body += "\n" + message + "\n"
	return body
}
