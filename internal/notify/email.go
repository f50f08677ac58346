package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// EmailSender delivers announcements over SMTP. Configuration comes
// from SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS and SMTP_FROM. With
// no SMTP_HOST configured the sender logs the message instead of
// failing, so development environments work without a mail relay.
type EmailSender struct{}

func NewEmailSender() *EmailSender { return &EmailSender{} }

// Send delivers one plain-text email. A recipient without an email
// address is skipped, not an error.
func (s *EmailSender) Send(ctx context.Context, to Recipient, msg Message) error {
	if to.Email == "" {
		return nil
	}
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Printf("email: SMTP_HOST not set, would send to=%s subject=%q", to.Email, msg.Title)
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		from, to.Email, msg.Title, msg.Body)

	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASS"), host)
	}
	return smtp.SendMail(host+":"+port, auth, from, []string{to.Email}, []byte(body))
}
