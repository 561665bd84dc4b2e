package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// EmailService — доставка кода подтверждения по SMTP. Вызывается только
// воркером диспетчера, не из request-пути.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) *EmailService {
	return &EmailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (s *EmailService) SendCode(destination, code string, expiresAt time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", destination)
	m.SetHeader("Subject", "Your verification code")

	body := fmt.Sprintf(`
		<h3>Confirm your account</h3>
		<p>Your verification code: <strong>%s</strong></p>
		<p>The code is valid until %s.</p>
		<p>If you did not sign up, you can ignore this email.</p>
	`, code, expiresAt.Format("15:04 02.01.2006"))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
