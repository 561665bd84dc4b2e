package services

import (
	"fmt"
	"time"

	"authway/internal/utils"
)

// SMSService — телефонная нога диспетчера поверх Mobizon-клиента.
type SMSService struct {
	Client *utils.Client
}

func NewSMSService(client *utils.Client) *SMSService {
	return &SMSService{Client: client}
}

func (s *SMSService) SendCode(destination, code string, expiresAt time.Time) error {
	text := fmt.Sprintf("Verification code: %s (valid %d min)", code, int(time.Until(expiresAt).Minutes()))
	if _, err := s.Client.SendSMS(destination, text); err != nil {
		return fmt.Errorf("mobizon error: %w", err)
	}
	return nil
}
