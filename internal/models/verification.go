package models

import "time"

// VerificationRecord — отдельная запись на каждую отправку кода.
// Записи не удаляются: история нужна для rate-limit и аудита.
type VerificationRecord struct {
	ID         int64     `json:"id"`
	AccountID  int       `json:"account_id"`
	Code       string    `json:"-"` // 4 символа, сравнение строковое
	VerifyType AuthType  `json:"verify_type"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsUsed     bool      `json:"is_used"`
	CreatedAt  time.Time `json:"created_at"`
}
