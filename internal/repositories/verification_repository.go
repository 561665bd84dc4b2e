package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"authway/internal/models"
)

type VerificationRepository interface {
	Create(rec *models.VerificationRecord) error
	CreateIfUnderLimit(rec *models.VerificationRecord, since time.Time, maxBefore int) (bool, error)
	GetLatestUnusedByCode(accountID int, code string) (*models.VerificationRecord, error)
	CountSince(accountID int, since time.Time) (int, error)
	MarkUsedAndAdvance(recordID int64, accountID int, status models.AuthStatus) error
}

type verificationRepository struct {
	DB *sql.DB
}

func NewVerificationRepository(db *sql.DB) VerificationRepository {
	return &verificationRepository{DB: db}
}

// Create — каждая выдача кода это новая строка, старые не трогаем.
func (r *verificationRepository) Create(rec *models.VerificationRecord) error {
	const q = `
		INSERT INTO verification_records (account_id, code, verify_type, expires_at, is_used)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q, rec.AccountID, rec.Code, rec.VerifyType, rec.ExpiresAt).
		Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return fmt.Errorf("verification create: %w", err)
	}
	return nil
}

// CreateIfUnderLimit — подсчёт окна и вставка под блокировкой строки аккаунта,
// иначе два одновременных resend оба проходят проверку лимита.
// Возвращает false (без вставки), если записей за окно уже больше maxBefore.
func (r *verificationRepository) CreateIfUnderLimit(rec *models.VerificationRecord, since time.Time, maxBefore int) (bool, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return false, fmt.Errorf("verification limit tx: %w", err)
	}
	defer tx.Rollback()

	var locked int
	if err := tx.QueryRow(`SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, rec.AccountID).Scan(&locked); err != nil {
		return false, fmt.Errorf("verification lock account: %w", err)
	}

	var cnt int
	const countQ = `
		SELECT COUNT(*)
		FROM verification_records
		WHERE account_id = $1 AND created_at >= $2
	`
	if err := tx.QueryRow(countQ, rec.AccountID, since).Scan(&cnt); err != nil {
		return false, fmt.Errorf("verification count recent: %w", err)
	}
	if cnt > maxBefore {
		return false, nil
	}

	const insQ = `
		INSERT INTO verification_records (account_id, code, verify_type, expires_at, is_used)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(insQ, rec.AccountID, rec.Code, rec.VerifyType, rec.ExpiresAt).
		Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return false, fmt.Errorf("verification insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("verification limit commit: %w", err)
	}
	return true, nil
}

// GetLatestUnusedByCode — последняя неиспользованная запись с точным совпадением кода.
func (r *verificationRepository) GetLatestUnusedByCode(accountID int, code string) (*models.VerificationRecord, error) {
	const q = `
		SELECT id, account_id, code, verify_type, expires_at, is_used, created_at
		FROM verification_records
		WHERE account_id = $1 AND code = $2 AND is_used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.DB.QueryRow(q, accountID, code)
	var v models.VerificationRecord
	if err := row.Scan(&v.ID, &v.AccountID, &v.Code, &v.VerifyType, &v.ExpiresAt, &v.IsUsed, &v.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("verification latest: %w", err)
	}
	return &v, nil
}

func (r *verificationRepository) CountSince(accountID int, since time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM verification_records
		WHERE account_id = $1 AND created_at >= $2
	`
	var c int
	if err := r.DB.QueryRow(q, accountID, since).Scan(&c); err != nil {
		return 0, fmt.Errorf("verification count: %w", err)
	}
	return c, nil
}

// MarkUsedAndAdvance — расход кода и смена статуса аккаунта в одной транзакции:
// аккаунт не должен остаться с погашенным кодом и старым статусом.
func (r *verificationRepository) MarkUsedAndAdvance(recordID int64, accountID int, status models.AuthStatus) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("verification consume tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE verification_records SET is_used=TRUE WHERE id=$1`, recordID); err != nil {
		return fmt.Errorf("verification mark used: %w", err)
	}
	if _, err := tx.Exec(`UPDATE accounts SET auth_status=$1 WHERE id=$2`, status, accountID); err != nil {
		return fmt.Errorf("verification advance status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("verification consume commit: %w", err)
	}
	return nil
}
