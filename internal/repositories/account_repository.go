package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"authway/internal/models"
)

type AccountRepository interface {
	Create(account *models.Account) error
	UpdateUsername(id int, username string) error
	GetByID(id int) (*models.Account, error)
	GetByLogin(login string) (*models.Account, error)
	ExistsByContact(identifier string) (bool, error)
	UpdateStatus(id int, status models.AuthStatus) error
	UpdateProfile(account *models.Account) error
	SetProfilePicture(id int, ref string, status models.AuthStatus) error

	// refresh helpers
	UpdateRefresh(id int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Account, error)
	ClearRefresh(id int) error
	GetByRefreshToken(token string) (*models.Account, error)
}

type accountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{DB: db}
}

const accountColumns = `
	id, username, email, phone_number,
	first_name, last_name, birth_date, gender, profile_picture,
	password_hash, auth_type, auth_status,
	is_premium, is_active, is_staff, is_superuser,
	refresh_token, refresh_expires_at, refresh_revoked,
	created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var (
		username  sql.NullString
		email     sql.NullString
		phone     sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		birthDate sql.NullTime
		gender    sql.NullString
		picture   sql.NullString
		passHash  sql.NullString
		rt        sql.NullString
		rte       sql.NullTime
		rr        sql.NullBool
	)
	err := row.Scan(
		&a.ID, &username, &email, &phone,
		&firstName, &lastName, &birthDate, &gender, &picture,
		&passHash, &a.AuthType, &a.AuthStatus,
		&a.IsPremium, &a.IsActive, &a.IsStaff, &a.IsSuperuser,
		&rt, &rte, &rr,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if username.Valid {
		a.Username = username.String
	}
	if email.Valid {
		s := email.String
		a.Email = &s
	}
	if phone.Valid {
		s := phone.String
		a.Phone = &s
	}
	if firstName.Valid {
		s := firstName.String
		a.FirstName = &s
	}
	if lastName.Valid {
		s := lastName.String
		a.LastName = &s
	}
	if birthDate.Valid {
		t := birthDate.Time
		a.BirthDate = &t
	}
	if gender.Valid {
		s := gender.String
		a.Gender = &s
	}
	if picture.Valid {
		s := picture.String
		a.ProfilePicture = &s
	}
	if passHash.Valid {
		a.PasswordHash = passHash.String
	}
	if rt.Valid {
		s := rt.String
		a.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		a.RefreshExpiresAt = &t
	}
	if rr.Valid {
		a.RefreshRevoked = rr.Bool
	}
	return a, nil
}

func (r *accountRepository) Create(account *models.Account) error {
	const q = `
		INSERT INTO accounts (
			email, phone_number, auth_type, auth_status,
			is_premium, is_active, is_staff, is_superuser
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q,
		account.Email,
		account.Phone,
		account.AuthType,
		account.AuthStatus,
		account.IsPremium,
		account.IsActive,
		account.IsStaff,
		account.IsSuperuser,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return fmt.Errorf("account create: %w", err)
	}
	return nil
}

func (r *accountRepository) UpdateUsername(id int, username string) error {
	_, err := r.DB.Exec(`UPDATE accounts SET username=$1 WHERE id=$2`, username, id)
	return err
}

func (r *accountRepository) GetByID(id int) (*models.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.DB.QueryRow(q, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("account by id: %w", err)
	}
	return a, nil
}

// GetByLogin — username имеет приоритет над email, email над телефоном.
func (r *accountRepository) GetByLogin(login string) (*models.Account, error) {
	q := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE username = $1 OR email = $1 OR phone_number = $1
		ORDER BY (username = $1) DESC, (email = $1) DESC, (phone_number = $1) DESC
		LIMIT 1
	`
	a, err := scanAccount(r.DB.QueryRow(q, login))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("account by login: %w", err)
	}
	return a, nil
}

func (r *accountRepository) ExistsByContact(identifier string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1 OR phone_number = $1)`
	var exists bool
	if err := r.DB.QueryRow(q, identifier).Scan(&exists); err != nil {
		return false, fmt.Errorf("account exists: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) UpdateStatus(id int, status models.AuthStatus) error {
	_, err := r.DB.Exec(`UPDATE accounts SET auth_status=$1 WHERE id=$2`, status, id)
	return err
}

func (r *accountRepository) UpdateProfile(account *models.Account) error {
	const q = `
		UPDATE accounts
		SET
			username=$1,
			password_hash=$2,
			first_name=$3,
			last_name=$4,
			birth_date=$5,
			gender=$6,
			auth_status=$7
		WHERE id=$8
	`
	_, err := r.DB.Exec(q,
		account.Username,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.BirthDate,
		account.Gender,
		account.AuthStatus,
		account.ID,
	)
	return err
}

// SetProfilePicture — ссылка на файл и статус пишутся одним UPDATE,
// чтобы переход Done→Finished не разъехался с самой картинкой.
func (r *accountRepository) SetProfilePicture(id int, ref string, status models.AuthStatus) error {
	_, err := r.DB.Exec(`
		UPDATE accounts
		SET profile_picture=$1, auth_status=$2
		WHERE id=$3
	`, ref, status, id)
	return err
}

// ===== refresh helpers =====

func (r *accountRepository) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE accounts
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE id=$3
	`
	_, err := r.DB.Exec(q, token, expiresAt, id)
	return err
}

func (r *accountRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Account, error) {
	q := `
		UPDATE accounts
		SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=FALSE
		WHERE refresh_token=$3 AND refresh_revoked=FALSE
		RETURNING ` + accountColumns
	a, err := scanAccount(r.DB.QueryRow(q, newToken, newExpiresAt, oldToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("rotate refresh: %w", err)
	}
	return a, nil
}

func (r *accountRepository) ClearRefresh(id int) error {
	_, err := r.DB.Exec(`
		UPDATE accounts
		SET refresh_token=NULL, refresh_expires_at=NULL, refresh_revoked=TRUE
		WHERE id=$1
	`, id)
	return err
}

func (r *accountRepository) GetByRefreshToken(token string) (*models.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE refresh_token = $1`
	a, err := scanAccount(r.DB.QueryRow(q, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("account by refresh token: %w", err)
	}
	return a, nil
}
