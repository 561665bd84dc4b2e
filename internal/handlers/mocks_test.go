package handlers_test

import (
	"time"

	"authway/internal/models"
)

// memAccounts — минимальный in-memory AccountRepository для handler-тестов.
type memAccounts struct {
	byID   map[int]*models.Account
	nextID int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[int]*models.Account{}, nextID: 1}
}

func (r *memAccounts) Create(a *models.Account) error {
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now()
	cp := *a
	r.byID[a.ID] = &cp
	return nil
}

func (r *memAccounts) UpdateUsername(id int, username string) error {
	if a, ok := r.byID[id]; ok {
		a.Username = username
	}
	return nil
}

func (r *memAccounts) GetByID(id int) (*models.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memAccounts) GetByLogin(login string) (*models.Account, error) {
	for _, a := range r.byID {
		if a.Username == login ||
			(a.Email != nil && *a.Email == login) ||
			(a.Phone != nil && *a.Phone == login) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAccounts) ExistsByContact(identifier string) (bool, error) {
	a, err := r.GetByLogin(identifier)
	return a != nil, err
}

func (r *memAccounts) UpdateStatus(id int, status models.AuthStatus) error {
	if a, ok := r.byID[id]; ok {
		a.AuthStatus = status
	}
	return nil
}

func (r *memAccounts) UpdateProfile(account *models.Account) error {
	if a, ok := r.byID[account.ID]; ok {
		*a = *account
	}
	return nil
}

func (r *memAccounts) SetProfilePicture(id int, ref string, status models.AuthStatus) error {
	if a, ok := r.byID[id]; ok {
		a.ProfilePicture = &ref
		a.AuthStatus = status
	}
	return nil
}

func (r *memAccounts) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	if a, ok := r.byID[id]; ok {
		a.RefreshToken = &token
		a.RefreshExpiresAt = &expiresAt
		a.RefreshRevoked = false
	}
	return nil
}

func (r *memAccounts) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Account, error) {
	for _, a := range r.byID {
		if a.RefreshToken != nil && *a.RefreshToken == oldToken && !a.RefreshRevoked {
			a.RefreshToken = &newToken
			a.RefreshExpiresAt = &newExpiresAt
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAccounts) ClearRefresh(id int) error {
	if a, ok := r.byID[id]; ok {
		a.RefreshToken = nil
		a.RefreshExpiresAt = nil
		a.RefreshRevoked = true
	}
	return nil
}

func (r *memAccounts) GetByRefreshToken(token string) (*models.Account, error) {
	for _, a := range r.byID {
		if a.RefreshToken != nil && *a.RefreshToken == token {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// memVerifications — минимальный in-memory VerificationRepository.
type memVerifications struct {
	records  []*models.VerificationRecord
	nextID   int64
	accounts *memAccounts
}

func newMemVerifications(accounts *memAccounts) *memVerifications {
	return &memVerifications{nextID: 1, accounts: accounts}
}

func (r *memVerifications) Create(rec *models.VerificationRecord) error {
	rec.ID = r.nextID
	r.nextID++
	rec.CreatedAt = time.Now()
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *memVerifications) CreateIfUnderLimit(rec *models.VerificationRecord, since time.Time, maxBefore int) (bool, error) {
	cnt, _ := r.CountSince(rec.AccountID, since)
	if cnt > maxBefore {
		return false, nil
	}
	return true, r.Create(rec)
}

func (r *memVerifications) GetLatestUnusedByCode(accountID int, code string) (*models.VerificationRecord, error) {
	for i := len(r.records) - 1; i >= 0; i-- {
		v := r.records[i]
		if v.AccountID == accountID && v.Code == code && !v.IsUsed {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memVerifications) CountSince(accountID int, since time.Time) (int, error) {
	cnt := 0
	for _, v := range r.records {
		if v.AccountID == accountID && !v.CreatedAt.Before(since) {
			cnt++
		}
	}
	return cnt, nil
}

func (r *memVerifications) MarkUsedAndAdvance(recordID int64, accountID int, status models.AuthStatus) error {
	for _, v := range r.records {
		if v.ID == recordID {
			v.IsUsed = true
		}
	}
	return r.accounts.UpdateStatus(accountID, status)
}
