package services

import (
	"sort"
	"time"

	"authway/internal/models"
)

// fakeAccountRepo — in-memory реализация AccountRepository для тестов.
type fakeAccountRepo struct {
	accounts map[int]*models.Account
	nextID   int
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[int]*models.Account{}, nextID: 1}
}

func (r *fakeAccountRepo) Create(a *models.Account) error {
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) UpdateUsername(id int, username string) error {
	if a, ok := r.accounts[id]; ok {
		a.Username = username
	}
	return nil
}

func (r *fakeAccountRepo) GetByID(id int) (*models.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// приоритет: username, потом email, потом телефон
func (r *fakeAccountRepo) GetByLogin(login string) (*models.Account, error) {
	ids := make([]int, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, match := range []func(*models.Account) bool{
		func(a *models.Account) bool { return a.Username == login },
		func(a *models.Account) bool { return a.Email != nil && *a.Email == login },
		func(a *models.Account) bool { return a.Phone != nil && *a.Phone == login },
	} {
		for _, id := range ids {
			if match(r.accounts[id]) {
				cp := *r.accounts[id]
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ExistsByContact(identifier string) (bool, error) {
	for _, a := range r.accounts {
		if a.Email != nil && *a.Email == identifier {
			return true, nil
		}
		if a.Phone != nil && *a.Phone == identifier {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAccountRepo) UpdateStatus(id int, status models.AuthStatus) error {
	if a, ok := r.accounts[id]; ok {
		a.AuthStatus = status
	}
	return nil
}

func (r *fakeAccountRepo) UpdateProfile(account *models.Account) error {
	if a, ok := r.accounts[account.ID]; ok {
		a.Username = account.Username
		a.PasswordHash = account.PasswordHash
		a.FirstName = account.FirstName
		a.LastName = account.LastName
		a.BirthDate = account.BirthDate
		a.Gender = account.Gender
		a.AuthStatus = account.AuthStatus
	}
	return nil
}

func (r *fakeAccountRepo) SetProfilePicture(id int, ref string, status models.AuthStatus) error {
	if a, ok := r.accounts[id]; ok {
		a.ProfilePicture = &ref
		a.AuthStatus = status
	}
	return nil
}

func (r *fakeAccountRepo) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	if a, ok := r.accounts[id]; ok {
		a.RefreshToken = &token
		a.RefreshExpiresAt = &expiresAt
		a.RefreshRevoked = false
	}
	return nil
}

func (r *fakeAccountRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.RefreshToken != nil && *a.RefreshToken == oldToken && !a.RefreshRevoked {
			a.RefreshToken = &newToken
			a.RefreshExpiresAt = &newExpiresAt
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) ClearRefresh(id int) error {
	if a, ok := r.accounts[id]; ok {
		a.RefreshToken = nil
		a.RefreshExpiresAt = nil
		a.RefreshRevoked = true
	}
	return nil
}

func (r *fakeAccountRepo) GetByRefreshToken(token string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.RefreshToken != nil && *a.RefreshToken == token {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// fakeVerificationRepo — in-memory VerificationRepository. Статусы аккаунтов
// при MarkUsedAndAdvance пишутся во вложенный fakeAccountRepo, если он задан.
type fakeVerificationRepo struct {
	records  []*models.VerificationRecord
	nextID   int64
	accounts *fakeAccountRepo
	now      func() time.Time
}

func newFakeVerificationRepo(accounts *fakeAccountRepo) *fakeVerificationRepo {
	return &fakeVerificationRepo{nextID: 1, accounts: accounts, now: time.Now}
}

func (r *fakeVerificationRepo) Create(rec *models.VerificationRecord) error {
	rec.ID = r.nextID
	r.nextID++
	rec.CreatedAt = r.now()
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *fakeVerificationRepo) CreateIfUnderLimit(rec *models.VerificationRecord, since time.Time, maxBefore int) (bool, error) {
	cnt := 0
	for _, v := range r.records {
		if v.AccountID == rec.AccountID && !v.CreatedAt.Before(since) {
			cnt++
		}
	}
	if cnt > maxBefore {
		return false, nil
	}
	return true, r.Create(rec)
}

func (r *fakeVerificationRepo) GetLatestUnusedByCode(accountID int, code string) (*models.VerificationRecord, error) {
	var latest *models.VerificationRecord
	for _, v := range r.records {
		if v.AccountID == accountID && v.Code == code && !v.IsUsed {
			if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
				latest = v
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeVerificationRepo) CountSince(accountID int, since time.Time) (int, error) {
	cnt := 0
	for _, v := range r.records {
		if v.AccountID == accountID && !v.CreatedAt.Before(since) {
			cnt++
		}
	}
	return cnt, nil
}

func (r *fakeVerificationRepo) MarkUsedAndAdvance(recordID int64, accountID int, status models.AuthStatus) error {
	for _, v := range r.records {
		if v.ID == recordID {
			v.IsUsed = true
		}
	}
	if r.accounts != nil {
		return r.accounts.UpdateStatus(accountID, status)
	}
	return nil
}

// fakeQueue — собирает jobs вместо доставки.
type fakeQueue struct {
	jobs []NotificationJob
}

func (q *fakeQueue) Enqueue(job NotificationJob) {
	q.jobs = append(q.jobs, job)
}
