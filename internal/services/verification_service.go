package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"authway/internal/models"
	"authway/internal/repositories"
)

var (
	ErrCodeInvalid = errors.New("code invalid")
	ErrCodeExpired = errors.New("code expired")
	ErrRateLimited = errors.New("rate limited")
)

const (
	emailCodeTTL  = 5 * time.Minute
	phoneCodeTTL  = 2 * time.Minute
	reissueWindow = 1 * time.Minute
	// лимит срабатывает когда записей за окно УЖЕ больше одной:
	// первый resend после signup проходит, второй в ту же минуту — нет
	maxPerWindow = 1
)

// Enqueuer — всё, что verification-слою нужно от диспетчера.
type Enqueuer interface {
	Enqueue(job NotificationJob)
}

type VerificationService struct {
	Repo  repositories.VerificationRepository
	Queue Enqueuer

	now func() time.Time
	rnd *rand.Rand
}

func NewVerificationService(repo repositories.VerificationRepository, queue Enqueuer) *VerificationService {
	return &VerificationService{
		Repo:  repo,
		Queue: queue,
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// generateCode — равномерный выбор из [1000, 9999], всегда 4 символа.
func (s *VerificationService) generateCode() string {
	return fmt.Sprintf("%04d", 1000+s.rnd.Intn(9000))
}

func (s *VerificationService) codeTTL(verifyType models.AuthType) time.Duration {
	if verifyType == models.AuthTypePhone {
		return phoneCodeTTL
	}
	return emailCodeTTL
}

// Issue — новый код для аккаунта (без проверки лимита — используется при signup).
// Доставка уходит в очередь и не влияет на результат.
func (s *VerificationService) Issue(account *models.Account) (*models.VerificationRecord, error) {
	rec := &models.VerificationRecord{
		AccountID:  account.ID,
		Code:       s.generateCode(),
		VerifyType: account.AuthType,
		ExpiresAt:  s.now().Add(s.codeTTL(account.AuthType)),
	}
	if err := s.Repo.Create(rec); err != nil {
		return nil, err
	}
	s.enqueue(account, rec)
	return rec, nil
}

// Reissue — то же, но под rate-limit: не больше записей за скользящую
// минуту, чем разрешает maxPerWindow. Проверка и вставка атомарны per-account.
func (s *VerificationService) Reissue(account *models.Account) (*models.VerificationRecord, error) {
	rec := &models.VerificationRecord{
		AccountID:  account.ID,
		Code:       s.generateCode(),
		VerifyType: account.AuthType,
		ExpiresAt:  s.now().Add(s.codeTTL(account.AuthType)),
	}
	since := s.now().Add(-reissueWindow)
	created, err := s.Repo.CreateIfUnderLimit(rec, since, maxPerWindow)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrRateLimited
	}
	s.enqueue(account, rec)
	return rec, nil
}

// Consume — одноразовое гашение кода. Совпадение и свежесть проверяются
// независимо: правильный, но протухший код — отдельная ошибка.
// next выбирает вызывающая сторона; гашение и смена статуса атомарны.
func (s *VerificationService) Consume(accountID int, code string, next models.AuthStatus) error {
	rec, err := s.Repo.GetLatestUnusedByCode(accountID, code)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrCodeInvalid
	}
	if rec.ExpiresAt.Before(s.now()) {
		return ErrCodeExpired
	}
	return s.Repo.MarkUsedAndAdvance(rec.ID, accountID, next)
}

func (s *VerificationService) enqueue(account *models.Account, rec *models.VerificationRecord) {
	if s.Queue == nil {
		return
	}
	s.Queue.Enqueue(NotificationJob{
		Channel:     rec.VerifyType,
		Destination: account.Contact(),
		Code:        rec.Code,
		ExpiresAt:   rec.ExpiresAt,
	})
}
