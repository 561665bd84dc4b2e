package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"authway/internal/models"
	"authway/internal/repositories"
)

var (
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	ErrInvalidIdentifier   = errors.New("identifier is neither email nor phone")
	ErrAlreadyVerified     = errors.New("account already verified")
	ErrInvalidCredentials  = errors.New("invalid login credentials")
	ErrInvalidState        = errors.New("operation not allowed in current status")
	ErrInvalidImage        = errors.New("image format not allowed")
)

var (
	phoneRe  = regexp.MustCompile(`^\+?[1-9][0-9]{7,14}$`)
	emailRe  = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
)

// ProfileFields — уже распарсенные поля этапа Done; required-проверки и
// разбор даты/пола остаются на границе (handler).
type ProfileFields struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	BirthDate time.Time
	Gender    string
}

// AuthService — оркестрация онбординга: signup, verify, resend,
// заполнение профиля, картинка, login/refresh/logout.
type AuthService struct {
	Accounts      repositories.AccountRepository
	Verifications *VerificationService
	Tokens        *TokenService
}

func NewAuthService(accounts repositories.AccountRepository, verifications *VerificationService, tokens *TokenService) *AuthService {
	return &AuthService{
		Accounts:      accounts,
		Verifications: verifications,
		Tokens:        tokens,
	}
}

// classifyIdentifier — телефон это "+" и 8–15 цифр с ненулевой первой,
// email — наличие "@" и минимальная форма. Ни то ни другое — ошибка.
func classifyIdentifier(v string) (models.AuthType, error) {
	if len(v) > 1 && digitsRe.MatchString(v[1:]) {
		if !phoneRe.MatchString(v) {
			return "", ErrInvalidIdentifier
		}
		return models.AuthTypePhone, nil
	}
	if strings.Contains(v, "@") {
		if !emailRe.MatchString(v) {
			return "", ErrInvalidIdentifier
		}
		return models.AuthTypeEmail, nil
	}
	return "", ErrInvalidIdentifier
}

// SignUp — создаёт New-аккаунт с одним контактным полем, автоназначает
// username, выдаёт первый код и пару токенов: онбординг можно продолжать
// сразу, до подтверждения.
func (s *AuthService) SignUp(identifier string) (*models.Account, *models.TokenPair, error) {
	identifier = strings.TrimSpace(identifier)

	exists, err := s.Accounts.ExistsByContact(identifier)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrDuplicateIdentifier
	}

	authType, err := classifyIdentifier(identifier)
	if err != nil {
		return nil, nil, err
	}

	account := &models.Account{
		AuthType:   authType,
		AuthStatus: models.StatusNew,
		IsActive:   true,
	}
	if authType == models.AuthTypeEmail {
		account.Email = &identifier
	} else {
		account.Phone = &identifier
	}
	if err := s.Accounts.Create(account); err != nil {
		return nil, nil, err
	}

	// username = id, как и пароль, заполняется по-настоящему на этапе Done
	account.Username = strconv.Itoa(account.ID)
	if err := s.Accounts.UpdateUsername(account.ID, account.Username); err != nil {
		return nil, nil, err
	}

	if _, err := s.Verifications.Issue(account); err != nil {
		return nil, nil, err
	}

	pair, err := s.Tokens.IssuePair(account)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[auth][signup] created account id=%d type=%s", account.ID, account.AuthType)
	return account, pair, nil
}

// Verify — New → CodeVerified, только через гашение кода.
func (s *AuthService) Verify(accountID int, code string) error {
	account, err := s.requireAccount(accountID)
	if err != nil {
		return err
	}
	if account.AuthStatus != models.StatusNew {
		return ErrAlreadyVerified
	}
	if !CanAdvance(account.AuthStatus, models.StatusCodeVerified) {
		return ErrInvalidState
	}
	return s.Verifications.Consume(account.ID, code, models.StatusCodeVerified)
}

// Reissue — новый код, пока аккаунт ещё New. Возвращает свежую пару токенов.
func (s *AuthService) Reissue(accountID int) (*models.TokenPair, error) {
	account, err := s.requireAccount(accountID)
	if err != nil {
		return nil, err
	}
	if account.AuthStatus != models.StatusNew {
		return nil, ErrAlreadyVerified
	}
	if _, err := s.Verifications.Reissue(account); err != nil {
		return nil, err
	}
	return s.Tokens.IssuePair(account)
}

// CompleteProfile — username/пароль/имя/дата рождения/пол, CodeVerified → Done.
func (s *AuthService) CompleteProfile(accountID int, fields ProfileFields) (*models.Account, error) {
	account, err := s.requireAccount(accountID)
	if err != nil {
		return nil, err
	}
	if account.AuthStatus != models.StatusCodeVerified {
		return nil, ErrInvalidState
	}

	hash, err := HashPassword(fields.Password)
	if err != nil {
		return nil, err
	}

	account.Username = fields.Username
	account.PasswordHash = hash
	account.FirstName = &fields.FirstName
	account.LastName = &fields.LastName
	account.BirthDate = &fields.BirthDate
	account.Gender = &fields.Gender
	if CanAdvance(account.AuthStatus, models.StatusDone) {
		account.AuthStatus = models.StatusDone
	}

	if err := s.Accounts.UpdateProfile(account); err != nil {
		return nil, err
	}
	return account, nil
}

// AttachProfilePicture — разрешено из Done и Finished (повторная загрузка
// идемпотентна по статусу). Done → Finished.
func (s *AuthService) AttachProfilePicture(accountID int, filename string) (*models.Account, error) {
	account, err := s.requireAccount(accountID)
	if err != nil {
		return nil, err
	}
	if account.AuthStatus != models.StatusDone && account.AuthStatus != models.StatusFinished {
		return nil, ErrInvalidState
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return nil, ErrInvalidImage
	}

	ref := fmt.Sprintf("profile_pictures/%d_%d%s", account.ID, time.Now().Unix(), ext)
	next := account.AuthStatus
	if CanAdvance(account.AuthStatus, models.StatusFinished) {
		next = models.StatusFinished
	}
	if err := s.Accounts.SetProfilePicture(account.ID, ref, next); err != nil {
		return nil, err
	}
	account.ProfilePicture = &ref
	account.AuthStatus = next
	return account, nil
}

// Login — login_name матчится по username, потом email, потом телефону.
// Наружу всегда одна и та же ошибка: не раскрываем, существует ли аккаунт.
func (s *AuthService) Login(loginName, password string) (*models.Account, *models.TokenPair, error) {
	account, err := s.Accounts.GetByLogin(strings.TrimSpace(loginName))
	if err != nil {
		return nil, nil, err
	}
	if account == nil || account.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.Tokens.IssuePair(account)
	if err != nil {
		return nil, nil, err
	}
	return account, pair, nil
}

func (s *AuthService) Refresh(oldToken string) (*models.TokenPair, error) {
	return s.Tokens.Refresh(strings.TrimSpace(oldToken))
}

func (s *AuthService) Logout(accountID int) error {
	return s.Tokens.Revoke(accountID)
}

func (s *AuthService) Profile(accountID int) (*models.Account, error) {
	return s.requireAccount(accountID)
}

func (s *AuthService) requireAccount(accountID int) (*models.Account, error) {
	account, err := s.Accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt generate: %w", err)
	}
	return string(b), nil
}
