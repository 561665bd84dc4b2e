package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authway/internal/models"
	"authway/internal/repositories"
	"authway/internal/utils"
)

var (
	ErrInvalidRefresh = errors.New("invalid refresh token")
	ErrInvalidAccess  = errors.New("invalid access token")
)

// JWTKey переопределяется из конфига при старте (app.Run).
var JWTKey = []byte("dev-secret-key")

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

type Claims struct {
	AccountID  int               `json:"account_id"`
	AuthStatus models.AuthStatus `json:"auth_status"`
	jwt.RegisteredClaims
}

// TokenService — выпуск пары access (короткий JWT) + refresh (opaque,
// хранится на строке аккаунта). Logout помечает refresh отозванным,
// после чего обмен по нему невозможен.
type TokenService struct {
	Accounts repositories.AccountRepository
}

func NewTokenService(accounts repositories.AccountRepository) *TokenService {
	return &TokenService{Accounts: accounts}
}

func (s *TokenService) mintAccess(account *models.Account) (string, error) {
	claims := &Claims{
		AccountID:  account.ID,
		AuthStatus: account.AuthStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTKey)
}

// IssuePair — свежая пара; refresh записывается в БД, затирая предыдущий.
func (s *TokenService) IssuePair(account *models.Account) (*models.TokenPair, error) {
	access, err := s.mintAccess(account)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}
	if err := s.Accounts.UpdateRefresh(account.ID, refresh, time.Now().Add(refreshTokenTTL)); err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh — обмен refresh на новую пару с ротацией. Отозванный, чужой или
// протухший токен — ErrInvalidRefresh, без уточнения причины.
func (s *TokenService) Refresh(oldToken string) (*models.TokenPair, error) {
	account, err := s.Accounts.GetByRefreshToken(oldToken)
	if err != nil {
		return nil, err
	}
	if account == nil || account.RefreshToken == nil || account.RefreshExpiresAt == nil || account.RefreshRevoked {
		return nil, ErrInvalidRefresh
	}
	if time.Now().After(*account.RefreshExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	newRefresh, err := utils.NewRefreshToken(32)
	if err != nil {
		return nil, err
	}
	rotated, err := s.Accounts.RotateRefresh(oldToken, newRefresh, time.Now().Add(refreshTokenTTL))
	if err != nil {
		return nil, err
	}
	if rotated == nil {
		return nil, ErrInvalidRefresh
	}
	access, err := s.mintAccess(rotated)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

// Revoke — блэклист refresh-токена аккаунта (logout).
func (s *TokenService) Revoke(accountID int) error {
	return s.Accounts.ClearRefresh(accountID)
}

// ParseAccessToken — разбор и проверка bearer-токена. Принимаем только HMAC.
func ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return JWTKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidAccess
	}
	return claims, nil
}
