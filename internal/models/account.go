package models

import "time"

// AuthType — канал, через который аккаунт подтверждается.
type AuthType string

const (
	AuthTypeEmail AuthType = "Email"
	AuthTypePhone AuthType = "Phone"
)

// AuthStatus — этап онбординга аккаунта.
type AuthStatus string

const (
	StatusNew          AuthStatus = "New"
	StatusCodeVerified AuthStatus = "CodeVerified"
	StatusDone         AuthStatus = "Done"
	StatusFinished     AuthStatus = "Finished"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

type Account struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone_number,omitempty"`

	FirstName      *string    `json:"first_name,omitempty"`
	LastName       *string    `json:"last_name,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Gender         *string    `json:"gender,omitempty"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`

	PasswordHash string `json:"-"` // не отдаём наружу

	AuthType   AuthType   `json:"auth_type"`
	AuthStatus AuthStatus `json:"auth_status"`

	IsPremium   bool `json:"is_premium"`
	IsActive    bool `json:"is_active"`
	IsStaff     bool `json:"-"`
	IsSuperuser bool `json:"-"`

	// refresh-хранение в БД
	RefreshToken     *string    `json:"-"` // храним opaque строку
	RefreshExpiresAt *time.Time `json:"-"` // срок действия
	RefreshRevoked   bool       `json:"-"` // выставляется при logout

	CreatedAt time.Time `json:"created_at"`
}

// Contact — то единственное контактное поле, которым владеет аккаунт.
func (a *Account) Contact() string {
	if a.Email != nil {
		return *a.Email
	}
	if a.Phone != nil {
		return *a.Phone
	}
	return ""
}

type LoginRequest struct {
	LoginName string `json:"login_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	EmailOrPhone string `json:"email_or_phone" binding:"required"`
}

type VerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

type CompleteProfileRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	BirthDate string `json:"birth_date" binding:"required"` // 2005-08-13
	Gender    string `json:"gender" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenPair — access + refresh, выдаётся при signup/login/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
