package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authway/internal/models"
)

type authFixture struct {
	auth     *AuthService
	accounts *fakeAccountRepo
	verif    *fakeVerificationRepo
	queue    *fakeQueue
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	verif := newFakeVerificationRepo(accounts)
	queue := &fakeQueue{}
	verifSvc := NewVerificationService(verif, queue)
	tokens := NewTokenService(accounts)
	return &authFixture{
		auth:     NewAuthService(accounts, verifSvc, tokens),
		accounts: accounts,
		verif:    verif,
		queue:    queue,
	}
}

func (f *authFixture) lastCode(accountID int) string {
	var latest *models.VerificationRecord
	for _, r := range f.verif.records {
		if r.AccountID == accountID && !r.IsUsed {
			latest = r
		}
	}
	if latest == nil {
		return ""
	}
	return latest.Code
}

func TestSignUpEmail(t *testing.T) {
	f := newAuthFixture(t)

	account, tokens, err := f.auth.SignUp("user@example.com")
	require.NoError(t, err)

	assert.Equal(t, models.AuthTypeEmail, account.AuthType)
	assert.Equal(t, models.StatusNew, account.AuthStatus)
	assert.Equal(t, strconv.Itoa(account.ID), account.Username)
	require.NotNil(t, account.Email)
	assert.Nil(t, account.Phone)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// ровно одна неиспользованная запись с 4-значным кодом и TTL 5 минут
	require.Len(t, f.verif.records, 1)
	rec := f.verif.records[0]
	assert.Len(t, rec.Code, 4)
	assert.False(t, rec.IsUsed)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), rec.ExpiresAt, 5*time.Second)
}

func TestSignUpPhone(t *testing.T) {
	f := newAuthFixture(t)

	account, _, err := f.auth.SignUp("+998901234567")
	require.NoError(t, err)

	assert.Equal(t, models.AuthTypePhone, account.AuthType)
	require.Len(t, f.verif.records, 1)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), f.verif.records[0].ExpiresAt, 5*time.Second)
}

func TestSignUpRejectsBadIdentifiers(t *testing.T) {
	f := newAuthFixture(t)

	cases := []string{
		"not-an-email-or-phone",
		"@@",
		"user@nodot",
		"+0998901234",       // первая цифра ноль
		"+99890",            // слишком короткий
		"+9989012345678901", // слишком длинный
	}
	for _, id := range cases {
		_, _, err := f.auth.SignUp(id)
		assert.ErrorIs(t, err, ErrInvalidIdentifier, "identifier %q", id)
	}
}

func TestSignUpDuplicate(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.auth.SignUp("user@example.com")
	require.NoError(t, err)

	_, _, err = f.auth.SignUp("user@example.com")
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)
}

func TestVerifyAdvancesToCodeVerified(t *testing.T) {
	f := newAuthFixture(t)
	account, _, err := f.auth.SignUp("user@example.com")
	require.NoError(t, err)

	require.NoError(t, f.auth.Verify(account.ID, f.lastCode(account.ID)))

	got, _ := f.accounts.GetByID(account.ID)
	assert.Equal(t, models.StatusCodeVerified, got.AuthStatus)

	// не New — повторная верификация и resend отклоняются
	err = f.auth.Verify(account.ID, f.lastCode(account.ID))
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	_, err = f.auth.Reissue(account.ID)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyExpiredCodeKeepsStateNew(t *testing.T) {
	f := newAuthFixture(t)
	account, _, err := f.auth.SignUp("user@example.com")
	require.NoError(t, err)
	code := f.lastCode(account.ID)

	f.auth.Verifications.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	err = f.auth.Verify(account.ID, code)
	assert.ErrorIs(t, err, ErrCodeExpired)

	got, _ := f.accounts.GetByID(account.ID)
	assert.Equal(t, models.StatusNew, got.AuthStatus)
}

func TestVerifyWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	account, _, err := f.auth.SignUp("user@example.com")
	require.NoError(t, err)

	err = f.auth.Verify(account.ID, "0000")
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestCompleteProfile(t *testing.T) {
	f := newAuthFixture(t)
	account, _, err := f.auth.SignUp("user@example.com")
	require.NoError(t, err)

	fields := ProfileFields{
		Username:  "sodiq",
		Password:  "s3cret-pass",
		FirstName: "Sodiq",
		LastName:  "Abdullaev",
		BirthDate: time.Date(2005, 8, 13, 0, 0, 0, 0, time.UTC),
		Gender:    models.GenderMale,
	}

	// до верификации — нельзя
	_, err = f.auth.CompleteProfile(account.ID, fields)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, f.auth.Verify(account.ID, f.lastCode(account.ID)))

	updated, err := f.auth.CompleteProfile(account.ID, fields)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.AuthStatus)
	assert.Equal(t, "sodiq", updated.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("s3cret-pass")))

	// повторно — статус уже не CodeVerified
	_, err = f.auth.CompleteProfile(account.ID, fields)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func (f *authFixture) onboardToDone(t *testing.T, identifier string) *models.Account {
	t.Helper()
	account, _, err := f.auth.SignUp(identifier)
	require.NoError(t, err)
	require.NoError(t, f.auth.Verify(account.ID, f.lastCode(account.ID)))
	_, err = f.auth.CompleteProfile(account.ID, ProfileFields{
		Username:  "user" + strconv.Itoa(account.ID),
		Password:  "s3cret-pass",
		FirstName: "Test",
		LastName:  "User",
		BirthDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:    models.GenderFemale,
	})
	require.NoError(t, err)
	got, _ := f.accounts.GetByID(account.ID)
	return got
}

func TestAttachProfilePicture(t *testing.T) {
	f := newAuthFixture(t)
	account := f.onboardToDone(t, "user@example.com")

	updated, err := f.auth.AttachProfilePicture(account.ID, "avatar.PNG")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, updated.AuthStatus)
	require.NotNil(t, updated.ProfilePicture)

	// повторная загрузка из Finished разрешена, статус не меняется
	updated, err = f.auth.AttachProfilePicture(account.ID, "avatar2.jpeg")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, updated.AuthStatus)
}

func TestAttachProfilePictureGuards(t *testing.T) {
	f := newAuthFixture(t)
	account, _, err := f.auth.SignUp("user@example.com")
	require.NoError(t, err)

	// из New — нельзя
	_, err = f.auth.AttachProfilePicture(account.ID, "avatar.png")
	assert.ErrorIs(t, err, ErrInvalidState)

	done := f.onboardToDone(t, "other@example.com")
	_, err = f.auth.AttachProfilePicture(done.ID, "avatar.gif")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	account := f.onboardToDone(t, "user@example.com")

	got, tokens, err := f.auth.Login(account.Username, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)

	// по email тоже работает
	_, _, err = f.auth.Login("user@example.com", "s3cret-pass")
	require.NoError(t, err)

	// неправильный пароль и несуществующий логин неразличимы
	_, _, err = f.auth.Login(account.Username, "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.auth.Login("nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBeforeProfileCompletion(t *testing.T) {
	f := newAuthFixture(t)
	account, _, err := f.auth.SignUp("user@example.com")
	require.NoError(t, err)

	// пароль ещё не установлен
	_, _, err = f.auth.Login(account.Username, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesRefresh(t *testing.T) {
	f := newAuthFixture(t)
	account := f.onboardToDone(t, "user@example.com")

	_, tokens, err := f.auth.Login(account.Username, "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(account.ID))

	_, err = f.auth.Refresh(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshRotates(t *testing.T) {
	f := newAuthFixture(t)
	account := f.onboardToDone(t, "user@example.com")

	_, tokens, err := f.auth.Login(account.Username, "s3cret-pass")
	require.NoError(t, err)

	fresh, err := f.auth.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	// старый токен после ротации мёртв
	_, err = f.auth.Refresh(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}
