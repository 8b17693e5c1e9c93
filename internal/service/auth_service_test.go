package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminEmail = "admin@example.com"
	testBaseURL    = "http://localhost:3000"
	testPassword   = "Password123!"
)

type authFixture struct {
	users           *fakeUserRepo
	accounts        *fakeAccountRepo
	sessions        *fakeSessionRepo
	verifyTokens    *fakeTokenRepo
	resetTokens     *fakeTokenRepo
	twoFactorTokens *fakeTokenRepo
	confirmations   *fakeConfirmationRepo
	mailer          *fakeMailer

	auth      AuthService
	twoFactor TwoFactorService
	sessSvc   SessionService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:           newFakeUserRepo(),
		accounts:        newFakeAccountRepo(),
		sessions:        newFakeSessionRepo(),
		verifyTokens:    newFakeTokenRepo(),
		resetTokens:     newFakeTokenRepo(),
		twoFactorTokens: newFakeTokenRepo(),
		confirmations:   newFakeConfirmationRepo(),
		mailer:          newFakeMailer(),
	}

	f.sessSvc = NewSessionService(f.sessions, "authjs.session-token", 30*24*time.Hour, false)
	f.twoFactor = NewTwoFactorService(f.twoFactorTokens, f.confirmations, f.mailer, 5*time.Minute)
	f.auth = NewAuthService(
		f.users,
		f.accounts,
		f.verifyTokens,
		f.resetTokens,
		f.twoFactor,
		f.sessSvc,
		f.mailer,
		zap.NewNop(),
		bcrypt.MinCost,
		testAdminEmail,
		testBaseURL,
		24*time.Hour,
		24*time.Hour,
	)

	return f
}

func (f *authFixture) register(t *testing.T, email string) *domain.User {
	t.Helper()

	result, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "John",
		LastName:  "Doe",
		Email:     email,
		Password:  testPassword,
	})
	require.NoError(t, err)
	return result.User
}

func (f *authFixture) registerVerified(t *testing.T, email string) *domain.User {
	t.Helper()

	user := f.register(t, email)
	updated, err := f.users.MarkEmailVerified(context.Background(), email, time.Now())
	require.NoError(t, err)
	require.True(t, updated)
	return user
}

func (f *authFixture) enableTwoFactor(t *testing.T, userID string) {
	t.Helper()

	user, err := f.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	user.IsTwoFactorEnabled = true
	require.NoError(t, f.users.Update(context.Background(), user))
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture()

	result, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "John.Doe@Example.com",
		Password:  testPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, "john.doe@example.com", result.User.Email)
	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.Nil(t, result.User.EmailVerified)
	assert.Nil(t, result.User.PasswordHash, "password hash must not leave the service layer")
	assert.True(t, result.VerificationEmailSent)

	accounts, err := f.accounts.GetByUserID(context.Background(), result.User.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "credentials", accounts[0].Provider)
	assert.Equal(t, result.User.ID, accounts[0].ProviderAccountID)

	assert.Equal(t, 1, f.verifyTokens.countForEmail("john.doe@example.com"))

	sent := f.mailer.lastTo("john.doe@example.com")
	require.NotNil(t, sent)
	assert.Equal(t, "Email Verification", sent.Subject)
	assert.Contains(t, sent.Body, testBaseURL+"/verify-email?token=")
}

func TestRegister_AdminEmailGetsAdminRole(t *testing.T) {
	f := newAuthFixture()

	user := f.register(t, testAdminEmail)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "john@example.com")

	_, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "john@example.com",
		Password:  testPassword,
	})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRegister_MailFailureDoesNotRollBack(t *testing.T) {
	f := newAuthFixture()
	f.mailer.failErr = assert.AnError

	result, err := f.auth.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Password:  testPassword,
	})
	require.NoError(t, err)
	assert.False(t, result.VerificationEmailSent)

	_, err = f.users.GetByEmail(context.Background(), "john@example.com")
	assert.NoError(t, err)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: testPassword,
	})
	require.Error(t, err)
	assert.Equal(t, KindUserNotFound, KindOf(err))
}

func TestLogin_UnverifiedEmailGateRunsBeforePasswordCheck(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "john@example.com")

	// Even a wrong password must surface the verification gate first.
	_, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: "definitely-wrong",
	})
	require.Error(t, err)
	assert.Equal(t, KindEmailNotVerified, KindOf(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	f.registerVerified(t, "john@example.com")

	_, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: "definitely-wrong",
	})
	require.Error(t, err)
	assert.Equal(t, KindInvalidCredentials, KindOf(err))
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture()
	user := f.registerVerified(t, "john@example.com")

	result, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "John@Example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	assert.False(t, result.TwoFactor)
	require.NotNil(t, result.Session)
	assert.Equal(t, user.ID, result.Session.UserID)
	assert.Nil(t, result.User.PasswordHash)

	stored, err := f.sessions.GetByToken(context.Background(), result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.False(t, stored.IsExpired())
}

func TestLogin_TwoFactorChallengeIssued(t *testing.T) {
	f := newAuthFixture()
	user := f.registerVerified(t, "john@example.com")
	f.enableTwoFactor(t, user.ID)

	result, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	assert.True(t, result.TwoFactor)
	assert.Nil(t, result.Session, "no session may exist before the challenge is answered")
	assert.Empty(t, f.sessions.sessions)

	token, err := f.twoFactorTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.Len(t, token.Token, 6)

	sent := f.mailer.lastTo("john@example.com")
	require.NotNil(t, sent)
	assert.Equal(t, "Two-Factor Authentication Code", sent.Subject)
	assert.Contains(t, sent.Body, token.Token)
}

func TestLogin_TwoFactorChallengeRotationInvalidatesPriorCode(t *testing.T) {
	f := newAuthFixture()
	user := f.registerVerified(t, "john@example.com")
	f.enableTwoFactor(t, user.ID)

	login := &dto.LoginRequest{Email: "john@example.com", Password: testPassword}

	_, err := f.auth.Login(context.Background(), login)
	require.NoError(t, err)
	first, err := f.twoFactorTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)

	_, err = f.auth.Login(context.Background(), login)
	require.NoError(t, err)
	second, err := f.twoFactorTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, f.twoFactorTokens.countForEmail("john@example.com"))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestLogin_TwoFactorComplete(t *testing.T) {
	f := newAuthFixture()
	user := f.registerVerified(t, "john@example.com")
	f.enableTwoFactor(t, user.ID)

	_, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	token, err := f.twoFactorTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)

	result, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: testPassword,
		Code:     token.Token,
	})
	require.NoError(t, err)

	assert.False(t, result.TwoFactor)
	require.NotNil(t, result.Session)

	assert.Equal(t, 0, f.twoFactorTokens.countForEmail("john@example.com"))
	assert.Empty(t, f.confirmations.confirmations, "confirmation must be consumed by session creation")
}

func TestLogin_TwoFactorWrongCode(t *testing.T) {
	f := newAuthFixture()
	user := f.registerVerified(t, "john@example.com")
	f.enableTwoFactor(t, user.ID)

	_, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	_, err = f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: testPassword,
		Code:     "000000",
	})
	require.Error(t, err)
	assert.Equal(t, KindInvalidToken, KindOf(err))
}

func TestLogin_TwoFactorCodeIsSingleUse(t *testing.T) {
	f := newAuthFixture()
	user := f.registerVerified(t, "john@example.com")
	f.enableTwoFactor(t, user.ID)

	login := &dto.LoginRequest{Email: "john@example.com", Password: testPassword}

	_, err := f.auth.Login(context.Background(), login)
	require.NoError(t, err)
	token, err := f.twoFactorTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)

	withCode := &dto.LoginRequest{Email: login.Email, Password: login.Password, Code: token.Token}
	_, err = f.auth.Login(context.Background(), withCode)
	require.NoError(t, err)

	_, err = f.auth.Login(context.Background(), withCode)
	require.Error(t, err)
	assert.Equal(t, KindTokenNotFound, KindOf(err))
}

func TestVerifyEmail_Success(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "john@example.com")

	token, err := f.verifyTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)

	require.NoError(t, f.auth.VerifyEmail(context.Background(), token.Token))

	user, err := f.users.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.NotNil(t, user.EmailVerified)

	assert.Equal(t, 0, f.verifyTokens.countForEmail("john@example.com"))
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	f := newAuthFixture()

	err := f.auth.VerifyEmail(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.Equal(t, KindInvalidToken, KindOf(err))
}

func TestVerifyEmail_ExpiredTokenIsDeleted(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "john@example.com")

	stale := &domain.Token{
		Email:   "john@example.com",
		Token:   "stale-token",
		Expires: time.Now().Add(-time.Hour),
	}
	require.NoError(t, f.verifyTokens.Rotate(context.Background(), stale))

	err := f.auth.VerifyEmail(context.Background(), "stale-token")
	require.Error(t, err)
	assert.Equal(t, KindExpiredToken, KindOf(err))

	// A retry must read as invalid: the stale row is gone.
	err = f.auth.VerifyEmail(context.Background(), "stale-token")
	require.Error(t, err)
	assert.Equal(t, KindInvalidToken, KindOf(err))
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.auth.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, KindEmailNotFound, KindOf(err))
	assert.Equal(t, 0, f.resetTokens.countForEmail("nobody@example.com"))
}

func TestRequestPasswordReset_RotationKeepsSingleToken(t *testing.T) {
	f := newAuthFixture()
	f.registerVerified(t, "john@example.com")

	_, err := f.auth.RequestPasswordReset(context.Background(), "john@example.com")
	require.NoError(t, err)
	first, err := f.resetTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)

	_, err = f.auth.RequestPasswordReset(context.Background(), "john@example.com")
	require.NoError(t, err)
	second, err := f.resetTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, f.resetTokens.countForEmail("john@example.com"))
	assert.NotEqual(t, first.Token, second.Token)

	sent := f.mailer.lastTo("john@example.com")
	require.NotNil(t, sent)
	assert.Equal(t, "Password Reset Request", sent.Subject)
	assert.Contains(t, sent.Body, testBaseURL+"/set-new-password?token=")
}

func TestRequestPasswordReset_SucceedsWhenMailFails(t *testing.T) {
	f := newAuthFixture()
	f.registerVerified(t, "john@example.com")
	f.mailer.failErr = assert.AnError

	result, err := f.auth.RequestPasswordReset(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.False(t, result.PasswordResetEmailSent)
	assert.Equal(t, 1, f.resetTokens.countForEmail("john@example.com"))
}

func TestSetNewPassword_MissingToken(t *testing.T) {
	f := newAuthFixture()

	err := f.auth.SetNewPassword(context.Background(), "", "NewPassword123!")
	require.Error(t, err)
	assert.Equal(t, KindMissingToken, KindOf(err))
}

func TestSetNewPassword_UnknownToken(t *testing.T) {
	f := newAuthFixture()

	err := f.auth.SetNewPassword(context.Background(), "no-such-token", "NewPassword123!")
	require.Error(t, err)
	assert.Equal(t, KindInvalidToken, KindOf(err))
}

func TestSetNewPassword_ExpiredToken(t *testing.T) {
	f := newAuthFixture()
	f.registerVerified(t, "john@example.com")

	stale := &domain.Token{
		Email:   "john@example.com",
		Token:   "stale-reset",
		Expires: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.resetTokens.Rotate(context.Background(), stale))

	err := f.auth.SetNewPassword(context.Background(), "stale-reset", "NewPassword123!")
	require.Error(t, err)
	assert.Equal(t, KindExpiredToken, KindOf(err))
}

func TestSetNewPassword_RoundTrip(t *testing.T) {
	f := newAuthFixture()
	f.registerVerified(t, "john@example.com")

	_, err := f.auth.RequestPasswordReset(context.Background(), "john@example.com")
	require.NoError(t, err)
	token, err := f.resetTokens.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)

	require.NoError(t, f.auth.SetNewPassword(context.Background(), token.Token, "NewPassword123!"))
	assert.Equal(t, 0, f.resetTokens.countForEmail("john@example.com"))

	_, err = f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: testPassword,
	})
	require.Error(t, err)
	assert.Equal(t, KindInvalidCredentials, KindOf(err))

	result, err := f.auth.Login(context.Background(), &dto.LoginRequest{
		Email:    "john@example.com",
		Password: "NewPassword123!",
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Session)
}

func TestOAuthSignIn_CreatesVerifiedUser(t *testing.T) {
	f := newAuthFixture()

	result, err := f.auth.OAuthSignIn(context.Background(), &dto.OAuthCallbackRequest{
		Provider:          "google",
		ProviderAccountID: "google-123",
		Email:             "Jane@Example.com",
		FirstName:         "Jane",
		LastName:          "Doe",
		Image:             "https://example.com/jane.png",
	})
	require.NoError(t, err)

	require.NotNil(t, result.Session)
	assert.Equal(t, "jane@example.com", result.User.Email)
	assert.NotNil(t, result.User.EmailVerified, "providers are trusted to have verified the email")
	require.NotNil(t, result.User.Image)
	assert.Equal(t, "https://example.com/jane.png", *result.User.Image)

	_, err = f.accounts.GetByProvider(context.Background(), "google", "google-123")
	assert.NoError(t, err)
}

func TestOAuthSignIn_StampsExistingUnverifiedUser(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t, "john@example.com")

	result, err := f.auth.OAuthSignIn(context.Background(), &dto.OAuthCallbackRequest{
		Provider:          "github",
		ProviderAccountID: "gh-42",
		Email:             "john@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID, result.User.ID)
	assert.NotNil(t, result.User.EmailVerified)

	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.EmailVerified)
}

func TestOAuthSignIn_BypassesTwoFactor(t *testing.T) {
	f := newAuthFixture()
	user := f.registerVerified(t, "john@example.com")
	f.enableTwoFactor(t, user.ID)

	result, err := f.auth.OAuthSignIn(context.Background(), &dto.OAuthCallbackRequest{
		Provider:          "github",
		ProviderAccountID: "gh-42",
		Email:             "john@example.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Session)
}

func TestGetUser(t *testing.T) {
	f := newAuthFixture()
	user := f.registerVerified(t, "john@example.com")

	got, err := f.auth.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Nil(t, got.PasswordHash)

	_, err = f.auth.GetUser(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Equal(t, KindUserNotFound, KindOf(err))
}

func TestGeneratedTwoFactorCodeShape(t *testing.T) {
	for i := 0; i < 32; i++ {
		code, err := generateTwoFactorCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.False(t, strings.HasPrefix(code, "0"), "codes start at 100000")
	}
}
