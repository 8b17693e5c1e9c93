package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/dto"
	"github.com/dcizov/t3-starter-template/internal/repository"
	"github.com/dcizov/t3-starter-template/internal/service"
	"github.com/google/uuid"
)

const testCookieName = "authjs.session-token"

// stubAuthService lets each test script the flow outcomes directly.
type stubAuthService struct {
	registerFn func(ctx context.Context, req *dto.RegisterRequest) (*service.RegisterResult, error)
	loginFn    func(ctx context.Context, req *dto.LoginRequest) (*service.LoginResult, error)
	verifyFn   func(ctx context.Context, token string) error
	resetFn    func(ctx context.Context, email string) (*service.ResetResult, error)
	setFn      func(ctx context.Context, token, password string) error
	oauthFn    func(ctx context.Context, profile *dto.OAuthCallbackRequest) (*service.LoginResult, error)
	getUserFn  func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*service.RegisterResult, error) {
	return s.registerFn(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*service.LoginResult, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.verifyFn(ctx, token)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) (*service.ResetResult, error) {
	return s.resetFn(ctx, email)
}

func (s *stubAuthService) SetNewPassword(ctx context.Context, token, password string) error {
	return s.setFn(ctx, token, password)
}

func (s *stubAuthService) OAuthSignIn(ctx context.Context, profile *dto.OAuthCallbackRequest) (*service.LoginResult, error) {
	return s.oauthFn(ctx, profile)
}

func (s *stubAuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

// stubSessionService keeps sessions in a map and builds cookies the same way
// the real implementation does.
type stubSessionService struct {
	sessions map[string]*domain.Session
	expiry   time.Duration
}

func newStubSessionService() *stubSessionService {
	return &stubSessionService{
		sessions: make(map[string]*domain.Session),
		expiry:   30 * 24 * time.Hour,
	}
}

func (s *stubSessionService) Create(_ context.Context, userID string) (*domain.Session, error) {
	session := &domain.Session{
		Token:   uuid.New().String(),
		UserID:  userID,
		Expires: time.Now().Add(s.expiry),
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *stubSessionService) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return session, nil
}

func (s *stubSessionService) Delete(_ context.Context, token string) (bool, error) {
	if _, ok := s.sessions[token]; !ok {
		return false, nil
	}
	delete(s.sessions, token)
	return true, nil
}

func (s *stubSessionService) Cookie(session *domain.Session) *http.Cookie {
	return &http.Cookie{
		Name:     testCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.Expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *stubSessionService) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     testCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// stubSettingsService scripts the settings flow outcome.
type stubSettingsService struct {
	updateFn func(ctx context.Context, userID string, req *dto.UpdateSettingsRequest) (*domain.User, error)
}

func (s *stubSettingsService) UpdateSettings(ctx context.Context, userID string, req *dto.UpdateSettingsRequest) (*domain.User, error) {
	return s.updateFn(ctx, userID, req)
}

func testUser() *domain.User {
	verified := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	return &domain.User{
		ID:            "user-1",
		FirstName:     "John",
		LastName:      "Doe",
		Name:          "John Doe",
		Email:         "john@example.com",
		EmailVerified: &verified,
		Role:          domain.RoleUser,
	}
}
