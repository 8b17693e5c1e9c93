package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/repository"
	"github.com/google/uuid"
)

// sessionService implements SessionService. Cookies are always derived from
// the session row so the two lifetimes cannot drift apart.
type sessionService struct {
	sessions   repository.SessionRepository
	cookieName string
	expiry     time.Duration
	secure     bool
}

// NewSessionService creates a new session service
func NewSessionService(sessions repository.SessionRepository, cookieName string, expiry time.Duration, secure bool) SessionService {
	return &sessionService{
		sessions:   sessions,
		cookieName: cookieName,
		expiry:     expiry,
		secure:     secure,
	}
}

// Create issues an opaque session token and inserts the session row
func (s *sessionService) Create(ctx context.Context, userID string) (*domain.Session, error) {
	session := &domain.Session{
		Token:   uuid.New().String(),
		UserID:  userID,
		Expires: time.Now().Add(s.expiry),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetByToken retrieves a session row by its token
func (s *sessionService) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.GetByToken(ctx, token)
}

// Delete removes the session row by token
func (s *sessionService) Delete(ctx context.Context, token string) (bool, error) {
	return s.sessions.Delete(ctx, token)
}

// Cookie builds the session cookie for a session row. The cookie expiry
// mirrors the row expiry.
func (s *sessionService) Cookie(session *domain.Session) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.Expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie builds an immediately-expired empty cookie that clears the
// session cookie on the client.
func (s *sessionService) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
