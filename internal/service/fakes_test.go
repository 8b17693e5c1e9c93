package service

import (
	"context"
	"strings"
	"time"

	"github.com/dcizov/t3-starter-template/internal/domain"
	"github.com/dcizov/t3-starter-template/internal/repository"
	"github.com/google/uuid"
)

// In-memory repository fakes backing the service tests. They mirror the
// Postgres implementations' contract: sentinel errors from the repository
// package, Rotate keeping at most one token per email, Replace keeping at
// most one confirmation per user.

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Name == "" {
		user.Name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, u := range r.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, email string, verifiedAt time.Time) (bool, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			at := verifiedAt
			u.EmailVerified = &at
			return true, nil
		}
	}
	return false, nil
}

type fakeAccountRepo struct {
	accounts []*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	for _, a := range r.accounts {
		if a.Provider == account.Provider && a.ProviderAccountID == account.ProviderAccountID {
			return repository.ErrDuplicateAccount
		}
	}
	stored := *account
	r.accounts = append(r.accounts, &stored)
	return nil
}

func (r *fakeAccountRepo) GetByProvider(_ context.Context, provider, providerAccountID string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Provider == provider && a.ProviderAccountID == providerAccountID {
			found := *a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) GetByUserID(_ context.Context, userID string) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range r.accounts {
		if a.UserID == userID {
			found := *a
			out = append(out, &found)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	if _, ok := r.sessions[session.Token]; ok {
		return repository.ErrDuplicateSession
	}
	stored := *session
	r.sessions[session.Token] = &stored
	return nil
}

func (r *fakeSessionRepo) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	s, ok := r.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *s
	return &found, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, token string) (bool, error) {
	if _, ok := r.sessions[token]; !ok {
		return false, nil
	}
	delete(r.sessions, token)
	return true, nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) error {
	for token, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, token)
		}
	}
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]*domain.Token
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.Token)}
}

func (r *fakeTokenRepo) Rotate(_ context.Context, token *domain.Token) error {
	for id, t := range r.tokens {
		if strings.EqualFold(t.Email, token.Email) {
			delete(r.tokens, id)
		}
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	stored := *token
	r.tokens[token.ID] = &stored
	return nil
}

func (r *fakeTokenRepo) GetByToken(_ context.Context, value string) (*domain.Token, error) {
	for _, t := range r.tokens {
		if t.Token == value {
			found := *t
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTokenRepo) GetByEmail(_ context.Context, email string) (*domain.Token, error) {
	for _, t := range r.tokens {
		if strings.EqualFold(t.Email, email) {
			found := *t
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTokenRepo) GetByID(_ context.Context, id string) (*domain.Token, error) {
	t, ok := r.tokens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *t
	return &found, nil
}

func (r *fakeTokenRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.tokens[id]; !ok {
		return false, nil
	}
	delete(r.tokens, id)
	return true, nil
}

func (r *fakeTokenRepo) countForEmail(email string) int {
	count := 0
	for _, t := range r.tokens {
		if strings.EqualFold(t.Email, email) {
			count++
		}
	}
	return count
}

type fakeConfirmationRepo struct {
	confirmations map[string]*domain.TwoFactorConfirmation
}

func newFakeConfirmationRepo() *fakeConfirmationRepo {
	return &fakeConfirmationRepo{confirmations: make(map[string]*domain.TwoFactorConfirmation)}
}

func (r *fakeConfirmationRepo) Replace(_ context.Context, userID string) (*domain.TwoFactorConfirmation, error) {
	for id, c := range r.confirmations {
		if c.UserID == userID {
			delete(r.confirmations, id)
		}
	}
	confirmation := &domain.TwoFactorConfirmation{
		ID:     uuid.New().String(),
		UserID: userID,
	}
	stored := *confirmation
	r.confirmations[confirmation.ID] = &stored
	return confirmation, nil
}

func (r *fakeConfirmationRepo) GetByUserID(_ context.Context, userID string) (*domain.TwoFactorConfirmation, error) {
	for _, c := range r.confirmations {
		if c.UserID == userID {
			found := *c
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeConfirmationRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.confirmations[id]; !ok {
		return false, nil
	}
	delete(r.confirmations, id)
	return true, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer records deliveries and can be told to fail.
type fakeMailer struct {
	sent    []sentMail
	failErr error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{}
}

func (m *fakeMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *fakeMailer) lastTo(to string) *sentMail {
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to {
			return &m.sent[i]
		}
	}
	return nil
}
