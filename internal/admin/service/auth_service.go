package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"punchgate/internal/admin/domain"
	"punchgate/internal/audit"
	"punchgate/internal/security"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
// One error for both so the login surface does not reveal which part failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminRepo is the admin lookup the auth service needs.
type AdminRepo interface {
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

// AuthService authenticates admins and issues access tokens.
type AuthService struct {
	admins   AdminRepo
	hasher   *security.Hasher
	tokens   *security.TokenProvider
	auditLog audit.AuditLogger
}

// NewAuthService returns an AuthService. auditLog may be nil.
func NewAuthService(admins AdminRepo, hasher *security.Hasher, tokens *security.TokenProvider, auditLog audit.AuditLogger) *AuthService {
	return &AuthService{admins: admins, hasher: hasher, tokens: tokens, auditLog: auditLog}
}

// Session is the result of a successful login.
type Session struct {
	Admin       *domain.Admin
	AccessToken string
	ExpiresAt   time.Time
}

// Login verifies the password and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	a, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if a == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(a.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, _, expiresAt, err := s.tokens.IssueAccess(a.ID, a.Email, "admin")
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}
	if s.auditLog != nil {
		s.auditLog.LogEvent(ctx, a.ID, audit.ActionAdminLogin, "admin:"+a.ID, a.Email)
	}
	return &Session{Admin: a, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Authenticate validates an access token and returns the admin id.
func (s *AuthService) Authenticate(tokenString string) (adminID string, err error) {
	adminID, _, _, err = s.tokens.ValidateAccess(tokenString)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	return adminID, nil
}
