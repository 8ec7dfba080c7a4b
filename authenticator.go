package tasks

import (
	"context"
	"strconv"
	"time"
)

type Auther struct {
	users           Users
	tokenExpiration int
	logger          Logger
	tokenService    TokenService
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(users Users, opts Config) *Auther {
	tokenService := NewTokenService([]byte(opts.GetSigningKey()), defLogger{})

	return &Auther{
		users:           users,
		tokenExpiration: opts.GetTokenExpiration(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed session token. An
// unknown email and a wrong password both come back as
// ErrMismatchedHashAndPassword so the response cannot be used to probe for
// registered accounts.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Error("Login password mismatch", "user_id", user.ID)
		return "", ErrMismatchedHashAndPassword
	}

	ttl := time.Duration(s.tokenExpiration) * time.Hour
	return s.tokenService.Generate(strconv.FormatInt(user.ID, 10), ttl)
}

// SessionFromToken validates the raw token and maps its claims to a session
func (s Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromSession resolves the session subject back to a user record. A
// valid token whose user has since been deleted yields ErrIdentityNotFound.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (*User, error) {
	id, err := session.GetUserIDInt()
	if err != nil {
		s.logger.Error("IdentityFromSession bad subject: %s", err)
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("IdentityFromSession find identity: %s", err)
		return nil, err
	}

	return user, nil
}
