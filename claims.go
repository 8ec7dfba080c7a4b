package tasks

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload carried by a session token. The wire shape is
// kept to the three registered claims the service needs: sub holds the user id
// as a decimal string, iat and exp are unix seconds.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject claim, the decimal user id
func (c *SessionClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issued at time
func (c *SessionClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
