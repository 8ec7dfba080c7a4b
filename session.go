package tasks

import (
	"fmt"
	"strconv"
	"time"
)

var _ Session = &SessionObject{}

type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

// GetUserIDInt parses the session subject into the numeric user id
func (s *SessionObject) GetUserIDInt() (int64, error) {
	id, err := strconv.ParseInt(s.UserID, 10, 64)
	if err != nil {
		return 0, ErrUnableToParseData
	}
	return id, nil
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("user=%s iat=%s", s.UserID, issuedAt)
}

// sessionFromClaims creates a SessionObject from validated token claims
func sessionFromClaims(claims *SessionClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToParseData
	}

	if claims.UserID() == "" {
		return nil, ErrUnableToParseData
	}

	issuedAt := claims.Issued()
	expiresAt := claims.Expires()

	return &SessionObject{
		UserID:         claims.UserID(),
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}
