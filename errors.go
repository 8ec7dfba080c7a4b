package tasks

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds       = "auth_invalid_credentials"
	TextCodeAuthRequired       = "auth_required"
	TextCodeEmptyPassword      = "auth_empty_password"
	TextCodeSessionNotFound    = "auth_session_not_found"
	TextCodeSessionDecodeError = "auth_session_decode_error"
	TextCodeClaimsMappingError = "auth_claims_mapping_error"
	TextCodeTokenExpired       = "auth_token_expired"
	TextCodeTokenMalformed     = "auth_token_malformed"
	TextCodeEmailTaken         = "account_email_taken"
	TextCodeTaskNotFound       = "task_not_found"
	TextCodeNothingToUpdate    = "task_nothing_to_update"
)

// ErrIdentityNotFound is returned when a user record cannot be resolved.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is the generic credential failure. It is shared
// by the unknown-email and wrong-password paths so callers cannot tell the two
// apart and enumerate accounts.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrAuthenticationRequired is returned when a protected route is hit without
// a resolvable session.
var ErrAuthenticationRequired = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeAuthRequired).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrUnableToFindSession is the error when the request has no session cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode the token from the session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse claims data", errors.CategoryBadInput).
	WithTextCode(TextCodeClaimsMappingError).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned for tokens past their exp claim.
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers any token that fails parsing or signature checks.
var ErrTokenMalformed = errors.New("session token malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateEmail is returned when registration hits the unique email index.
var ErrDuplicateEmail = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrTaskNotFound covers both a genuinely absent task and a task owned by a
// different user. The two outcomes must stay indistinguishable.
var ErrTaskNotFound = errors.New("task not found", errors.CategoryNotFound).
	WithTextCode(TextCodeTaskNotFound).
	WithCode(errors.CodeNotFound)

// ErrNothingToUpdate is returned for an update payload with no fields set.
var ErrNothingToUpdate = errors.New("nothing to update", errors.CategoryValidation).
	WithTextCode(TextCodeNothingToUpdate).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// isUniqueViolation matches the driver-specific unique constraint errors for
// the two supported backends (modernc sqlite and postgres).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE=23505") ||
		strings.Contains(msg, "duplicate key value")
}
