// Package auth turns bearer tokens into sessions: Firebase ID tokens for
// students and faculty, signed admin session tokens for administrators.
package auth

import (
	"context"
	"errors"

	"cleanroom/pkg/model"
)

var (
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrDomainNotAllowed   = errors.New("email domain is not allowed")
	ErrNotAuthorized      = errors.New("email is not authorized for this application")
	ErrInvalidCredentials = errors.New("invalid admin credentials")
	ErrAdminLoginDisabled = errors.New("admin login is not configured")
)

// Identity is what the identity provider vouches for.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Session is an authenticated caller and the role it acts in.
type Session struct {
	Identity
	Role model.Role `json:"role"`
	// FacultyID is set for faculty sessions.
	FacultyID string `json:"facultyId,omitempty"`
	// StudentID is set for student sessions.
	StudentID string `json:"studentId,omitempty"`
}

func (s Session) IsAdmin() bool {
	return s.Role == model.RoleAdmin
}

// Actor is the name recorded as lastModifiedBy.
func (s Session) Actor() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
