package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"cleanroom/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminIssuer = "cleanroom-admin"

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminAuthenticator checks the configured admin credentials and issues
// HS256 session tokens for them.
type AdminAuthenticator struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAdminAuthenticator(email, passwordHash, secret string, ttl time.Duration) *AdminAuthenticator {
	return &AdminAuthenticator{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

func (a *AdminAuthenticator) Enabled() bool {
	return a != nil && a.email != "" && len(a.passwordHash) > 0 && len(a.secret) > 0
}

// Login returns a signed session token for valid credentials.
func (a *AdminAuthenticator) Login(email, password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrAdminLoginDisabled
	}
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !emailOK || passErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := adminClaims{
		Role: string(model.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    adminIssuer,
			Subject:   a.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin session: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify accepts only tokens this authenticator issued.
func (a *AdminAuthenticator) Verify(token string) (Session, error) {
	if !a.Enabled() {
		return Session{}, ErrAdminLoginDisabled
	}
	var claims adminClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != string(model.RoleAdmin) || claims.Subject != a.email {
		return Session{}, ErrInvalidToken
	}
	return Session{
		Identity: Identity{UID: adminIssuer, Email: claims.Subject, DisplayName: "Admin"},
		Role:     model.RoleAdmin,
	}, nil
}

// IsAdminToken reports whether token looks like an admin session token,
// without checking its signature.
func IsAdminToken(token string) bool {
	var claims adminClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return false
	}
	return claims.Issuer == adminIssuer
}
