package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "cleanroom/pkg/errors"
	"cleanroom/pkg/logger"
	"cleanroom/pkg/model"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testDomain = "hyderabad.bits-pilani.ac.in"
	testSecret = "0123456789abcdef0123456789abcdef"
	adminEmail = "cleanroom-admin@hyderabad.bits-pilani.ac.in"
	adminPass  = "correct horse"
)

func newAdmin(t *testing.T) *AdminAuthenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAdminAuthenticator(adminEmail, string(hash), testSecret, time.Hour)
}

type fakeIDTokens struct {
	tokens map[string]*firebaseauth.Token
}

func (f fakeIDTokens) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("ID token has expired")
}

func firebaseToken(uid, email, name string) *firebaseauth.Token {
	return &firebaseauth.Token{UID: uid, Claims: map[string]any{"email": email, "name": name}}
}

func TestRoleResolver(t *testing.T) {
	r := NewRoleResolver(testDomain)

	tests := []struct {
		name        string
		email       string
		wantRole    model.Role
		wantFaculty string
		wantStudent string
		wantErr     error
	}{
		{name: "student", email: "f20210001@hyderabad.bits-pilani.ac.in", wantRole: model.RoleStudent, wantStudent: "F20210001"},
		{name: "phd student upper case", email: "P20230042@Hyderabad.bits-pilani.ac.in", wantRole: model.RoleStudent, wantStudent: "P20230042"},
		{name: "whitelisted faculty", email: "f20213183@hyderabad.bits-pilani.ac.in", wantRole: model.RoleFaculty, wantFaculty: "faculty2"},
		{name: "unlisted staff", email: "someone@hyderabad.bits-pilani.ac.in", wantErr: ErrNotAuthorized},
		{name: "other domain", email: "f20210001@gmail.com", wantErr: ErrDomainNotAllowed},
		{name: "lookalike domain", email: "f1@evilhyderabad.bits-pilani.ac.in", wantErr: ErrDomainNotAllowed},
		{name: "empty", email: "", wantErr: ErrDomainNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := r.Resolve(Identity{Email: tt.email})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, s.Role)
			assert.Equal(t, tt.wantFaculty, s.FacultyID)
			assert.Equal(t, tt.wantStudent, s.StudentID)
		})
	}
}

func TestAdminLoginAndVerify(t *testing.T) {
	a := newAdmin(t)

	_, _, err := a.Login(adminEmail, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.Login("other@hyderabad.bits-pilani.ac.in", adminPass)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, expiresAt, err := a.Login(" Cleanroom-Admin@hyderabad.bits-pilani.ac.in ", adminPass)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)
	assert.True(t, IsAdminToken(token))

	s, err := a.Verify(token)
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())
	assert.Equal(t, adminEmail, s.Email)
}

func TestAdminVerify_RejectsExpiredAndForeignTokens(t *testing.T) {
	a := newAdmin(t)
	token, _, err := a.Login(adminEmail, adminPass)
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAdminAuthenticator(adminEmail, string(a.passwordHash), "ffffffffffffffffffffffffffffffff", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, adminClaims{
		Role:             string(model.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{Issuer: adminIssuer, Subject: adminEmail, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newAdmin(t).Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminLogin_Disabled(t *testing.T) {
	var a *AdminAuthenticator
	_, _, err := a.Login(adminEmail, adminPass)
	assert.ErrorIs(t, err, ErrAdminLoginDisabled)

	_, _, err = NewAdminAuthenticator("", "", "", time.Hour).Login(adminEmail, adminPass)
	assert.ErrorIs(t, err, ErrAdminLoginDisabled)
}

func TestAuthenticate(t *testing.T) {
	admin := newAdmin(t)
	adminToken, _, err := admin.Login(adminEmail, adminPass)
	require.NoError(t, err)

	verifier := NewFirebaseVerifier(fakeIDTokens{tokens: map[string]*firebaseauth.Token{
		"student-token": firebaseToken("u1", "f20210001@hyderabad.bits-pilani.ac.in", "A Student"),
		"outsider":      firebaseToken("u2", "x@gmail.com", "Outsider"),
	}})
	a := NewAuthenticator(admin, verifier, NewRoleResolver(testDomain), logger.Nop())
	ctx := context.Background()

	s, err := a.Authenticate(ctx, adminToken)
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())

	s, err = a.Authenticate(ctx, "student-token")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, s.Role)
	assert.Equal(t, "A Student", s.Actor())
	assert.Equal(t, "u1", s.UID)

	_, err = a.Authenticate(ctx, "outsider")
	assert.ErrorIs(t, err, ErrDomainNotAllowed)

	_, err = a.Authenticate(ctx, "expired")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	noAdmin := NewAuthenticator(nil, verifier, NewRoleResolver(testDomain), logger.Nop())
	_, err = noAdmin.Authenticate(ctx, adminToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequire(t *testing.T) {
	verifier := NewFirebaseVerifier(fakeIDTokens{tokens: map[string]*firebaseauth.Token{
		"student-token": firebaseToken("u1", "f20210001@hyderabad.bits-pilani.ac.in", "A Student"),
		"outsider":      firebaseToken("u2", "x@gmail.com", "Outsider"),
	}})
	a := NewAuthenticator(nil, verifier, NewRoleResolver(testDomain), logger.Nop())

	var got Session
	handle := a.Require(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}, model.RoleStudent)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "Bearer expired", http.StatusUnauthorized},
		{"wrong domain", "Bearer outsider", http.StatusForbidden},
		{"student", "Bearer student-token", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handle(rec, r, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
	assert.Equal(t, "F20210001", got.StudentID)

	facultyOnly := a.Require(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("student reached a faculty route")
	}, model.RoleFaculty)
	r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/faculty", nil)
	r.Header.Set("Authorization", "Bearer student-token")
	rec := httptest.NewRecorder()
	facultyOnly(rec, r, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAsAppError(t *testing.T) {
	assert.Equal(t, apperrors.CodeForbidden, AsAppError(ErrNotAuthorized).Code)
	assert.Equal(t, apperrors.CodeUnauthorized, AsAppError(ErrInvalidCredentials).Code)
	assert.Equal(t, apperrors.CodeUnavailable, AsAppError(ErrAdminLoginDisabled).Code)
	assert.Equal(t, ErrInvalidToken.Error(), AsAppError(errors.Join(ErrInvalidToken, errors.New("kid mismatch"))).Message)
}
