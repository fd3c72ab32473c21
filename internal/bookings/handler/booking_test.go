package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cleanroom/internal/auth"
	"cleanroom/internal/bookings/service"
	"cleanroom/internal/bookings/workflow"
	apperrors "cleanroom/pkg/errors"
	"cleanroom/pkg/logger"
	"cleanroom/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockBookingService struct {
	submitFunc          func(ctx context.Context, s auth.Session, in workflow.Submission) (*model.Booking, error)
	listFunc            func(ctx context.Context, q workflow.Query) ([]*model.Booking, error)
	facultyDecisionFunc func(ctx context.Context, s auth.Session, docID string, d workflow.FacultyDecision) (*model.Booking, error)
	adminDecisionFunc   func(ctx context.Context, s auth.Session, docID string, d workflow.AdminDecision) (*model.Booking, error)
}

func (m *mockBookingService) Submit(ctx context.Context, s auth.Session, in workflow.Submission) (*model.Booking, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, s, in)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) List(ctx context.Context, q workflow.Query) ([]*model.Booking, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, q)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingService) ForStudent(ctx context.Context, s auth.Session) (workflow.RoleView, error) {
	return workflow.RoleView{}, nil
}

func (m *mockBookingService) ForFaculty(ctx context.Context, s auth.Session) (workflow.RoleView, error) {
	return workflow.RoleView{}, nil
}

func (m *mockBookingService) Get(ctx context.Context, s auth.Session, docID string) (*model.Booking, error) {
	return &model.Booking{DocID: docID}, nil
}

func (m *mockBookingService) FacultyDecision(ctx context.Context, s auth.Session, docID string, d workflow.FacultyDecision) (*model.Booking, error) {
	if m.facultyDecisionFunc != nil {
		return m.facultyDecisionFunc(ctx, s, docID, d)
	}
	return &model.Booking{DocID: docID}, nil
}

func (m *mockBookingService) AdminDecision(ctx context.Context, s auth.Session, docID string, d workflow.AdminDecision) (*model.Booking, error) {
	if m.adminDecisionFunc != nil {
		return m.adminDecisionFunc(ctx, s, docID, d)
	}
	return &model.Booking{DocID: docID}, nil
}

func (m *mockBookingService) CreateAdminBooking(ctx context.Context, s auth.Session, in workflow.AdminSelfBooking) (*model.Booking, error) {
	return &model.Booking{}, nil
}

func (m *mockBookingService) Summary(ctx context.Context, q workflow.Query) (workflow.Summary, error) {
	return workflow.Summary{}, nil
}

func (m *mockBookingService) Export(ctx context.Context, q workflow.Query) (service.Export, error) {
	return service.Export{Header: workflow.CsvHeader}, nil
}

func (m *mockBookingService) DeleteAll(ctx context.Context) (int64, error) {
	return 0, nil
}

type stubVerifier map[string]auth.Identity

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return auth.Identity{}, auth.ErrInvalidToken
}

type fakeLogin struct {
	token string
	err   error
}

func (f fakeLogin) Login(email, password string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return f.token, time.Date(2025, 5, 10, 17, 0, 0, 0, time.UTC), nil
}

type failingPinger struct{ err error }

func (p failingPinger) Ping(context.Context) error { return p.err }

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const (
	studentToken = "student-token"
	facultyToken = "faculty-token"
)

func newRouter(svc service.BookingService) *httprouter.Router {
	log := logger.Nop()
	verifier := stubVerifier{
		studentToken: {UID: "u1", Email: "f20220001@hyderabad.bits-pilani.ac.in", DisplayName: "A Student"},
		facultyToken: {UID: "u2", Email: "f20211878@hyderabad.bits-pilani.ac.in", DisplayName: "Faculty One"},
	}
	guard := auth.NewAuthenticator(nil, verifier, auth.NewRoleResolver("hyderabad.bits-pilani.ac.in"), log)

	router := httprouter.New()
	NewBookingHandler(svc, guard, log).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestSubmit_RequiresStudentSession(t *testing.T) {
	var got auth.Session
	svc := &mockBookingService{submitFunc: func(_ context.Context, s auth.Session, in workflow.Submission) (*model.Booking, error) {
		got = s
		return &model.Booking{DocID: "d1", Equipment: in.Equipment}, nil
	}}
	router := newRouter(svc)
	body := `{"equipment":"7","faculty":"faculty1","preferredDate":"2025-05-12","preferredTimeSlot":"8:00"}`

	w := do(router, http.MethodPost, "/api/v1/bookings", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodPost, "/api/v1/bookings", facultyToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, http.MethodPost, "/api/v1/bookings", studentToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, model.RoleStudent, got.Role)
	assert.Equal(t, "F20220001", got.StudentID)
}

func TestSubmit_RejectsUnknownFields(t *testing.T) {
	router := newRouter(&mockBookingService{})

	w := do(router, http.MethodPost, "/api/v1/bookings", studentToken, `{"status":"approved"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, errorCode(t, w))
}

func TestList_AdminOnly(t *testing.T) {
	router := newRouter(&mockBookingService{})

	w := do(router, http.MethodGet, "/api/v1/bookings", studentToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(t, w))
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    workflow.Query
		wantErr bool
	}{
		{"defaults", "/api/v1/bookings", workflow.Query{DateBucket: workflow.BucketAll}, false},
		{"all filters", "/api/v1/bookings?status=approved&equipment=7&date=Week",
			workflow.Query{Status: "approved", EquipmentCode: "7", DateBucket: workflow.BucketWeek}, false},
		{"bad bucket", "/api/v1/bookings?date=yesterday", workflow.Query{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseQuery(httptest.NewRequest(http.MethodGet, tt.url, nil))
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFacultyDecision(t *testing.T) {
	var gotDocID string
	var gotDecision workflow.FacultyDecision
	svc := &mockBookingService{facultyDecisionFunc: func(_ context.Context, s auth.Session, docID string, d workflow.FacultyDecision) (*model.Booking, error) {
		gotDocID, gotDecision = docID, d
		if s.FacultyID != "faculty1" {
			return nil, apperrors.Forbidden("wrong faculty")
		}
		return &model.Booking{DocID: docID, State: model.PendingAdmin()}, nil
	}}
	router := newRouter(svc)

	w := do(router, http.MethodPost, "/api/v1/bookings/id/d1/faculty-decision", facultyToken, `{"decision":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, gotDocID, "an unparsable decision must not reach the service")

	w = do(router, http.MethodPost, "/api/v1/bookings/id/d1/faculty-decision", facultyToken, `{"decision":"Approve","note":"ok"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "d1", gotDocID)
	assert.Equal(t, workflow.Approve, gotDecision.Decision)
	assert.Equal(t, "ok", gotDecision.Note)
	assert.Contains(t, w.Body.String(), "pending_admin")
}

func TestAdminDecision_FacultyForbidden(t *testing.T) {
	called := false
	svc := &mockBookingService{adminDecisionFunc: func(context.Context, auth.Session, string, workflow.AdminDecision) (*model.Booking, error) {
		called = true
		return nil, nil
	}}
	router := newRouter(svc)

	w := do(router, http.MethodPost, "/api/v1/bookings/id/d1/admin-decision", facultyToken, `{"decision":"reject","note":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}

func TestSessionHandler(t *testing.T) {
	tests := []struct {
		name     string
		login    fakeLogin
		body     string
		wantCode int
	}{
		{"issued", fakeLogin{token: "signed"}, `{"email":"a@b","password":"p"}`, http.StatusCreated},
		{"bad credentials", fakeLogin{err: auth.ErrInvalidCredentials}, `{"email":"a@b","password":"x"}`, http.StatusUnauthorized},
		{"disabled", fakeLogin{err: auth.ErrAdminLoginDisabled}, `{"email":"a@b","password":"x"}`, http.StatusServiceUnavailable},
		{"malformed", fakeLogin{token: "signed"}, `{"user":"a"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewSessionHandler(tt.login, logger.Nop()).RegisterRoutes(router)

			w := do(router, http.MethodPost, "/api/v1/admin/session", "", tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode == http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"token":"signed"`)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(failingPinger{err: errors.New("no route to host")}, logger.Nop()).RegisterRoutes(router)

	w := do(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	router = httprouter.New()
	NewHealthHandler(failingPinger{}, logger.Nop()).RegisterRoutes(router)
	w = do(router, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
