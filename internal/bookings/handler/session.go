package handler

import (
	"net/http"
	"time"

	"cleanroom/internal/auth"
	httputil "cleanroom/pkg/http"
	"cleanroom/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// AdminLogin exchanges admin credentials for a session token.
type AdminLogin interface {
	Login(email, password string) (string, time.Time, error)
}

type SessionHandler struct {
	admin AdminLogin
	log   *logger.Logger
}

func NewSessionHandler(admin AdminLogin, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		admin: admin,
		log:   log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateSession", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	token, expiresAt, err := h.admin.Login(req.Email, req.Password)
	if err != nil {
		h.log.Warn("Admin login failed",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		if writeErr := httputil.WriteError(w, auth.AsAppError(err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateSession", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	h.log.Info("Admin session issued", "expires_at", expiresAt)
	if err := httputil.WriteCreated(w, loginResponse{Token: token, ExpiresAt: expiresAt}); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateSession", "operation", "WriteCreated", "error", err)
	}
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/admin/session", h.Create)
}
