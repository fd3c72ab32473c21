package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"

	apperrors "cleanroom/pkg/errors"
	httputil "cleanroom/pkg/http"
	"cleanroom/pkg/logger"
	"cleanroom/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Authenticator resolves bearer tokens. Admin session tokens are checked
// locally; everything else goes to the identity provider and then through
// role resolution.
type Authenticator struct {
	admin    *AdminAuthenticator
	verifier TokenVerifier
	roles    *RoleResolver
	log      *logger.Logger
}

func NewAuthenticator(admin *AdminAuthenticator, verifier TokenVerifier, roles *RoleResolver, log *logger.Logger) *Authenticator {
	return &Authenticator{
		admin:    admin,
		verifier: verifier,
		roles:    roles,
		log:      log,
	}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrMissingToken
	}
	if IsAdminToken(token) {
		if !a.admin.Enabled() {
			return Session{}, ErrInvalidToken
		}
		return a.admin.Verify(token)
	}
	if a.verifier == nil {
		return Session{}, ErrInvalidToken
	}
	id, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return Session{}, err
	}
	return a.roles.Resolve(id)
}

// Require wraps a route so it only runs for an authenticated caller in one of
// roles. With no roles any authenticated caller is accepted.
func (a *Authenticator) Require(next httprouter.Handle, roles ...model.Role) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		session, err := a.Authenticate(r.Context(), httputil.BearerToken(r))
		if err != nil {
			a.log.Warn("Authentication failed",
				"path", r.URL.Path,
				"method", r.Method,
				"error", err,
			)
			a.writeError(w, AsAppError(err))
			return
		}
		if !allowed(session, roles) {
			a.writeError(w, apperrors.Forbidden("this action is not available to "+string(session.Role)+" accounts"))
			return
		}
		next(w, r.WithContext(WithSession(r.Context(), session)), ps)
	}
}

func allowed(s Session, roles []model.Role) bool {
	return len(roles) == 0 || slices.Contains(roles, s.Role)
}

func (a *Authenticator) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		a.log.Error("failed to write error response", "operation", "WriteError", "error", writeErr)
	}
}

// AsAppError maps authentication failures onto HTTP errors.
func AsAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ErrDomainNotAllowed), errors.Is(err, ErrNotAuthorized):
		return apperrors.Forbidden(err.Error())
	case errors.Is(err, ErrAdminLoginDisabled):
		return apperrors.Unavailable("admin login")
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidCredentials):
		return apperrors.Unauthorized(rootMessage(err))
	default:
		return apperrors.Unauthorized(ErrInvalidToken.Error())
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{ErrMissingToken, ErrInvalidCredentials, ErrInvalidToken} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
