package handler

import (
	"net/http"

	"cleanroom/internal/auth"
	"cleanroom/internal/bookings/service"
	"cleanroom/internal/bookings/workflow"
	apperrors "cleanroom/pkg/errors"
	httputil "cleanroom/pkg/http"
	"cleanroom/pkg/logger"
	"cleanroom/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Guard admits a request only for an authenticated caller in one of roles and
// puts the caller's auth.Session on the request context.
type Guard interface {
	Require(next httprouter.Handle, roles ...model.Role) httprouter.Handle
}

type BookingHandler struct {
	service service.BookingService
	guard   Guard
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, guard Guard, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

type facultyDecisionRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

type adminDecisionRequest struct {
	Decision           string           `json:"decision"`
	Note               string           `json:"note"`
	AllocatedDate      string           `json:"allocatedDate"`
	AllocatedTimeRange *model.TimeRange `json:"allocatedTimeRange"`
}

type deleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in workflow.Submission
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	booking, err := h.service.Submit(r.Context(), h.session(r), in)
	if err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	bookings, err := h.service.List(r.Context(), q)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	h.writeSuccess(w, "List", bookings)
}

func (h *BookingHandler) Mine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := h.service.ForStudent(r.Context(), h.session(r))
	if err != nil {
		h.writeError(w, "Mine", err)
		return
	}
	h.writeSuccess(w, "Mine", view)
}

func (h *BookingHandler) Faculty(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := h.service.ForFaculty(r.Context(), h.session(r))
	if err != nil {
		h.writeError(w, "Faculty", err)
		return
	}
	h.writeSuccess(w, "Faculty", view)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Get(r.Context(), h.session(r), ps.ByName("docId"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) FacultyDecision(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req facultyDecisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "FacultyDecision", err)
		return
	}
	decision, err := workflow.ParseDecision(req.Decision)
	if err != nil {
		h.writeError(w, "FacultyDecision", apperrors.InvalidInput(err.Error()))
		return
	}

	booking, err := h.service.FacultyDecision(r.Context(), h.session(r), ps.ByName("docId"), workflow.FacultyDecision{
		Decision: decision,
		Note:     req.Note,
	})
	if err != nil {
		h.writeError(w, "FacultyDecision", err)
		return
	}
	h.writeSuccess(w, "FacultyDecision", booking)
}

func (h *BookingHandler) AdminDecision(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req adminDecisionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AdminDecision", err)
		return
	}
	decision, err := workflow.ParseDecision(req.Decision)
	if err != nil {
		h.writeError(w, "AdminDecision", apperrors.InvalidInput(err.Error()))
		return
	}

	booking, err := h.service.AdminDecision(r.Context(), h.session(r), ps.ByName("docId"), workflow.AdminDecision{
		Decision:           decision,
		Note:               req.Note,
		AllocatedDate:      req.AllocatedDate,
		AllocatedTimeRange: req.AllocatedTimeRange,
	})
	if err != nil {
		h.writeError(w, "AdminDecision", err)
		return
	}
	h.writeSuccess(w, "AdminDecision", booking)
}

func (h *BookingHandler) CreateAdminBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in workflow.AdminSelfBooking
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, "CreateAdminBooking", err)
		return
	}

	booking, err := h.service.CreateAdminBooking(r.Context(), h.session(r), in)
	if err != nil {
		h.writeError(w, "CreateAdminBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateAdminBooking", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}
	summary, err := h.service.Summary(r.Context(), q)
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}
	h.writeSuccess(w, "Summary", summary)
}

func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}
	export, err := h.service.Export(r.Context(), q)
	if err != nil {
		h.writeError(w, "Export", err)
		return
	}
	h.writeSuccess(w, "Export", export)
}

func (h *BookingHandler) DeleteAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	deleted, err := h.service.DeleteAll(r.Context())
	if err != nil {
		h.writeError(w, "DeleteAll", err)
		return
	}
	h.writeSuccess(w, "DeleteAll", deleteAllResponse{Deleted: deleted})
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	admin := func(next httprouter.Handle) httprouter.Handle {
		return h.guard.Require(next, model.RoleAdmin)
	}

	router.POST("/api/v1/bookings", h.guard.Require(h.Submit, model.RoleStudent))
	router.GET("/api/v1/bookings", admin(h.List))
	router.DELETE("/api/v1/bookings", admin(h.DeleteAll))
	router.GET("/api/v1/bookings/mine", h.guard.Require(h.Mine, model.RoleStudent))
	router.GET("/api/v1/bookings/faculty", h.guard.Require(h.Faculty, model.RoleFaculty))
	router.GET("/api/v1/bookings/summary", admin(h.Summary))
	router.GET("/api/v1/bookings/export", admin(h.Export))
	router.POST("/api/v1/bookings/admin", admin(h.CreateAdminBooking))
	router.GET("/api/v1/bookings/id/:docId", h.guard.Require(h.GetByID))
	router.POST("/api/v1/bookings/id/:docId/faculty-decision", h.guard.Require(h.FacultyDecision, model.RoleFaculty))
	router.POST("/api/v1/bookings/id/:docId/admin-decision", admin(h.AdminDecision))
}

func (h *BookingHandler) session(r *http.Request) auth.Session {
	s, _ := auth.SessionFromContext(r.Context())
	return s
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// parseQuery reads the admin dashboard filters: status, equipment and date.
func parseQuery(r *http.Request) (workflow.Query, error) {
	values := r.URL.Query()
	bucket, ok := workflow.ParseDateBucket(values.Get("date"))
	if !ok {
		return workflow.Query{}, apperrors.InvalidInput("date must be one of: all, today, tomorrow, week, month")
	}
	return workflow.Query{
		Status:        values.Get("status"),
		EquipmentCode: values.Get("equipment"),
		DateBucket:    bucket,
	}, nil
}
