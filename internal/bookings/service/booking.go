package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cleanroom/internal/auth"
	bookingerrors "cleanroom/internal/bookings/errors"
	"cleanroom/internal/bookings/normalize"
	"cleanroom/internal/bookings/repository"
	"cleanroom/internal/bookings/validator"
	"cleanroom/internal/bookings/workflow"
	"cleanroom/internal/events"
	"cleanroom/pkg/config"
	apperrors "cleanroom/pkg/errors"
	"cleanroom/pkg/model"
	"cleanroom/pkg/sanitizer"
)

type BookingService interface {
	Submit(ctx context.Context, session auth.Session, in workflow.Submission) (*model.Booking, error)
	List(ctx context.Context, q workflow.Query) ([]*model.Booking, error)
	ForStudent(ctx context.Context, session auth.Session) (workflow.RoleView, error)
	ForFaculty(ctx context.Context, session auth.Session) (workflow.RoleView, error)
	Get(ctx context.Context, session auth.Session, docID string) (*model.Booking, error)
	FacultyDecision(ctx context.Context, session auth.Session, docID string, d workflow.FacultyDecision) (*model.Booking, error)
	AdminDecision(ctx context.Context, session auth.Session, docID string, d workflow.AdminDecision) (*model.Booking, error)
	CreateAdminBooking(ctx context.Context, session auth.Session, in workflow.AdminSelfBooking) (*model.Booking, error)
	Summary(ctx context.Context, q workflow.Query) (workflow.Summary, error)
	Export(ctx context.Context, q workflow.Query) (Export, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Export is the admin spreadsheet export: a fixed header and one row per
// booking.
type Export struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

type bookingService struct {
	store     repository.Store
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	store repository.Store,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &bookingService{
		store:     store,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

func (s *bookingService) Submit(ctx context.Context, session auth.Session, in workflow.Submission) (*model.Booking, error) {
	sanitizeSubmission(&in)
	in.Requester = model.Requester{
		Name:  sanitizer.NormalizeName(session.DisplayName),
		ID:    session.StudentID,
		Email: sanitizer.NormalizeEmail(session.Email),
	}

	if err := s.validator.Validate(&in); err != nil {
		s.cfg.Log.Warn("Booking submission failed validation",
			"email", in.Requester.Email,
			"error", err,
		)
		return nil, mapError(err, "")
	}

	b, err := workflow.NewSubmission(in, s.now())
	if err != nil {
		return nil, mapError(err, "")
	}

	if err := s.create(ctx, b); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking submitted",
		"doc_id", b.DocID,
		"id", b.ID,
		"equipment", b.Equipment,
		"faculty", b.Faculty,
	)
	s.publish(ctx, workflow.TransitionSubmitted, b, in.Requester.Email)
	return b, nil
}

func (s *bookingService) List(ctx context.Context, q workflow.Query) ([]*model.Booking, error) {
	records, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return workflow.FilterByQuery(records, q, s.now()), nil
}

func (s *bookingService) ForStudent(ctx context.Context, session auth.Session) (workflow.RoleView, error) {
	records, err := s.loadAll(ctx)
	if err != nil {
		return workflow.RoleView{}, err
	}
	return workflow.FilterForRole(records, model.RoleStudent, workflow.RoleContext{Email: session.Email}), nil
}

func (s *bookingService) ForFaculty(ctx context.Context, session auth.Session) (workflow.RoleView, error) {
	records, err := s.loadAll(ctx)
	if err != nil {
		return workflow.RoleView{}, err
	}
	return workflow.FilterForRole(records, model.RoleFaculty, workflow.RoleContext{FacultyID: session.FacultyID}), nil
}

func (s *bookingService) Get(ctx context.Context, session auth.Session, docID string) (*model.Booking, error) {
	b, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !canView(session, b) {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	return b, nil
}

func (s *bookingService) FacultyDecision(ctx context.Context, session auth.Session, docID string, d workflow.FacultyDecision) (*model.Booking, error) {
	b, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if session.FacultyID == "" || b.Faculty != session.FacultyID {
		s.cfg.Log.Warn("Faculty decision on a booking assigned to someone else",
			"doc_id", docID,
			"faculty", session.FacultyID,
			"assigned_to", b.Faculty,
		)
		return nil, apperrors.Forbidden("Booking is assigned to a different faculty member")
	}

	d.Note = sanitizer.NormalizeText(d.Note)
	d.Actor = session.Actor()
	next, transition, err := workflow.ApplyFacultyDecision(b, d, s.now())
	if err != nil {
		return nil, mapError(err, docID)
	}
	return s.commit(ctx, next, transition, d.Actor)
}

func (s *bookingService) AdminDecision(ctx context.Context, session auth.Session, docID string, d workflow.AdminDecision) (*model.Booking, error) {
	b, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}

	d.Note = sanitizer.NormalizeText(d.Note)
	d.AllocatedDate = sanitizer.NormalizeCode(d.AllocatedDate)
	if d.AllocatedTimeRange != nil {
		d.AllocatedTimeRange = &model.TimeRange{
			Start: sanitizer.NormalizeCode(d.AllocatedTimeRange.Start),
			End:   sanitizer.NormalizeCode(d.AllocatedTimeRange.End),
		}
	}
	d.Actor = session.Actor()
	next, transition, err := workflow.ApplyAdminDecision(b, d, s.now())
	if err != nil {
		return nil, mapError(err, docID)
	}
	if transition.IsVeto() {
		s.cfg.Log.Info("Admin overrode the approval order",
			"doc_id", docID,
			"from_status", b.Status(),
			"transition", transition,
		)
	}
	return s.commit(ctx, next, transition, d.Actor)
}

func (s *bookingService) CreateAdminBooking(ctx context.Context, session auth.Session, in workflow.AdminSelfBooking) (*model.Booking, error) {
	in.ExecutorName = sanitizer.NormalizeName(in.ExecutorName)
	in.ProcessDate = sanitizer.NormalizeCode(in.ProcessDate)
	in.StartTime = sanitizer.NormalizeCode(in.StartTime)
	in.EndTime = sanitizer.NormalizeCode(in.EndTime)
	in.ProcessSummary = sanitizer.NormalizeText(in.ProcessSummary)
	in.CreatedBy = session.Email

	b, err := workflow.CreateAdminSelfBooking(in, s.now())
	if err != nil {
		return nil, mapError(err, "")
	}
	if err := s.create(ctx, b); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Admin self-booking created",
		"doc_id", b.DocID,
		"id", b.ID,
		"created_by", in.CreatedBy,
	)
	s.publish(ctx, workflow.TransitionSelfBooking, b, session.Actor())
	return b, nil
}

func (s *bookingService) Summary(ctx context.Context, q workflow.Query) (workflow.Summary, error) {
	records, err := s.List(ctx, q)
	if err != nil {
		return workflow.Summary{}, err
	}
	return workflow.Summarize(records), nil
}

func (s *bookingService) Export(ctx context.Context, q workflow.Query) (Export, error) {
	records, err := s.List(ctx, q)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Header: workflow.CsvHeader,
		Rows:   workflow.ToCsvRows(records),
	}, nil
}

func (s *bookingService) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to delete bookings", "error", err)
		return deleted, apperrors.Internal("Failed to delete bookings", err)
	}
	s.cfg.Log.Warn("All bookings deleted", "count", deleted)
	return deleted, nil
}

func (s *bookingService) loadAll(ctx context.Context) ([]*model.Booking, error) {
	raws, err := s.store.List(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	records, skipped := normalize.Bookings(raws)
	for _, skipErr := range skipped {
		s.cfg.Log.Warn("Skipping unreadable booking document", "error", skipErr)
	}
	return records, nil
}

func (s *bookingService) load(ctx context.Context, docID string) (*model.Booking, error) {
	if strings.TrimSpace(docID) == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	raw, err := s.store.FindByDocID(ctx, docID)
	if err != nil {
		if !errors.Is(err, bookingerrors.ErrNotFound) {
			s.cfg.Log.Error("Failed to retrieve booking", "doc_id", docID, "error", err)
		}
		return nil, mapError(err, docID)
	}
	b, err := normalize.Booking(raw)
	if err != nil {
		return nil, mapError(err, docID)
	}
	return b, nil
}

func (s *bookingService) create(ctx context.Context, b *model.Booking) error {
	docID, err := s.store.Create(ctx, normalize.Document(b))
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "id", b.ID, "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}
	b.DocID = docID
	return nil
}

func (s *bookingService) commit(ctx context.Context, next *model.Booking, transition workflow.Transition, actor string) (*model.Booking, error) {
	if err := s.store.Write(ctx, next.DocID, normalize.StatePatch(next)); err != nil {
		if !errors.Is(err, bookingerrors.ErrNotFound) {
			s.cfg.Log.Error("Failed to write booking decision",
				"doc_id", next.DocID,
				"transition", transition,
				"error", err,
			)
		}
		return nil, mapError(err, next.DocID)
	}

	s.cfg.Log.Info("Booking decision recorded",
		"doc_id", next.DocID,
		"transition", transition,
		"status", next.Status(),
		"actor", actor,
	)
	s.publish(ctx, transition, next, actor)
	return next, nil
}

// publish reports a committed transition. The write already happened, so a
// broker failure is logged and not returned.
func (s *bookingService) publish(ctx context.Context, transition workflow.Transition, b *model.Booking, actor string) {
	e := events.Event{
		Transition: string(transition),
		DocID:      b.DocID,
		BookingID:  b.ID,
		Status:     b.Status(),
		Ledger:     b.State.Ledger(),
		Veto:       transition.IsVeto(),
		Actor:      actor,
		Equipment:  b.Equipment,
		Faculty:    b.Faculty,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"doc_id", b.DocID,
			"event_type", e.Type(),
			"error", err,
		)
	}
}

func canView(session auth.Session, b *model.Booking) bool {
	switch session.Role {
	case model.RoleAdmin:
		return true
	case model.RoleFaculty:
		return session.FacultyID != "" && b.Faculty == session.FacultyID
	case model.RoleStudent:
		return session.Email != "" && strings.EqualFold(b.Requester.Email, session.Email)
	}
	return false
}

func sanitizeSubmission(in *workflow.Submission) {
	in.UserType = strings.ToLower(sanitizer.NormalizeCode(in.UserType))
	in.UserTypeOther = sanitizer.TrimAndNormalize(in.UserTypeOther)
	in.Department = strings.ToLower(sanitizer.NormalizeCode(in.Department))
	in.Equipment = sanitizer.NormalizeCode(in.Equipment)
	in.Faculty = sanitizer.NormalizeCode(in.Faculty)
	in.PreferredDate = sanitizer.NormalizeCode(in.PreferredDate)
	in.PreferredTimeSlot = sanitizer.NormalizeCode(in.PreferredTimeSlot)
	in.Description = sanitizer.NormalizeText(in.Description)
	in.ProjectCodeName = sanitizer.TrimAndNormalize(in.ProjectCodeName)
	in.SampleType = sanitizer.TrimAndNormalize(in.SampleType)
	in.SampleHistory = sanitizer.NormalizeText(in.SampleHistory)
	in.AdditionalRemarks = sanitizer.NormalizeText(in.AdditionalRemarks)
}

// mapError translates domain errors into the HTTP-facing taxonomy.
func mapError(err error, docID string) error {
	var validationErrs validator.ValidationErrors
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.As(err, &validationErrs):
		return apperrors.Validation("Booking validation failed", map[string]any{
			"fields": validationErrs,
		})
	case errors.Is(err, bookingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", docID)
	case errors.Is(err, bookingerrors.ErrInvalidTransition):
		return apperrors.Conflict(err.Error())
	case errors.Is(err, bookingerrors.ErrMissingSchedule),
		errors.Is(err, bookingerrors.ErrMissingReason),
		errors.Is(err, bookingerrors.ErrInvalidDecision),
		errors.Is(err, bookingerrors.ErrMalformedRecord):
		return apperrors.InvalidInput(err.Error())
	default:
		return apperrors.Internal("Booking operation failed", err)
	}
}
