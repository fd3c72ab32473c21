// Package workflow holds the booking approval state machine and the
// projections built on top of it. Every function is pure: records passed in
// are never modified, and nothing here touches storage.
package workflow

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	bookingerrors "cleanroom/internal/bookings/errors"
	"cleanroom/internal/bookings/validator"
	"cleanroom/pkg/datetime"
	"cleanroom/pkg/model"

	"github.com/google/uuid"
)

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case Approve:
		return Approve, nil
	case Reject:
		return Reject, nil
	}
	return "", fmt.Errorf("%w: %q", bookingerrors.ErrInvalidDecision, s)
}

// Transition names the edge an admin decision took.
type Transition string

const (
	TransitionFacultyApprove Transition = "faculty_approve"
	TransitionFacultyReject  Transition = "faculty_reject"
	TransitionAdminApprove   Transition = "admin_approve"
	TransitionAdminReject    Transition = "admin_reject"
	TransitionVetoApprove    Transition = "veto_approve"
	TransitionVetoReject     Transition = "veto_reject"
	TransitionSelfBooking    Transition = "admin_self_booking"
	TransitionSubmitted      Transition = "submitted"
)

// IsVeto reports whether the transition bypassed the faculty then admin order.
func (t Transition) IsVeto() bool {
	return t == TransitionVetoApprove || t == TransitionVetoReject
}

type FacultyDecision struct {
	Decision Decision
	Note     string
	Actor    string
}

type AdminDecision struct {
	Decision           Decision
	Note               string
	AllocatedDate      string
	AllocatedTimeRange *model.TimeRange
	Actor              string
}

// ApplyFacultyDecision moves a booking out of pending_faculty.
func ApplyFacultyDecision(b *model.Booking, d FacultyDecision, now time.Time) (*model.Booking, Transition, error) {
	if b == nil || b.DocID == "" {
		return nil, "", bookingerrors.ErrMalformedRecord
	}
	if b.State.Stage() != model.StagePendingFaculty {
		return nil, "", fmt.Errorf("%w: faculty cannot decide on a %s booking", bookingerrors.ErrInvalidTransition, b.Status())
	}

	next := b.Clone()
	var t Transition
	switch d.Decision {
	case Approve:
		next.State = model.PendingAdmin()
		if d.Note != "" {
			next.ApprovalNotes = d.Note
		}
		t = TransitionFacultyApprove
	case Reject:
		reason := strings.TrimSpace(d.Note)
		next.State = model.Rejected(model.ActorFaculty, reason, model.VerdictRejected)
		next.RejectionReason = reason
		t = TransitionFacultyReject
	default:
		return nil, "", bookingerrors.ErrInvalidDecision
	}
	next.Touch(d.Actor, now)
	return next, t, nil
}

// ApplyAdminDecision applies an admin decision from any state. Deciding on a
// booking that is not pending_admin is a veto.
func ApplyAdminDecision(b *model.Booking, d AdminDecision, now time.Time) (*model.Booking, Transition, error) {
	if b == nil || b.DocID == "" {
		return nil, "", bookingerrors.ErrMalformedRecord
	}
	veto := b.State.Stage() != model.StagePendingAdmin
	faculty := b.State.Ledger().Faculty

	next := b.Clone()
	var t Transition
	switch d.Decision {
	case Approve:
		date := strings.TrimSpace(d.AllocatedDate)
		if date == "" || !d.AllocatedTimeRange.Complete() {
			return nil, "", bookingerrors.ErrMissingSchedule
		}
		next.State = model.Approved(model.ActorAdmin, faculty)
		next.ActualDate = datetime.Parse(date)
		next.ActualTimeRange = &model.TimeRange{
			Start: d.AllocatedTimeRange.Start,
			End:   d.AllocatedTimeRange.End,
		}
		if d.Note != "" {
			next.ApprovalNotes = d.Note
		}
		t = TransitionAdminApprove
		if veto {
			t = TransitionVetoApprove
		}
	case Reject:
		reason := strings.TrimSpace(d.Note)
		if reason == "" {
			return nil, "", bookingerrors.ErrMissingReason
		}
		next.State = model.Rejected(model.ActorAdmin, reason, faculty)
		next.RejectionReason = reason
		t = TransitionAdminReject
		if veto {
			t = TransitionVetoReject
		}
	default:
		return nil, "", bookingerrors.ErrInvalidDecision
	}
	next.Touch(d.Actor, now)
	return next, t, nil
}

const (
	AdminRequesterID    = "admin"
	AdminRequesterEmail = "admin@cleanroom.bits-pilani.ac.in"
	AdminCategory       = "admin"
)

type AdminSelfBooking struct {
	ExecutorName   string `json:"executorName"`
	ProcessDate    string `json:"processDate"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	ProcessSummary string `json:"processSummary"`
	CreatedBy      string `json:"-"`
}

var adminSerial = func() int { return rand.Intn(10000) }

// CreateAdminSelfBooking builds a booking that skips the approval chain.
func CreateAdminSelfBooking(in AdminSelfBooking, now time.Time) (*model.Booking, error) {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"executorName", in.ExecutorName},
		{"processDate", in.ProcessDate},
		{"startTime", in.StartTime},
		{"endTime", in.EndTime},
		{"processSummary", in.ProcessSummary},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, validator.Missing(missing...)
	}

	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = AdminRequesterEmail
	}
	name := strings.TrimSpace(in.ExecutorName)
	b := &model.Booking{
		ID: fmt.Sprintf("ADMIN-%d", adminSerial()),
		Requester: model.Requester{
			Name:  name,
			ID:    AdminRequesterID,
			Email: AdminRequesterEmail,
		},
		UserType:    AdminCategory,
		Department:  AdminCategory,
		Equipment:   model.EquipmentNone,
		Faculty:     model.FacultyAdmin,
		ActualDate:  datetime.Parse(strings.TrimSpace(in.ProcessDate)),
		Description: strings.TrimSpace(in.ProcessSummary),
		ActualTimeRange: &model.TimeRange{
			Start: strings.TrimSpace(in.StartTime),
			End:   strings.TrimSpace(in.EndTime),
		},
		State:        model.Approved(model.ActorAdmin, model.VerdictApproved),
		SubmittedAt:  datetime.Of(now),
		AdminCreated: true,
	}
	b.Touch(createdBy, now)
	return b, nil
}

// Submission is a requester's booking request.
type Submission struct {
	UserType          string `json:"userType" validate:"omitempty,oneof=tbi mtech btech phd other"`
	UserTypeOther     string `json:"userTypeOther" validate:"required_if=UserType other,max=200"`
	Department        string `json:"department" validate:"omitempty,department"`
	Equipment         string `json:"equipment" validate:"required,equipment_code"`
	Faculty           string `json:"faculty" validate:"required,faculty_id"`
	PreferredDate     string `json:"preferredDate" validate:"required,date"`
	PreferredTimeSlot string `json:"preferredTimeSlot" validate:"required,time_slot"`
	Description       string `json:"description" validate:"max=5000"`
	ProjectCodeName   string `json:"projectCodeName" validate:"max=200"`
	SampleType        string `json:"sampleType" validate:"max=500"`
	SampleHistory     string `json:"sampleHistory" validate:"max=2000"`
	AdditionalRemarks string `json:"additionalRemarks" validate:"max=2000"`

	Requester model.Requester `json:"-"`
}

// NewSubmission builds a fresh pending_faculty booking from a request.
func NewSubmission(in Submission, now time.Time) (*model.Booking, error) {
	var missing []string
	if strings.TrimSpace(in.Equipment) == "" {
		missing = append(missing, "equipment")
	}
	if strings.TrimSpace(in.Faculty) == "" {
		missing = append(missing, "faculty")
	}
	if strings.TrimSpace(in.PreferredDate) == "" {
		missing = append(missing, "preferredDate")
	}
	if strings.TrimSpace(in.PreferredTimeSlot) == "" {
		missing = append(missing, "preferredTimeSlot")
	}
	if len(missing) > 0 {
		return nil, validator.Missing(missing...)
	}

	userTypeOther := ""
	if in.UserType == "other" {
		userTypeOther = in.UserTypeOther
	}
	b := &model.Booking{
		ID:                uuid.NewString(),
		Requester:         in.Requester,
		UserType:          in.UserType,
		UserTypeOther:     userTypeOther,
		Department:        in.Department,
		Equipment:         in.Equipment,
		Faculty:           in.Faculty,
		PreferredDate:     datetime.Parse(in.PreferredDate),
		PreferredTimeSlot: in.PreferredTimeSlot,
		Description:       in.Description,
		ProjectCodeName:   in.ProjectCodeName,
		SampleType:        in.SampleType,
		SampleHistory:     in.SampleHistory,
		AdditionalRemarks: in.AdditionalRemarks,
		State:             model.PendingFaculty(),
		SubmittedAt:       datetime.Of(now),
	}
	b.Touch(in.Requester.Email, now)
	return b, nil
}
