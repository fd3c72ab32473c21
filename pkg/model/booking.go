package model

import (
	"time"

	"cleanroom/pkg/datetime"
)

const (
	NotSpecified = "Not specified"

	EquipmentNone = "none"
	FacultyAdmin  = "admin"
)

type Requester struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

type TimeRange struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

func (r *TimeRange) Complete() bool {
	return r != nil && r.Start != "" && r.End != ""
}

// Booking is the canonical form of one equipment reservation request, as
// produced by the normalizer from whatever shape the document store returned.
type Booking struct {
	DocID string `json:"docId"`
	ID    string `json:"id"`

	Requester Requester `json:"student"`

	UserType      string `json:"userType"`
	UserTypeOther string `json:"userTypeOther,omitempty"`
	Department    string `json:"department"`
	Equipment     string `json:"equipment"`
	Faculty       string `json:"faculty"`

	// Date is the generic booking date some clients write; filters prefer it
	// over PreferredDate.
	Date              datetime.Value `json:"date"`
	PreferredDate     datetime.Value `json:"preferredDate"`
	PreferredTimeSlot string         `json:"preferredTimeSlot"`
	ActualDate        datetime.Value `json:"actualDate"`
	ActualTimeRange   *TimeRange     `json:"actualTimeRange,omitempty"`

	Description       string `json:"description"`
	ProjectCodeName   string `json:"projectCodeName"`
	SampleType        string `json:"sampleType"`
	SampleHistory     string `json:"sampleHistory"`
	AdditionalRemarks string `json:"additionalRemarks"`

	State State `json:"state"`

	ApprovalNotes   string         `json:"approvalNotes,omitempty"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	LastModified    datetime.Value `json:"lastModified"`
	LastModifiedBy  string         `json:"lastModifiedBy,omitempty"`
	SubmittedAt     datetime.Value `json:"submittedAt"`

	AdminCreated bool `json:"isAdminCreated"`

	// Corrupt marks a stored document whose status disagrees with its
	// approval ledger. Such records are excluded from role-scoped views.
	Corrupt bool `json:"-"`
}

// Clone returns a copy that shares no mutable state with b.
func (b *Booking) Clone() *Booking {
	c := *b
	if b.ActualTimeRange != nil {
		tr := *b.ActualTimeRange
		c.ActualTimeRange = &tr
	}
	return &c
}

func (b *Booking) Status() string {
	return b.State.Status()
}

// ScheduleDate is the date used by date filters: Date when present, otherwise
// the preferred date.
func (b *Booking) ScheduleDate() datetime.Value {
	if !b.Date.IsZero() {
		return b.Date
	}
	return b.PreferredDate
}

func (b *Booking) Touch(actor string, at time.Time) {
	b.LastModified = datetime.Of(at)
	b.LastModifiedBy = actor
}
