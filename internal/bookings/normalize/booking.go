// Package normalize converts booking documents between the loose shapes found
// in the document store and model.Booking.
//
// Documents were written by several generations of clients: requester fields
// appear nested under "student" or flat as name/studentId/studentEmail,
// equipment and time slots appear as plain codes or as {value, label} objects,
// and dates use whatever representation the writing client preferred. All of
// that is resolved here so nothing downstream needs fallback chains.
package normalize

import (
	"fmt"
	"strings"

	bookingerrors "cleanroom/internal/bookings/errors"
	"cleanroom/pkg/datetime"
	"cleanroom/pkg/model"
)

// Document field names.
const (
	FieldDocID             = "docId"
	FieldID                = "id"
	FieldStudent           = "student"
	FieldName              = "name"
	FieldStudentID         = "studentId"
	FieldStudentEmail      = "studentEmail"
	FieldUserType          = "userType"
	FieldUserTypeOther     = "userTypeOther"
	FieldDepartment        = "department"
	FieldEquipment         = "equipment"
	FieldEquipmentName     = "equipmentName"
	FieldFaculty           = "faculty"
	FieldFacultyName       = "facultyName"
	FieldDate              = "date"
	FieldPreferredDate     = "preferredDate"
	FieldPreferredTimeSlot = "preferredTimeSlot"
	FieldActualDate        = "actualDate"
	FieldActualTimeRange   = "actualTimeRange"
	FieldActualTimeSlot    = "actualTimeSlot"
	FieldPurpose           = "purpose"
	FieldDescription       = "description"
	FieldProcessSummary    = "processSummary"
	FieldProjectCodeName   = "projectCodeName"
	FieldSampleType        = "sampleType"
	FieldSampleHistory     = "sampleHistory"
	FieldAdditionalRemarks = "additionalRemarks"
	FieldStatus            = "status"
	FieldApprovalStatus    = "approvalStatus"
	FieldDecidedBy         = "decidedBy"
	FieldApprovalNotes     = "approvalNotes"
	FieldRejectionReason   = "rejectionReason"
	FieldLastModified      = "lastModified"
	FieldLastModifiedBy    = "lastModifiedBy"
	FieldSubmittedAt       = "submittedAt"
	FieldRequestDate       = "requestDate"
	FieldCreatedAt         = "createdAt"
	FieldCreatedBy         = "createdBy"
	FieldIsAdminCreated    = "isAdminCreated"
	FieldAdminCreated      = "adminCreated"
)

// Booking builds the canonical record from a raw document. It fails only when
// the document carries neither a docId nor an id.
func Booking(raw map[string]any) (*model.Booking, error) {
	if raw == nil {
		return nil, bookingerrors.ErrMalformedRecord
	}
	b := &model.Booking{
		DocID: text(raw[FieldDocID]),
		ID:    text(raw[FieldID]),
	}
	if b.DocID == "" && b.ID == "" {
		return nil, bookingerrors.ErrMalformedRecord
	}

	b.Requester = requester(raw)

	b.UserType = orPlaceholder(code(raw[FieldUserType]))
	b.UserTypeOther = text(raw[FieldUserTypeOther])
	b.Department = orPlaceholder(code(raw[FieldDepartment]))
	b.Equipment = orPlaceholder(code(raw[FieldEquipment]))
	b.Faculty = orPlaceholder(code(raw[FieldFaculty]))

	b.Date = datetime.Parse(raw[FieldDate])
	b.PreferredDate = datetime.Parse(raw[FieldPreferredDate])
	b.PreferredTimeSlot = orPlaceholder(code(raw[FieldPreferredTimeSlot]))
	b.ActualDate = datetime.Parse(raw[FieldActualDate])
	b.ActualTimeRange = timeRange(raw[FieldActualTimeRange])
	if b.ActualTimeRange == nil {
		b.ActualTimeRange = timeRange(raw[FieldActualTimeSlot])
	}

	b.Description = orPlaceholder(first(raw, FieldPurpose, FieldDescription, FieldProcessSummary))
	b.ProjectCodeName = orPlaceholder(text(raw[FieldProjectCodeName]))
	b.SampleType = orPlaceholder(text(raw[FieldSampleType]))
	b.SampleHistory = orPlaceholder(text(raw[FieldSampleHistory]))
	b.AdditionalRemarks = orPlaceholder(text(raw[FieldAdditionalRemarks]))

	b.ApprovalNotes = text(raw[FieldApprovalNotes])
	b.RejectionReason = text(raw[FieldRejectionReason])
	b.LastModified = datetime.Parse(raw[FieldLastModified])
	b.LastModifiedBy = text(raw[FieldLastModifiedBy])
	b.SubmittedAt = datetime.Parse(raw[FieldSubmittedAt])
	if b.SubmittedAt.IsZero() {
		b.SubmittedAt = datetime.Parse(raw[FieldRequestDate])
	}
	if b.SubmittedAt.IsZero() {
		b.SubmittedAt = datetime.Parse(raw[FieldCreatedAt])
	}

	b.AdminCreated = flag(raw[FieldIsAdminCreated]) || flag(raw[FieldAdminCreated])

	b.State, b.Corrupt = state(raw, b.RejectionReason)
	return b, nil
}

// Bookings normalizes a batch and reports the documents it had to skip.
func Bookings(raws []map[string]any) ([]*model.Booking, []error) {
	out := make([]*model.Booking, 0, len(raws))
	var skipped []error
	for i, raw := range raws {
		b, err := Booking(raw)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("document %d: %w", i, err))
			continue
		}
		out = append(out, b)
	}
	return out, skipped
}

func requester(raw map[string]any) model.Requester {
	var r model.Requester
	if nested, ok := raw[FieldStudent].(map[string]any); ok {
		r = model.Requester{
			Name:  text(nested["name"]),
			ID:    text(nested["id"]),
			Email: text(nested["email"]),
		}
	}
	if r.Name == "" {
		r.Name = text(raw[FieldName])
	}
	if r.ID == "" {
		r.ID = text(raw[FieldStudentID])
	}
	if r.Email == "" {
		r.Email = text(raw[FieldStudentEmail])
	}
	r.Email = strings.ToLower(r.Email)
	r.Name = orPlaceholder(r.Name)
	return r
}

// state rebuilds the approval state. The second result reports a stored
// status that contradicts the stored ledger.
func state(raw map[string]any, reason string) (model.State, bool) {
	status := model.NormalizeStatus(text(raw[FieldStatus]))
	by := model.Actor(strings.ToLower(text(raw[FieldDecidedBy])))

	ledgerRaw, hasLedger := raw[FieldApprovalStatus].(map[string]any)
	var ledger model.Ledger
	if hasLedger {
		ledger = model.Ledger{
			Faculty: model.ParseVerdict(text(ledgerRaw["faculty"])),
			Admin:   model.ParseVerdict(text(ledgerRaw["admin"])),
		}
	}

	switch model.Stage(status) {
	case model.StagePendingFaculty:
		return model.PendingFaculty(), hasLedger && model.StageFromLedger(ledger) != model.StagePendingFaculty
	case model.StagePendingAdmin:
		return model.PendingAdmin(), hasLedger && model.StageFromLedger(ledger) != model.StagePendingAdmin
	case model.StageApproved:
		if by == "" {
			by = model.ActorAdmin
		}
		faculty := model.VerdictApproved
		if hasLedger {
			faculty = ledger.Faculty
		}
		return model.Approved(by, faculty), hasLedger && model.StageFromLedger(ledger) != model.StageApproved
	case model.StageRejected:
		if by == "" {
			by = model.ActorAdmin
			if hasLedger && ledger.Admin != model.VerdictRejected && ledger.Faculty == model.VerdictRejected {
				by = model.ActorFaculty
			}
		}
		faculty := model.VerdictPending
		if hasLedger {
			faculty = ledger.Faculty
		}
		return model.Rejected(by, reason, faculty), hasLedger && model.StageFromLedger(ledger) != model.StageRejected
	default:
		return model.Unrecognized(status), false
	}
}

func timeRange(v any) *model.TimeRange {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	tr := &model.TimeRange{Start: text(m["start"]), End: text(m["end"])}
	if tr.Start == "" && tr.End == "" {
		return nil
	}
	return tr
}

func first(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := text(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

// code reads a plain code or the value of a {value, label} option object.
func code(v any) string {
	if m, ok := v.(map[string]any); ok {
		return text(m["value"])
	}
	return text(v)
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return strings.TrimSpace(s.String())
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func flag(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}

func orPlaceholder(s string) string {
	if s == "" {
		return model.NotSpecified
	}
	return s
}
