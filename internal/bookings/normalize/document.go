package normalize

import (
	"cleanroom/pkg/datetime"
	"cleanroom/pkg/model"
)

// Document renders a booking as a storage document. Status and approvalStatus
// are both derived from the booking's State; display names are denormalized
// for clients that read documents directly.
func Document(b *model.Booking) map[string]any {
	doc := map[string]any{
		FieldID: b.ID,
		FieldStudent: map[string]any{
			"name":  b.Requester.Name,
			"id":    b.Requester.ID,
			"email": b.Requester.Email,
		},
		FieldName:              b.Requester.Name,
		FieldStudentID:         b.Requester.ID,
		FieldStudentEmail:      b.Requester.Email,
		FieldUserType:          b.UserType,
		FieldDepartment:        b.Department,
		FieldEquipment:         b.Equipment,
		FieldEquipmentName:     model.DescribeEquipment(b.Equipment),
		FieldFaculty:           b.Faculty,
		FieldFacultyName:       model.DescribeFaculty(b.Faculty),
		FieldPreferredTimeSlot: b.PreferredTimeSlot,
		FieldDescription:       b.Description,
		FieldProjectCodeName:   b.ProjectCodeName,
		FieldSampleType:        b.SampleType,
		FieldSampleHistory:     b.SampleHistory,
		FieldAdditionalRemarks: b.AdditionalRemarks,
		FieldIsAdminCreated:    b.AdminCreated,
		FieldAdminCreated:      b.AdminCreated,
	}
	if b.DocID != "" {
		doc[FieldDocID] = b.DocID
	}
	if b.UserTypeOther != "" {
		doc[FieldUserTypeOther] = b.UserTypeOther
	}
	if b.AdminCreated {
		doc[FieldProcessSummary] = b.Description
		doc[FieldCreatedBy] = b.LastModifiedBy
	}
	putDate(doc, FieldDate, b.Date)
	putDate(doc, FieldPreferredDate, b.PreferredDate)
	putDate(doc, FieldSubmittedAt, b.SubmittedAt)
	putDate(doc, FieldRequestDate, b.SubmittedAt)

	for k, v := range StatePatch(b) {
		doc[k] = v
	}
	return doc
}

// StatePatch is the partial update written after a workflow decision: the
// derived status and ledger, allocated schedule and audit fields.
func StatePatch(b *model.Booking) map[string]any {
	ledger := b.State.Ledger()
	patch := map[string]any{
		FieldStatus: b.State.Status(),
		FieldApprovalStatus: map[string]any{
			"faculty": string(ledger.Faculty),
			"admin":   string(ledger.Admin),
		},
	}
	if by := b.State.DecidedBy(); by != "" {
		patch[FieldDecidedBy] = string(by)
	}
	if b.ApprovalNotes != "" {
		patch[FieldApprovalNotes] = b.ApprovalNotes
	}
	if b.RejectionReason != "" {
		patch[FieldRejectionReason] = b.RejectionReason
	}
	putDate(patch, FieldActualDate, b.ActualDate)
	if b.ActualTimeRange.Complete() {
		patch[FieldActualTimeRange] = map[string]any{
			"start": b.ActualTimeRange.Start,
			"end":   b.ActualTimeRange.End,
		}
	}
	putDate(patch, FieldLastModified, b.LastModified)
	if b.LastModifiedBy != "" {
		patch[FieldLastModifiedBy] = b.LastModifiedBy
	}
	return patch
}

func putDate(doc map[string]any, key string, v datetime.Value) {
	if v.IsZero() {
		return
	}
	doc[key] = v.String()
}
