package workflow

import (
	"math"

	"cleanroom/pkg/model"
)

type EquipmentUsage struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type Summary struct {
	Total             int              `json:"total"`
	PendingFaculty    int              `json:"pendingFaculty"`
	PendingAdmin      int              `json:"pendingAdmin"`
	Approved          int              `json:"approved"`
	Rejected          int              `json:"rejected"`
	PerEquipmentUsage []EquipmentUsage `json:"perEquipmentUsage"`
}

// Summarize counts records by status and by fixed equipment code.
func Summarize(records []*model.Booking) Summary {
	s := Summary{}
	counts := make(map[string]int, len(model.Equipment))
	for _, b := range records {
		if b == nil {
			continue
		}
		s.Total++
		switch b.State.Stage() {
		case model.StagePendingFaculty:
			s.PendingFaculty++
		case model.StagePendingAdmin:
			s.PendingAdmin++
		case model.StageApproved:
			s.Approved++
		case model.StageRejected:
			s.Rejected++
		}
		counts[b.Equipment]++
	}

	s.PerEquipmentUsage = make([]EquipmentUsage, 0, len(model.Equipment))
	for _, e := range model.Equipment {
		u := EquipmentUsage{Code: e.Value, Label: e.Label, Count: counts[e.Value]}
		if s.Total > 0 {
			u.Percentage = int(math.Round(float64(u.Count) / float64(s.Total) * 100))
		}
		s.PerEquipmentUsage = append(s.PerEquipmentUsage, u)
	}
	return s
}

const (
	BreakdownRejectedByFaculty = "Rejected by Faculty"
	BreakdownRejectedByAdmin   = "Rejected by Admin"
	BreakdownRejected          = "Rejected"
	BreakdownFullyApproved     = "Fully Approved"
	BreakdownPendingFaculty    = "Pending Faculty Approval"
	BreakdownPendingAdmin      = "Faculty Approved, Pending Admin"
)

// ApprovalBreakdown describes where in the approval chain a booking stands.
func ApprovalBreakdown(b *model.Booking) string {
	st := b.State
	switch st.Stage() {
	case model.StageRejected:
		switch st.DecidedBy() {
		case model.ActorFaculty:
			return BreakdownRejectedByFaculty
		case model.ActorAdmin:
			return BreakdownRejectedByAdmin
		}
		return BreakdownRejected
	case model.StageApproved:
		return BreakdownFullyApproved
	case model.StagePendingAdmin:
		return BreakdownPendingAdmin
	case model.StagePendingFaculty:
		return BreakdownPendingFaculty
	}
	return model.StatusLabel(b.Status())
}
