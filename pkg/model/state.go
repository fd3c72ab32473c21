package model

import (
	"encoding/json"
	"strings"
)

type Stage string

const (
	StagePendingFaculty Stage = "pending_faculty"
	StagePendingAdmin   Stage = "pending_admin"
	StageApproved       Stage = "approved"
	StageRejected       Stage = "rejected"

	// StatusLegacyPending is written by early clients and reads as pending_faculty.
	StatusLegacyPending = "pending"
)

type Verdict string

const (
	VerdictPending  Verdict = "pending"
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
)

type Actor string

const (
	ActorFaculty Actor = "faculty"
	ActorAdmin   Actor = "admin"
)

// Ledger is the per-actor view of a booking's approval. It is always derived
// from State and never stored on its own.
type Ledger struct {
	Faculty Verdict `json:"faculty" bson:"faculty" firestore:"faculty"`
	Admin   Verdict `json:"admin" bson:"admin" firestore:"admin"`
}

// State is the approval state of a booking. The zero value is PendingFaculty.
type State struct {
	stage   Stage
	by      Actor
	reason  string
	faculty Verdict
}

func PendingFaculty() State {
	return State{stage: StagePendingFaculty}
}

func PendingAdmin() State {
	return State{stage: StagePendingAdmin, faculty: VerdictApproved}
}

// Approved records a final approval. faculty is the faculty verdict at the
// moment of approval; a pending verdict is implicitly promoted to approved.
func Approved(by Actor, faculty Verdict) State {
	if faculty == "" || faculty == VerdictPending {
		faculty = VerdictApproved
	}
	return State{stage: StageApproved, by: by, faculty: faculty}
}

// Rejected records a rejection. When the faculty rejects, faculty is forced
// to rejected; when the admin rejects it keeps whatever the faculty had decided.
func Rejected(by Actor, reason string, faculty Verdict) State {
	if by == ActorFaculty {
		faculty = VerdictRejected
	}
	if faculty == "" {
		faculty = VerdictPending
	}
	return State{stage: StageRejected, by: by, reason: reason, faculty: faculty}
}

// Unrecognized keeps a status string no client should have written. It is
// displayed as-is and never matches a workflow stage.
func Unrecognized(status string) State {
	return State{stage: Stage(status), faculty: VerdictPending}
}

func (s State) Stage() Stage {
	if s.stage == "" {
		return StagePendingFaculty
	}
	return s.stage
}

func (s State) Status() string {
	return string(s.Stage())
}

// DecidedBy is the actor that moved the booking into a terminal stage.
func (s State) DecidedBy() Actor {
	return s.by
}

func (s State) Reason() string {
	return s.reason
}

func (s State) IsTerminal() bool {
	st := s.Stage()
	return st == StageApproved || st == StageRejected
}

func (s State) Known() bool {
	switch s.Stage() {
	case StagePendingFaculty, StagePendingAdmin, StageApproved, StageRejected:
		return true
	}
	return false
}

func (s State) Ledger() Ledger {
	switch s.Stage() {
	case StagePendingFaculty:
		return Ledger{Faculty: VerdictPending, Admin: VerdictPending}
	case StagePendingAdmin:
		return Ledger{Faculty: VerdictApproved, Admin: VerdictPending}
	case StageApproved:
		return Ledger{Faculty: orPending(s.faculty), Admin: VerdictApproved}
	case StageRejected:
		if s.by == ActorFaculty {
			return Ledger{Faculty: VerdictRejected, Admin: VerdictPending}
		}
		return Ledger{Faculty: orPending(s.faculty), Admin: VerdictRejected}
	default:
		return Ledger{Faculty: VerdictPending, Admin: VerdictPending}
	}
}

func orPending(v Verdict) Verdict {
	if v == "" {
		return VerdictPending
	}
	return v
}

// StageFromLedger is the rule tying the ledger to the status: any admin
// verdict is final, then a faculty rejection, then a faculty approval.
func StageFromLedger(l Ledger) Stage {
	switch {
	case l.Admin == VerdictApproved:
		return StageApproved
	case l.Admin == VerdictRejected:
		return StageRejected
	case l.Faculty == VerdictRejected:
		return StageRejected
	case l.Faculty == VerdictApproved:
		return StagePendingAdmin
	default:
		return StagePendingFaculty
	}
}

// NormalizeStatus maps legacy and differently-cased status strings onto the
// canonical spelling. Unknown values are returned trimmed but otherwise untouched.
func NormalizeStatus(status string) string {
	s := strings.TrimSpace(status)
	switch strings.ToLower(s) {
	case "", StatusLegacyPending, string(StagePendingFaculty):
		return string(StagePendingFaculty)
	case string(StagePendingAdmin):
		return string(StagePendingAdmin)
	case string(StageApproved):
		return string(StageApproved)
	case string(StageRejected):
		return string(StageRejected)
	}
	return s
}

func ParseVerdict(v string) Verdict {
	switch Verdict(strings.ToLower(strings.TrimSpace(v))) {
	case VerdictApproved:
		return VerdictApproved
	case VerdictRejected:
		return VerdictRejected
	default:
		return VerdictPending
	}
}

type stateJSON struct {
	Status         string `json:"status"`
	ApprovalStatus Ledger `json:"approvalStatus"`
	DecidedBy      Actor  `json:"decidedBy,omitempty"`
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Status:         s.Status(),
		ApprovalStatus: s.Ledger(),
		DecidedBy:      s.by,
	})
}
