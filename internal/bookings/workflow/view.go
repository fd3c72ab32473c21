package workflow

import (
	"strings"
	"time"

	"cleanroom/pkg/datetime"
	"cleanroom/pkg/model"
)

type RoleContext struct {
	FacultyID string
	Email     string
}

// RoleView is a role's bookings split into dashboard tabs.
type RoleView struct {
	Pending  []*model.Booking `json:"pending"`
	Approved []*model.Booking `json:"approved"`
	Rejected []*model.Booking `json:"rejected"`
}

func (v RoleView) Len() int {
	return len(v.Pending) + len(v.Approved) + len(v.Rejected)
}

// FilterForRole keeps the records a faculty member or student owns and
// partitions them into tabs. Corrupt records and records in an unrecognized
// status are left out.
func FilterForRole(records []*model.Booking, role model.Role, ctx RoleContext) RoleView {
	view := RoleView{
		Pending:  []*model.Booking{},
		Approved: []*model.Booking{},
		Rejected: []*model.Booking{},
	}
	email := strings.ToLower(strings.TrimSpace(ctx.Email))

	for _, b := range records {
		if b == nil || b.Corrupt {
			continue
		}
		switch role {
		case model.RoleFaculty:
			if ctx.FacultyID == "" || b.Faculty != ctx.FacultyID {
				continue
			}
			switch b.State.Stage() {
			case model.StagePendingFaculty:
				view.Pending = append(view.Pending, b)
			case model.StageApproved, model.StagePendingAdmin:
				view.Approved = append(view.Approved, b)
			case model.StageRejected:
				view.Rejected = append(view.Rejected, b)
			}
		case model.RoleStudent:
			if email == "" || !strings.EqualFold(b.Requester.Email, email) {
				continue
			}
			switch b.State.Stage() {
			case model.StagePendingFaculty, model.StagePendingAdmin:
				view.Pending = append(view.Pending, b)
			case model.StageApproved:
				view.Approved = append(view.Approved, b)
			case model.StageRejected:
				view.Rejected = append(view.Rejected, b)
			}
		}
	}
	return view
}

const All = "all"

type DateBucket string

const (
	BucketAll      DateBucket = All
	BucketToday    DateBucket = "today"
	BucketTomorrow DateBucket = "tomorrow"
	BucketWeek     DateBucket = "week"
	BucketMonth    DateBucket = "month"
)

func ParseDateBucket(s string) (DateBucket, bool) {
	switch b := DateBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "", BucketAll:
		return BucketAll, true
	case BucketToday, BucketTomorrow, BucketWeek, BucketMonth:
		return b, true
	}
	return "", false
}

// Query selects records on the admin dashboard. An empty or "all" value
// disables that dimension.
type Query struct {
	Status        string
	EquipmentCode string
	DateBucket    DateBucket
}

// FilterByQuery applies status, equipment and date filters. A record whose
// date cannot be parsed passes the date filter.
func FilterByQuery(records []*model.Booking, q Query, now time.Time) []*model.Booking {
	status := strings.TrimSpace(q.Status)
	if status != "" && status != All {
		status = model.NormalizeStatus(status)
	}
	out := make([]*model.Booking, 0, len(records))
	for _, b := range records {
		if b == nil {
			continue
		}
		if status != "" && status != All && b.Status() != status {
			continue
		}
		if q.EquipmentCode != "" && q.EquipmentCode != All && b.Equipment != q.EquipmentCode {
			continue
		}
		if !inBucket(b.ScheduleDate(), q.DateBucket, now) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func inBucket(v datetime.Value, bucket DateBucket, now time.Time) bool {
	if bucket == "" || bucket == BucketAll {
		return true
	}
	d, ok := v.In(now.Location())
	if !ok {
		return true
	}
	today := datetime.StartOfDay(now)
	switch bucket {
	case BucketToday:
		return datetime.SameDay(d, today)
	case BucketTomorrow:
		return datetime.SameDay(d, today.AddDate(0, 0, 1))
	case BucketWeek:
		return !d.Before(today) && d.Before(today.AddDate(0, 0, 7))
	case BucketMonth:
		return !d.Before(today) && d.Before(today.AddDate(0, 1, 0))
	}
	return true
}
