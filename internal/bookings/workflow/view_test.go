package workflow

import (
	"testing"
	"time"

	"cleanroom/pkg/datetime"
	"cleanroom/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFaculty(b *model.Booking, faculty string) *model.Booking {
	b.Faculty = faculty
	return b
}

func withEmail(b *model.Booking, email string) *model.Booking {
	b.Requester.Email = email
	return b
}

func TestFilterForRole_FacultyPartition(t *testing.T) {
	records := []*model.Booking{
		withFaculty(booking("1", model.PendingFaculty()), "faculty2"),
		withFaculty(booking("2", model.PendingAdmin()), "faculty2"),
		withFaculty(booking("3", model.Approved(model.ActorAdmin, model.VerdictApproved)), "faculty2"),
		withFaculty(booking("4", model.Rejected(model.ActorFaculty, "x", model.VerdictRejected)), "faculty2"),
		withFaculty(booking("5", model.PendingFaculty()), "faculty1"),
		withFaculty(booking("6", model.Rejected(model.ActorAdmin, "y", model.VerdictApproved)), "faculty3"),
		withFaculty(booking("7", model.Unrecognized("on_hold")), "faculty2"),
	}

	view := FilterForRole(records, model.RoleFaculty, RoleContext{FacultyID: "faculty2"})

	seen := map[string]int{}
	for _, tab := range [][]*model.Booking{view.Pending, view.Approved, view.Rejected} {
		for _, b := range tab {
			assert.Equal(t, "faculty2", b.Faculty)
			seen[b.DocID]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "record %s appears in %d tabs", id, n)
	}

	assert.Equal(t, []string{"1"}, docIDs(view.Pending))
	assert.Equal(t, []string{"2", "3"}, docIDs(view.Approved))
	assert.Equal(t, []string{"4"}, docIDs(view.Rejected))
}

func TestFilterForRole_Student(t *testing.T) {
	me := "f20210001@hyderabad.bits-pilani.ac.in"
	other := "f20219999@hyderabad.bits-pilani.ac.in"
	records := []*model.Booking{
		withEmail(booking("1", model.PendingFaculty()), me),
		withEmail(booking("2", model.PendingAdmin()), me),
		withEmail(booking("3", model.Approved(model.ActorAdmin, model.VerdictApproved)), me),
		withEmail(booking("4", model.Rejected(model.ActorAdmin, "x", model.VerdictApproved)), me),
		withEmail(booking("5", model.PendingFaculty()), other),
	}

	view := FilterForRole(records, model.RoleStudent, RoleContext{Email: "F20210001@hyderabad.bits-pilani.ac.in"})

	assert.Equal(t, []string{"1", "2"}, docIDs(view.Pending))
	assert.Equal(t, []string{"3"}, docIDs(view.Approved))
	assert.Equal(t, []string{"4"}, docIDs(view.Rejected))
}

func TestFilterForRole_SkipsCorruptRecords(t *testing.T) {
	corrupt := withFaculty(booking("1", model.PendingFaculty()), "faculty2")
	corrupt.Corrupt = true

	view := FilterForRole([]*model.Booking{corrupt}, model.RoleFaculty, RoleContext{FacultyID: "faculty2"})
	assert.Zero(t, view.Len())
}

func TestFilterForRole_EmptyContextMatchesNothing(t *testing.T) {
	records := []*model.Booking{booking("1", model.PendingFaculty())}
	records[0].Requester.Email = ""
	records[0].Faculty = ""

	assert.Zero(t, FilterForRole(records, model.RoleFaculty, RoleContext{}).Len())
	assert.Zero(t, FilterForRole(records, model.RoleStudent, RoleContext{}).Len())
}

func TestFilterByQuery(t *testing.T) {
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.Local)

	dated := func(id string, st model.State, equipment string, date any) *model.Booking {
		b := booking(id, st)
		b.Equipment = equipment
		b.Date = datetime.Parse(date)
		return b
	}
	preferred := booking("pref", model.PendingFaculty())
	preferred.PreferredDate = datetime.Parse("2025-05-11")

	records := []*model.Booking{
		dated("today", model.PendingFaculty(), "1", "2025-05-10T08:00:00"),
		dated("tomorrow", model.PendingAdmin(), "2", "2025-05-11"),
		dated("in-5-days", model.Approved(model.ActorAdmin, model.VerdictApproved), "1", time.Date(2025, 5, 15, 9, 0, 0, 0, time.Local)),
		dated("in-20-days", model.Rejected(model.ActorAdmin, "no", model.VerdictPending), "3", map[string]any{
			"seconds": time.Date(2025, 5, 30, 12, 0, 0, 0, time.Local).Unix(), "nanoseconds": 0,
		}),
		dated("yesterday", model.PendingFaculty(), "1", "2025-05-09"),
		dated("garbage", model.PendingFaculty(), "4", "sometime next week"),
		preferred,
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"all is a no-op", Query{Status: All, EquipmentCode: All, DateBucket: BucketAll}, []string{"today", "tomorrow", "in-5-days", "in-20-days", "yesterday", "garbage", "pref"}},
		{"zero query is a no-op", Query{}, []string{"today", "tomorrow", "in-5-days", "in-20-days", "yesterday", "garbage", "pref"}},
		{"status", Query{Status: "pending_faculty"}, []string{"today", "yesterday", "garbage", "pref"}},
		{"legacy status spelling", Query{Status: "pending"}, []string{"today", "yesterday", "garbage", "pref"}},
		{"equipment", Query{EquipmentCode: "1"}, []string{"today", "in-5-days", "yesterday"}},
		{"today", Query{DateBucket: BucketToday}, []string{"today", "garbage"}},
		{"tomorrow falls back to preferred date", Query{DateBucket: BucketTomorrow}, []string{"tomorrow", "garbage", "pref"}},
		{"week", Query{DateBucket: BucketWeek}, []string{"today", "tomorrow", "in-5-days", "garbage", "pref"}},
		{"month", Query{DateBucket: BucketMonth}, []string{"today", "tomorrow", "in-5-days", "in-20-days", "garbage", "pref"}},
		{"combined", Query{Status: "pending_faculty", EquipmentCode: "1", DateBucket: BucketWeek}, []string{"today"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByQuery(records, tt.query, now)
			assert.Equal(t, tt.want, docIDs(got))
		})
	}
}

func TestFilterByQuery_ConfiguredZoneDiffersFromParseZone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}
	b := booking("d1", model.PendingFaculty())
	b.PreferredDate = datetime.ParseIn("2025-05-10", time.UTC)
	records := []*model.Booking{b}

	now := time.Date(2025, 5, 10, 10, 0, 0, 0, la)
	assert.Equal(t, []string{"d1"}, docIDs(FilterByQuery(records, Query{DateBucket: BucketToday}, now)))
	assert.Empty(t, FilterByQuery(records, Query{DateBucket: BucketToday}, now.AddDate(0, 0, -1)))
	assert.Equal(t, []string{"d1"}, docIDs(FilterByQuery(records, Query{DateBucket: BucketTomorrow}, now.AddDate(0, 0, -1))))
	assert.Equal(t, []string{"d1"}, docIDs(FilterByQuery(records, Query{DateBucket: BucketWeek}, now)))
}

func TestParseDateBucket(t *testing.T) {
	b, ok := ParseDateBucket("WEEK")
	require.True(t, ok)
	assert.Equal(t, BucketWeek, b)

	b, ok = ParseDateBucket("")
	require.True(t, ok)
	assert.Equal(t, BucketAll, b)

	_, ok = ParseDateBucket("decade")
	assert.False(t, ok)
}

func docIDs(bs []*model.Booking) []string {
	ids := make([]string, 0, len(bs))
	for _, b := range bs {
		ids = append(ids, b.DocID)
	}
	return ids
}
