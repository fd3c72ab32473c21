package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Option is one entry of a fixed reference table.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Faculty struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

var Equipment = []Option{
	{Value: "1", Label: "Electron beam evaporation BC 300"},
	{Value: "2", Label: "Electron bem evaporation AUTO 500"},
	{Value: "3", Label: "RF sputter deposition"},
	{Value: "4", Label: "Wet Station"},
	{Value: "5", Label: "Spin Coater"},
	{Value: "6", Label: "UV exposure system PCB"},
	{Value: "7", Label: "Mask Aligner"},
	{Value: "8", Label: "Laser Writer"},
	{Value: "9", Label: "Annealing Furnace"},
	{Value: "10", Label: "Diffusion furnace"},
	{Value: "11", Label: "Reactive Ion etch system"},
	{Value: "12", Label: "UV Ozone system"},
	{Value: "13", Label: "Hot plate"},
	{Value: "14", Label: "Microscope"},
	{Value: "15", Label: "Probe station 2450"},
	{Value: "16", Label: "Profilometer"},
	{Value: "17", Label: "Reflectrometer"},
	{Value: "18", Label: "Wire Bonder"},
	{Value: "19", Label: "Probe station 4200"},
}

var TimeSlots = []Option{
	{Value: "8:00", Label: "8:00 AM - 11:00 AM"},
	{Value: "11:00", Label: "11:00 AM - 2:00 PM"},
	{Value: "14:00", Label: "2:00 PM - 5:00 PM"},
	{Value: "17:00", Label: "5:00 PM - 8:00 PM"},
}

var UserTypes = []Option{
	{Value: "tbi", Label: "TBI"},
	{Value: "mtech", Label: "M.Tech"},
	{Value: "btech", Label: "B.Tech"},
	{Value: "phd", Label: "Ph.D"},
	{Value: "other", Label: "Other"},
}

var Departments = []Option{
	{Value: "chem", Label: "Chemical Engineering"},
	{Value: "civil", Label: "Civil Engineering"},
	{Value: "cs", Label: "Computer Science"},
	{Value: "eee", Label: "Electrical & Electronics Engineering"},
	{Value: "ece", Label: "Electronics and Communication Engineering"},
	{Value: "ei", Label: "Electronics and Instrumentation"},
	{Value: "mech", Label: "Mechanical Engineering"},
	{Value: "bio", Label: "MSc. Biology"},
	{Value: "chemistry", Label: "MSc. Chemistry"},
	{Value: "economics", Label: "MSc. Economics"},
	{Value: "math", Label: "MSc. Math"},
	{Value: "physics", Label: "MSc. Physics"},
	{Value: "other", Label: "Other"},
}

var FacultyList = []Faculty{
	{ID: "faculty1", Email: "f20211878@hyderabad.bits-pilani.ac.in", Name: "Faculty 1"},
	{ID: "faculty2", Email: "f20213183@hyderabad.bits-pilani.ac.in", Name: "Faculty 2"},
	{ID: "faculty3", Email: "f20210485@hyderabad.bits-pilani.ac.in", Name: "Faculty 3"},
	{ID: "faculty4", Email: "", Name: "Faculty 4"},
	{ID: "faculty5", Email: "", Name: "Faculty 5"},
}

const AdminBookingLabel = "Admin Booking"

func lookup(options []Option, value string) (string, bool) {
	for _, o := range options {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// DescribeEquipment returns the display label of an equipment code, or the
// code itself when it is not in the table.
func DescribeEquipment(code string) string {
	if code == EquipmentNone {
		return AdminBookingLabel
	}
	if label, ok := lookup(Equipment, code); ok {
		return label
	}
	return code
}

func DescribeTimeSlot(code string) string {
	if label, ok := lookup(TimeSlots, code); ok {
		return label
	}
	return code
}

func DescribeFaculty(id string) string {
	if id == FacultyAdmin {
		return "Admin"
	}
	for _, f := range FacultyList {
		if f.ID == id {
			return f.Name
		}
	}
	return id
}

func DescribeDepartment(code string) string {
	if label, ok := lookup(Departments, code); ok {
		return label
	}
	if code == "" {
		return NotSpecified
	}
	return code
}

func DescribeUserType(code, other string) string {
	if code == "other" && other != "" {
		return other
	}
	if label, ok := lookup(UserTypes, code); ok {
		return label
	}
	if code == "" {
		return NotSpecified
	}
	return code
}

func IsKnownEquipment(code string) bool {
	_, ok := lookup(Equipment, code)
	return ok
}

func IsKnownDepartment(code string) bool {
	_, ok := lookup(Departments, code)
	return ok
}

func IsKnownTimeSlot(code string) bool {
	_, ok := lookup(TimeSlots, code)
	return ok
}

// FacultyIDByEmail resolves a faculty member from a sign-in email. Entries
// without an email never match.
func FacultyIDByEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", false
	}
	for _, f := range FacultyList {
		if f.Email != "" && strings.EqualFold(f.Email, email) {
			return f.ID, true
		}
	}
	return "", false
}

func IsKnownFaculty(id string) bool {
	for _, f := range FacultyList {
		if f.ID == id {
			return true
		}
	}
	return false
}

// StatusLabel renders a status for people. Unknown values are title-cased.
func StatusLabel(status string) string {
	switch status {
	case string(StageApproved):
		return "Approved"
	case string(StagePendingFaculty):
		return "Pending Faculty Approval"
	case string(StagePendingAdmin):
		return "Faculty Approved, Pending Admin"
	case string(StageRejected):
		return "Rejected"
	case StatusLegacyPending:
		return "Pending"
	}
	return titleCase(status)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
