package auth

import (
	"fmt"
	"regexp"
	"strings"

	"cleanroom/pkg/model"
)

// RoleResolver derives a role from an institute email: whitelisted faculty
// emails are faculty, emails shaped like a student id are students, and
// anything else is refused.
type RoleResolver struct {
	domain  string
	student *regexp.Regexp
}

func NewRoleResolver(domain string) *RoleResolver {
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))
	return &RoleResolver{
		domain:  domain,
		student: regexp.MustCompile(`^[fph]\d+@` + regexp.QuoteMeta(domain) + `$`),
	}
}

func (r *RoleResolver) Resolve(id Identity) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(id.Email))
	id.Email = email
	if email == "" || !strings.HasSuffix(email, "@"+r.domain) {
		return Session{}, fmt.Errorf("%w: %q", ErrDomainNotAllowed, email)
	}

	if facultyID, ok := model.FacultyIDByEmail(email); ok {
		return Session{Identity: id, Role: model.RoleFaculty, FacultyID: facultyID}, nil
	}
	if r.student.MatchString(email) {
		return Session{Identity: id, Role: model.RoleStudent, StudentID: StudentID(email)}, nil
	}
	return Session{}, fmt.Errorf("%w: %q", ErrNotAuthorized, email)
}

// StudentID is the upper-cased local part of a student email.
func StudentID(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.ToUpper(local)
}
