package model

import "strings"

// Role classifies a registrant. The value is stored verbatim in the
// registrations table and inside the QR payload.
type Role string

const (
	RoleAdult  Role = "Adult"
	RoleParent Role = "Parent"
	RoleChild  Role = "Child"
)

// ParseRole maps a free-form role string (as it arrives from a form or a
// scanned payload) onto one of the known roles. Unknown values fall back to
// Adult, mirroring how the check-in flow treats anything that is neither a
// parent nor a child.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parent":
		return RoleParent
	case "child":
		return RoleChild
	default:
		return RoleAdult
	}
}

// Registration is one row of the registrations table. One record per person.
//
// Fields:
//  FirstName/LastName – normalized (title-cased) name parts.
//  Email              – unique, stored lower-case.
//  Phone              – unique, stored verbatim.
//  Gender             – free-form, defaults to "Other".
//  Role               – Adult, Parent or Child.
//  Children           – child full names, Parent rows only.
//  QRLink             – the check-in URL encoded into the person's QR code.
//  Minor              – true iff Role is Child.
//  ParentName         – comma-joined parent full names (max 2) for a Child;
//                       the person's own name for a Parent; empty for Adults.
//  Address            – Adult rows only.
//  DateOfBirth        – optional, YYYY-MM-DD.
type Registration struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Gender      string
	Role        Role
	Children    []string
	QRLink      string
	Minor       bool
	ParentName  string
	Address     string
	DateOfBirth string
}

// FullName joins the normalized name parts.
func (r Registration) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Parents splits the stored comma-joined parent names, dropping blanks.
func (r Registration) Parents() []string {
	var out []string
	for _, p := range strings.Split(r.ParentName, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
