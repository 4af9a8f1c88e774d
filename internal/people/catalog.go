package people

import "strings"

// Role describes a kind of person known to the institution.
type Role struct {
	Code       string `json:"code" mapstructure:"code"`
	Name       string `json:"name" mapstructure:"name"`
	CanRequest bool   `json:"can_request" mapstructure:"can_request"`
}

// RelationshipType names how two people relate, e.g. a guardian and a student.
type RelationshipType struct {
	Code string `json:"code" mapstructure:"code"`
	Name string `json:"name" mapstructure:"name"`
}

// Catalog is the table of roles and relationship types the service accepts.
// It is injected at startup and may be replaced through the policy file.
type Catalog struct {
	Roles             []Role             `json:"roles" mapstructure:"roles"`
	RelationshipTypes []RelationshipType `json:"relationship_types" mapstructure:"relationship_types"`
}

// DefaultCatalog returns the catalog used when no policy file overrides it.
// Only teachers and coordinators may be responsible for a reservation.
func DefaultCatalog() Catalog {
	return Catalog{
		Roles: []Role{
			{Code: "teacher", Name: "Teacher", CanRequest: true},
			{Code: "coordinator", Name: "Coordinator", CanRequest: true},
			{Code: "student", Name: "Student"},
			{Code: "staff", Name: "Staff"},
			{Code: "guardian", Name: "Guardian"},
		},
		RelationshipTypes: []RelationshipType{
			{Code: "parent", Name: "Parent"},
			{Code: "guardian", Name: "Legal guardian"},
			{Code: "sibling", Name: "Sibling"},
			{Code: "tutor", Name: "Tutor"},
			{Code: "other", Name: "Other"},
		},
	}
}

// Role looks a role up by code, case-insensitively.
func (c Catalog) Role(code string) (Role, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, r := range c.Roles {
		if strings.ToLower(r.Code) == code {
			return r, true
		}
	}
	return Role{}, false
}

// CanRequest reports whether people holding role may request reservations.
func (c Catalog) CanRequest(role string) bool {
	r, ok := c.Role(role)
	return ok && r.CanRequest
}

// IsEmpty reports whether the catalog defines no roles at all.
func (c Catalog) IsEmpty() bool {
	return len(c.Roles) == 0
}
