// Package entity contains the core domain types shared across the pipeline.
package entity

// ProfileFields is the normalized six-field shape extracted from a profile
// page. An empty string means "not determined"; the literal "N/A" sentinel
// exists only at the formatting boundary, never inside the pipeline.
type ProfileFields struct {
	Name            string `json:"name"`
	Profession      string `json:"profession"`
	CurrentCompany  string `json:"current_company"`
	CurrentLocation string `json:"current_location"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
}

// IsZero reports whether no field was extracted at all.
func (f ProfileFields) IsZero() bool {
	return f == ProfileFields{}
}
