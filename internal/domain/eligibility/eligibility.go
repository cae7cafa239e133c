// Package eligibility narrows an employee snapshot to staffable individual contributors.
package eligibility

import "github.com/okian/staffwise/internal/domain/model"

// Step reports how many employees a filter pass saw and kept.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Filter keeps employees whose role is employee and whose status is
// "available" ignoring case. The input slice is not modified.
func Filter(employees []model.Employee) ([]model.Employee, Step) {
	out := make([]model.Employee, 0, len(employees))
	for _, e := range employees {
		if Eligible(e) {
			out = append(out, e)
		}
	}
	return out, Step{
		Initial: len(employees),
		Dropped: len(employees) - len(out),
		Left:    len(out),
	}
}

// Eligible reports whether a single employee passes the filter.
func Eligible(e model.Employee) bool {
	return e.Role == model.RoleEmployee && e.Available()
}
