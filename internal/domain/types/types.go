// Package types contains the JSON shapes returned to callers.
package types

import (
	"math"
	"strconv"
	"strings"
)

// Response is the payload of a single-project recommendation call.
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// Empty returns a response with an empty, non-nil recommendation list.
func Empty() Response {
	return Response{Recommendations: []Recommendation{}}
}

// Recommendation is the result for one project requirement row.
type Recommendation struct {
	ExperienceLevel         string                `json:"experience_level"`
	RequiredSkills          []string              `json:"required_skills"`
	PreferredAssignmentType string                `json:"preferred_assignment_type"`
	RecommendedEmployees    []RecommendedEmployee `json:"recommended_employees"`
}

// RecommendedEmployee is one staffing assignment.
type RecommendedEmployee struct {
	EmployeeID          string  `json:"employee_id"`
	UserID              string  `json:"user_id"`
	AssignmentType      string  `json:"assignment_type"`
	AssignedHours       int     `json:"assigned_hours"`
	AllocationPercent   Percent `json:"allocation_percent"`
	TotalAvailableHours int     `json:"total_available_hours"`
}

// ProjectResponse pairs a project id with its recommendations in batch calls.
type ProjectResponse struct {
	ProjectID       int64            `json:"project_id"`
	Recommendations []Recommendation `json:"recommendations"`
}

// BatchResponse is the payload of a multi-project call.
type BatchResponse struct {
	Results []ProjectResponse `json:"results"`
}

// Percent is an allocation percentage rounded to two decimals. It always
// renders with a fractional part, e.g. 100.0 or 37.5.
type Percent float64

// MarshalJSON implements json.Marshaler.
func (p Percent) MarshalJSON() ([]byte, error) {
	v := math.Round(float64(p)*100) / 100
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return []byte(s), nil
}
