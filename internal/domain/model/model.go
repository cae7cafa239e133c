// Package model contains domain models passed between layers.
package model

import "strings"

// Assignment type labels.
const (
	FullTime = "Full-Time"
	PartTime = "Part-Time"
)

// DefaultAvailableHours is assumed when an employee row carries no hours.
const DefaultAvailableHours = 40

// StatusAvailable marks an employee as staffable.
const StatusAvailable = "available"

// Role classifies a job title.
type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// ExperienceTier is a requirement or employee seniority level.
type ExperienceTier string

const (
	TierBeginner     ExperienceTier = "beginner"
	TierIntermediate ExperienceTier = "intermediate"
	TierAdvanced     ExperienceTier = "advanced"
)

var tierWeights = map[ExperienceTier]int{
	TierBeginner:     1,
	TierIntermediate: 2,
	TierAdvanced:     3,
}

// DefaultTierWeights returns a copy of the built-in tier weights.
func DefaultTierWeights() map[string]int {
	out := make(map[string]int, len(tierWeights))
	for k, v := range tierWeights {
		out[string(k)] = v
	}
	return out
}

// Weight returns the scoring multiplier of the tier; unknown tiers weigh 1.
func (t ExperienceTier) Weight() int {
	if w, ok := tierWeights[ExperienceTier(strings.ToLower(string(t)))]; ok {
		return w
	}
	return 1
}

// Matches reports whether two tiers are equal ignoring case.
func (t ExperienceTier) Matches(other ExperienceTier) bool {
	return strings.EqualFold(string(t), string(other))
}

// Employee is one row of the employee snapshot after boundary defaulting.
type Employee struct {
	ID                  string // employee_id
	UserID              string // id
	JobTitle            string
	Status              string
	ExperienceLevel     ExperienceTier
	Skills              []string
	TotalAvailableHours int
	Role                Role
}

// Available reports whether the status is "available", case-insensitively.
func (e Employee) Available() bool {
	return strings.ToLower(e.Status) == StatusAvailable
}

// Requirement is one staffing row of a project.
type Requirement struct {
	ProjectID               int64
	RequiredSkills          []string
	ExperienceLevel         ExperienceTier
	QuantityNeeded          int
	PreferredAssignmentType string
}

// Assignment is the hours/allocation/type triple computed for one employee.
type Assignment struct {
	AssignedHours     int
	AllocationPercent float64
	Type              string
}

// SkillSet is a set of canonical skills.
type SkillSet map[string]struct{}

// NewSkillSet builds a set from a list, dropping duplicates.
func NewSkillSet(skills []string) SkillSet {
	s := make(SkillSet, len(skills))
	for _, sk := range skills {
		s[sk] = struct{}{}
	}
	return s
}

// Overlap returns the size of the intersection of both sets.
func (s SkillSet) Overlap(other SkillSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for sk := range small {
		if _, ok := large[sk]; ok {
			n++
		}
	}
	return n
}
