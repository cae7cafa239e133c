package loadtest

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/staffwise/internal/adapters/repository"
	"github.com/okian/staffwise/internal/domain/allocation"
	"github.com/okian/staffwise/internal/domain/eligibility"
	"github.com/okian/staffwise/internal/domain/model"
	"github.com/okian/staffwise/internal/domain/skills"
	"github.com/okian/staffwise/internal/domain/types"
)

// Verifier checks responses against the fixture the server was loaded with.
type Verifier struct {
	normalizer   *skills.Normalizer
	reqs         map[int64][]model.Requirement
	employees    map[string]model.Employee
	hasEmployees bool
}

// NewVerifier indexes f. The normalizer must match the server's tables.
func NewVerifier(f *repository.Fixture, n *skills.Normalizer) *Verifier {
	v := &Verifier{
		normalizer:   n,
		reqs:         make(map[int64][]model.Requirement),
		employees:    make(map[string]model.Employee, len(f.UserDetails)),
		hasEmployees: len(f.UserDetails) > 0,
	}
	for _, row := range f.ProjectRequirements {
		r := row.Requirement()
		v.reqs[r.ProjectID] = append(v.reqs[r.ProjectID], r)
	}
	for _, row := range f.UserDetails {
		e := row.Employee()
		e.Skills = n.Skills(e.Skills)
		e.Role = n.Role(e.JobTitle)
		v.employees[e.ID] = e
	}
	return v
}

// ProjectIDs returns the fixture's project ids in ascending order.
func (v *Verifier) ProjectIDs() []int64 {
	ids := make([]int64, 0, len(v.reqs))
	for id := range v.reqs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Verify returns every rule the response breaks, joined, or nil.
func (v *Verifier) Verify(projectID int64, resp types.Response) error {
	reqs := v.reqs[projectID]
	if len(reqs) == 0 || !v.hasEmployees {
		if len(resp.Recommendations) != 0 {
			return fmt.Errorf("project %d: expected no recommendations, got %d", projectID, len(resp.Recommendations))
		}
		return nil
	}
	if len(resp.Recommendations) != len(reqs) {
		return fmt.Errorf("project %d: %d recommendations for %d requirements", projectID, len(resp.Recommendations), len(reqs))
	}

	var errs []error
	for i, rec := range resp.Recommendations {
		errs = append(errs, v.verifyRequirement(projectID, i, reqs[i], rec)...)
	}
	return errors.Join(errs...)
}

func (v *Verifier) verifyRequirement(projectID int64, i int, req model.Requirement, rec types.Recommendation) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("project %d requirement %d: "+format, append([]any{projectID, i}, args...)...))
	}

	if !slices.Equal(rec.RequiredSkills, req.RequiredSkills) {
		fail("required_skills %v, want %v", rec.RequiredSkills, req.RequiredSkills)
	}
	if len(rec.RecommendedEmployees) > req.QuantityNeeded {
		fail("%d employees over quantity %d", len(rec.RecommendedEmployees), req.QuantityNeeded)
	}

	needed := v.normalizer.Skills(req.RequiredSkills)
	prev := math.MaxInt
	for _, got := range rec.RecommendedEmployees {
		e, ok := v.employees[got.EmployeeID]
		switch {
		case !ok:
			fail("unknown employee %q", got.EmployeeID)
			continue
		case !eligibility.Eligible(e):
			fail("employee %s is not eligible", e.ID)
		case !strings.EqualFold(string(e.ExperienceLevel), string(req.ExperienceLevel)):
			fail("employee %s tier %q, want %q", e.ID, e.ExperienceLevel, req.ExperienceLevel)
		}

		overlap := countOverlap(e.Skills, needed)
		if overlap == 0 {
			fail("employee %s shares no skill", e.ID)
		}
		if overlap > prev {
			fail("employee %s ranked below a weaker match", e.ID)
		}
		prev = overlap

		want := allocation.Compute(req.PreferredAssignmentType, e.TotalAvailableHours)
		if got.AssignedHours != want.AssignedHours || got.AssignmentType != want.Type ||
			math.Abs(float64(got.AllocationPercent)-want.AllocationPercent) > 0.005 {
			fail("employee %s assignment %d/%v/%s, want %d/%v/%s", e.ID,
				got.AssignedHours, got.AllocationPercent, got.AssignmentType,
				want.AssignedHours, want.AllocationPercent, want.Type)
		}
		if got.TotalAvailableHours != e.TotalAvailableHours {
			fail("employee %s total hours %d, want %d", e.ID, got.TotalAvailableHours, e.TotalAvailableHours)
		}
	}
	return errs
}

func countOverlap(have, want []string) int {
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	seen := make(map[string]struct{}, len(want))
	n := 0
	for _, s := range want {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			n++
		}
	}
	return n
}
