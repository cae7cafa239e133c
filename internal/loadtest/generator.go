package loadtest

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/staffwise/internal/adapters/repository"
)

var (
	tiers       = []string{"beginner", "intermediate", "advanced", "Advanced", "INTERMEDIATE"}
	preferred   = []string{"Full-Time", "Part-Time", "part-time", ""}
	hourChoices = []int{0, 4, 5, 12, 15, 18, 20, 25, 34, 35, 38, 40, 45}

	// Raw tokens as they show up in parsed CVs and project briefs.
	skillTokens = []string{
		"Python", "python3", "Python Programming", "Java", "java basics", "JavaScript", "JS",
		"HTML5", "css3", "CSS", "Figma", "UI/UX design tool", "Kotlin", "REST API",
		"API design", "UI Design", "user experience", "SQL", "Docker", "Go",
	}
	titles        = []string{"Software Engineer", "Frontend Developer", "Data Analyst", "Designer", "QA Engineer"}
	managerTitles = []string{"Project Manager", "PM", "Resource Lead"}
	statuses      = []string{"Available", "on leave", "assigned"}
)

// Generate builds a reproducible fixture from cfg.Seed. Project ids run from
// 1 to cfg.Projects.
func Generate(cfg GenerateConfig) *repository.Fixture {
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	ns := uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "staffwise/%d", cfg.Seed))

	f := &repository.Fixture{
		ProjectRequirements: make([]repository.RequirementRow, 0, cfg.Projects*cfg.RequirementsPerProject),
		UserDetails:         make([]repository.EmployeeRow, 0, cfg.Employees),
	}

	for i := 0; i < cfg.Employees; i++ {
		title := pick(r, titles)
		if r.Float64() < cfg.ManagerRatio {
			title = pick(r, managerTitles)
		}
		status := "available"
		if r.Float64() < cfg.UnavailableRatio {
			status = pick(r, statuses[1:])
		} else if r.IntN(2) == 0 {
			status = statuses[0]
		}

		row := repository.EmployeeRow{
			ID:              repository.FlexString(uuid.NewSHA1(ns, fmt.Appendf(nil, "user/%d", i)).String()),
			EmployeeID:      repository.FlexString(fmt.Sprintf("EMP-%05d", i+1)),
			JobTitle:        repository.FlexString(title),
			Status:          repository.FlexString(status),
			ExperienceLevel: repository.FlexString(pick(r, tiers)),
			Skills:          sample(r, skillTokens, 1+r.IntN(4)),
		}
		// Some rows leave hours unset so the 40h default applies.
		if r.IntN(5) != 0 {
			row.TotalAvailableHours = repository.Int(pick(r, hourChoices))
		}
		f.UserDetails = append(f.UserDetails, row)
	}

	for p := 1; p <= cfg.Projects; p++ {
		for j := 0; j < cfg.RequirementsPerProject; j++ {
			f.ProjectRequirements = append(f.ProjectRequirements, repository.RequirementRow{
				ID:                      repository.FlexString(fmt.Sprintf("%d-%d", p, j)),
				ProjectID:               repository.Int(p),
				RequiredSkills:          sample(r, skillTokens, 1+r.IntN(3)),
				ExperienceLevel:         repository.FlexString(pick(r, tiers)),
				QuantityNeeded:          repository.Int(r.IntN(5)),
				PreferredAssignmentType: repository.FlexString(pick(r, preferred)),
			})
		}
	}
	return f
}

// MarshalFixture encodes a fixture as JSON, which LoadFixture reads back.
func MarshalFixture(f *repository.Fixture) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

func pick[T any](r *rand.Rand, from []T) T {
	return from[r.IntN(len(from))]
}

func sample(r *rand.Rand, from []string, n int) []string {
	idx := r.Perm(len(from))[:min(n, len(from))]
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}
