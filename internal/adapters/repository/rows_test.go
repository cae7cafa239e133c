package repository

import (
	"encoding/json"
	"testing"

	"github.com/okian/staffwise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkillField(t *testing.T) {
	Convey("Given skill lists in the shapes stores produce", t, func() {
		decode := func(js string) SkillField {
			var s SkillField
			So(json.Unmarshal([]byte(js), &s), ShouldBeNil)
			return s
		}

		Convey("Then a native array is used as is", func() {
			So(decode(`["Python", "SQL"]`), ShouldResemble, SkillField{"Python", "SQL"})
		})

		Convey("Then a JSON-encoded string is parsed", func() {
			So(decode(`"[\"Figma\", \"UX Design\"]"`), ShouldResemble, SkillField{"Figma", "UX Design"})
		})

		Convey("Then unparseable values become empty lists", func() {
			So(decode(`"python, sql"`), ShouldBeEmpty)
			So(decode(`42`), ShouldBeEmpty)
			So(decode(`null`), ShouldBeEmpty)
			So(decode(`[1, 2]`), ShouldBeEmpty)
			So(decode(`{"a": 1}`), ShouldBeEmpty)
		})
	})
}

func TestDecodeEmployeeJSON(t *testing.T) {
	Convey("Given a complete jsonb employee row", t, func() {
		emp, err := decodeEmployeeJSON([]byte(`{
			"id": 17, "employee_id": "EMP-17", "job_title": "Backend Developer",
			"status": "Available", "experience_level": "Intermediate",
			"skills": "[\"Python3\", \"SQL\"]", "total_available_hours": 32,
			"created_at": "2024-01-01T00:00:00Z"
		}`))

		Convey("Then every field is carried over", func() {
			So(err, ShouldBeNil)
			So(emp.UserID, ShouldEqual, "17")
			So(emp.ID, ShouldEqual, "EMP-17")
			So(emp.JobTitle, ShouldEqual, "Backend Developer")
			So(emp.Status, ShouldEqual, "Available")
			So(emp.ExperienceLevel, ShouldEqual, model.ExperienceTier("Intermediate"))
			So(emp.Skills, ShouldResemble, []string{"Python3", "SQL"})
			So(emp.TotalAvailableHours, ShouldEqual, 32)
		})
	})

	Convey("Given a row missing optional columns", t, func() {
		emp, err := decodeEmployeeJSON([]byte(`{"id": "u-1", "status": null}`))

		Convey("Then safe defaults apply", func() {
			So(err, ShouldBeNil)
			So(emp.UserID, ShouldEqual, "u-1")
			So(emp.ID, ShouldEqual, "")
			So(emp.Status, ShouldEqual, "")
			So(emp.Skills, ShouldNotBeNil)
			So(emp.Skills, ShouldBeEmpty)
			So(emp.TotalAvailableHours, ShouldEqual, model.DefaultAvailableHours)
		})
	})

	Convey("Given hours stored as text or null", t, func() {
		a, err := decodeEmployeeJSON([]byte(`{"total_available_hours": "25"}`))
		So(err, ShouldBeNil)
		So(a.TotalAvailableHours, ShouldEqual, 25)

		b, err := decodeEmployeeJSON([]byte(`{"total_available_hours": null}`))
		So(err, ShouldBeNil)
		So(b.TotalAvailableHours, ShouldEqual, 40)

		c, err := decodeEmployeeJSON([]byte(`{"total_available_hours": 0}`))
		So(err, ShouldBeNil)
		So(c.TotalAvailableHours, ShouldEqual, 0)
	})

	Convey("Given malformed JSON", t, func() {
		_, err := decodeEmployeeJSON([]byte(`{`))

		Convey("Then an error is returned", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDecodeRequirementJSON(t *testing.T) {
	Convey("Given a jsonb requirement row", t, func() {
		req, err := decodeRequirementJSON([]byte(`{
			"id": 3, "project_id": 12, "required_skills": ["Python", "REST API"],
			"experience_level": "Advanced", "quantity_needed": 2,
			"preferred_assignment_type": "Part-Time"
		}`))

		Convey("Then it converts field by field", func() {
			So(err, ShouldBeNil)
			So(req.ProjectID, ShouldEqual, int64(12))
			So(req.RequiredSkills, ShouldResemble, []string{"Python", "REST API"})
			So(req.ExperienceLevel, ShouldEqual, model.ExperienceTier("Advanced"))
			So(req.QuantityNeeded, ShouldEqual, 2)
			So(req.PreferredAssignmentType, ShouldEqual, model.PartTime)
		})
	})

	Convey("Given a requirement without type or quantity", t, func() {
		req, err := decodeRequirementJSON([]byte(`{"project_id": 1, "quantity_needed": -3}`))

		Convey("Then it defaults to Full-Time and zero", func() {
			So(err, ShouldBeNil)
			So(req.PreferredAssignmentType, ShouldEqual, model.FullTime)
			So(req.QuantityNeeded, ShouldEqual, 0)
			So(req.RequiredSkills, ShouldBeEmpty)
		})
	})
}
