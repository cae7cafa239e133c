package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSQLiteSource(t *testing.T) {
	Convey("Given a fresh SQLite database", t, func() {
		ctx := context.Background()
		src, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "staffwise.db"))
		So(err, ShouldBeNil)
		defer src.Close()

		Convey("When it is empty", func() {
			reqs, err := src.FetchProjectRequirements(ctx, 1)
			So(err, ShouldBeNil)
			emps, err2 := src.FetchAllEmployees(ctx)
			So(err2, ShouldBeNil)

			Convey("Then both fetches return empty slices", func() {
				So(reqs, ShouldBeEmpty)
				So(emps, ShouldBeEmpty)
			})
		})

		Convey("When a fixture is imported", func() {
			f, err := ParseFixture([]byte(fixtureYAML))
			So(err, ShouldBeNil)
			So(src.Import(ctx, f), ShouldBeNil)

			Convey("Then requirements round-trip with defaults", func() {
				reqs, err := src.FetchProjectRequirements(ctx, 100)
				So(err, ShouldBeNil)
				So(len(reqs), ShouldEqual, 2)
				So(reqs[0].RequiredSkills, ShouldResemble, []string{"Python", "SQL"})
				So(reqs[0].QuantityNeeded, ShouldEqual, 1)
				So(reqs[0].PreferredAssignmentType, ShouldEqual, "Full-Time")
				So(reqs[1].PreferredAssignmentType, ShouldEqual, "Part-Time")
			})

			Convey("Then employees keep fixture order and default hours", func() {
				emps, err := src.FetchAllEmployees(ctx)
				So(err, ShouldBeNil)
				So(len(emps), ShouldEqual, 3)
				So(emps[0].ID, ShouldEqual, "EMP-1")
				So(emps[0].UserID, ShouldEqual, "u-1")
				So(emps[0].TotalAvailableHours, ShouldEqual, 40)
				So(emps[1].Skills, ShouldResemble, []string{"Python3", "SQL"})
				So(emps[2].Skills, ShouldBeEmpty)
			})

			Convey("Then re-importing upserts employees", func() {
				again := &Fixture{UserDetails: []EmployeeRow{{ID: "u-1", EmployeeID: "EMP-1", Status: "assigned"}}}
				So(src.Import(ctx, again), ShouldBeNil)

				emps, err := src.FetchAllEmployees(ctx)
				So(err, ShouldBeNil)
				So(len(emps), ShouldEqual, 3)
				So(emps[0].Status, ShouldEqual, "assigned")
			})
		})

		Convey("When a row lacks its key", func() {
			err := src.Import(ctx, &Fixture{UserDetails: []EmployeeRow{{EmployeeID: "EMP-9"}}})

			Convey("Then the import is rejected as a whole", func() {
				So(errors.Is(err, ErrFixture), ShouldBeTrue)
				emps, err := src.FetchAllEmployees(ctx)
				So(err, ShouldBeNil)
				So(emps, ShouldBeEmpty)
			})
		})
	})
}
