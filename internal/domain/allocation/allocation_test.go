package allocation_test

import (
	"fmt"
	"testing"

	"github.com/okian/staffwise/internal/domain/allocation"
	"github.com/okian/staffwise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		preferred string
		available int
		hours     int
		percent   float64
		kind      string
	}{
		{"Part-Time", 25, 20, 50.0, model.PartTime},
		{"Part-Time", 20, 20, 50.0, model.PartTime},
		{"Part-Time", 17, 15, 37.5, model.PartTime},
		{"Part-Time", 15, 15, 37.5, model.PartTime},
		{"Part-Time", 8, 5, 12.5, model.PartTime},
		{"Part-Time", 5, 5, 12.5, model.PartTime},
		{"Part-Time", 3, 3, 7.5, model.PartTime},
		{"part-time", 0, 0, 0, model.PartTime},
		{"PART-TIME", 60, 20, 50.0, model.PartTime},
		{"Full-Time", 40, 40, 100.0, model.FullTime},
		{"Full-Time", 30, 30, 75.0, model.PartTime},
		{"Full-Time", 50, 40, 100.0, model.FullTime},
		{"Full-Time", 35, 35, 87.5, model.FullTime},
		{"Full-Time", 34, 34, 85.0, model.PartTime},
		{"Full-Time", 13, 13, 32.5, model.PartTime},
		{"", 40, 40, 100.0, model.FullTime},
		{"contract", 1, 1, 2.5, model.PartTime},
	}

	Convey("Given the assignment threshold table", t, func() {
		for _, tc := range cases {
			tc := tc
			Convey(fmt.Sprintf("When %q is preferred with %d hours available", tc.preferred, tc.available), func() {
				got := allocation.Compute(tc.preferred, tc.available)

				Convey("Then hours, allocation and type follow the rules", func() {
					So(got.AssignedHours, ShouldEqual, tc.hours)
					So(got.AllocationPercent, ShouldAlmostEqual, tc.percent, 0.001)
					So(got.Type, ShouldEqual, tc.kind)
				})
			})
		}
	})

	Convey("Given negative available hours", t, func() {
		got := allocation.Compute(model.FullTime, -8)

		Convey("Then they are clamped to zero", func() {
			So(got.AssignedHours, ShouldEqual, 0)
			So(got.AllocationPercent, ShouldEqual, 0)
			So(got.Type, ShouldEqual, model.PartTime)
		})
	})
}

func TestResultingType(t *testing.T) {
	Convey("Given assigned hours around the threshold", t, func() {
		So(allocation.ResultingType(35), ShouldEqual, model.FullTime)
		So(allocation.ResultingType(40), ShouldEqual, model.FullTime)
		So(allocation.ResultingType(34), ShouldEqual, model.PartTime)
		So(allocation.ResultingType(0), ShouldEqual, model.PartTime)
	})
}

func TestPercent(t *testing.T) {
	Convey("Given uneven hours", t, func() {
		So(allocation.Percent(1), ShouldEqual, 2.5)
		So(allocation.Percent(7), ShouldEqual, 17.5)
		So(allocation.Percent(40), ShouldEqual, 100)
	})
}
