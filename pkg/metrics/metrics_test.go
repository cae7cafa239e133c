package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every collector should be registered there", func() {
				So(manager, ShouldNotBeNil)
				manager.recommendations.WithLabelValues("ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "test_unit_recommendations_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording recommendation outcomes", func() {
			before := testutil.ToFloat64(globalManager.recommendations.WithLabelValues("empty"))
			RecordRecommendation("empty")
			RecordRecommendation("empty")

			Convey("Then the outcome counter should advance", func() {
				after := testutil.ToFloat64(globalManager.recommendations.WithLabelValues("empty"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording engine counters", func() {
			before := testutil.ToFloat64(globalManager.employeesRecommended)
			RecordEmployeesRecommended(3)
			RecordCandidatesConsidered(5)
			RecordRequirementEvaluated()
			UpdateEligibleEmployees(7)

			Convey("Then values should be reflected", func() {
				So(testutil.ToFloat64(globalManager.employeesRecommended)-before, ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.eligibleEmployees), ShouldEqual, 7)
			})
		})

		Convey("When recording everything else", func() {
			Convey("Then none of the helpers should panic", func() {
				So(func() {
					RecordRecommendLatency(1.5)
					RecordFetchError("employees")
					RecordFetchLatency("requirements", 2)
					RecordNormalizerHit()
					RecordNormalizerMiss()
					RecordHTTPRequest("recommendations", "POST", "200")
					RecordHTTPRequestDuration("recommendations", "POST", "200", 3)
					RecordHTTPError("recommendations", "client_error")
					UpdateQueueSize(1)
					UpdateQueueCapacity(10)
					RecordQueueEnqueue()
					RecordQueueEnqueueError("full")
					UpdateWorkerCount(2)
					RecordWorkerLatency(4)
					RecordWorkerError()
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("Then GetRegistry should return the custom registry", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
