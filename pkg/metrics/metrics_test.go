package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPriceBuckets([]float64{1e5, 1e6}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors should be registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.predictions.WithLabelValues(OutcomeOK).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_predictions_total"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording predictions", func() {
			okBefore := testutil.ToFloat64(globalManager.predictions.WithLabelValues(OutcomeOK))
			clampedBefore := testutil.ToFloat64(globalManager.predictions.WithLabelValues(OutcomeClamped))
			invalidBefore := testutil.ToFloat64(globalManager.predictions.WithLabelValues(OutcomeInvalid))

			RecordPrediction(500_000, false)
			RecordPrediction(0, true)
			RecordInvalidInput("Num_Bedrooms", "negative")

			Convey("Then each outcome should be counted", func() {
				So(testutil.ToFloat64(globalManager.predictions.WithLabelValues(OutcomeOK)), ShouldEqual, okBefore+1)
				So(testutil.ToFloat64(globalManager.predictions.WithLabelValues(OutcomeClamped)), ShouldEqual, clampedBefore+1)
				So(testutil.ToFloat64(globalManager.predictions.WithLabelValues(OutcomeInvalid)), ShouldEqual, invalidBefore+1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateJobsTracked(3)
			UpdateWorkerCount(4)

			Convey("Then the gauges should hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.jobsTracked), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4)
			})
		})

		Convey("When recording the remaining collectors", func() {
			Convey("Then none of them should panic", func() {
				So(func() {
					RecordReport()
					RecordLimitViolation("Year_Built")
					RecordJobSubmitted("accepted")
					RecordJobEvicted()
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueRejected("full")
					RecordWorkerLatency(1.5)
					RecordWorkerFailure()
					RecordHTTPRequest("predict", "POST", "200")
					RecordHTTPRequestDuration("predict", "POST", "200", 2)
					RecordErrorByEndpoint("predict", "POST", "client_error")
					RecordErrorByType("client_error", "medium")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(10)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then it should expose service metrics only", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(f.GetName(), ShouldStartWith, "houseprice_estimator_")
				}
			})
		})
	})
}
