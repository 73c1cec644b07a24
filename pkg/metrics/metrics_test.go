package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// value returns the sum of every series of the named metric in the custom registry.
func value(name string) float64 {
	families, err := GetRegistry().Gather()
	So(err, ShouldBeNil)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return total
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("kiosk"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.checkinsRegistered.Inc()

			Convey("Then collectors are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_kiosk_registered_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When check-ins are recorded", func() {
			before := value("triagem_checkin_registered_total")
			RecordCheckinRegistered()
			RecordCheckinDuplicate()
			RecordCheckinFailed("store")
			UpdateAttendeesTotal(42)

			Convey("Then the counters move", func() {
				So(value("triagem_checkin_registered_total"), ShouldEqual, before+1)
				So(value("triagem_checkin_failed_total"), ShouldBeGreaterThanOrEqualTo, 1)
				So(value("triagem_checkin_attendees"), ShouldEqual, 42)
			})
		})

		Convey("When a failed reflection is recorded", func() {
			before := value("triagem_checkin_reflection_failures_total")
			RecordReflection(12, true)
			RecordReflection(3, false)

			Convey("Then only the failure counter moves once", func() {
				So(value("triagem_checkin_reflection_failures_total"), ShouldEqual, before+1)
			})
		})

		Convey("When the remaining recorders are called", func() {
			So(func() {
				RecordReportBuilt(1.5)
				UpdateQueueSize(3)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.3)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(2)
				RecordWorkerProcessingLatency(0.4)
				RecordWorkerError()
				RecordStoreLatency("memory", "add", 0.01)
				RecordHTTPRequest("/attendees", "POST", "202")
				RecordHTTPRequestDuration("/attendees", "POST", "202", 1.2)
				RecordErrorByComponent("queue", "queue_full")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordQueueEnqueue()
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		Convey("Then only triagem metrics are exposed", func() {
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "triagem_checkin_"), ShouldBeTrue)
			}
		})
	})
}
