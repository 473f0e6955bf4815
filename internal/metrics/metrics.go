package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	TickCounter *prometheus.CounterVec

	SampleCounter *prometheus.CounterVec

	SampleRunTimeSummary *prometheus.SummaryVec

	InventoryUploadCounter *prometheus.CounterVec

	DeviceCallCounter        *prometheus.CounterVec
	DeviceCallRunTimeSummary *prometheus.SummaryVec

	DeviceLoginCounter *prometheus.CounterVec

	StreamConnectCounter *prometheus.CounterVec

	FieldSourceCounter *prometheus.CounterVec
)

func init() {
	TickCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ikuai_agent_ticks",
			Help: "A counter metric to measure the total count of scheduler ticks, completed and skipped",
		},
		[]string{"state"}, // completed, skipped
	)

	SampleCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ikuai_agent_samples",
			Help: "A counter metric to measure the total count of samples sent on the stream or skipped",
		},
		[]string{"state"}, // sent, skipped, failed
	)

	SampleRunTimeSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "ikuai_agent_sample_duration_seconds",
			Help: "A summary metric to measure the total time spent in building a record",
		},
		[]string{"kind"}, // sample, inventory
	)

	InventoryUploadCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ikuai_agent_inventory_uploads",
			Help: "A counter metric to measure the total count of inventory uploads, successful and failed",
		},
		[]string{"state"},
	)

	DeviceCallCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ikuai_agent_device_calls",
			Help: "A counter metric to measure the total count of device API calls, by function and result",
		},
		[]string{"func_name", "result"},
	)

	DeviceCallRunTimeSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "ikuai_agent_device_call_duration_seconds",
			Help: "A summary metric to measure the total time spent in each device API call",
		},
		[]string{"func_name"},
	)

	DeviceLoginCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ikuai_agent_device_logins",
			Help: "A counter metric to measure the total count of device logins, initial and after session expiry",
		},
		[]string{"reason", "result"},
	)

	StreamConnectCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ikuai_agent_stream_connects",
			Help: "A counter metric to measure the total count of stream dial attempts",
		},
		[]string{"result"},
	)

	FieldSourceCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ikuai_agent_field_source",
			Help: "A counter metric to measure which source each record field was populated from",
		},
		[]string{"field", "source"},
	)
}

// ListenAndServe exposes prometheus metrics as /metrics on the given address.
func ListenAndServe(addr string, logger *logrus.Logger) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 2 * time.Second, // nolint:gomnd // time duration value is clear as is.
		}

		if err := server.ListenAndServe(); err != nil {
			logger.WithError(err).Error("metrics listener exited")
		}
	}()
}
