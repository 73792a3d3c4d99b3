package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/devspec/internal/model"
)

const namespace = "devspec"

// Fetch result label values.
const (
	resultOK     = "ok"
	resultFailed = "failed"
)

// Recorder collects the metrics of a crawl run.
// It implements crawler.Observer.
type Recorder struct {
	registry *prometheus.Registry

	proxyRequests    prometheus.Counter
	pagesFetched     *prometheus.CounterVec
	fetchStatus      *prometheus.CounterVec
	recordsPersisted prometheus.Counter
	frontierSize     prometheus.Gauge
	candidates       prometheus.Gauge
	lastRunSuccess   prometheus.Gauge
	lastRunDuration  prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		proxyRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_requests_total",
			Help:      "Requests sent through the forwarding proxy.",
		}),
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Device pages fetched, by result.",
		}, []string{"result"}),
		fetchStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Device pages that answered a non-200 status, by status code.",
		}, []string{"code"}),
		recordsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_persisted_total",
			Help:      "Records written to the store.",
		}),
		frontierSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frontier_size",
			Help:      "Device pages selected for fetching in the run.",
		}),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates_discovered",
			Help:      "Device URLs found on the listing pages.",
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the run completed without error, 0 otherwise.",
		}),
		lastRunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the run.",
		}),
	}

	// Both label values are exported even when one stays at zero.
	r.pagesFetched.WithLabelValues(resultOK)
	r.pagesFetched.WithLabelValues(resultFailed)

	r.registry.MustRegister(
		r.proxyRequests,
		r.pagesFetched,
		r.fetchStatus,
		r.recordsPersisted,
		r.frontierSize,
		r.candidates,
		r.lastRunSuccess,
		r.lastRunDuration,
	)
	return r
}

// FetchSucceeded counts a 200 device page.
func (r *Recorder) FetchSucceeded(_ string) {
	r.pagesFetched.WithLabelValues(resultOK).Inc()
}

// FetchFailed counts a device page that answered statusCode.
func (r *Recorder) FetchFailed(_ string, statusCode int) {
	r.pagesFetched.WithLabelValues(resultFailed).Inc()
	r.fetchStatus.WithLabelValues(statusLabel(statusCode)).Inc()
}

// ObserveRun records the totals of a finished run.
func (r *Recorder) ObserveRun(s model.RunSummary) {
	r.proxyRequests.Add(float64(s.ProxyCalls))
	r.recordsPersisted.Add(float64(s.Stored))
	r.frontierSize.Set(float64(s.Frontier))
	r.candidates.Set(float64(s.Candidates))
	r.lastRunDuration.Set(s.Duration().Seconds())
	if s.Succeeded() {
		r.lastRunSuccess.Set(1)
	} else {
		r.lastRunSuccess.Set(0)
	}
}

// Registry returns the registry holding the run's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the metrics to path in the Prometheus text format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

func statusLabel(code int) string {
	if http.StatusText(code) == "" {
		return "other"
	}
	return strconv.Itoa(code)
}
