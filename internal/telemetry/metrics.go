package telemetry

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"panelcomp/internal/logging"
)

const namespace = "panelcomp"

// Metrics counts dispatcher activity. A nil *Metrics is valid and records
// nothing, so components can take one unconditionally.
type Metrics struct {
	fits       *prometheus.CounterVec
	transforms *prometheus.CounterVec
	blocks     *prometheus.CounterVec
	instances  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fits_total",
			Help:      "Completed fit calls per transformer.",
		}, []string{"transformer"}),
		transforms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transforms_total",
			Help:      "Completed transform calls per transformer.",
		}, []string{"transformer"}),
		blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Stacked outputs per chosen representation.",
		}, []string{"representation"}),
		instances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_total",
			Help:      "Instances broadcast through row transformers per unit kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_seconds",
			Help:      "Wall time of transform calls.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"transformer"}),
	}
	for _, c := range []prometheus.Collector{m.fits, m.transforms, m.blocks, m.instances, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("telemetry: register: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) ObserveFit(transformer string) {
	if m == nil {
		return
	}
	m.fits.WithLabelValues(transformer).Inc()
}

func (m *Metrics) ObserveTransform(transformer string, d time.Duration) {
	if m == nil {
		return
	}
	m.transforms.WithLabelValues(transformer).Inc()
	m.duration.WithLabelValues(transformer).Observe(d.Seconds())
}

func (m *Metrics) ObserveBlock(representation string) {
	if m == nil {
		return
	}
	m.blocks.WithLabelValues(representation).Inc()
}

func (m *Metrics) ObserveInstances(kind string, n int) {
	if m == nil {
		return
	}
	m.instances.WithLabelValues(kind).Add(float64(n))
}

// Expose serves g on :port/metrics in the background.
func Expose(port int, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L().Error("metrics server stopped", "err", err)
		}
	}()
	return srv
}
