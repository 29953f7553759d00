// Package prometheus exports operation metrics as Prometheus counters and
// histograms.
package prometheus

import (
	"context"
	"strings"

	"github.com/goliatone/go-resources/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var labelNames = []string{"operation", "status", "resource", "method"}

// Recorder implements core.MetricsRecorder. Names ending in ".total" feed
// the operation counter, names ending in ".duration_ms" the histogram;
// anything else is dropped.
type Recorder struct {
	OperationTotal      *prometheus.CounterVec
	OperationDurationMs *prometheus.HistogramVec
}

// NewRecorder registers the collectors with reg. A nil reg uses the default
// registerer.
func NewRecorder(reg prometheus.Registerer, namespace string) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = "resources"
	}
	factory := promauto.With(reg)
	return &Recorder{
		OperationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_total",
			Help:      "Total number of proxy and mirror operations.",
		}, labelNames),

		OperationDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_ms",
			Help:      "Operation duration in milliseconds, including the remote round trip.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, labelNames),
	}
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || !strings.HasSuffix(name, ".total") {
		return
	}
	r.OperationTotal.WithLabelValues(labelValues(tags)...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil || !strings.HasSuffix(name, ".duration_ms") {
		return
	}
	r.OperationDurationMs.WithLabelValues(labelValues(tags)...).Observe(value)
}

func labelValues(tags map[string]string) []string {
	out := make([]string, len(labelNames))
	for i, name := range labelNames {
		out[i] = tags[name]
	}
	return out
}

var _ core.MetricsRecorder = (*Recorder)(nil)
