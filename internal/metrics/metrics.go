// Package metrics records classification and analysis measurements in a
// private Prometheus registry. Batch runs export them with WriteTextfile for
// the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "papercheck"

// Recorder implements classify.Observer and analyze.Observer.
type Recorder struct {
	registry *prometheus.Registry

	decisions      *prometheus.CounterVec
	remoteAttempts *prometheus.CounterVec
	remoteLatency  prometheus.Histogram
	documents      prometheus.Counter
	paragraphs     prometheus.Counter
	findings       prometheus.Counter
	docDuration    prometheus.Histogram
}

// New returns a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Paragraph classification decisions by role and deciding rule.",
		}, []string{"role", "source"}),
		remoteAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "attempts_total",
			Help:      "Remote classifier attempts by outcome.",
		}, []string{"outcome"}),
		remoteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "attempt_seconds",
			Help:      "Latency of remote classifier attempts.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents analyzed.",
		}),
		paragraphs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paragraphs_total",
			Help:      "Paragraphs analyzed.",
		}),
		findings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Validation findings, paragraph and document level.",
		}),
		docDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_seconds",
			Help:      "Wall time to analyze one document.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	r.registry.MustRegister(r.decisions, r.remoteAttempts, r.remoteLatency, r.documents, r.paragraphs, r.findings, r.docDuration)
	return r
}

// Registry exposes the underlying registry as a gatherer.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveDecision counts one classification decision.
func (r *Recorder) ObserveDecision(role, source string) {
	r.decisions.WithLabelValues(role, source).Inc()
}

// ObserveRemoteAttempt counts one remote attempt and its latency. Cache hits
// carry no latency worth recording.
func (r *Recorder) ObserveRemoteAttempt(outcome string, elapsed time.Duration) {
	r.remoteAttempts.WithLabelValues(outcome).Inc()
	if outcome != "cache" {
		r.remoteLatency.Observe(elapsed.Seconds())
	}
}

// ObserveDocument records one analyzed document.
func (r *Recorder) ObserveDocument(paragraphs, findings int, elapsed time.Duration) {
	r.documents.Inc()
	r.paragraphs.Add(float64(paragraphs))
	r.findings.Add(float64(findings))
	r.docDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes the current values in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
