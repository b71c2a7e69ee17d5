package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "annodoc"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry         *prom.Registry
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	fileOutcomes     *prom.CounterVec
	pagesWritten     prom.Counter
	bibliographySize prom.Gauge
	buildOutcome     *prom.CounterVec
}

// NewPrometheusRecorder constructs Prometheus metrics and registers them with
// reg, or with a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.fileOutcomes = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "source_files_total",
		Help:      "Source files processed by outcome",
	}, []string{"outcome"})
	pr.pagesWritten = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "pages_written_total",
		Help:      "Documentation pages written, including the bibliography page",
	})
	pr.bibliographySize = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "bibliography_sources",
		Help:      "Distinct sources listed in the last bibliography",
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.fileOutcomes, pr.pagesWritten, pr.bibliographySize, pr.buildOutcome)
	return pr
}

// Registry returns the registry holding the recorder's collectors.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveStageDuration(stage Stage, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFileOutcome(outcome FileOutcome) {
	if p == nil || p.fileOutcomes == nil {
		return
	}
	p.fileOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPagesWritten() {
	if p == nil || p.pagesWritten == nil {
		return
	}
	p.pagesWritten.Inc()
}

func (p *PrometheusRecorder) SetBibliographySize(n int) {
	if p == nil || p.bibliographySize == nil {
		return
	}
	p.bibliographySize.Set(float64(n))
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

// WriteTextfile writes the recorder's metrics to path in the Prometheus text
// exposition format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
