package metrics

import (
	"errors"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/cosmodist/internal/cosmo"
)

// Recorder observes Extend calls and exports them as Prometheus metrics.
type Recorder struct {
	calls    *prometheus.CounterVec
	steps    prometheus.Counter
	duration prometheus.Histogram
	samples  prometheus.Gauge
	lastZ    prometheus.Gauge
}

var _ cosmo.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cosmodist_extend_calls_total",
				Help: "Total number of distance table extend calls.",
			},
			[]string{"result"},
		),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cosmodist_extend_steps_total",
			Help: "Total number of integration steps taken.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cosmodist_extend_duration_seconds",
			Help:    "Extend call duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cosmodist_table_samples",
			Help: "Number of samples in the distance table.",
		}),
		lastZ: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cosmodist_table_max_redshift",
			Help: "Largest tabulated redshift.",
		}),
	}
	reg.MustRegister(r.calls, r.steps, r.duration, r.samples, r.lastZ)
	return r
}

func (r *Recorder) OnExtend(s cosmo.ExtendStats) {
	r.calls.WithLabelValues(result(s.Err)).Inc()
	r.steps.Add(float64(s.Steps))
	r.duration.Observe(s.Elapsed.Seconds())
	r.samples.Set(float64(s.Samples))
	r.lastZ.Set(s.LastZ)
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cosmo.ErrBoundsUnreachable):
		return "unreachable"
	case errors.Is(err, cosmo.ErrNumeric):
		return "numeric"
	default:
		return "error"
	}
}

// Handler returns the Prometheus metrics HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Value is one flattened metric sample.
type Value struct {
	Name  string
	Value float64
}

// Snapshot flattens the gathered metrics into name/value pairs, sorted by
// name. Histograms contribute _count and _sum.
func Snapshot(g prometheus.Gatherer) ([]Value, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []Value
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out = append(out, Value{name, m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				out = append(out, Value{name, m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				out = append(out,
					Value{name + "_count", float64(h.GetSampleCount())},
					Value{name + "_sum", h.GetSampleSum()})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
