package metrics

import (
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the server's operational counters. All methods are safe for
// concurrent use. Metrics is an http.Handler serving the Prometheus text
// exposition format.
type Metrics struct {
	mu          sync.Mutex
	points      map[string]float64 // points generated, keyed by mode
	spikes      float64
	modeChanges map[string]float64 // successful set_mode calls, keyed by mode
}

// New returns a ready-to-use Metrics.
func New() *Metrics {
	return &Metrics{
		points:      make(map[string]float64),
		modeChanges: make(map[string]float64),
	}
}

// PointGenerated counts one generated point for the given mode.
func (m *Metrics) PointGenerated(mode string) {
	m.mu.Lock()
	m.points[mode]++
	m.mu.Unlock()
}

// SpikeGenerated counts one abnormal-mode spike sample.
func (m *Metrics) SpikeGenerated() {
	m.mu.Lock()
	m.spikes++
	m.mu.Unlock()
}

// ModeChanged counts one successful set_mode call for the given mode.
func (m *Metrics) ModeChanged(mode string) {
	m.mu.Lock()
	m.modeChanges[mode]++
	m.mu.Unlock()
}

// ServeHTTP writes all metric families in Prometheus text format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range m.families() {
		if err := enc.Encode(mf); err != nil {
			// Client went away mid-write; nothing useful to do.
			return
		}
	}
}

// families snapshots the counters into exposition-ready metric families.
// Labeled families with no samples yet are omitted — expfmt rejects empty
// families.
func (m *Metrics) families() []*dto.MetricFamily {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*dto.MetricFamily, 0, 3)
	if len(m.points) > 0 {
		out = append(out, counterFamily("vitalsim_points_generated_total",
			"Total points generated, by mode.",
			labeledCounters("mode", m.points)))
	}
	out = append(out, counterFamily("vitalsim_spikes_generated_total",
		"Total abnormal-mode spike samples generated.",
		[]*dto.Metric{{Counter: &dto.Counter{Value: f64(m.spikes)}}}))
	if len(m.modeChanges) > 0 {
		out = append(out, counterFamily("vitalsim_mode_changes_total",
			"Total successful mode changes, by requested mode.",
			labeledCounters("mode", m.modeChanges)))
	}
	return out
}

func counterFamily(name, help string, metrics []*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   str(name),
		Help:   str(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: metrics,
	}
}

// labeledCounters builds one counter metric per label value, in sorted order
// so the exposition output is stable.
func labeledCounters(label string, values map[string]float64) []*dto.Metric {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*dto.Metric, 0, len(keys))
	for _, k := range keys {
		out = append(out, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: str(label), Value: str(k)}},
			Counter: &dto.Counter{Value: f64(values[k])},
		})
	}
	return out
}

func str(s string) *string { return &s }
func f64(v float64) *float64 { return &v }
