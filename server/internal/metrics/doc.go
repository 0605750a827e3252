// Package metrics tracks vitalsim's operational counters and exposes them in
// Prometheus text exposition format at GET /metrics.
//
// Counters:
//   - vitalsim_points_generated_total{mode=...} — points produced per mode
//   - vitalsim_spikes_generated_total           — abnormal-mode spike samples
//   - vitalsim_mode_changes_total{mode=...}     — successful set_mode calls
//
// The families are built directly as client_model MetricFamily values and
// encoded with expfmt, keeping the dependency surface to the exposition
// format itself.
package metrics
