// Package sim implements the mode-controlled waveform generator at the heart
// of vitalsim.
//
// mode.go defines the Mode enum (stopped | normal | abnormal) with a strict,
// case-sensitive parser. generator.go provides the Generator state machine:
// one shared mode + simulated clock + phase accumulator guarded by a single
// mutex. The simulated clock advances by exactly 100ms per generated point
// regardless of wall-clock time, so the output stream is self-consistent at
// 10 points per simulated second.
//
// Generation rules:
//   - stopped:  Next reports no point (false) — the "no data" signal.
//   - normal:   value = sin(phase)*50 + 60, phase += 0.5.
//   - abnormal: 10% chance of a spike drawn uniformly from [130, 180]
//     (phase untouched); otherwise value = sin(phase)*40 + 65, phase += 0.45.
//
// Restarting from stopped resets the simulated clock to wall-clock now and
// the phase to zero. Switching between normal and abnormal keeps both, so
// the waveform continues without a discontinuity in time.
//
// The wall clock and the random source are injectable so tests are
// deterministic without sleeping.
package sim
