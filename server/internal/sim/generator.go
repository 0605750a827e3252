package sim

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/vitalsim/vitalsim/pkg/types"
)

// Spike band for abnormal mode. Exported so instrumentation and alert rules
// can reference the same thresholds.
const (
	SpikeMin = 130.0
	SpikeMax = 180.0
)

// Waveform constants.
const (
	stepMS = 100 // simulated ms between points — 10 points per second

	normalAmplitude = 50.0
	normalBaseline  = 60.0
	normalPhaseStep = 0.5

	abnormalAmplitude = 40.0
	abnormalBaseline  = 65.0
	abnormalPhaseStep = 0.45
	spikeProbability  = 0.10
)

// timeLayout renders simulated timestamps as ISO-8601 UTC with millisecond
// precision.
const timeLayout = "2006-01-02T15:04:05.000Z"

// randSource yields uniform floats in [0, 1). *rand.Rand satisfies it; tests
// substitute a scripted sequence to pin down branch selection.
type randSource interface {
	Float64() float64
}

// Generator is the signal generator state machine. Mode, simulated clock and
// phase form one indivisible shared state behind a single mutex — there is no
// per-client state.
type Generator struct {
	mu          sync.Mutex
	mode        Mode
	timestampMS int64
	phase       float64

	now  func() time.Time // injectable for deterministic tests
	rand randSource
}

// New returns a stopped Generator with the simulated clock seeded from
// wall-clock now and phase zero.
func New() *Generator {
	g := &Generator{
		mode: ModeStopped,
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	g.timestampMS = g.now().UnixMilli()
	return g
}

// Mode returns the current generation mode.
func (g *Generator) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// SetMode applies m and returns it. Restarting from stopped resets the
// simulated clock to wall-clock now and the phase to zero before the new
// mode takes effect; every other transition keeps clock and phase untouched,
// so switching between normal and abnormal continues the same timeline.
func (g *Generator) SetMode(m Mode) Mode {
	g.mu.Lock()
	if g.mode == ModeStopped && m != ModeStopped {
		g.timestampMS = g.now().UnixMilli()
		g.phase = 0
	}
	g.mode = m
	g.mu.Unlock()

	slog.Info("sim: mode set", "mode", m)
	return m
}

// Next produces the next sample. It reports false while stopped — that is
// "no data available", not an error. In a running mode the simulated clock
// advances by exactly 100ms per point and the value is rounded to two
// decimal places.
func (g *Generator) Next() (types.Point, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var value float64
	switch g.mode {
	case ModeNormal:
		value = math.Sin(g.phase)*normalAmplitude + normalBaseline
		g.phase += normalPhaseStep
	case ModeAbnormal:
		if g.rand.Float64() < spikeProbability {
			// Anomalous spike — phase is left untouched so the underlying
			// waveform resumes where it left off.
			value = SpikeMin + g.rand.Float64()*(SpikeMax-SpikeMin)
		} else {
			value = math.Sin(g.phase)*abnormalAmplitude + abnormalBaseline
			g.phase += abnormalPhaseStep
		}
	default:
		return types.Point{}, false
	}

	g.timestampMS += stepMS
	return types.Point{
		Time:  time.UnixMilli(g.timestampMS).UTC().Format(timeLayout),
		Value: math.Round(value*100) / 100,
	}, true
}
