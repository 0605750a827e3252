package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vitalsim/vitalsim/pkg/types"
	"github.com/vitalsim/vitalsim/server/internal/alerts"
	"github.com/vitalsim/vitalsim/server/internal/metrics"
	"github.com/vitalsim/vitalsim/server/internal/sim"
)

// Handler is the HTTP handler for the vitalsim API. It owns no state of its
// own — all signal state lives in the generator.
type Handler struct {
	gen     *sim.Generator
	alerts  *alerts.Engine
	metrics *metrics.Metrics
	mux     *http.ServeMux
}

// New creates a Handler wired to the given generator, alert engine and
// metrics, and registers all routes.
func New(gen *sim.Generator, engine *alerts.Engine, m *metrics.Metrics) *Handler {
	h := &Handler{gen: gen, alerts: engine, metrics: m, mux: http.NewServeMux()}

	h.mux.HandleFunc("/status", h.status)
	h.mux.HandleFunc("/set_mode/", h.setMode) // subtree — extracts {mode}
	h.mux.HandleFunc("/data", h.data)
	h.mux.HandleFunc("/alerts", h.activeAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Emit generates the next point and feeds the metrics counters and the alert
// engine. Both the /data endpoint and the WebSocket stream go through here,
// so every point is accounted for exactly once regardless of which surface
// produced it. Reports false while the generator is stopped.
func (h *Handler) Emit() (types.Point, bool) {
	p, ok := h.gen.Next()
	if !ok {
		return types.Point{}, false
	}

	mode := h.gen.Mode()
	h.metrics.PointGenerated(string(mode))
	if mode == sim.ModeAbnormal && p.Value >= sim.SpikeMin {
		h.metrics.SpikeGenerated()
	}
	h.alerts.Evaluate(p, mode)

	return p, true
}

// --- route handlers ---------------------------------------------------------

// status returns GET /status — the current generation mode.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, types.StatusResponse{Mode: string(h.gen.Mode())})
}

// setMode handles POST /set_mode/{mode}.
func (h *Handler) setMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/set_mode/")
	mode, err := sim.ParseMode(name)
	if err != nil {
		jsonResp(w, http.StatusBadRequest, types.SetModeResponse{
			Status:  "error",
			Message: invalidModeMessage(),
		})
		return
	}

	applied := h.gen.SetMode(mode)
	h.metrics.ModeChanged(string(applied))
	jsonResp(w, http.StatusOK, types.SetModeResponse{
		Status:  "success",
		NewMode: string(applied),
	})
}

// data returns GET /data — the next generated point, or an empty array while
// stopped ("no data available" is not an error).
func (h *Handler) data(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	out := make([]types.Point, 0, 1)
	if p, ok := h.Emit(); ok {
		out = append(out, p)
	}
	jsonResp(w, http.StatusOK, out)
}

// activeAlerts returns GET /alerts — currently firing and recently resolved
// alerts.
func (h *Handler) activeAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// --- helpers ----------------------------------------------------------------

// invalidModeMessage is the exact message returned for unrecognized modes.
func invalidModeMessage() string {
	return "Invalid mode. Use one of: " + strings.Join(sim.ModeNames(), ", ")
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

type errorResponse struct {
	Error string `json:"error"`
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
