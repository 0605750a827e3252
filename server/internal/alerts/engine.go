package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vitalsim/vitalsim/pkg/types"
	"github.com/vitalsim/vitalsim/server/internal/config"
	"github.com/vitalsim/vitalsim/server/internal/sim"
)

const (
	// defaultCooldown is short compared to typical monitoring systems because
	// points arrive at 10 Hz — one spike burst should not flood webhooks.
	defaultCooldown = 1 * time.Minute

	maxHistoryLen = 200
	recentWindow  = 1 * time.Hour
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	Mode       string     `json:"mode"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

// Engine evaluates alert rules against generated points and delivers webhook
// notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	rules    []config.AlertRule
	webhooks []config.WebhookConfig
	active   map[string]*Alert    // key: rule name
	lastFire map[string]time.Time // last fire time per rule (for cooldown)
	history  []*Alert             // recently resolved alerts
	client   *http.Client
	now      func() time.Time // injectable for deterministic tests
}

// New creates an Engine from the server alert configuration.
// An Engine with empty rules is valid — Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// UpdateRules swaps in a new rule and webhook set, typically from a config
// hot-reload. Active alerts and cooldown state are kept.
func (e *Engine) UpdateRules(cfg config.AlertsConfig) {
	e.mu.Lock()
	e.rules = cfg.Rules
	e.webhooks = cfg.Webhooks
	e.mu.Unlock()
	slog.Info("alerts: rules updated", "rules", len(cfg.Rules), "webhooks", len(cfg.Webhooks))
}

// Evaluate tests all configured rules against the point just generated.
// Alerts that fire are stored and webhook delivery is triggered
// asynchronously. Alerts that were firing but whose condition is now false
// are resolved.
func (e *Engine) Evaluate(p types.Point, mode sim.Mode) {
	e.mu.Lock()
	if len(e.rules) == 0 {
		e.mu.Unlock()
		return
	}

	now := e.now()
	var deliveries []*Alert

	for _, rule := range e.rules {
		fires, value := evalCondition(rule.Condition, p, mode)

		if fires {
			cooldown := rule.Cooldown
			if cooldown <= 0 {
				cooldown = defaultCooldown
			}
			if now.Sub(e.lastFire[rule.Name]) <= cooldown {
				continue
			}
			sev := rule.Severity
			if sev == "" {
				sev = "warning"
			}
			a := &Alert{
				ID:       fmt.Sprintf("%s:%d", rule.Name, now.UnixNano()),
				RuleName: rule.Name,
				Severity: sev,
				Value:    value,
				Mode:     string(mode),
				Message: fmt.Sprintf("[%s] %s fired — %s (value = %.2f, mode = %s)",
					sev, rule.Name, rule.Condition, value, mode),
				FiredAt: now,
				State:   "firing",
			}
			e.active[rule.Name] = a
			e.lastFire[rule.Name] = now

			cp := *a
			deliveries = append(deliveries, &cp)
			slog.Warn("alert fired",
				"rule", rule.Name, "value", value, "mode", mode, "severity", sev)
			continue
		}

		if a, ok := e.active[rule.Name]; ok && a.State == "firing" {
			resolved := now
			a.State = "resolved"
			a.ResolvedAt = &resolved
			delete(e.active, rule.Name)

			e.history = append(e.history, a)
			if len(e.history) > maxHistoryLen {
				e.history = e.history[len(e.history)-maxHistoryLen:]
			}

			cp := *a
			deliveries = append(deliveries, &cp)
			slog.Info("alert resolved", "rule", rule.Name)
		}
	}
	e.mu.Unlock()

	for _, a := range deliveries {
		go e.deliver(a)
	}
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour. The result is never nil.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindow)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}
