package alerts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vitalsim/vitalsim/pkg/types"
	"github.com/vitalsim/vitalsim/server/internal/config"
	"github.com/vitalsim/vitalsim/server/internal/sim"
)

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func pt(v float64) types.Point {
	return types.Point{Time: "2026-01-01T00:00:00.100Z", Value: v}
}

func spikeRule(cooldown time.Duration) config.AlertRule {
	return config.AlertRule{
		Name:      "spike",
		Condition: "value >= 130",
		Severity:  "critical",
		Cooldown:  cooldown,
	}
}

func newEngine(rules ...config.AlertRule) *Engine {
	e := New(config.AlertsConfig{Rules: rules})
	e.now = fixedClock(baseTime)
	return e
}

func TestEvaluate_NoRules_NoOp(t *testing.T) {
	e := newEngine()
	e.Evaluate(pt(999), sim.ModeAbnormal)
	if got := e.Active(); len(got) != 0 {
		t.Errorf("Active: got %d alerts, want 0", len(got))
	}
}

func TestEvaluate_FiresOnValueCondition(t *testing.T) {
	e := newEngine(spikeRule(0))
	e.Evaluate(pt(155), sim.ModeAbnormal)

	active := e.Active()
	if len(active) != 1 {
		t.Fatalf("Active: got %d alerts, want 1", len(active))
	}
	a := active[0]
	if a.RuleName != "spike" || a.State != "firing" {
		t.Errorf("alert: got %+v", a)
	}
	if a.Value != 155 {
		t.Errorf("alert value: got %v, want 155", a.Value)
	}
	if a.Mode != "abnormal" {
		t.Errorf("alert mode: got %q, want abnormal", a.Mode)
	}
}

func TestEvaluate_BelowThreshold_NoFire(t *testing.T) {
	e := newEngine(spikeRule(0))
	e.Evaluate(pt(105), sim.ModeAbnormal)
	if got := e.Active(); len(got) != 0 {
		t.Errorf("Active: got %d alerts, want 0", len(got))
	}
}

func TestEvaluate_CooldownSuppressesRefire(t *testing.T) {
	e := newEngine(spikeRule(time.Minute))
	e.Evaluate(pt(150), sim.ModeAbnormal)

	// Resolve, then a second spike arrives 10 seconds later — inside cooldown.
	e.now = fixedClock(baseTime.Add(5 * time.Second))
	e.Evaluate(pt(50), sim.ModeAbnormal)
	e.now = fixedClock(baseTime.Add(10 * time.Second))
	e.Evaluate(pt(170), sim.ModeAbnormal)

	firing := 0
	for _, a := range e.Active() {
		if a.State == "firing" {
			firing++
		}
	}
	if firing != 0 {
		t.Errorf("firing alerts inside cooldown: got %d, want 0", firing)
	}

	// After the cooldown elapses the rule fires again.
	e.now = fixedClock(baseTime.Add(2 * time.Minute))
	e.Evaluate(pt(170), sim.ModeAbnormal)
	firing = 0
	for _, a := range e.Active() {
		if a.State == "firing" {
			firing++
		}
	}
	if firing != 1 {
		t.Errorf("firing alerts after cooldown: got %d, want 1", firing)
	}
}

func TestEvaluate_ResolvesWhenConditionClears(t *testing.T) {
	e := newEngine(spikeRule(0))
	e.Evaluate(pt(150), sim.ModeAbnormal)

	e.now = fixedClock(baseTime.Add(time.Second))
	e.Evaluate(pt(60), sim.ModeAbnormal)

	active := e.Active()
	if len(active) != 1 {
		t.Fatalf("Active: got %d alerts, want 1 (recently resolved)", len(active))
	}
	a := active[0]
	if a.State != "resolved" {
		t.Errorf("state: got %q, want resolved", a.State)
	}
	if a.ResolvedAt == nil {
		t.Error("ResolvedAt: missing")
	}
}

func TestEvaluate_ModeCondition(t *testing.T) {
	e := newEngine(config.AlertRule{
		Name:      "running-abnormal",
		Condition: "mode == abnormal",
		Severity:  "info",
	})

	e.Evaluate(pt(65), sim.ModeNormal)
	if got := e.Active(); len(got) != 0 {
		t.Fatalf("Active after normal point: got %d, want 0", len(got))
	}

	e.Evaluate(pt(65), sim.ModeAbnormal)
	active := e.Active()
	if len(active) != 1 || active[0].State != "firing" {
		t.Fatalf("Active after abnormal point: got %+v", active)
	}
}

func TestEvaluate_MalformedCondition_NeverFires(t *testing.T) {
	e := newEngine(
		config.AlertRule{Name: "bad1", Condition: "value >"},
		config.AlertRule{Name: "bad2", Condition: "heartrate > 10"},
		config.AlertRule{Name: "bad3", Condition: "value > ten"},
	)
	e.Evaluate(pt(999), sim.ModeAbnormal)
	if got := e.Active(); len(got) != 0 {
		t.Errorf("Active: got %d alerts, want 0", len(got))
	}
}

func TestEvaluate_DefaultSeverityIsWarning(t *testing.T) {
	e := newEngine(config.AlertRule{Name: "r", Condition: "value > 100"})
	e.Evaluate(pt(150), sim.ModeAbnormal)
	active := e.Active()
	if len(active) != 1 {
		t.Fatalf("Active: got %d, want 1", len(active))
	}
	if active[0].Severity != "warning" {
		t.Errorf("severity: got %q, want warning", active[0].Severity)
	}
}

func TestUpdateRules_SwapsRuleSet(t *testing.T) {
	e := newEngine(spikeRule(0))
	e.UpdateRules(config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "low", Condition: "value < 20", Severity: "warning"},
	}})

	// Old rule no longer fires; new rule does.
	e.Evaluate(pt(150), sim.ModeAbnormal)
	if got := e.Active(); len(got) != 0 {
		t.Fatalf("old rule fired after UpdateRules: %+v", got)
	}
	e.Evaluate(pt(10), sim.ModeNormal)
	active := e.Active()
	if len(active) != 1 || active[0].RuleName != "low" {
		t.Fatalf("new rule: got %+v", active)
	}
}

func TestDeliver_HTTPWebhook(t *testing.T) {
	got := make(chan map[string]interface{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		got <- body
	}))
	defer srv.Close()

	t.Setenv("TEST_ALERT_WEBHOOK", srv.URL)
	e := New(config.AlertsConfig{
		Rules:    []config.AlertRule{spikeRule(0)},
		Webhooks: []config.WebhookConfig{{Type: "http", URLEnv: "TEST_ALERT_WEBHOOK"}},
	})
	e.now = fixedClock(baseTime)

	e.Evaluate(pt(155), sim.ModeAbnormal)

	select {
	case body := <-got:
		alert, ok := body["alert"].(map[string]interface{})
		if !ok {
			t.Fatalf("webhook body missing alert: %v", body)
		}
		if alert["rule_name"] != "spike" {
			t.Errorf("rule_name: got %v, want spike", alert["rule_name"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook not delivered within 2s")
	}
}
