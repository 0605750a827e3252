package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vitalsim/vitalsim/ctl/internal/client"
)

// fakeServer builds an httptest server that mimics the control API.
func fakeServer(t *testing.T, handler http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, 2*time.Second)
}

func jsonBody(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestStatus(t *testing.T) {
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/status" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		jsonBody(w, http.StatusOK, map[string]string{"mode": "abnormal"})
	})

	mode, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if mode != "abnormal" {
		t.Errorf("mode: got %q, want abnormal", mode)
	}
}

func TestSetMode_Success(t *testing.T) {
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if r.URL.Path != "/set_mode/normal" {
			t.Errorf("path: got %s, want /set_mode/normal", r.URL.Path)
		}
		jsonBody(w, http.StatusOK, map[string]string{"status": "success", "new_mode": "normal"})
	})

	resp, err := c.SetMode(context.Background(), "normal")
	if err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if resp.NewMode != "normal" {
		t.Errorf("new_mode: got %q, want normal", resp.NewMode)
	}
}

func TestSetMode_RejectionSurfacesServerMessage(t *testing.T) {
	const msg = "Invalid mode. Use one of: stopped, normal, abnormal"
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, http.StatusBadRequest, map[string]string{"status": "error", "message": msg})
	})

	_, err := c.SetMode(context.Background(), "bogus")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), msg) {
		t.Errorf("error %q does not contain server message %q", err, msg)
	}
}

func TestData(t *testing.T) {
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, http.StatusOK, []map[string]interface{}{
			{"time": "2026-01-01T00:00:00.100Z", "value": 60.0},
		})
	})

	pts, err := c.Data(context.Background())
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if len(pts) != 1 {
		t.Fatalf("points: got %d, want 1", len(pts))
	}
	if pts[0].Value != 60.0 {
		t.Errorf("value: got %v, want 60", pts[0].Value)
	}
}

func TestData_StoppedEmpty(t *testing.T) {
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonBody(w, http.StatusOK, []interface{}{})
	})

	pts, err := c.Data(context.Background())
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if len(pts) != 0 {
		t.Errorf("points: got %d, want 0", len(pts))
	}
}

func TestGet_ServerError(t *testing.T) {
	c := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := c.Status(context.Background()); err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("path: got %q, want /status", r.URL.Path)
		}
		jsonBody(w, http.StatusOK, map[string]string{"mode": "stopped"})
	}))
	defer srv.Close()

	c := client.New(srv.URL+"/", 0)
	if _, err := c.Status(context.Background()); err != nil {
		t.Fatalf("Status: %v", err)
	}
}
