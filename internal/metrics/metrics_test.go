package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_RegistersMetrics は全メトリクスがレジストリに登録されることを検証する。
func TestNewCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGateDecision("allow")
	c.RecordHTTPStatus(200)
	c.IncLoginAttempt(true)
	c.IncLoginAttempt(false)
	c.ObserveFeedQuery(50*time.Millisecond, 20)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"citizenly_gate_decisions_total",
		"citizenly_http_status_total",
		"citizenly_login_attempts_total",
		"citizenly_feed_query_latency_seconds",
		"citizenly_feed_items_served_total",
	} {
		if !names[want] {
			t.Errorf("metric %q not registered", want)
		}
	}
}

// TestSetupMetricsRoute_ServesMetrics は/metricsパスでメトリクスが返ることを検証する。
func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordGateDecision("redirect_login")

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	if !strings.Contains(bodyStr, "citizenly_gate_decisions_total") {
		t.Error("response should contain citizenly_gate_decisions_total metric")
	}
}
