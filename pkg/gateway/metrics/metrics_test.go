package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("scrape status=%d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetrics_RecordsAndExposes(t *testing.T) {
	m := New("testns")

	m.RecordRequest(http.MethodGet, "/v1/projects", "200", 25*time.Millisecond)
	m.RecordSessionProvisioned("placeholder")
	m.RecordPromptEnhancement("ok")
	m.RecordTranscriptSaved(12, 340)
	m.RecordError("store", "storage_error")

	body := scrape(t, m)
	for _, want := range []string{
		`testns_requests_total{method="GET",route="/v1/projects",status="200"} 1`,
		`testns_sessions_provisioned_total{mode="placeholder"} 1`,
		`testns_prompt_enhancements_total{status="ok"} 1`,
		`testns_transcripts_saved_total 1`,
		`testns_errors_total{component="store",error_type="storage_error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %q", want)
		}
	}
}

func TestMetrics_DefaultNamespace(t *testing.T) {
	m := New("")
	m.RecordTranscriptSaved(1, 0)
	if !strings.Contains(scrape(t, m), "insightlab_transcripts_saved_total 1") {
		t.Error("default namespace not applied")
	}
}
