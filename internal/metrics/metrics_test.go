package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(events.WithLabelValues("ready", "succeeded"))
	RecordEvent("ready", true)
	RecordEvent("ready", true)
	RecordEvent("ready", false)
	if got := testutil.ToFloat64(events.WithLabelValues("ready", "succeeded")); got != before+2 {
		t.Fatalf("expected %v succeeded events, got %v", before+2, got)
	}

	RecordCommand("poll", true)
	RecordModerationDeletion()
	RecordHTTPRequest("GET", "/", 200, 3*time.Millisecond)
}

func TestRouterServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RecordCommand("hello", true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "sflbot_commands_total") {
		t.Fatalf("expected command counter in output")
	}
}
