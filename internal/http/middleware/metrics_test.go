package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersInflightAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	// Route with a body -> positive size, observed in the size histogram.
	r.POST("/tools/summary", func(c *gin.Context) {
		c.String(http.StatusOK, `{"youtube":{},"data":{}}`)
	})

	// Status-only route -> size stays -1 and the size observation is skipped.
	r.GET("/statusonly", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Baselines first; collectors are package globals shared across tests.
	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("POST", "/tools/summary", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/does-not-exist", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tools/summary", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("POST /tools/summary -> %d", w.Code)
	}

	// Unmatched route: the path label must fall back to the raw URL.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /does-not-exist -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/statusonly", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("GET /statusonly -> %d", w.Code)
	}

	gotOK := testutil.ToFloat64(httpReqs.WithLabelValues("POST", "/tools/summary", "200"))
	if gotOK != baseOK+1 {
		t.Fatalf("counter /tools/summary 200 = %v; want %v", gotOK, baseOK+1)
	}

	got404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/does-not-exist", "404"))
	if got404 != base404+1 {
		t.Fatalf("counter 404 fallback = %v; want %v", got404, base404+1)
	}

	// Gauge must drain back to zero once all requests completed.
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
