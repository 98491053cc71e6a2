package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"irscout/pkg/logging"
	"irscout/pkg/monitoring"
)

func TestSetupServiceRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logging.NewDiscardLogger()
	hc := monitoring.NewHealthChecker("svc", "v1")
	mc := monitoring.NewMetricsCollector("v1", "abc")
	r := SetupServiceRouter(logger, "svc", hc, mc)
	r.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })

	for _, path := range []string{"/ping", "/health", "/metrics"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequestWithContext(context.Background(), "GET", path, nil)
		r.ServeHTTP(w, req)
		if w.Code != 200 {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if path == "/metrics" && !strings.Contains(w.Body.String(), "irscout_http_requests_total") {
			t.Fatalf("expected http metrics in exposition")
		}
	}
}

func TestSetupServiceRouterWithoutMonitoring(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupServiceRouter(logging.NewDiscardLogger(), "svc", nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), "GET", "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != 200 || !strings.Contains(w.Body.String(), `"service":"svc"`) {
		t.Fatalf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("irscout", "18030")
	if cfg.Port != "18030" || cfg.ServiceName != "irscout" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.WriteTimeout <= cfg.ReadTimeout {
		t.Fatalf("write timeout should exceed read timeout")
	}
}
