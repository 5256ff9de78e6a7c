package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-bazi/backend/internal/service/chart"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
)

func TestRouterServesHealth(t *testing.T) {
	runner := pipeline.NewRunner(chart.StaticComputer{}, nil)
	router := NewRouter(zerolog.New(io.Discard), runner, false)

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header, got %q", got)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	runner := pipeline.NewRunner(chart.StaticComputer{}, nil)
	router := NewRouter(zerolog.New(io.Discard), runner, false)

	req := httptest.NewRequest(http.MethodGet, "/api/charts", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
