package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/bizdesk/internal/adapter/http/dto"
)

type checkerStub struct {
	name string
	err  error
}

func (c checkerStub) Name() string                  { return c.name }
func (c checkerStub) Check(ctx context.Context) error { return c.err }

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_ReadinessAllHealthy(t *testing.T) {
	h := NewHealthHandler(checkerStub{name: "postgres"}, checkerStub{name: "redis"})
	rec := httptest.NewRecorder()

	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ready" || body["postgres"] != "ok" || body["redis"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHealthHandler_ReadinessFailure(t *testing.T) {
	h := NewHealthHandler(checkerStub{name: "postgres"}, checkerStub{name: "redis", err: errors.New("connection refused")})
	rec := httptest.NewRecorder()

	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "redis unhealthy" || resp.Message != "connection refused" {
		t.Fatalf("unexpected error response: %+v", resp)
	}
}
