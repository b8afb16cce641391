package httpserver

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	accessregistry "agritrace/contexts/identity-access/access-registry"
	productledger "agritrace/contexts/traceability/product-ledger"
)

const testOwnerID = "owner_root"

func newTestServer() *Server {
	registry := accessregistry.NewInMemoryModule(testOwnerID, slog.Default())
	ledger := productledger.NewInMemoryModule(registry.Service, slog.Default())
	return New(registry, ledger, slog.Default(), ":0")
}

func TestRegisterProductRequiresCallerHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"name":"Wheat","origin":"Farm1","quantity":50}`)
	req := httptest.NewRequest(http.MethodPost, "/api/trace/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "idem-trace-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRegisterProductRejectsUnauthorizedCaller(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"name":"Wheat","origin":"Farm1","quantity":50}`)
	req := httptest.NewRequest(http.MethodPost, "/api/trace/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Handler-Id", "stranger-1")
	req.Header.Set("Idempotency-Key", "idem-trace-2")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRegisterProductRequiresIdempotencyKey(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"name":"Wheat","origin":"Farm1","quantity":50}`)
	req := httptest.NewRequest(http.MethodPost, "/api/trace/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Handler-Id", testOwnerID)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRegisterProductOwnerSucceeds(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"name":"Wheat","origin":"Farm1","harvest_date":"2024-01-15T00:00:00Z","quantity":50}`)
	req := httptest.NewRequest(http.MethodPost, "/api/trace/v1/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Handler-Id", testOwnerID)
	req.Header.Set("Idempotency-Key", "idem-trace-3")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUpdateStatusRequiresCallerHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"status":"InTransit","location":"Warehouse1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/trace/v1/products/1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "idem-trace-4")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUpdateStatusRejectsMalformedProductID(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"status":"InTransit","location":"Warehouse1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/trace/v1/products/abc/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Handler-Id", testOwnerID)
	req.Header.Set("Idempotency-Key", "idem-trace-5")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetProductUnknownReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/trace/v1/products/99", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetJourneyIsPubliclyReadable(t *testing.T) {
	server := newTestServer()

	body := []byte(`{"name":"Rice","origin":"Farm2","quantity":10}`)
	register := httptest.NewRequest(http.MethodPost, "/api/trace/v1/products", bytes.NewReader(body))
	register.Header.Set("Content-Type", "application/json")
	register.Header.Set("X-Handler-Id", testOwnerID)
	register.Header.Set("Idempotency-Key", "idem-trace-6")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, register)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed: %d body=%s", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/trace/v1/products/1/journey", nil)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLedgerStatsStartsAtZero(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/trace/v1/products/stats", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}
