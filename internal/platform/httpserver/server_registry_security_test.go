package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthorizeRequiresCallerHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/registry/v1/handlers/handler-1/authorize", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthorizeRejectsNonOwnerCaller(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/registry/v1/handlers/handler-1/authorize", nil)
	req.Header.Set("X-Handler-Id", "handler-2")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthorizeByOwnerSucceeds(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/registry/v1/handlers/handler-1/authorize", nil)
	req.Header.Set("X-Handler-Id", testOwnerID)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDoubleAuthorizeReturnsConflict(t *testing.T) {
	server := newTestServer()
	for i, want := range []int{http.StatusOK, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/registry/v1/handlers/handler-1/authorize", nil)
		req.Header.Set("X-Handler-Id", testOwnerID)

		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("call %d: expected %d, got %d body=%s", i, want, rr.Code, rr.Body.String())
		}
	}
}

func TestRevokeOwnerReturnsConflict(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/registry/v1/handlers/"+testOwnerID+"/revoke", nil)
	req.Header.Set("X-Handler-Id", testOwnerID)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHandlerStatusIsPubliclyReadable(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/registry/v1/handlers/"+testOwnerID, nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}
