package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	accessregistry "agritrace/contexts/identity-access/access-registry"
	registryerrors "agritrace/contexts/identity-access/access-registry/domain/errors"
	registryhttp "agritrace/contexts/identity-access/access-registry/transport/http"
	productledger "agritrace/contexts/traceability/product-ledger"
	ledgererrors "agritrace/contexts/traceability/product-ledger/domain/errors"
	ledgerhttp "agritrace/contexts/traceability/product-ledger/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "agritrace/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	registry accessregistry.Module
	ledger   productledger.Module
}

func New(
	registry accessregistry.Module,
	ledger productledger.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		registry: registry,
		ledger:   ledger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/registry/v1/handlers", s.handleListHandlers)
	s.mux.HandleFunc("GET /api/registry/v1/handlers/{handler_id}", s.handleHandlerStatus)
	s.mux.HandleFunc("POST /api/registry/v1/handlers/{handler_id}/authorize", s.handleAuthorizeHandler)
	s.mux.HandleFunc("POST /api/registry/v1/handlers/{handler_id}/revoke", s.handleRevokeHandler)

	s.mux.HandleFunc("POST /api/trace/v1/products", s.handleRegisterProduct)
	s.mux.HandleFunc("GET /api/trace/v1/products/stats", s.handleLedgerStats)
	s.mux.HandleFunc("GET /api/trace/v1/products/{product_id}", s.handleGetProduct)
	s.mux.HandleFunc("GET /api/trace/v1/products/{product_id}/journey", s.handleGetJourney)
	s.mux.HandleFunc("POST /api/trace/v1/products/{product_id}/status", s.handleUpdateStatus)
}

func (s *Server) handleListHandlers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ListHandlersHandler(r.Context())
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHandlerStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.HandlerStatusHandler(r.Context(), r.PathValue("handler_id"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	callerID := resolveCallerID(r)
	if callerID == "" {
		writeRegistryError(w, http.StatusUnauthorized, "missing_caller", "X-Handler-Id header is required")
		return
	}
	resp, err := s.registry.Handler.AuthorizeHandler(r.Context(), callerID, r.PathValue("handler_id"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeHandler(w http.ResponseWriter, r *http.Request) {
	callerID := resolveCallerID(r)
	if callerID == "" {
		writeRegistryError(w, http.StatusUnauthorized, "missing_caller", "X-Handler-Id header is required")
		return
	}
	resp, err := s.registry.Handler.RevokeHandler(r.Context(), callerID, r.PathValue("handler_id"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterProduct(w http.ResponseWriter, r *http.Request) {
	callerID := resolveCallerID(r)
	if callerID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_caller", "X-Handler-Id header is required")
		return
	}

	var req ledgerhttp.RegisterProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.RegisterProductHandler(
		r.Context(),
		callerID,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	callerID := resolveCallerID(r)
	if callerID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_caller", "X-Handler-Id header is required")
		return
	}
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req ledgerhttp.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.UpdateStatusHandler(
		r.Context(),
		callerID,
		r.Header.Get("Idempotency-Key"),
		productID,
		req,
	)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.GetProductHandler(r.Context(), productID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetJourney(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.GetJourneyHandler(r.Context(), productID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLedgerStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.LedgerStatsHandler(r.Context())
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("product_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be an integer")
		return 0, false
	}
	return id, true
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrPermissionDenied):
		writeRegistryError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidIdentity):
		writeRegistryError(w, http.StatusBadRequest, "invalid_identity", err.Error())
	case errors.Is(err, registryerrors.ErrHandlerNotFound):
		writeRegistryError(w, http.StatusNotFound, "handler_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrAlreadyAuthorized),
		errors.Is(err, registryerrors.ErrNotAuthorized),
		errors.Is(err, registryerrors.ErrCannotRevokeOwner):
		writeRegistryError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrPermissionDenied):
		writeLedgerError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidInput):
		writeLedgerError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, ledgererrors.ErrProductNotFound):
		writeLedgerError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrIdempotencyKeyRequired):
		writeLedgerError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, ledgererrors.ErrIdempotencyConflict):
		writeLedgerError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveCallerID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Handler-Id")); id != "" {
		return id
	}
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
