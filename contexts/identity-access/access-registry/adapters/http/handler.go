package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"agritrace/contexts/identity-access/access-registry/application"
	httptransport "agritrace/contexts/identity-access/access-registry/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// AuthorizeHandler godoc
// @Summary Authorize a handler identity
// @Description Grants write access to the target handler. Owner only.
// @Tags access-registry
// @Accept json
// @Produce json
// @Param X-Handler-Id header string true "Caller identity"
// @Param handler_id path string true "Target handler id"
// @Success 200 {object} httptransport.AuthorizeHandlerResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/registry/v1/handlers/{handler_id}/authorize [post]
func (h Handler) AuthorizeHandler(ctx context.Context, callerID string, targetID string) (httptransport.AuthorizeHandlerResponse, error) {
	item, err := h.Service.Authorize(ctx, strings.TrimSpace(callerID), strings.TrimSpace(targetID))
	if err != nil {
		return httptransport.AuthorizeHandlerResponse{}, err
	}
	resp := httptransport.AuthorizeHandlerResponse{Status: "success"}
	resp.Data.HandlerID = item.HandlerID
	resp.Data.AuthorizedBy = item.AuthorizedBy
	resp.Data.AuthorizedAt = item.AuthorizedAt.UTC().Format(time.RFC3339)
	return resp, nil
}

// RevokeHandler godoc
// @Summary Revoke a handler identity
// @Description Clears write access for the target handler. Owner only; the owner itself cannot be revoked.
// @Tags access-registry
// @Accept json
// @Produce json
// @Param X-Handler-Id header string true "Caller identity"
// @Param handler_id path string true "Target handler id"
// @Success 200 {object} httptransport.RevokeHandlerResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/registry/v1/handlers/{handler_id}/revoke [post]
func (h Handler) RevokeHandler(ctx context.Context, callerID string, targetID string) (httptransport.RevokeHandlerResponse, error) {
	if err := h.Service.Revoke(ctx, strings.TrimSpace(callerID), strings.TrimSpace(targetID)); err != nil {
		return httptransport.RevokeHandlerResponse{}, err
	}
	resp := httptransport.RevokeHandlerResponse{Status: "success"}
	resp.Data.HandlerID = strings.TrimSpace(targetID)
	resp.Data.Revoked = true
	return resp, nil
}

// HandlerStatusHandler godoc
// @Summary Look up handler authorization
// @Tags access-registry
// @Produce json
// @Param handler_id path string true "Handler id"
// @Success 200 {object} httptransport.HandlerStatusResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/registry/v1/handlers/{handler_id} [get]
func (h Handler) HandlerStatusHandler(ctx context.Context, handlerID string) (httptransport.HandlerStatusResponse, error) {
	handlerID = strings.TrimSpace(handlerID)
	authorized, err := h.Service.IsAuthorized(ctx, handlerID)
	if err != nil {
		return httptransport.HandlerStatusResponse{}, err
	}

	resp := httptransport.HandlerStatusResponse{Status: "success"}
	resp.Data.HandlerID = handlerID
	resp.Data.Authorized = authorized
	if authorized {
		item, err := h.Service.GetHandler(ctx, handlerID)
		if err != nil {
			return httptransport.HandlerStatusResponse{}, err
		}
		resp.Data.IsOwner = item.IsOwner
	}
	return resp, nil
}

// ListHandlersHandler godoc
// @Summary List authorized handlers
// @Tags access-registry
// @Produce json
// @Success 200 {object} httptransport.ListHandlersResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/registry/v1/handlers [get]
func (h Handler) ListHandlersHandler(ctx context.Context) (httptransport.ListHandlersResponse, error) {
	items, err := h.Service.ListHandlers(ctx)
	if err != nil {
		return httptransport.ListHandlersResponse{}, err
	}
	resp := httptransport.ListHandlersResponse{Status: "success"}
	for _, item := range items {
		entry := struct {
			HandlerID    string `json:"handler_id"`
			IsOwner      bool   `json:"is_owner"`
			AuthorizedBy string `json:"authorized_by,omitempty"`
			AuthorizedAt string `json:"authorized_at,omitempty"`
		}{
			HandlerID:    item.HandlerID,
			IsOwner:      item.IsOwner,
			AuthorizedBy: item.AuthorizedBy,
		}
		if !item.AuthorizedAt.IsZero() {
			entry.AuthorizedAt = item.AuthorizedAt.UTC().Format(time.RFC3339)
		}
		resp.Data.Handlers = append(resp.Data.Handlers, entry)
	}
	return resp, nil
}
