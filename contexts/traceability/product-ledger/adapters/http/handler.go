package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"agritrace/contexts/traceability/product-ledger/application"
	"agritrace/contexts/traceability/product-ledger/domain/entities"
	domainerrors "agritrace/contexts/traceability/product-ledger/domain/errors"
	"agritrace/contexts/traceability/product-ledger/ports"
	httptransport "agritrace/contexts/traceability/product-ledger/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// RegisterProductHandler godoc
// @Summary Register a product
// @Description Allocates the next sequential product id and records the mandatory first journey entry.
// @Tags product-ledger
// @Accept json
// @Produce json
// @Param X-Handler-Id header string true "Caller identity"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body httptransport.RegisterProductRequest true "Registration payload"
// @Success 201 {object} httptransport.RegisterProductResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/trace/v1/products [post]
func (h Handler) RegisterProductHandler(
	ctx context.Context,
	callerID string,
	idempotencyKey string,
	req httptransport.RegisterProductRequest,
) (httptransport.RegisterProductResponse, error) {
	harvestDate := time.Time{}
	if strings.TrimSpace(req.HarvestDate) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(req.HarvestDate))
		if err != nil {
			return httptransport.RegisterProductResponse{}, domainerrors.ErrInvalidInput
		}
		harvestDate = parsed.UTC()
	}

	item, err := h.Service.Register(ctx, idempotencyKey, ports.RegisterProductInput{
		FarmerID:    strings.TrimSpace(callerID),
		Name:        strings.TrimSpace(req.Name),
		Origin:      strings.TrimSpace(req.Origin),
		HarvestDate: harvestDate,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return httptransport.RegisterProductResponse{}, err
	}
	return httptransport.RegisterProductResponse{
		Status: "success",
		Data:   productData(item),
	}, nil
}

// UpdateStatusHandler godoc
// @Summary Update product status and location
// @Description Overwrites status/location and appends a journey entry. Any authorized handler may set any status.
// @Tags product-ledger
// @Accept json
// @Produce json
// @Param X-Handler-Id header string true "Caller identity"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param product_id path int true "Product id"
// @Param request body httptransport.UpdateStatusRequest true "Status payload"
// @Success 200 {object} httptransport.UpdateStatusResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/trace/v1/products/{product_id}/status [post]
func (h Handler) UpdateStatusHandler(
	ctx context.Context,
	callerID string,
	idempotencyKey string,
	productID int64,
	req httptransport.UpdateStatusRequest,
) (httptransport.UpdateStatusResponse, error) {
	status, ok := entities.ParseStatus(req.Status)
	if !ok {
		return httptransport.UpdateStatusResponse{}, domainerrors.ErrInvalidInput
	}

	item, err := h.Service.UpdateStatus(ctx, idempotencyKey, ports.StatusUpdateInput{
		ProductID: productID,
		HandlerID: strings.TrimSpace(callerID),
		Status:    status,
		Location:  strings.TrimSpace(req.Location),
		Notes:     strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return httptransport.UpdateStatusResponse{}, err
	}
	return httptransport.UpdateStatusResponse{
		Status: "success",
		Data:   productData(item),
	}, nil
}

// GetProductHandler godoc
// @Summary Get a product
// @Tags product-ledger
// @Produce json
// @Param product_id path int true "Product id"
// @Success 200 {object} httptransport.GetProductResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/trace/v1/products/{product_id} [get]
func (h Handler) GetProductHandler(ctx context.Context, productID int64) (httptransport.GetProductResponse, error) {
	item, err := h.Service.GetProduct(ctx, productID)
	if err != nil {
		return httptransport.GetProductResponse{}, err
	}
	return httptransport.GetProductResponse{
		Status: "success",
		Data:   productData(item),
	}, nil
}

// GetJourneyHandler godoc
// @Summary Get a product's journey history
// @Description Returns the full append-ordered journey for the product.
// @Tags product-ledger
// @Produce json
// @Param product_id path int true "Product id"
// @Success 200 {object} httptransport.GetJourneyResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/trace/v1/products/{product_id}/journey [get]
func (h Handler) GetJourneyHandler(ctx context.Context, productID int64) (httptransport.GetJourneyResponse, error) {
	entries, err := h.Service.GetJourney(ctx, productID)
	if err != nil {
		return httptransport.GetJourneyResponse{}, err
	}
	resp := httptransport.GetJourneyResponse{Status: "success"}
	resp.Data.ProductID = productID
	for _, entry := range entries {
		resp.Data.Entries = append(resp.Data.Entries, httptransport.JourneyEntryData{
			Seq:       entry.Seq,
			HandlerID: entry.HandlerID,
			Location:  entry.Location,
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp.UTC().Format(time.RFC3339),
			Notes:     entry.Notes,
		})
	}
	return resp, nil
}

// LedgerStatsHandler godoc
// @Summary Ledger counters
// @Tags product-ledger
// @Produce json
// @Success 200 {object} httptransport.LedgerStatsResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/trace/v1/products/stats [get]
func (h Handler) LedgerStatsHandler(ctx context.Context) (httptransport.LedgerStatsResponse, error) {
	total, err := h.Service.TotalProducts(ctx)
	if err != nil {
		return httptransport.LedgerStatsResponse{}, err
	}
	resp := httptransport.LedgerStatsResponse{Status: "success"}
	resp.Data.TotalProducts = total
	return resp, nil
}

func productData(item entities.Product) httptransport.ProductData {
	return httptransport.ProductData{
		ProductID:       item.ProductID,
		Name:            item.Name,
		Origin:          item.Origin,
		FarmerID:        item.FarmerID,
		HarvestDate:     item.HarvestDate.UTC().Format(time.RFC3339),
		Quantity:        item.Quantity,
		CurrentLocation: item.CurrentLocation,
		Status:          string(item.Status),
		LastUpdated:     item.LastUpdated.UTC().Format(time.RFC3339),
	}
}
