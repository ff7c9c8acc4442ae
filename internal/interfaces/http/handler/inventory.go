package handler

import (
	"context"
	"net/http"
	"strings"

	inventoryapp "github.com/boutique/backoffice/internal/application/inventory"
	"github.com/boutique/backoffice/internal/interfaces/http/dto"
	"github.com/boutique/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxIdempotencyKeyLength bounds the Idempotency-Key header
const maxIdempotencyKeyLength = 128

// AdjustmentService is the slice of the adjustment engine the handler drives
type AdjustmentService interface {
	ApplyAdjustmentBatch(ctx context.Context, tenantID uuid.UUID, req inventoryapp.AdjustmentBatchRequest) (*inventoryapp.AdjustmentResult, error)
	GetQuantity(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (*inventoryapp.StockQuantityResponse, error)
}

// InventoryHandler handles stock adjustment endpoints
type InventoryHandler struct {
	BaseHandler
	adjustments AdjustmentService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(adjustments AdjustmentService) *InventoryHandler {
	return &InventoryHandler{adjustments: adjustments}
}

// ApplyAdjustments godoc
// @ID           applyInventoryAdjustments
// @Summary      Apply a stock adjustment batch
// @Description  Applies every item atomically as one stock_adjustment ledger entry. An empty batch commits nothing and returns a null transaction_id.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID      header  string                      true   "Tenant ID"
// @Param        Idempotency-Key  header  string                      false  "Replay protection key"
// @Param        request          body    dto.AdjustmentBatchRequest  true   "Adjustment batch"
// @Success      201 {object} APIResponse[inventoryapp.AdjustmentResult]
// @Success      200 {object} APIResponse[inventoryapp.AdjustmentResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) ApplyAdjustments(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req dto.AdjustmentBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	key := strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	result, err := h.adjustments.ApplyAdjustmentBatch(c.Request.Context(), tenantID, toAdjustmentBatch(req, key))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.TransactionID == nil {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// GetStock godoc
// @ID           getInventoryStock
// @Summary      Get on-hand quantity
// @Description  Returns the available base-unit quantity of a variation at a location. Pairs never adjusted report zero.
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID   header  string  true  "Tenant ID"
// @Param        variation_id  path    string  true  "Variation ID" format(uuid)
// @Param        location_id   path    string  true  "Location ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.StockQuantityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /inventory/stock/{variation_id}/{location_id} [get]
func (h *InventoryHandler) GetStock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	variationID, err := uuid.Parse(c.Param("variation_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, "variation_id must be a UUID")
		return
	}
	locationID, err := uuid.Parse(c.Param("location_id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, "location_id must be a UUID")
		return
	}

	qty, err := h.adjustments.GetQuantity(c.Request.Context(), tenantID, variationID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, qty)
}

func toAdjustmentBatch(req dto.AdjustmentBatchRequest, idempotencyKey string) inventoryapp.AdjustmentBatchRequest {
	out := inventoryapp.AdjustmentBatchRequest{
		Reference:      req.Reference,
		Note:           req.Note,
		Items:          make([]inventoryapp.AdjustmentItemRequest, len(req.Items)),
		IdempotencyKey: idempotencyKey,
	}
	if req.Date != nil {
		out.Date = *req.Date
	}
	for i, item := range req.Items {
		out.Items[i] = inventoryapp.AdjustmentItemRequest{
			VariationID: item.VariationID,
			LocationID:  item.LocationID,
			UnitID:      item.UnitID,
			Quantity:    item.Quantity,
			Direction:   item.Direction,
			Reason:      item.Reason,
		}
	}
	return out
}
