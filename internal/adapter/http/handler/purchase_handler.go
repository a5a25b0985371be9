package handler

import (
	"strings"

	"vending-machine-api/internal/adapter/http/dto"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/pkg/apperror"
	"vending-machine-api/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 128
)

// PurchaseHandler handles POST /buy.
type PurchaseHandler struct {
	purchaseSvc ports.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseSvc ports.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseSvc: purchaseSvc}
}

// Buy handles POST /buy.
func (h *PurchaseHandler) Buy(c *gin.Context) {
	key := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation("Idempotency-Key must be at most 128 characters"))
		return
	}

	var lines []dto.PurchaseLineRequest
	if err := c.ShouldBindJSON(&lines); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.purchaseSvc.Purchase(c.Request.Context(), ports.PurchaseRequest{
		Order:          dto.ToOrder(lines),
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Replayed {
		c.Header(headerReplayed, "true")
	}
	response.OK(c, result.Receipt)
}
