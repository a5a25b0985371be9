package handler

import (
	"vending-machine-api/internal/adapter/http/dto"
	"vending-machine-api/internal/adapter/http/middleware"
	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// ItemHandler handles catalog endpoints.
type ItemHandler struct {
	catalogSvc ports.CatalogService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(catalogSvc ports.CatalogService) *ItemHandler {
	return &ItemHandler{catalogSvc: catalogSvc}
}

// List handles GET /items. With ?productId= it returns that single item.
func (h *ItemHandler) List(c *gin.Context) {
	var q dto.ItemQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	if q.ProductID != "" {
		item, err := h.catalogSvc.Get(c.Request.Context(), q.ProductID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, item.View())
		return
	}

	items, err := h.catalogSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	views := make([]domain.ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, it.View())
	}
	response.OK(c, views)
}

// Upsert handles PUT /items.
func (h *ItemHandler) Upsert(c *gin.Context) {
	var req dto.UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	item, err := h.catalogSvc.Upsert(c.Request.Context(), req.ProductID, *req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditResource, item.ProductID)
	response.OK(c, item.View())
}

// Delete handles DELETE /items.
func (h *ItemHandler) Delete(c *gin.Context) {
	var req dto.DeleteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	id, err := h.catalogSvc.Delete(c.Request.Context(), req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditResource, req.ProductID)
	response.OK(c, dto.DeleteItemResponse{ID: id})
}
