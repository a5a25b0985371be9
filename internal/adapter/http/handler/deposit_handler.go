package handler

import (
	"vending-machine-api/internal/adapter/http/dto"
	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// DepositHandler handles the till endpoints.
type DepositHandler struct {
	register ports.DepositRegister
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(register ports.DepositRegister) *DepositHandler {
	return &DepositHandler{register: register}
}

// Insert handles POST /deposit.
func (h *DepositHandler) Insert(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	balance, err := h.register.Insert(c.Request.Context(), domain.Coin(*req.Value))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DepositResponse{Deposit: balance.String()})
}

// Balance handles GET /deposit.
func (h *DepositHandler) Balance(c *gin.Context) {
	balance, err := h.register.Balance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DepositResponse{Deposit: balance.String()})
}

// Reset handles GET /reset.
func (h *DepositHandler) Reset(c *gin.Context) {
	if err := h.register.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
