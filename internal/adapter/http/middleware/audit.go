package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	method string
	path   string
}

type auditTarget struct {
	action       domain.AuditAction
	resourceType string
}

var auditedRoutes = map[auditRoute]auditTarget{
	{http.MethodPost, "/token"}:         {domain.AuditActionLogin, "session"},
	{http.MethodPost, "/token/refresh"}: {domain.AuditActionRefresh, "session"},
	{http.MethodPut, "/items"}:          {domain.AuditActionItemUpsert, "item"},
	{http.MethodDelete, "/items"}:       {domain.AuditActionItemDelete, "item"},
	{http.MethodPost, "/deposit"}:       {domain.AuditActionDeposit, "till"},
	{http.MethodGet, "/reset"}:          {domain.AuditActionReset, "till"},
	{http.MethodPost, "/buy"}:           {domain.AuditActionPurchase, "order"},
}

// AuditLog records every successful state-changing request after the handler ran.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		target, ok := auditedRoutes[auditRoute{c.Request.Method, c.FullPath()}]
		if !ok {
			return
		}

		var username *string
		if u := c.GetString(CtxUsername); u != "" {
			username = &u
		}

		details, _ := json.Marshal(map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(response.RequestIDKey),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			Username:     username,
			Action:       target.action,
			ResourceType: target.resourceType,
			ResourceID:   c.GetString(CtxAuditResource),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}
