package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionLogin      AuditAction = "LOGIN"
	AuditActionRefresh    AuditAction = "REFRESH"
	AuditActionItemUpsert AuditAction = "ITEM_UPSERT"
	AuditActionItemDelete AuditAction = "ITEM_DELETE"
	AuditActionDeposit    AuditAction = "DEPOSIT"
	AuditActionReset      AuditAction = "RESET"
	AuditActionPurchase   AuditAction = "PURCHASE"
)

// AuditLog records a single audited request.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	Username     *string     `json:"username,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
