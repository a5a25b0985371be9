package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"vending-machine-api/internal/core/domain"
)

// AuditRepo implements ports.AuditRepository on MySQL.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a MySQL-backed AuditRepository.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Create inserts an audit entry.
func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, username, action, resource_type, resource_id, details, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID.String(), log.Username, string(log.Action), log.ResourceType,
		log.ResourceID, log.Details, log.IPAddress, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
