package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"vending-machine-api/internal/core/domain"
)

// UserRepository reads operator accounts. GetByUsername returns nil, nil when absent.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ItemRepository defines persistence operations for catalog items.
type ItemRepository interface {
	List(ctx context.Context) ([]domain.Item, error)
	// GetByProductID returns nil, nil when no row matches.
	GetByProductID(ctx context.Context, productID string) (*domain.Item, error)
	// Upsert writes the price for productID and returns the row as stored.
	Upsert(ctx context.Context, productID string, price domain.Money) (*domain.Item, error)
	// Delete returns the id of the removed row, or 0 when nothing matched.
	Delete(ctx context.Context, productID string) (int64, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}
