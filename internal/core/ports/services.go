package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"vending-machine-api/internal/core/domain"
)

// HashService hashes and verifies passwords.
// Verify never fails loudly: a malformed hash simply does not match.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) bool
}

// TokenService issues and validates signed, scoped JWTs.
type TokenService interface {
	Issue(username string, scope domain.TokenScope) (string, time.Time, error)
	Validate(tokenString string, scope domain.TokenScope) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject   string
	Scope     domain.TokenScope
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IdempotencyCache stores purchase receipts by client-supplied key.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CatalogCache holds a snapshot of the item list.
type CatalogCache interface {
	// GetItems reports false on a miss.
	GetItems(ctx context.Context) ([]domain.Item, bool, error)
	SetItems(ctx context.Context, items []domain.Item) error
	Invalidate(ctx context.Context) error
}

// --- Service Ports (Business Logic) ---

// AuthService authenticates operators and manages their token lifecycle.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) // access token, expiry, error
	CurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
}

// CatalogService defines catalog business logic.
type CatalogService interface {
	List(ctx context.Context) ([]domain.Item, error)
	Get(ctx context.Context, productID string) (*domain.Item, error)
	Upsert(ctx context.Context, productID string, price domain.Money) (*domain.Item, error)
	Delete(ctx context.Context, productID string) (int64, error)
}

// DepositRegister is the shared till. All methods are mutually exclusive.
type DepositRegister interface {
	Insert(ctx context.Context, coin domain.Coin) (domain.Money, error)
	Balance(ctx context.Context) (domain.Money, error)
	Reset(ctx context.Context) error
	// Settle runs fn while holding the till. The till is emptied when fn returns drain=true.
	Settle(ctx context.Context, fn func(wallet domain.Money) (drain bool, err error)) error
}

// PurchaseService runs purchase transactions against the till.
type PurchaseService interface {
	Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
}

// PurchaseRequest holds validated input for a purchase.
type PurchaseRequest struct {
	Order          domain.Order
	IdempotencyKey string // optional
}

// PurchaseResult carries the receipt and whether it was served from the idempotency cache.
type PurchaseResult struct {
	Receipt  *domain.Receipt
	Replayed bool
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
