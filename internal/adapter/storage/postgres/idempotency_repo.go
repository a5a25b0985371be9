package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vending-machine-api/internal/adapter/storage/retry"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRepo implements ports.IdempotencyCache on the idempotency_receipts
// table. It stands in for the Redis cache when Redis is disabled.
type IdempotencyRepo struct {
	pool   Pool
	policy retry.Policy
	now    func() time.Time
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool, policy retry.Policy) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool, policy: policy, now: time.Now}
}

// Get fetches an unexpired receipt by key. Returns nil, nil when absent or expired.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT response_json FROM idempotency_receipts WHERE key = $1 AND expires_at > $2`

	var receipt []byte
	err := r.policy.Read(ctx, isTransient, func(ctx context.Context) error {
		receipt = nil
		err := r.pool.QueryRow(ctx, query, key, r.now().UTC()).Scan(&receipt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get idempotency receipt: %w", err)
	}
	return receipt, nil
}

// Set stores a receipt, replacing an expired entry under the same key.
func (r *IdempotencyRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `INSERT INTO idempotency_receipts (key, response_json, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET response_json = EXCLUDED.response_json, expires_at = EXCLUDED.expires_at`

	err := r.policy.Write(ctx, func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, query, key, value, r.now().UTC().Add(ttl))
		return err
	})
	if err != nil {
		return fmt.Errorf("set idempotency receipt: %w", err)
	}
	return nil
}
