package postgres

import (
	"context"
	"errors"
	"fmt"

	"vending-machine-api/internal/adapter/storage/retry"
	"vending-machine-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool   Pool
	policy retry.Policy
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool, policy retry.Policy) *UserRepo {
	return &UserRepo{pool: pool, policy: policy}
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT id, username, password_hash FROM users WHERE username = $1`

	var u *domain.User
	err := r.policy.Read(ctx, isTransient, func(ctx context.Context) error {
		found := &domain.User{}
		err := r.pool.QueryRow(ctx, query, username).Scan(&found.ID, &found.Username, &found.PasswordHash)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				u = nil
				return nil
			}
			return err
		}
		u = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}
