package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vending-machine-api/internal/adapter/storage/retry"
	"vending-machine-api/internal/core/domain"
)

// UserRepo implements ports.UserRepository on MySQL.
type UserRepo struct {
	db     *sql.DB
	policy retry.Policy
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB, policy retry.Policy) *UserRepo {
	return &UserRepo{db: db, policy: policy}
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u *domain.User
	err := r.policy.Read(ctx, isTransient, func(ctx context.Context) error {
		found := &domain.User{}
		err := r.db.QueryRowContext(ctx,
			`SELECT id, username, password_hash FROM users WHERE username = ?`, username,
		).Scan(&found.ID, &found.Username, &found.PasswordHash)
		if errors.Is(err, sql.ErrNoRows) {
			u = nil
			return nil
		}
		if err != nil {
			return err
		}
		u = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}
