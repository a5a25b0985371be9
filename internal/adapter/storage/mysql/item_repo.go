package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vending-machine-api/internal/adapter/storage/retry"
	"vending-machine-api/internal/core/domain"
)

// ItemRepo implements ports.ItemRepository on MySQL.
type ItemRepo struct {
	db     *sql.DB
	policy retry.Policy
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(db *sql.DB, policy retry.Policy) *ItemRepo {
	return &ItemRepo{db: db, policy: policy}
}

// List returns every item ordered by id.
func (r *ItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	err := r.policy.Read(ctx, isTransient, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, `SELECT id, product_id, price FROM items ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		items = make([]domain.Item, 0)
		for rows.Next() {
			item, err := scanItem(rows)
			if err != nil {
				return err
			}
			items = append(items, *item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return items, nil
}

// GetByProductID fetches an item by its product id.
func (r *ItemRepo) GetByProductID(ctx context.Context, productID string) (*domain.Item, error) {
	var item *domain.Item
	err := r.policy.Read(ctx, isTransient, func(ctx context.Context) error {
		found, err := scanItem(r.db.QueryRowContext(ctx,
			`SELECT id, product_id, price FROM items WHERE product_id = ?`, productID))
		if errors.Is(err, sql.ErrNoRows) {
			item = nil
			return nil
		}
		if err != nil {
			return err
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// Upsert inserts or reprices the item and re-reads the stored row in the same transaction.
func (r *ItemRepo) Upsert(ctx context.Context, productID string, price domain.Money) (*domain.Item, error) {
	var item *domain.Item
	err := r.policy.Write(ctx, func(ctx context.Context) error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (product_id, price) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE price = VALUES(price)`,
			productID, price.String(),
		)
		if err != nil {
			return fmt.Errorf("upsert item: %w", err)
		}

		item, err = scanItem(tx.QueryRowContext(ctx,
			`SELECT id, product_id, price FROM items WHERE product_id = ?`, productID))
		if err != nil {
			return fmt.Errorf("reload item: %w", err)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item and returns its id, or 0 when it did not exist.
func (r *ItemRepo) Delete(ctx context.Context, productID string) (int64, error) {
	var id int64
	err := r.policy.Write(ctx, func(ctx context.Context) error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		err = tx.QueryRowContext(ctx,
			`SELECT id FROM items WHERE product_id = ? FOR UPDATE`, productID,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			id = 0
			return tx.Commit()
		}
		if err != nil {
			return fmt.Errorf("lock item: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item  domain.Item
		price float64
	)
	if err := row.Scan(&item.ID, &item.ProductID, &price); err != nil {
		return nil, err
	}
	m, err := domain.MoneyFromFloat(price)
	if err != nil {
		return nil, fmt.Errorf("scan price of %s: %w", item.ProductID, err)
	}
	item.Price = m
	return &item, nil
}
