package postgres

import (
	"context"
	"errors"
	"fmt"

	"vending-machine-api/internal/adapter/storage/retry"
	"vending-machine-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, product_id, price`

// ItemRepo implements ports.ItemRepository.
type ItemRepo struct {
	pool   Pool
	policy retry.Policy
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(pool Pool, policy retry.Policy) *ItemRepo {
	return &ItemRepo{pool: pool, policy: policy}
}

// List returns every item ordered by id.
func (r *ItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY id`

	var items []domain.Item
	err := r.policy.Read(ctx, isTransient, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query)
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
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// GetByProductID fetches an item by its product id.
func (r *ItemRepo) GetByProductID(ctx context.Context, productID string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE product_id = $1`

	var item *domain.Item
	err := r.policy.Read(ctx, isTransient, func(ctx context.Context) error {
		found, err := scanItem(r.pool.QueryRow(ctx, query, productID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				item = nil
				return nil
			}
			return err
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get item by product_id: %w", err)
	}
	return item, nil
}

// Upsert inserts or reprices the item and re-reads the stored row in the same transaction.
func (r *ItemRepo) Upsert(ctx context.Context, productID string, price domain.Money) (*domain.Item, error) {
	var item *domain.Item
	err := r.policy.Write(ctx, func(ctx context.Context) error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		_, err = tx.Exec(ctx,
			`INSERT INTO items (product_id, price) VALUES ($1, $2)
			 ON CONFLICT (product_id) DO UPDATE SET price = EXCLUDED.price`,
			productID, price.Float(),
		)
		if err != nil {
			return fmt.Errorf("upsert item: %w", err)
		}

		item, err = scanItem(tx.QueryRow(ctx,
			`SELECT `+itemColumns+` FROM items WHERE product_id = $1`, productID))
		if err != nil {
			return fmt.Errorf("reload item: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
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
		err := r.pool.QueryRow(ctx, `DELETE FROM items WHERE product_id = $1 RETURNING id`, productID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			id = 0
			return nil
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete item: %w", err)
	}
	return id, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
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
