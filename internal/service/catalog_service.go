package service

import (
	"context"
	"fmt"
	"strings"

	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/pkg/apperror"

	"github.com/rs/zerolog"
)

// CatalogServiceImpl implements ports.CatalogService.
type CatalogServiceImpl struct {
	itemRepo ports.ItemRepository
	cache    ports.CatalogCache // optional
	log      zerolog.Logger
}

// NewCatalogService creates a new CatalogServiceImpl. cache may be nil.
func NewCatalogService(itemRepo ports.ItemRepository, cache ports.CatalogCache, log zerolog.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		itemRepo: itemRepo,
		cache:    cache,
		log:      log,
	}
}

// List returns all items, from the cache when it holds a snapshot.
func (s *CatalogServiceImpl) List(ctx context.Context) ([]domain.Item, error) {
	if s.cache != nil {
		items, ok, err := s.cache.GetItems(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("catalog cache read failed, falling through to storage")
		}
		if ok {
			return items, nil
		}
	}

	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("list items: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.SetItems(ctx, items); err != nil {
			s.log.Warn().Err(err).Msg("catalog cache write failed")
		}
	}

	return items, nil
}

// Get returns one item or VND_003.
func (s *CatalogServiceImpl) Get(ctx context.Context, productID string) (*domain.Item, error) {
	item, err := s.itemRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("get item %s: %w", productID, err))
	}
	if item == nil {
		return nil, apperror.ErrProductNotFound(productID)
	}
	return item, nil
}

// Upsert sets the price of productID, creating the item if needed.
func (s *CatalogServiceImpl) Upsert(ctx context.Context, productID string, price domain.Money) (*domain.Item, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apperror.Validation("productId is required")
	}
	if price < 0 || price > domain.MaxPrice {
		return nil, apperror.Validation(fmt.Sprintf("price must be between 0.00 and %s", domain.MaxPrice))
	}

	item, err := s.itemRepo.Upsert(ctx, productID, price)
	if err != nil {
		return nil, apperror.FromStorage(fmt.Errorf("upsert item %s: %w", productID, err))
	}

	s.invalidate(ctx)

	s.log.Info().
		Str("product_id", item.ProductID).
		Str("price", item.Price.String()).
		Msg("item upserted")

	return item, nil
}

// Delete removes productID. A missing item is not an error and yields id 0.
func (s *CatalogServiceImpl) Delete(ctx context.Context, productID string) (int64, error) {
	id, err := s.itemRepo.Delete(ctx, productID)
	if err != nil {
		return 0, apperror.FromStorage(fmt.Errorf("delete item %s: %w", productID, err))
	}

	if id != 0 {
		s.invalidate(ctx)
		s.log.Info().Str("product_id", productID).Int64("id", id).Msg("item deleted")
	}

	return id, nil
}

func (s *CatalogServiceImpl) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
