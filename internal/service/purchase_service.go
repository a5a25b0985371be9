package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/pkg/apperror"

	"github.com/rs/zerolog"
)

// PurchaseOptions tunes the purchase transaction.
type PurchaseOptions struct {
	// ResetOnFailure empties the till when an order fails for a business reason
	// (insufficient funds, unknown product). Infrastructure failures never drain it.
	ResetOnFailure bool
	IdempotencyTTL time.Duration
}

// PurchaseServiceImpl implements ports.PurchaseService.
type PurchaseServiceImpl struct {
	itemRepo   ports.ItemRepository
	register   ports.DepositRegister
	idempCache ports.IdempotencyCache // optional
	opts       PurchaseOptions
	log        zerolog.Logger
}

// NewPurchaseService creates a new PurchaseServiceImpl. idempCache may be nil.
func NewPurchaseService(
	itemRepo ports.ItemRepository,
	register ports.DepositRegister,
	idempCache ports.IdempotencyCache,
	opts PurchaseOptions,
	log zerolog.Logger,
) *PurchaseServiceImpl {
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &PurchaseServiceImpl{
		itemRepo:   itemRepo,
		register:   register,
		idempCache: idempCache,
		opts:       opts,
		log:        log,
	}
}

// Purchase sells every line of the order or nothing. The till is read once and
// held for the whole transaction; on success it is emptied and the remainder is
// returned as change. Purchases are never retried.
func (s *PurchaseServiceImpl) Purchase(ctx context.Context, req ports.PurchaseRequest) (*ports.PurchaseResult, error) {
	if err := validateOrder(req.Order); err != nil {
		purchasesTotal.WithLabelValues(domain.OutcomeInvalid).Inc()
		return nil, err
	}

	result := &ports.PurchaseResult{}
	err := s.register.Settle(ctx, func(wallet domain.Money) (bool, error) {
		cached, err := s.lookupReceipt(ctx, req.IdempotencyKey, req.Order)
		if err != nil {
			return false, err
		}
		if cached != nil {
			result.Receipt = cached
			result.Replayed = true
			return false, nil
		}

		receipt, err := s.checkout(ctx, req.Order, wallet)
		if err != nil {
			return s.drainOnFailure(err), err
		}

		result.Receipt = receipt
		s.storeReceipt(ctx, req.IdempotencyKey, req.Order, receipt)
		return true, nil
	})

	outcome := purchaseOutcome(err, result.Replayed)
	purchasesTotal.WithLabelValues(outcome).Inc()

	if err != nil {
		s.log.Info().
			Err(err).
			Str("outcome", outcome).
			Int("lines", len(req.Order)).
			Msg("purchase rejected")
		return nil, err
	}

	s.log.Info().
		Str("outcome", outcome).
		Int("lines", len(req.Order)).
		Str("change", result.Receipt.Change.Total().String()).
		Msg("purchase completed")

	return result, nil
}

// checkout prices each line in order against the wallet and computes change.
func (s *PurchaseServiceImpl) checkout(ctx context.Context, order domain.Order, wallet domain.Money) (*domain.Receipt, error) {
	remaining := wallet
	items := make([]domain.PurchaseLine, 0, len(order))

	for _, line := range order {
		item, err := s.itemRepo.GetByProductID(ctx, line.ProductID)
		if err != nil {
			return nil, apperror.FromStorage(fmt.Errorf("get item %s: %w", line.ProductID, err))
		}
		if item == nil {
			return nil, apperror.ErrProductNotFound(line.ProductID)
		}

		// price*quantity > remaining, without overflowing the product.
		if item.Price > remaining/domain.Money(line.Quantity) {
			return nil, apperror.ErrInsufficientFunds()
		}

		remaining -= item.Price * domain.Money(line.Quantity)
		items = append(items, line)
	}

	change, err := domain.MakeChange(remaining)
	if err != nil {
		return nil, apperror.ErrExactChangeUnavailable(err)
	}

	return &domain.Receipt{Items: items, Change: change}, nil
}

func (s *PurchaseServiceImpl) drainOnFailure(err error) bool {
	if !s.opts.ResetOnFailure {
		return false
	}
	return apperror.HasCode(err, apperror.CodeInsufficientFunds) ||
		apperror.HasCode(err, apperror.CodeProductNotFound)
}

// storedReceipt is the cached form of a receipt, bound to the order that produced it.
type storedReceipt struct {
	Fingerprint string         `json:"fingerprint"`
	Receipt     domain.Receipt `json:"receipt"`
}

// lookupReceipt returns the receipt cached under key. A key cached for a
// different order is rejected rather than replayed.
func (s *PurchaseServiceImpl) lookupReceipt(ctx context.Context, key string, order domain.Order) (*domain.Receipt, error) {
	if key == "" || s.idempCache == nil {
		return nil, nil
	}

	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("idempotency lookup failed, processing purchase")
		return nil, nil
	}
	if cached == nil {
		return nil, nil
	}

	var stored storedReceipt
	if err := json.Unmarshal(cached, &stored); err != nil || stored.Fingerprint == "" {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached receipt")
		return nil, nil
	}
	if stored.Fingerprint != order.Fingerprint() {
		return nil, apperror.ErrIdempotencyKeyReused()
	}
	return &stored.Receipt, nil
}

func (s *PurchaseServiceImpl) storeReceipt(ctx context.Context, key string, order domain.Order, receipt *domain.Receipt) {
	if key == "" || s.idempCache == nil {
		return
	}

	data, err := json.Marshal(storedReceipt{Fingerprint: order.Fingerprint(), Receipt: *receipt})
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to encode receipt")
		return
	}
	if err := s.idempCache.Set(ctx, key, data, s.opts.IdempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache receipt")
	}
}

func validateOrder(order domain.Order) error {
	if len(order) == 0 {
		return apperror.Validation("order must contain at least one line")
	}
	for i, line := range order {
		if line.ProductID == "" {
			return apperror.Validation(fmt.Sprintf("line %d: productId is required", i))
		}
		if line.Quantity <= 0 {
			return apperror.Validation(fmt.Sprintf("line %d: quantity must be positive", i))
		}
	}
	return nil
}

func purchaseOutcome(err error, replayed bool) string {
	if err == nil {
		if replayed {
			return domain.OutcomeReplayed
		}
		return domain.OutcomeSuccess
	}

	appErr, ok := apperror.As(err)
	if !ok {
		return domain.OutcomeError
	}
	switch appErr.Code {
	case apperror.CodeInsufficientFunds:
		return domain.OutcomeInsufficientFunds
	case apperror.CodeProductNotFound:
		return domain.OutcomeProductNotFound
	case apperror.CodeExactChangeUnavailable:
		return domain.OutcomeInexactChange
	case apperror.CodeValidation:
		return domain.OutcomeInvalid
	default:
		return domain.OutcomeError
	}
}
