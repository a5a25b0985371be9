package service

import (
	"context"
	"fmt"

	"vending-machine-api/internal/core/domain"
	"vending-machine-api/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// DepositRegisterImpl implements ports.DepositRegister: one in-memory till shared by
// every caller. A weighted semaphore of size 1 serializes access so waiting honours
// context cancellation.
type DepositRegisterImpl struct {
	sem     *semaphore.Weighted
	balance domain.Money
	log     zerolog.Logger
}

// NewDepositRegister creates an empty till.
func NewDepositRegister(log zerolog.Logger) *DepositRegisterImpl {
	return &DepositRegisterImpl{
		sem: semaphore.NewWeighted(1),
		log: log,
	}
}

func (r *DepositRegisterImpl) acquire(ctx context.Context) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return apperror.InternalError(fmt.Errorf("acquire till: %w", err))
	}
	return nil
}

// Insert adds coin to the till and returns the new balance.
func (r *DepositRegisterImpl) Insert(ctx context.Context, coin domain.Coin) (domain.Money, error) {
	if !coin.Valid() {
		return 0, apperror.ErrInvalidCoin(int64(coin))
	}

	if err := r.acquire(ctx); err != nil {
		return 0, err
	}
	defer r.sem.Release(1)

	r.balance += coin.Value()
	tillBalance.Set(float64(r.balance))
	coinsInsertedTotal.WithLabelValues(coin.String()).Inc()

	r.log.Debug().
		Int64("coin", int64(coin)).
		Str("balance", r.balance.String()).
		Msg("coin inserted")

	return r.balance, nil
}

// Balance returns a snapshot of the till.
func (r *DepositRegisterImpl) Balance(ctx context.Context) (domain.Money, error) {
	if err := r.acquire(ctx); err != nil {
		return 0, err
	}
	defer r.sem.Release(1)

	return r.balance, nil
}

// Reset empties the till.
func (r *DepositRegisterImpl) Reset(ctx context.Context) error {
	if err := r.acquire(ctx); err != nil {
		return err
	}
	defer r.sem.Release(1)

	r.drain()
	return nil
}

// Settle runs fn with the till held for its whole duration and empties the till
// when fn asks for it, whatever error fn returns.
func (r *DepositRegisterImpl) Settle(ctx context.Context, fn func(wallet domain.Money) (bool, error)) error {
	if err := r.acquire(ctx); err != nil {
		return err
	}
	defer r.sem.Release(1)

	drain, err := fn(r.balance)
	if drain {
		r.drain()
	}
	return err
}

func (r *DepositRegisterImpl) drain() {
	if r.balance != 0 {
		r.log.Debug().Str("balance", r.balance.String()).Msg("till drained")
	}
	r.balance = 0
	tillBalance.Set(0)
}
