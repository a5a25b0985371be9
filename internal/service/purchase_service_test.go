package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"vending-machine-api/internal/core/domain"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/internal/core/ports/mocks"
	"vending-machine-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type purchaseTestDeps struct {
	svc        *PurchaseServiceImpl
	itemRepo   *mocks.MockItemRepository
	idempCache *mocks.MockIdempotencyCache
	register   *DepositRegisterImpl
}

func setupPurchaseService(t *testing.T, resetOnFailure bool) *purchaseTestDeps {
	ctrl := gomock.NewController(t)
	d := &purchaseTestDeps{
		itemRepo:   mocks.NewMockItemRepository(ctrl),
		idempCache: mocks.NewMockIdempotencyCache(ctrl),
		register:   NewDepositRegister(zerolog.Nop()),
	}
	d.svc = NewPurchaseService(d.itemRepo, d.register, d.idempCache, PurchaseOptions{
		ResetOnFailure: resetOnFailure,
		IdempotencyTTL: time.Hour,
	}, zerolog.Nop())
	return d
}

func (d *purchaseTestDeps) deposit(t *testing.T, coins ...domain.Coin) {
	t.Helper()
	for _, c := range coins {
		_, err := d.register.Insert(context.Background(), c)
		require.NoError(t, err)
	}
}

func (d *purchaseTestDeps) till(t *testing.T) domain.Money {
	t.Helper()
	bal, err := d.register.Balance(context.Background())
	require.NoError(t, err)
	return bal
}

func order(lines ...domain.PurchaseLine) ports.PurchaseRequest {
	return ports.PurchaseRequest{Order: lines}
}

func TestPurchaseService_ExactAmount(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 100}, nil)

	res, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "A1", Quantity: 1}))
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, []domain.PurchaseLine{{ProductID: "A1", Quantity: 1}}, res.Receipt.Items)
	assert.Equal(t, domain.Change{100: 0, 50: 0, 20: 0, 10: 0, 5: 0}, res.Receipt.Change)
	assert.Zero(t, d.till(t))
}

func TestPurchaseService_ReturnsChange(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin50, domain.Coin20, domain.Coin20, domain.Coin10)

	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 65}, nil)

	res, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "A1", Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, domain.Change{100: 0, 50: 0, 20: 1, 10: 1, 5: 1}, res.Receipt.Change)
	assert.Equal(t, domain.Money(35), res.Receipt.Change.Total())
	assert.Zero(t, d.till(t))
}

func TestPurchaseService_MultiLine(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100, domain.Coin100, domain.Coin50)

	gomock.InOrder(
		d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 50}, nil),
		d.itemRepo.EXPECT().GetByProductID(ctx, "B2").Return(&domain.Item{ID: 2, ProductID: "B2", Price: 35}, nil),
	)

	res, err := d.svc.Purchase(ctx, order(
		domain.PurchaseLine{ProductID: "A1", Quantity: 2},
		domain.PurchaseLine{ProductID: "B2", Quantity: 3},
	))
	require.NoError(t, err)
	assert.Len(t, res.Receipt.Items, 2)
	// 250 - 100 - 105 = 45
	assert.Equal(t, domain.Change{100: 0, 50: 0, 20: 2, 10: 0, 5: 1}, res.Receipt.Change)
}

func TestPurchaseService_InsufficientFunds(t *testing.T) {
	tests := []struct {
		name           string
		resetOnFailure bool
		wantTill       domain.Money
	}{
		{"drains till", true, 0},
		{"keeps till", false, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupPurchaseService(t, tt.resetOnFailure)
			ctx := context.Background()
			d.deposit(t, domain.Coin50)

			d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 200}, nil)

			_, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "A1", Quantity: 1}))
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInsufficientFunds, appErr.Code)
			assert.Equal(t, 402, appErr.HTTPStatus)
			assert.Equal(t, tt.wantTill, d.till(t))
		})
	}
}

func TestPurchaseService_SecondLineUnaffordable(t *testing.T) {
	tests := []struct {
		name           string
		resetOnFailure bool
		wantTill       domain.Money
	}{
		{"drains till", true, 0},
		{"keeps till", false, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupPurchaseService(t, tt.resetOnFailure)
			ctx := context.Background()
			d.deposit(t, domain.Coin100)

			d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 60}, nil)
			d.itemRepo.EXPECT().GetByProductID(ctx, "B2").Return(&domain.Item{ID: 2, ProductID: "B2", Price: 60}, nil)

			res, err := d.svc.Purchase(ctx, order(
				domain.PurchaseLine{ProductID: "A1", Quantity: 1},
				domain.PurchaseLine{ProductID: "B2", Quantity: 1},
			))
			assert.Nil(t, res, "no partial sale is reported")
			assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientFunds))
			assert.Equal(t, tt.wantTill, d.till(t))
		})
	}
}

func TestPurchaseService_HugeQuantityDoesNotOverflow(t *testing.T) {
	d := setupPurchaseService(t, false)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").
		Return(&domain.Item{ID: 1, ProductID: "A1", Price: domain.MaxPrice}, nil)

	_, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "A1", Quantity: 1 << 40}))
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientFunds))
	assert.Equal(t, domain.Money(100), d.till(t))
}

func TestPurchaseService_ProductNotFound(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.itemRepo.EXPECT().GetByProductID(ctx, "ZZ").Return(nil, nil)

	_, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "ZZ", Quantity: 1}))
	assert.True(t, apperror.HasCode(err, apperror.CodeProductNotFound))
	assert.Zero(t, d.till(t))
}

func TestPurchaseService_StorageFaultKeepsTill(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(nil, errors.New("connection reset"))

	_, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "A1", Quantity: 1}))
	assert.True(t, apperror.HasCode(err, apperror.CodeStorageFault))
	assert.Equal(t, domain.Money(100), d.till(t))
}

func TestPurchaseService_StorageTimeoutKeepsTill(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(nil, context.DeadlineExceeded)

	_, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "A1", Quantity: 1}))
	assert.True(t, apperror.HasCode(err, apperror.CodeStorageTimeout))
	assert.Equal(t, domain.Money(100), d.till(t))
}

func TestPurchaseService_InexactChangeKeepsTill(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 33}, nil)

	_, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "A1", Quantity: 1}))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeExactChangeUnavailable, appErr.Code)
	assert.Equal(t, 409, appErr.HTTPStatus)
	assert.ErrorIs(t, err, domain.ErrInexactChange)
	assert.Equal(t, domain.Money(100), d.till(t))
}

func TestPurchaseService_InvalidOrder(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	tests := []struct {
		name string
		req  ports.PurchaseRequest
	}{
		{"empty", order()},
		{"zero quantity", order(domain.PurchaseLine{ProductID: "A1", Quantity: 0})},
		{"negative quantity", order(domain.PurchaseLine{ProductID: "A1", Quantity: -2})},
		{"blank product", order(domain.PurchaseLine{ProductID: "", Quantity: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.svc.Purchase(ctx, tt.req)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
		})
	}
	assert.Equal(t, domain.Money(100), d.till(t), "validation failures never touch the till")
}

func TestPurchaseService_IdempotentReplay(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin50)

	req := order(domain.PurchaseLine{ProductID: "A1", Quantity: 1})
	req.IdempotencyKey = "key-1"

	cached, err := json.Marshal(storedReceipt{
		Fingerprint: req.Order.Fingerprint(),
		Receipt: domain.Receipt{
			Items:  []domain.PurchaseLine{{ProductID: "A1", Quantity: 1}},
			Change: domain.Change{100: 0, 50: 0, 20: 1, 10: 1, 5: 1},
		},
	})
	require.NoError(t, err)

	d.idempCache.EXPECT().Get(ctx, "key-1").Return(cached, nil)

	res, err := d.svc.Purchase(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, 1, res.Receipt.Change[domain.Coin20])
	assert.Equal(t, domain.Money(50), d.till(t), "a replay leaves the till alone")
}

func TestPurchaseService_IdempotencyStoresReceipt(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.idempCache.EXPECT().Get(ctx, "key-2").Return(nil, nil)
	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 65}, nil)
	d.idempCache.EXPECT().Set(ctx, "key-2", gomock.Any(), time.Hour).
		DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			var stored storedReceipt
			require.NoError(t, json.Unmarshal(value, &stored))
			assert.Equal(t, domain.Order{{ProductID: "A1", Quantity: 1}}.Fingerprint(), stored.Fingerprint)
			assert.Equal(t, domain.Money(35), stored.Receipt.Change.Total())
			return nil
		})

	req := order(domain.PurchaseLine{ProductID: "A1", Quantity: 1})
	req.IdempotencyKey = "key-2"

	res, err := d.svc.Purchase(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.Replayed)
}

func TestPurchaseService_IdempotencyKeyReusedForDifferentOrder(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin50)

	cached, err := json.Marshal(storedReceipt{
		Fingerprint: domain.Order{{ProductID: "A1", Quantity: 1}}.Fingerprint(),
		Receipt: domain.Receipt{
			Items:  []domain.PurchaseLine{{ProductID: "A1", Quantity: 1}},
			Change: domain.NewChange(),
		},
	})
	require.NoError(t, err)

	d.idempCache.EXPECT().Get(ctx, "key-1").Return(cached, nil)

	req := order(domain.PurchaseLine{ProductID: "B2", Quantity: 1})
	req.IdempotencyKey = "key-1"

	res, err := d.svc.Purchase(ctx, req)
	assert.Nil(t, res)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	assert.Equal(t, domain.Money(50), d.till(t), "a rejected key leaves the till alone")
}

func TestPurchaseService_IdempotencyUnreadableEntryIsIgnored(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.idempCache.EXPECT().Get(ctx, "key-4").Return([]byte(`{"items":[]}`), nil)
	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 100}, nil)
	d.idempCache.EXPECT().Set(ctx, "key-4", gomock.Any(), time.Hour).Return(nil)

	req := order(domain.PurchaseLine{ProductID: "A1", Quantity: 1})
	req.IdempotencyKey = "key-4"

	res, err := d.svc.Purchase(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.Replayed)
}

func TestPurchaseService_IdempotencyCacheDown(t *testing.T) {
	d := setupPurchaseService(t, true)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.idempCache.EXPECT().Get(ctx, "key-3").Return(nil, errors.New("redis down"))
	d.itemRepo.EXPECT().GetByProductID(ctx, "A1").Return(&domain.Item{ID: 1, ProductID: "A1", Price: 100}, nil)
	d.idempCache.EXPECT().Set(ctx, "key-3", gomock.Any(), time.Hour).Return(errors.New("redis down"))

	req := order(domain.PurchaseLine{ProductID: "A1", Quantity: 1})
	req.IdempotencyKey = "key-3"

	res, err := d.svc.Purchase(ctx, req)
	require.NoError(t, err)
	assert.NotNil(t, res.Receipt)
}

func TestPurchaseService_ConcurrentPurchasesSpendOnce(t *testing.T) {
	d := setupPurchaseService(t, false)
	ctx := context.Background()
	d.deposit(t, domain.Coin100)

	d.itemRepo.EXPECT().GetByProductID(gomock.Any(), "A1").
		Return(&domain.Item{ID: 1, ProductID: "A1", Price: 100}, nil).AnyTimes()

	const buyers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	wg.Add(buyers)
	for i := 0; i < buyers; i++ {
		go func() {
			defer wg.Done()
			_, err := d.svc.Purchase(ctx, order(domain.PurchaseLine{ProductID: "A1", Quantity: 1}))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientFunds))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "one deposit pays for exactly one item")
	assert.Zero(t, d.till(t))
}
