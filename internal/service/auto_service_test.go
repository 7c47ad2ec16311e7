package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andy/autoshop/internal/apperror"
	"github.com/andy/autoshop/internal/domain"
	"github.com/andy/autoshop/internal/logger"
	"github.com/andy/autoshop/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fixedClock advances by one minute on every reading
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	brakePads = domain.NewPart(domain.PartTypeBrakes, "Brake Pads", dec("2500"))
	oilFilter = domain.NewPart(domain.PartTypeFilters, "Oil Filter", dec("400"))
	battery   = domain.NewPart(domain.PartTypeBattery, "Battery", dec("6000"))
)

func defaultSettings() Settings {
	return Settings{
		LaborMultiplier:          dec("1.5"),
		FailurePenaltyMultiplier: dec("2"),
		RefusalPenalty:           dec("500"),
	}
}

func testClient() *domain.Client {
	return domain.NewClient("Ivan Petrov", "ivan@example.com", domain.Vehicle{
		Brand: "Lada", Model: "Granta", Year: 2018, Plate: "M777MM",
	})
}

func newTestService(t *testing.T, balance string, stock ...domain.StockLine) *autoService {
	t.Helper()
	svc, err := newAutoService(Options{
		InitialBalance: dec(balance),
		InitialStock:   stock,
		Settings:       defaultSettings(),
		Clock:          &fixedClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	return svc
}

func line(p *domain.Part, qty int) domain.StockLine {
	return domain.StockLine{Part: *p, Quantity: qty}
}

func quantityOf(svc *autoService, name string) int {
	for _, l := range svc.WarehouseSnapshot() {
		if domain.NormalizeName(l.Part.Name) == domain.NormalizeName(name) {
			return l.Quantity
		}
	}
	return -1
}

func acceptedOrder(t *testing.T, svc *autoService, part *domain.Part) *domain.Order {
	t.Helper()
	order, err := svc.CreateOrderDefault(testClient(), part)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptOrder(context.Background(), order))
	return order
}

func TestNewAutoService_Validation(t *testing.T) {
	_, err := NewAutoService(Options{InitialBalance: dec("-1"), Settings: defaultSettings()})
	assert.True(t, apperror.IsInvalidArgument(err))

	bad := defaultSettings()
	bad.LaborMultiplier = dec("0.9")
	_, err = NewAutoService(Options{InitialBalance: dec("10"), Settings: bad})
	assert.True(t, apperror.IsInvalidArgument(err))

	_, err = NewAutoService(Options{
		InitialBalance: dec("10"),
		Settings:       defaultSettings(),
		InitialStock:   []domain.StockLine{line(brakePads, -1)},
	})
	assert.True(t, apperror.IsInvalidArgument(err))
}

func TestCreateOrder(t *testing.T) {
	svc := newTestService(t, "10000")

	order, err := svc.CreateOrder(testClient(), brakePads, dec("1.5"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.LaborCost.Equal(dec("1250")))
	assert.True(t, order.RepairCost.Equal(dec("3750")))
	assert.False(t, order.CreatedAt.IsZero())
	assert.Nil(t, order.CompletedAt)

	next, err := svc.CreateOrder(testClient(), oilFilter, dec("1"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
}

func TestCreateOrder_InvalidArguments(t *testing.T) {
	svc := newTestService(t, "10000")

	cases := map[string]func() error{
		"nil client": func() error { _, err := svc.CreateOrder(nil, brakePads, dec("1.5")); return err },
		"nil part":   func() error { _, err := svc.CreateOrder(testClient(), nil, dec("1.5")); return err },
		"multiplier": func() error { _, err := svc.CreateOrder(testClient(), brakePads, dec("0.99")); return err },
		"bad client": func() error {
			c := testClient()
			c.Vehicle.Year = 1800
			_, err := svc.CreateOrder(c, brakePads, dec("1.5"))
			return err
		},
		"bad part": func() error {
			_, err := svc.CreateOrder(testClient(), domain.NewPart(domain.PartTypeOther, "", dec("1")), dec("1.5"))
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, apperror.IsInvalidArgument(fn()))
		})
	}
}

func TestAcceptOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000")

	assert.True(t, apperror.IsInvalidArgument(svc.AcceptOrder(ctx, nil)))

	order, _ := svc.CreateOrderDefault(testClient(), brakePads)
	require.NoError(t, svc.AcceptOrder(ctx, order))
	assert.Equal(t, domain.OrderStatusAccepted, order.Status)

	active := svc.ActiveOrders()
	require.Len(t, active, 1)
	assert.Equal(t, order.ID, active[0].ID)

	// Same order twice
	assert.True(t, apperror.IsInvalidArgument(svc.AcceptOrder(ctx, order)))

	// A different order object reusing the ID
	dup := domain.NewOrder(order.ID, *testClient(), brakePads, dec("1"), time.Now())
	assert.True(t, apperror.IsInvalidArgument(svc.AcceptOrder(ctx, dup)))

	// Terminal orders
	refused, _ := svc.CreateOrderDefault(testClient(), brakePads)
	_, err := svc.RefuseOrder(ctx, refused)
	require.NoError(t, err)
	assert.True(t, apperror.IsInvalidArgument(svc.AcceptOrder(ctx, refused)))
}

// failingOrderRepo refuses every new active order
type failingOrderRepo struct {
	*repository.OrderRepo
}

func (r failingOrderRepo) AddActive(ctx context.Context, order *domain.Order) error {
	return errors.New("store unavailable")
}

func TestAcceptOrder_RepositoryFailureLeavesOrderPending(t *testing.T) {
	svc, err := newAutoService(Options{
		InitialBalance: dec("10000"),
		Settings:       defaultSettings(),
		Orders:         failingOrderRepo{repository.NewOrderRepo()},
	})
	require.NoError(t, err)

	order, _ := svc.CreateOrderDefault(testClient(), brakePads)
	assert.ErrorContains(t, svc.AcceptOrder(context.Background(), order), "store unavailable")
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Empty(t, svc.ActiveOrders())
}

// Scenario A
func TestProcessOrder_Completed(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000", line(brakePads, 1))

	order := acceptedOrder(t, svc, brakePads)
	outcome, err := svc.ProcessOrder(ctx, order)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCompleted, outcome.Status)
	assert.True(t, svc.Balance().Equal(dec("13750")), "balance %s", svc.Balance())
	assert.True(t, outcome.Settlement.Equal(dec("3750")))
	assert.Equal(t, 0, quantityOf(svc, "Brake Pads"))
	assert.False(t, outcome.Bankrupt)

	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	assert.Equal(t, "Brake Pads", order.UsedPartName)
	assert.NotNil(t, order.CompletedAt)
	assert.Empty(t, svc.ActiveOrders())

	history := svc.OrderHistory()
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
}

func TestProcessOrder_MatchesPartNameIgnoringCase(t *testing.T) {
	ctx := context.Background()
	lower := domain.NewPart(domain.PartTypeBrakes, "brake pads", dec("2500"))
	svc := newTestService(t, "0", line(lower, 1))

	outcome, err := svc.ProcessOrder(ctx, acceptedOrder(t, svc, brakePads))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, outcome.Status)
	assert.Equal(t, "brake pads", outcome.Order.UsedPartName)
}

// Scenario B
func TestProcessOrder_FailedConsumesFirstAvailable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000", line(brakePads, 0), line(oilFilter, 2), line(battery, 1))

	order := acceptedOrder(t, svc, brakePads)
	outcome, err := svc.ProcessOrder(ctx, order)
	require.NoError(t, err)

	// Battery sorts before Oil Filter
	assert.Equal(t, domain.OrderStatusFailed, outcome.Status)
	assert.Equal(t, "Battery", order.ConsumedPartName)
	assert.Empty(t, order.UsedPartName)
	assert.Equal(t, 0, quantityOf(svc, "Battery"))
	assert.Equal(t, 2, quantityOf(svc, "Oil Filter"))

	// 3750 * 2
	assert.True(t, svc.Balance().Equal(dec("2500")), "balance %s", svc.Balance())
	assert.True(t, outcome.Settlement.Equal(dec("-7500")))
}

func TestProcessOrder_FailedPenaltyClamps(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "1000", line(oilFilter, 2))

	outcome, err := svc.ProcessOrder(ctx, acceptedOrder(t, svc, brakePads))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusFailed, outcome.Status)
	assert.True(t, svc.Balance().IsZero())
	assert.True(t, outcome.Settlement.Equal(dec("-1000")))
	assert.Equal(t, 1, quantityOf(svc, "Oil Filter"))
	assert.True(t, outcome.Bankrupt)
}

// Scenario C
func TestProcessOrder_RefusedWhenWarehouseEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "300", line(brakePads, 0))

	outcome, err := svc.ProcessOrder(ctx, acceptedOrder(t, svc, brakePads))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusRefused, outcome.Status)
	assert.True(t, svc.Balance().IsZero())
	assert.True(t, outcome.Settlement.Equal(dec("-300")))
	assert.True(t, outcome.Bankrupt)
}

func TestProcessOrder_TwiceIsInvalidState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000", line(brakePads, 2))
	order := acceptedOrder(t, svc, brakePads)

	_, err := svc.ProcessOrder(ctx, order)
	require.NoError(t, err)
	balance := svc.Balance()
	entries := len(svc.LedgerEntries())

	_, err = svc.ProcessOrder(ctx, order)
	assert.True(t, apperror.IsInvalidState(err))

	// A stale copy carrying the old status must not re-run either
	stale := order.Clone()
	stale.Status = domain.OrderStatusAccepted
	stale.CompletedAt = nil
	_, err = svc.ProcessOrder(ctx, stale)
	assert.True(t, apperror.IsInvalidState(err))

	assert.True(t, svc.Balance().Equal(balance))
	assert.Len(t, svc.LedgerEntries(), entries)
	assert.Equal(t, 1, quantityOf(svc, "Brake Pads"))
	assert.Len(t, svc.OrderHistory(), 1)
}

func TestProcessOrder_RequiresAcceptance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000", line(brakePads, 1))

	_, err := svc.ProcessOrder(ctx, nil)
	assert.True(t, apperror.IsInvalidArgument(err))

	order, _ := svc.CreateOrderDefault(testClient(), brakePads)
	_, err = svc.ProcessOrder(ctx, order)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, 1, quantityOf(svc, "Brake Pads"))
}

func TestRefuseOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000", line(brakePads, 1))

	order, _ := svc.CreateOrderDefault(testClient(), brakePads)
	outcome, err := svc.RefuseOrder(ctx, order)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusRefused, outcome.Status)
	assert.True(t, svc.Balance().Equal(dec("9500")))
	assert.Equal(t, 1, quantityOf(svc, "Brake Pads"), "refusal never touches stock")
	assert.NotNil(t, order.CompletedAt)
	require.Len(t, svc.OrderHistory(), 1)

	_, err = svc.RefuseOrder(ctx, order)
	assert.True(t, apperror.IsInvalidState(err))
	assert.True(t, svc.Balance().Equal(dec("9500")))

	accepted := acceptedOrder(t, svc, brakePads)
	_, err = svc.RefuseOrder(ctx, accepted)
	assert.True(t, apperror.IsInvalidState(err))

	_, err = svc.RefuseOrder(ctx, nil)
	assert.True(t, apperror.IsInvalidArgument(err))
}

// Scenario E
func TestBankruptAtExactlyZero(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "500")

	order, _ := svc.CreateOrderDefault(testClient(), brakePads)
	outcome, err := svc.RefuseOrder(ctx, order)
	require.NoError(t, err)

	assert.True(t, svc.Balance().IsZero())
	assert.True(t, outcome.Bankrupt)
	assert.True(t, svc.IsBankrupt())
}

func TestBuyParts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000")

	require.NoError(t, svc.BuyParts(ctx, brakePads, 2))
	assert.True(t, svc.Balance().Equal(dec("5000")))
	assert.Equal(t, 2, quantityOf(svc, "Brake Pads"))

	stats := svc.Stats()
	assert.Equal(t, 2, stats.PartsPurchased)
	assert.True(t, stats.PurchaseSpend.Equal(dec("5000")))
}

func TestBuyParts_ChargesUnitPrice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "1000")

	require.NoError(t, svc.BuyParts(ctx, oilFilter, 2))
	assert.True(t, svc.Balance().Equal(dec("200")))

	entries := svc.LedgerEntries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Applied.Equal(dec("800")), entries[0].Applied.String())

	err := svc.BuyParts(ctx, oilFilter, 1)
	assert.True(t, apperror.IsInsufficientFunds(err))
	assert.Equal(t, 2, quantityOf(svc, "Oil Filter"))
}

// Scenario D
func TestBuyParts_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000", line(brakePads, 1))

	err := svc.BuyParts(ctx, brakePads, 5)
	require.True(t, apperror.IsInsufficientFunds(err))

	appErr, ok := apperror.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "12500.00", appErr.Details["required"])

	assert.True(t, svc.Balance().Equal(dec("10000")))
	assert.Equal(t, 1, quantityOf(svc, "Brake Pads"))
	assert.Empty(t, svc.LedgerEntries())
}

func TestBuyParts_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000")

	assert.True(t, apperror.IsInvalidArgument(svc.BuyParts(ctx, nil, 1)))
	assert.True(t, apperror.IsInvalidArgument(svc.BuyParts(ctx, brakePads, 0)))
	assert.True(t, apperror.IsInvalidArgument(svc.BuyParts(ctx, brakePads, -3)))
	assert.True(t, svc.Balance().Equal(dec("10000")))
}

func TestBuyParts_DelayedDelivery(t *testing.T) {
	ctx := context.Background()
	settings := defaultSettings()
	settings.DeliveryDelay = 2
	svc, err := newAutoService(Options{InitialBalance: dec("20000"), Settings: settings})
	require.NoError(t, err)

	require.NoError(t, svc.BuyParts(ctx, brakePads, 1))
	assert.True(t, svc.Balance().Equal(dec("17500")), "paid up front")
	assert.Equal(t, 0, quantityOf(svc, "Brake Pads"))
	require.Len(t, svc.PendingDeliveries(), 1)

	// First car: nothing in stock, turned away
	first := acceptedOrder(t, svc, brakePads)
	outcome, err := svc.ProcessOrder(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefused, outcome.Status)
	assert.Empty(t, outcome.Delivered)

	// Second car also refused; the delivery lands afterwards
	second, _ := svc.CreateOrderDefault(testClient(), brakePads)
	outcome, err = svc.RefuseOrder(ctx, second)
	require.NoError(t, err)
	require.Len(t, outcome.Delivered, 1)
	assert.Equal(t, 1, quantityOf(svc, "Brake Pads"))
	assert.Empty(t, svc.PendingDeliveries())

	third := acceptedOrder(t, svc, brakePads)
	outcome, err = svc.ProcessOrder(ctx, third)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, outcome.Status)
}

func TestEveryOrderEndsInOneTerminalState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "5000", line(brakePads, 2), line(oilFilter, 1))

	var orders []*domain.Order
	for i := 0; i < 6; i++ {
		order, err := svc.CreateOrderDefault(testClient(), brakePads)
		require.NoError(t, err)
		orders = append(orders, order)

		if i%3 == 2 {
			_, err = svc.RefuseOrder(ctx, order)
		} else {
			require.NoError(t, svc.AcceptOrder(ctx, order))
			_, err = svc.ProcessOrder(ctx, order)
		}
		require.NoError(t, err)
	}

	for _, o := range orders {
		assert.True(t, o.IsTerminal())
		assert.NotNil(t, o.CompletedAt)
		assert.NoError(t, o.Validate())
	}

	stats := svc.Stats()
	assert.Equal(t, 6, stats.CarsProcessed)
	assert.Equal(t, stats.CarsProcessed, stats.Completed+stats.Failed+stats.Refused)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 3, stats.Refused)
	assert.Len(t, svc.OrderHistory(), 6)
	assert.Empty(t, svc.ActiveOrders())
	assert.False(t, svc.Balance().IsNegative())
}

func TestQueriesReturnCopies(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "10000", line(brakePads, 1))
	order := acceptedOrder(t, svc, brakePads)

	svc.ActiveOrders()[0].Status = domain.OrderStatusFailed
	assert.Equal(t, domain.OrderStatusAccepted, order.Status)

	svc.WarehouseSnapshot()[0].Quantity = 50
	assert.Equal(t, 1, quantityOf(svc, "Brake Pads"))

	_, err := svc.ProcessOrder(ctx, order)
	require.NoError(t, err)
	svc.OrderHistory()[0].UsedPartName = "changed"
	assert.Equal(t, "Brake Pads", order.UsedPartName)
}

func TestConcurrentCallersSeeConsistentState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "100000", line(brakePads, 20), line(oilFilter, 20))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			order, err := svc.CreateOrderDefault(testClient(), brakePads)
			if err != nil {
				return
			}
			if err := svc.AcceptOrder(ctx, order); err != nil {
				return
			}
			_, _ = svc.ProcessOrder(ctx, order)
		}()
		go func() {
			defer wg.Done()
			_ = svc.BuyParts(ctx, oilFilter, 1)
			_ = svc.WarehouseSnapshot()
			_ = svc.Balance()
		}()
	}
	wg.Wait()

	stats := svc.Stats()
	assert.Equal(t, 20, stats.CarsProcessed)
	assert.Equal(t, 20, stats.Completed)
	assert.Equal(t, 0, quantityOf(svc, "Brake Pads"))
	assert.Equal(t, 40, quantityOf(svc, "Oil Filter"))

	// 100000 + 20 * 3750 - 20 * 400
	assert.True(t, svc.Balance().Equal(dec("167000")), "balance %s", svc.Balance())
}

func TestTransitionsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.WithLogger(context.Background(), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	svc := newTestService(t, "10000", line(brakePads, 1))

	order, _ := svc.CreateOrderDefault(testClient(), brakePads)
	require.NoError(t, svc.AcceptOrder(ctx, order))
	_, err := svc.ProcessOrder(ctx, order)
	require.NoError(t, err)

	processed := logs.FilterMessage("order processed").All()
	require.Len(t, processed, 1)
	fields := processed[0].ContextMap()
	assert.Equal(t, order.ID, fields["order_id"])
	assert.Equal(t, "13750.00", fields["balance"])
	assert.Equal(t, "auto_service", fields["component"])
	assert.Equal(t, 1, logs.FilterMessage("order accepted").Len())
}
