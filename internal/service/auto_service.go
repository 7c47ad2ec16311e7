package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andy/autoshop/internal/apperror"
	"github.com/andy/autoshop/internal/domain"
	"github.com/andy/autoshop/internal/ledger"
	"github.com/andy/autoshop/internal/logger"
	"github.com/andy/autoshop/internal/repository"
	"github.com/andy/autoshop/internal/warehouse"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Settings are the economic constants of a shop
type Settings struct {
	// LaborMultiplier scales the part price into the repair price (>= 1)
	LaborMultiplier decimal.Decimal

	// FailurePenaltyMultiplier scales the repair cost into the penalty for a botched repair
	FailurePenaltyMultiplier decimal.Decimal

	// RefusalPenalty is charged whenever a client is turned away
	RefusalPenalty decimal.Decimal

	// DeliveryDelay is the number of processed cars a purchase takes to arrive (0 = immediate)
	DeliveryDelay int
}

// Validate returns an error if the settings are invalid
func (s Settings) Validate() error {
	if s.LaborMultiplier.LessThan(one) {
		return errors.New("labor multiplier must be at least 1")
	}
	if s.FailurePenaltyMultiplier.IsNegative() {
		return errors.New("failure penalty multiplier cannot be negative")
	}
	if s.RefusalPenalty.IsNegative() {
		return errors.New("refusal penalty cannot be negative")
	}
	if s.DeliveryDelay < 0 {
		return errors.New("delivery delay cannot be negative")
	}
	return nil
}

// Outcome reports what a terminal transition did
type Outcome struct {
	Order      *domain.Order
	Status     domain.OrderStatus
	Settlement decimal.Decimal // signed ledger effect actually applied
	Balance    decimal.Decimal
	Bankrupt   bool
	Delivered  []domain.PurchaseOrder // supplier orders that arrived with this car
}

// Stats summarizes the shop's run so far
type Stats struct {
	CarsProcessed  int
	Completed      int
	Failed         int
	Refused        int
	Revenue        decimal.Decimal
	Penalties      decimal.Decimal
	PartsPurchased int
	PurchaseSpend  decimal.Decimal
}

// AutoService is the order engine: it turns clients into orders and
// settles them against the warehouse and the ledger
type AutoService interface {
	// CreateOrder builds a pending order for a client's broken part
	CreateOrder(client *domain.Client, brokenPart *domain.Part, laborMultiplier decimal.Decimal) (*domain.Order, error)

	// CreateOrderDefault is CreateOrder with the configured labor multiplier
	CreateOrderDefault(client *domain.Client, brokenPart *domain.Part) (*domain.Order, error)

	// AcceptOrder moves a pending order into the active set
	AcceptOrder(ctx context.Context, order *domain.Order) error

	// ProcessOrder resolves an accepted order to Completed, Failed or Refused
	ProcessOrder(ctx context.Context, order *domain.Order) (*Outcome, error)

	// RefuseOrder turns a pending order away before acceptance
	RefuseOrder(ctx context.Context, order *domain.Order) (*Outcome, error)

	// BuyParts pays for quantity units of part and stocks them
	BuyParts(ctx context.Context, part *domain.Part, quantity int) error

	// Read-only queries
	Balance() decimal.Decimal
	IsBankrupt() bool
	ActiveOrders() []*domain.Order
	OrderHistory() []*domain.Order
	WarehouseSnapshot() []domain.StockLine
	AvailableStock() []domain.StockLine
	PendingDeliveries() []domain.PurchaseOrder
	LedgerEntries() []ledger.Entry
	Stats() Stats
	Settings() Settings
}

// Options configures NewAutoService. Zero-valued collaborators get defaults.
type Options struct {
	InitialBalance decimal.Decimal
	InitialStock   []domain.StockLine
	Settings       Settings

	Orders repository.OrderRepository
	IDs    domain.IDGenerator
	Clock  domain.Clock
	Logger *logger.Logger
}

type autoService struct {
	mu sync.Mutex

	settings  Settings
	warehouse *warehouse.Warehouse
	ledger    *ledger.Ledger
	orders    repository.OrderRepository
	ids       domain.IDGenerator
	clock     domain.Clock
	log       *logger.Logger

	stats Stats
}

// NewAutoService creates a shop with its own warehouse and ledger
func NewAutoService(opts Options) (AutoService, error) {
	return newAutoService(opts)
}

func newAutoService(opts Options) (*autoService, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, apperror.InvalidArgument("invalid settings").WithCause(err)
	}

	if opts.Clock == nil {
		opts.Clock = domain.SystemClock{}
	}
	if opts.IDs == nil {
		opts.IDs = domain.NewSequence(0)
	}
	if opts.Orders == nil {
		opts.Orders = repository.NewOrderRepo()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	book, err := ledger.New(opts.InitialBalance)
	if err != nil {
		return nil, err
	}
	book.WithClock(opts.Clock.Now)

	store := warehouse.New()
	for _, line := range opts.InitialStock {
		part := line.Part
		if err := store.AddStock(&part, line.Quantity); err != nil {
			return nil, fmt.Errorf("initial stock %q: %w", line.Part.Name, err)
		}
	}

	return &autoService{
		settings:  opts.Settings,
		warehouse: store,
		ledger:    book,
		orders:    opts.Orders,
		ids:       opts.IDs,
		clock:     opts.Clock,
		log:       opts.Logger.WithComponent("auto_service"),
		stats: Stats{
			Revenue:       decimal.Zero,
			Penalties:     decimal.Zero,
			PurchaseSpend: decimal.Zero,
		},
	}, nil
}

func (s *autoService) logger(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx, s.log); l != s.log {
		return l.WithComponent("auto_service")
	}
	return s.log
}

func (s *autoService) CreateOrder(
	client *domain.Client,
	brokenPart *domain.Part,
	laborMultiplier decimal.Decimal,
) (*domain.Order, error) {
	if client == nil {
		return nil, apperror.InvalidArgument("client is required")
	}
	if brokenPart == nil {
		return nil, apperror.InvalidArgument("broken part is required")
	}
	if laborMultiplier.LessThan(one) {
		return nil, apperror.InvalidArgument("labor multiplier must be at least 1, got %s", laborMultiplier)
	}

	now := s.clock.Now()
	if err := client.ValidateAt(now); err != nil {
		return nil, apperror.InvalidArgument("invalid client").WithCause(err)
	}
	if err := brokenPart.Validate(); err != nil {
		return nil, apperror.InvalidArgument("invalid broken part").WithCause(err)
	}

	return domain.NewOrder(s.ids.NextID(), *client, brokenPart, laborMultiplier, now), nil
}

func (s *autoService) CreateOrderDefault(client *domain.Client, brokenPart *domain.Part) (*domain.Order, error) {
	return s.CreateOrder(client, brokenPart, s.settings.LaborMultiplier)
}

func (s *autoService) AcceptOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return apperror.InvalidArgument("order is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if order.IsTerminal() {
		return apperror.InvalidArgument("order %d is already %s", order.ID, order.Status)
	}
	if order.Status != domain.OrderStatusPending {
		return apperror.InvalidArgument("order %d is %s, only pending orders can be accepted", order.ID, order.Status)
	}
	exists, err := s.orders.Exists(ctx, order.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.InvalidArgument("order %d already exists", order.ID)
	}

	// Register first so a repository failure leaves the order pending
	if err := s.orders.AddActive(ctx, order); err != nil {
		return err
	}
	if err := order.Accept(); err != nil {
		if rmErr := s.orders.RemoveActive(ctx, order.ID); rmErr != nil {
			return errors.Join(err, rmErr)
		}
		return apperror.InvalidArgument("cannot accept order %d", order.ID).WithCause(err)
	}

	s.logger(ctx).Infow("order accepted",
		"order_id", order.ID,
		"part", order.BrokenPartName,
		"repair_cost", order.RepairCost.StringFixed(2),
	)
	return nil
}

func (s *autoService) ProcessOrder(ctx context.Context, order *domain.Order) (*Outcome, error) {
	if order == nil {
		return nil, apperror.InvalidArgument("order is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if order.IsTerminal() {
		return nil, apperror.InvalidState("order %d is already %s", order.ID, order.Status)
	}
	active, err := s.orders.GetActive(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, apperror.InvalidState("order %d has not been accepted", order.ID)
	}

	return s.settle(ctx, active)
}

// settle applies exactly one row of the transition table to an accepted
// order. Amounts are computed up front so the ledger and warehouse calls
// below cannot fail halfway.
func (s *autoService) settle(ctx context.Context, order *domain.Order) (*Outcome, error) {
	now := s.clock.Now()
	log := s.logger(ctx)
	available := s.warehouse.ListAvailable()

	switch {
	case s.warehouse.HasPart(order.BrokenPartName):
		if err := s.warehouse.RemoveStock(order.BrokenPartName, 1); err != nil {
			return nil, err
		}
		if err := s.ledger.Credit(order.RepairCost, fmt.Sprintf("repair order %d", order.ID)); err != nil {
			return nil, err
		}
		line, _ := s.warehouse.FindByName(order.BrokenPartName)
		if err := order.Complete(line.Part.Name, order.RepairCost, now); err != nil {
			return nil, err
		}
		s.stats.Completed++
		s.stats.Revenue = s.stats.Revenue.Add(order.RepairCost)

	case len(available) > 0:
		substitute := available[0].Part.Name
		penalty := order.RepairCost.Mul(s.settings.FailurePenaltyMultiplier)
		if err := s.warehouse.RemoveStock(substitute, 1); err != nil {
			return nil, err
		}
		applied, err := s.ledger.Debit(penalty, fmt.Sprintf("failed repair order %d", order.ID))
		if err != nil {
			return nil, err
		}
		if err := order.Fail(substitute, applied, now); err != nil {
			return nil, err
		}
		s.stats.Failed++
		s.stats.Penalties = s.stats.Penalties.Add(applied)

	default:
		applied, err := s.ledger.Debit(s.settings.RefusalPenalty, fmt.Sprintf("refused order %d", order.ID))
		if err != nil {
			return nil, err
		}
		if err := order.Refuse(applied, now); err != nil {
			return nil, err
		}
		s.stats.Refused++
		s.stats.Penalties = s.stats.Penalties.Add(applied)
	}

	if err := s.orders.RemoveActive(ctx, order.ID); err != nil {
		return nil, err
	}
	outcome, err := s.closeOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	log.Infow("order processed",
		"order_id", order.ID,
		"status", string(order.Status),
		"settlement", outcome.Settlement.StringFixed(2),
		"balance", outcome.Balance.StringFixed(2),
		"bankrupt", outcome.Bankrupt,
	)
	return outcome, nil
}

func (s *autoService) RefuseOrder(ctx context.Context, order *domain.Order) (*Outcome, error) {
	if order == nil {
		return nil, apperror.InvalidArgument("order is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if order.IsTerminal() {
		return nil, apperror.InvalidState("order %d is already %s", order.ID, order.Status)
	}
	if order.Status != domain.OrderStatusPending {
		return nil, apperror.InvalidState("order %d is %s, accepted orders must be processed", order.ID, order.Status)
	}
	exists, err := s.orders.Exists(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.InvalidState("order %d is already tracked", order.ID)
	}

	applied, err := s.ledger.Debit(s.settings.RefusalPenalty, fmt.Sprintf("refused order %d", order.ID))
	if err != nil {
		return nil, err
	}
	if err := order.Refuse(applied, s.clock.Now()); err != nil {
		return nil, err
	}
	s.stats.Refused++
	s.stats.Penalties = s.stats.Penalties.Add(applied)

	outcome, err := s.closeOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	s.logger(ctx).Infow("order refused",
		"order_id", order.ID,
		"penalty", applied.StringFixed(2),
		"balance", outcome.Balance.StringFixed(2),
		"bankrupt", outcome.Bankrupt,
	)
	return outcome, nil
}

// closeOrder files a terminal order, counts the car and advances deliveries
func (s *autoService) closeOrder(ctx context.Context, order *domain.Order) (*Outcome, error) {
	if err := s.orders.AppendHistory(ctx, order); err != nil {
		return nil, err
	}
	s.stats.CarsProcessed++

	delivered := s.warehouse.Tick()
	for _, po := range delivered {
		s.logger(ctx).Infow("parts delivered", "part", po.Part.Name, "quantity", po.Quantity)
	}

	return &Outcome{
		Order:      order.Clone(),
		Status:     order.Status,
		Settlement: order.Settlement,
		Balance:    s.ledger.Balance(),
		Bankrupt:   s.ledger.IsBankrupt(),
		Delivered:  delivered,
	}, nil
}

func (s *autoService) BuyParts(ctx context.Context, part *domain.Part, quantity int) error {
	if part == nil {
		return apperror.InvalidArgument("part is required")
	}
	if err := part.Validate(); err != nil {
		return apperror.InvalidArgument("invalid part").WithCause(err)
	}
	if quantity <= 0 {
		return apperror.InvalidArgument("quantity must be positive, got %d", quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cost := part.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if !s.ledger.CanAfford(cost) {
		s.logger(ctx).Warnw("purchase rejected",
			"part", part.Name,
			"quantity", quantity,
			"cost", cost.StringFixed(2),
			"balance", s.ledger.Balance().StringFixed(2),
		)
		return apperror.InsufficientFunds(cost.StringFixed(2), s.ledger.Balance().StringFixed(2)).
			WithDetail("part", part.Name).
			WithDetail("quantity", quantity)
	}

	po := domain.NewPurchaseOrder(*part, quantity, cost, s.settings.DeliveryDelay)
	if err := s.warehouse.Enqueue(po); err != nil {
		return err
	}
	if _, err := s.ledger.Debit(cost, fmt.Sprintf("purchase %d x %s", quantity, part.Name)); err != nil {
		return err
	}
	s.stats.PartsPurchased += quantity
	s.stats.PurchaseSpend = s.stats.PurchaseSpend.Add(cost)

	s.logger(ctx).Infow("parts purchased",
		"part", part.Name,
		"quantity", quantity,
		"cost", cost.StringFixed(2),
		"delivery_in", po.TurnsUntilDelivery,
		"balance", s.ledger.Balance().StringFixed(2),
	)
	return nil
}

func (s *autoService) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance()
}

func (s *autoService) IsBankrupt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.IsBankrupt()
}

func (s *autoService) ActiveOrders() []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders, _ := s.orders.ListActive(context.Background())
	return cloneOrders(orders)
}

func (s *autoService) OrderHistory() []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders, _ := s.orders.ListHistory(context.Background(), nil)
	return cloneOrders(orders)
}

func (s *autoService) WarehouseSnapshot() []domain.StockLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warehouse.Snapshot()
}

func (s *autoService) AvailableStock() []domain.StockLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warehouse.ListAvailable()
}

func (s *autoService) PendingDeliveries() []domain.PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warehouse.PendingDeliveries()
}

func (s *autoService) LedgerEntries() []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

func (s *autoService) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *autoService) Settings() Settings {
	return s.settings
}

func cloneOrders(orders []*domain.Order) []*domain.Order {
	out := make([]*domain.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}
