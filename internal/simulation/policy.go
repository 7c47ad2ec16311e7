package simulation

import (
	"context"
	"sort"

	"github.com/andy/autoshop/internal/apperror"
	"github.com/andy/autoshop/internal/catalog"
	"github.com/andy/autoshop/internal/domain"
	"github.com/andy/autoshop/internal/service"
	"github.com/shopspring/decimal"
)

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionRefuse Decision = "refuse"
)

// Policy plays the shop owner in a headless run
type Policy interface {
	Name() string

	// Decide is called with a pending order before it is accepted
	Decide(engine service.AutoService, order *domain.Order) Decision

	// Restock runs after every turn and may buy parts
	Restock(ctx context.Context, engine service.AutoService) error
}

// NewPolicy returns the policy registered under name ("greedy" or "always")
func NewPolicy(name string, cat *catalog.Catalog) (Policy, error) {
	switch name {
	case "always":
		return AlwaysAccept{}, nil
	case "greedy":
		return NewGreedy(cat), nil
	default:
		return nil, apperror.InvalidArgument("unknown policy %q", name)
	}
}

// AlwaysAccept accepts every client and never buys anything
type AlwaysAccept struct{}

func (AlwaysAccept) Name() string { return "always" }

func (AlwaysAccept) Decide(service.AutoService, *domain.Order) Decision { return DecisionAccept }

func (AlwaysAccept) Restock(context.Context, service.AutoService) error { return nil }

// Greedy accepts only repairs it can do with the exact part and turns
// everyone else away. After each turn it buys one unit of the part it
// has refused most often.
type Greedy struct {
	catalog *catalog.Catalog
	misses  map[string]int
}

func NewGreedy(cat *catalog.Catalog) *Greedy {
	return &Greedy{catalog: cat, misses: make(map[string]int)}
}

func (g *Greedy) Name() string { return "greedy" }

func (g *Greedy) Decide(engine service.AutoService, order *domain.Order) Decision {
	key := domain.NormalizeName(order.BrokenPartName)
	for _, line := range engine.AvailableStock() {
		if line.Part.Key() == key {
			return DecisionAccept
		}
	}
	g.misses[key]++
	return DecisionRefuse
}

func (g *Greedy) Restock(ctx context.Context, engine service.AutoService) error {
	if g.catalog == nil || len(g.misses) == 0 {
		return nil
	}

	incoming := make(map[string]bool)
	for _, po := range engine.PendingDeliveries() {
		incoming[po.Part.Key()] = true
	}

	// Keep enough cash to absorb a refusal after buying
	reserve := engine.Settings().RefusalPenalty
	balance := engine.Balance()

	for _, name := range g.mostMissed() {
		if incoming[name] {
			continue
		}
		part, err := g.catalog.Get(name)
		if err != nil {
			delete(g.misses, name)
			continue
		}
		if balance.Sub(part.UnitPrice).LessThanOrEqual(reserve) {
			continue
		}
		if !profitable(part, engine.Settings()) {
			continue
		}
		if err := engine.BuyParts(ctx, part, 1); err != nil {
			if apperror.IsInsufficientFunds(err) {
				continue
			}
			return err
		}
		delete(g.misses, name)
		return nil
	}
	return nil
}

// mostMissed returns missed part keys, most refusals first, then by name
func (g *Greedy) mostMissed() []string {
	names := make([]string, 0, len(g.misses))
	for name := range g.misses {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if g.misses[names[i]] != g.misses[names[j]] {
			return g.misses[names[i]] > g.misses[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func profitable(part *domain.Part, settings service.Settings) bool {
	repair := part.UnitPrice.Mul(settings.LaborMultiplier)
	return repair.Sub(part.UnitPrice).GreaterThan(decimal.Zero)
}
