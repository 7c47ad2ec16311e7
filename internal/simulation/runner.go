// Package simulation drives an AutoService with a stream of clients and a
// decision policy until the shop goes bankrupt or the run ends.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andy/autoshop/internal/clientgen"
	"github.com/andy/autoshop/internal/domain"
	"github.com/andy/autoshop/internal/logger"
	"github.com/andy/autoshop/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StopReason string

const (
	StopBankrupt  StopReason = "bankrupt"
	StopTurnLimit StopReason = "turn_limit"
	StopExhausted StopReason = "clients_exhausted"
	StopCanceled  StopReason = "canceled"
)

// Turn is one client handled by the runner
type Turn struct {
	Number   int
	Order    *domain.Order
	Decision Decision
	Outcome  *service.Outcome
}

// Report summarizes a finished run
type Report struct {
	RunID        uuid.UUID
	Policy       string
	Seed         int64
	Turns        int
	Stats        service.Stats
	FinalBalance decimal.Decimal
	Bankrupt     bool
	Reason       StopReason
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the run took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type Runner struct {
	Engine service.AutoService
	Source clientgen.Source
	Policy Policy

	// MaxTurns stops the run after that many clients; 0 means no limit
	MaxTurns int

	// Seed is recorded in the report only
	Seed int64

	Logger *logger.Logger

	// OnTurn, when set, is called after every turn
	OnTurn func(Turn)
}

func (r *Runner) validate() error {
	if r.Engine == nil {
		return errors.New("runner needs an engine")
	}
	if r.Source == nil {
		return errors.New("runner needs a client source")
	}
	if r.Policy == nil {
		return errors.New("runner needs a policy")
	}
	if r.MaxTurns < 0 {
		return errors.New("max turns cannot be negative")
	}
	return nil
}

// Run plays turns until the shop is bankrupt, the turn limit is reached,
// the source runs dry or ctx is canceled. Engine errors abort the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.New(),
		Policy:    r.Policy.Name(),
		Seed:      r.Seed,
		StartedAt: time.Now(),
	}

	log := r.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("run_id", report.RunID.String(), "policy", report.Policy)
	ctx = logger.WithLogger(ctx, log)

	log.Infow("simulation started",
		"balance", r.Engine.Balance().StringFixed(2),
		"max_turns", r.MaxTurns,
		"seed", r.Seed,
	)

	reason, err := r.loop(ctx, report)
	if err != nil {
		log.Errorw("simulation aborted", "turn", report.Turns, "error", err)
		return nil, err
	}

	report.Reason = reason
	report.Stats = r.Engine.Stats()
	report.FinalBalance = r.Engine.Balance()
	report.Bankrupt = r.Engine.IsBankrupt()
	report.FinishedAt = time.Now()

	log.Infow("simulation finished",
		"reason", string(reason),
		"turns", report.Turns,
		"balance", report.FinalBalance.StringFixed(2),
		"bankrupt", report.Bankrupt,
	)
	return report, nil
}

func (r *Runner) loop(ctx context.Context, report *Report) (StopReason, error) {
	if r.Engine.IsBankrupt() {
		return StopBankrupt, nil
	}

	for {
		if ctx.Err() != nil {
			return StopCanceled, nil
		}
		if r.MaxTurns > 0 && report.Turns >= r.MaxTurns {
			return StopTurnLimit, nil
		}

		arrival, err := r.Source.Next(ctx)
		switch {
		case errors.Is(err, clientgen.ErrExhausted):
			return StopExhausted, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return StopCanceled, nil
		case err != nil:
			return "", fmt.Errorf("next client: %w", err)
		}

		turn, err := r.play(ctx, report.Turns+1, arrival)
		if err != nil {
			return "", fmt.Errorf("turn %d: %w", report.Turns+1, err)
		}
		report.Turns++
		if r.OnTurn != nil {
			r.OnTurn(turn)
		}

		if turn.Outcome.Bankrupt {
			return StopBankrupt, nil
		}

		if err := r.Policy.Restock(ctx, r.Engine); err != nil {
			return "", fmt.Errorf("restock after turn %d: %w", turn.Number, err)
		}
	}
}

func (r *Runner) play(ctx context.Context, number int, arrival clientgen.Arrival) (Turn, error) {
	order, err := r.Engine.CreateOrderDefault(arrival.Client, arrival.BrokenPart)
	if err != nil {
		return Turn{}, err
	}

	turn := Turn{Number: number, Order: order, Decision: r.Policy.Decide(r.Engine, order)}

	if turn.Decision == DecisionAccept {
		if err := r.Engine.AcceptOrder(ctx, order); err != nil {
			return Turn{}, err
		}
		turn.Outcome, err = r.Engine.ProcessOrder(ctx, order)
	} else {
		turn.Outcome, err = r.Engine.RefuseOrder(ctx, order)
	}
	if err != nil {
		return Turn{}, err
	}
	turn.Order = turn.Outcome.Order
	return turn, nil
}
