package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/andy/autoshop/internal/domain"
	"github.com/andy/autoshop/internal/simulation"
	"github.com/spf13/cobra"
)

var (
	simTurns   int
	simPolicy  string
	simVerbose bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the shop headless with an automatic owner",
	Long: `Run the shop without a UI. A policy decides which clients to accept and
what to restock. The run ends on bankruptcy or after --turns clients.

Examples:
  autoshop simulate --turns 100 --seed 42
  autoshop simulate --policy always -v`,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := loadApp(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer a.Close()

	runner, err := a.NewRunner(simPolicy, simTurns)
	if err != nil {
		return fmt.Errorf("failed to set up simulation: %w", err)
	}

	out := cmd.OutOrStdout()
	if simVerbose {
		runner.OnTurn = func(t simulation.Turn) { printTurn(out, t) }
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	printReport(out, report)
	return nil
}

func printTurn(w io.Writer, t simulation.Turn) {
	o := t.Order
	detail := ""
	switch o.Status {
	case domain.OrderStatusCompleted:
		detail = "used " + o.UsedPartName
	case domain.OrderStatusFailed:
		detail = "installed " + o.ConsumedPartName
	}
	fmt.Fprintf(w, "%4d  %-20s %-16s %-7s %-10s %12s %12s  %s\n",
		t.Number,
		truncate(o.Client.Name, 20),
		truncate(o.BrokenPartName, 16),
		t.Decision,
		o.Status,
		o.Settlement.StringFixed(2),
		t.Outcome.Balance.StringFixed(2),
		detail,
	)
}

func printReport(w io.Writer, r *simulation.Report) {
	fmt.Fprintln(w, "--------------------------------------------------------------------------------")
	fmt.Fprintf(w, "Run:            %s\n", r.RunID)
	fmt.Fprintf(w, "Policy:         %s (seed %d)\n", r.Policy, r.Seed)
	fmt.Fprintf(w, "Stopped:        %s after %d cars\n", r.Reason, r.Turns)
	fmt.Fprintf(w, "Completed:      %d\n", r.Stats.Completed)
	fmt.Fprintf(w, "Botched:        %d\n", r.Stats.Failed)
	fmt.Fprintf(w, "Refused:        %d\n", r.Stats.Refused)
	fmt.Fprintf(w, "Revenue:        %s\n", r.Stats.Revenue.StringFixed(2))
	fmt.Fprintf(w, "Penalties:      %s\n", r.Stats.Penalties.StringFixed(2))
	fmt.Fprintf(w, "Parts bought:   %d for %s\n", r.Stats.PartsPurchased, r.Stats.PurchaseSpend.StringFixed(2))
	fmt.Fprintf(w, "Final balance:  %s\n", r.FinalBalance.StringFixed(2))
	if r.Bankrupt {
		fmt.Fprintln(w, "The shop went bankrupt.")
	}
}

func init() {
	simulateCmd.Flags().IntVarP(&simTurns, "turns", "n", 0, "number of clients to serve (0 = config)")
	simulateCmd.Flags().StringVarP(&simPolicy, "policy", "p", "", "owner policy: greedy or always (default from config)")
	simulateCmd.Flags().BoolVarP(&simVerbose, "verbose", "v", false, "print every turn")
}
