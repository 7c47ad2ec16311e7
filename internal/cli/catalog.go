package cli

import (
	"fmt"
	"io"

	"github.com/andy/autoshop/internal/app"
	"github.com/andy/autoshop/internal/config"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the parts catalog and the starting stock",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printCatalog(cmd.OutOrStdout(), cfg)
	},
}

func printCatalog(w io.Writer, cfg *config.Config) error {
	cat, err := app.BuildCatalog(cfg)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	stock, err := app.InitialStock(cfg, cat)
	if err != nil {
		return fmt.Errorf("invalid stock: %w", err)
	}

	onHand := make(map[string]int, len(stock))
	for _, l := range stock {
		onHand[l.Part.Key()] += l.Quantity
	}

	settings := app.Settings(cfg)

	// Print table header
	fmt.Fprintf(w, "%-20s %-13s %10s %10s %6s\n", "Part", "Type", "Price", "Repair", "Stock")
	fmt.Fprintln(w, "---------------------------------------------------------------")
	for _, p := range cat.All() {
		fmt.Fprintf(w, "%-20s %-13s %10s %10s %6d\n",
			truncate(p.Name, 20),
			p.Type,
			p.UnitPrice.StringFixed(2),
			p.UnitPrice.Mul(settings.LaborMultiplier).StringFixed(2),
			onHand[p.Key()],
		)
	}
	fmt.Fprintln(w, "---------------------------------------------------------------")
	fmt.Fprintf(w, "Starting balance %s, labor x%s, botched repair penalty x%s, refusal %s\n",
		cfg.Shop.InitialBalance.StringFixed(2),
		settings.LaborMultiplier.String(),
		settings.FailurePenaltyMultiplier.String(),
		settings.RefusalPenalty.StringFixed(2),
	)
	return nil
}
