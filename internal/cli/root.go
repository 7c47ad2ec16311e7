package cli

import (
	"context"
	"os"

	"github.com/andy/autoshop/internal/app"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configPath string
	seedFlag   int64
)

var rootCmd = &cobra.Command{
	Use:   "autoshop",
	Short: "Run a car repair shop without going bankrupt",
	Long: `Autoshop simulates a small car repair shop. Clients drive in with a broken
part; you accept or refuse the job, keep the warehouse stocked and try to
stay solvent.

Running autoshop without arguments launches the interactive TUI when attached
to a terminal and a headless simulation otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return runPlay(cmd, args)
		}
		return runSimulate(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadApp builds the app from --config (or the default path) and --seed
func loadApp(ctx context.Context, logToFile bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.NewWithConfig(ctx, cfg, app.Options{Seed: seedFlag, LogToFile: logToFile})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/autoshop/config.yaml)")
	rootCmd.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "seed for the client generator (0 = config or random)")

	// Add all subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
}
