package cli

import (
	"context"
	"fmt"

	"github.com/andy/autoshop/internal/tui"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Launch the interactive shop",
	Long:  `Launch the terminal user interface. Logs go to the configured log file.`,
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := loadApp(context.Background(), true)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer a.Close()

	if err := tui.Run(a); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
