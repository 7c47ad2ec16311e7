package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/andy/autoshop/internal/config"
	"github.com/andy/autoshop/internal/simulation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		configPath, seedFlag = "", 0
		simTurns, simPolicy, simVerbose = 0, "", false
		configForce = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeQuietConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Logging.File = filepath.Join(dir, "autoshop.log")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, cfg.Save(path))
	return path
}

func TestCatalogCommand(t *testing.T) {
	out, err := execute(t, "catalog", "--config", writeQuietConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Brake Pads")
	assert.Contains(t, out, "3750.00") // 2500 * 1.5
	assert.Contains(t, out, "Starting balance 20000.00")
}

func TestSimulateCommand(t *testing.T) {
	out, err := execute(t, "simulate", "--config", writeQuietConfig(t), "--seed", "42", "-n", "5", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Policy:         greedy (seed 42)")
	assert.Contains(t, out, "Final balance:")
}

func TestSimulateCommand_UnknownPolicy(t *testing.T) {
	_, err := execute(t, "simulate", "--config", writeQuietConfig(t), "--policy", "dice")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autoshop", "config.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = execute(t, "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "labor_multiplier")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &simulation.Report{
		RunID:        uuid.New(),
		Policy:       "always",
		Seed:         7,
		Turns:        3,
		Reason:       simulation.StopBankrupt,
		Bankrupt:     true,
		FinalBalance: decimal.Zero,
	})
	assert.Contains(t, buf.String(), "bankrupt after 3 cars")
	assert.Contains(t, buf.String(), "The shop went bankrupt.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Oil Filter", truncate("Oil Filter", 16))
	assert.Equal(t, "Shock...", truncate("Shock Absorber", 8))
}
