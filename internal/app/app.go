package app

import (
	"context"
	"fmt"

	"github.com/andy/autoshop/internal/catalog"
	"github.com/andy/autoshop/internal/clientgen"
	"github.com/andy/autoshop/internal/config"
	"github.com/andy/autoshop/internal/domain"
	"github.com/andy/autoshop/internal/logger"
	"github.com/andy/autoshop/internal/service"
	"github.com/andy/autoshop/internal/simulation"
)

// App is the dependency injection container for all application components
type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Catalog *catalog.Catalog

	// Engine is the running shop. Restart replaces it.
	Engine service.AutoService

	// Seed drives the client generator
	Seed int64
}

// Options tweak how the App is built from config
type Options struct {
	// Seed overrides the configured seed when non-zero
	Seed int64

	// LogToFile sends logs to the configured log file instead of stderr.
	// The TUI needs this because it owns the terminal.
	LogToFile bool
}

// New creates a new App instance from the default config path
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg, opts)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log, err := newLogger(cfg, opts.LogToFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cat, err := BuildCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	seed := cfg.Simulation.Seed
	if opts.Seed != 0 {
		seed = opts.Seed
	}
	if seed == 0 {
		seed = clientgen.RandomSeed()
	}

	a := &App{
		Config:  cfg,
		Logger:  log,
		Catalog: cat,
		Seed:    seed,
	}
	if err := a.Restart(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func newLogger(cfg *config.Config, toFile bool) (*logger.Logger, error) {
	lc := logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	}
	if toFile {
		if cfg.Logging.File == "" {
			return logger.Nop(), nil
		}
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lc.OutputPaths = []string{cfg.Logging.File}
		// colors are noise in a file
		lc.Development = false
	}
	return logger.New(lc)
}

// BuildCatalog turns the configured parts into a catalog
func BuildCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	parts := make([]*domain.Part, 0, len(cfg.Catalog))
	for _, pc := range cfg.Catalog {
		p := domain.NewPart(domain.PartType(pc.Type), pc.Name, pc.Price)
		p.Description = pc.Description
		parts = append(parts, p)
	}
	return catalog.New(parts...)
}

// InitialStock resolves the configured stock against the catalog
func InitialStock(cfg *config.Config, cat *catalog.Catalog) ([]domain.StockLine, error) {
	lines := make([]domain.StockLine, 0, len(cfg.Stock))
	for _, sc := range cfg.Stock {
		p, err := cat.Get(sc.Part)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.StockLine{Part: *p, Quantity: sc.Quantity})
	}
	return lines, nil
}

// Settings returns the engine settings from config
func Settings(cfg *config.Config) service.Settings {
	return service.Settings{
		LaborMultiplier:          cfg.Shop.LaborMultiplier,
		FailurePenaltyMultiplier: cfg.Shop.FailurePenaltyMultiplier,
		RefusalPenalty:           cfg.Shop.RefusalPenalty,
		DeliveryDelay:            cfg.Shop.DeliveryDelay,
	}
}

// Restart opens a fresh shop with the configured balance and stock
func (a *App) Restart(ctx context.Context) error {
	stock, err := InitialStock(a.Config, a.Catalog)
	if err != nil {
		return fmt.Errorf("failed to resolve initial stock: %w", err)
	}

	engine, err := service.NewAutoService(service.Options{
		InitialBalance: a.Config.Shop.InitialBalance,
		InitialStock:   stock,
		Settings:       Settings(a.Config),
		Logger:         a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	a.Engine = engine

	a.Logger.Infow("shop opened",
		"balance", a.Config.Shop.InitialBalance.StringFixed(2),
		"parts", a.Catalog.Len(),
		"seed", a.Seed,
	)
	return nil
}

// NewSource returns a random client generator seeded with a.Seed
func (a *App) NewSource() (*clientgen.RandomSource, error) {
	c := a.Config.Clients
	pools := clientgen.Pools{
		FirstNames: c.FirstNames,
		LastNames:  c.LastNames,
		MinYear:    c.MinYear,
	}
	for _, v := range c.Vehicles {
		pools.Vehicles = append(pools.Vehicles, clientgen.VehicleModels{Brand: v.Brand, Models: v.Models})
	}
	return clientgen.NewRandomSource(clientgen.NewRand(a.Seed), pools, a.Catalog, domain.SystemClock{})
}

// NewRunner wires a headless run against the current engine.
// Empty policy and zero turns fall back to config.
func (a *App) NewRunner(policy string, maxTurns int) (*simulation.Runner, error) {
	if policy == "" {
		policy = a.Config.Simulation.Policy
	}
	if maxTurns == 0 {
		maxTurns = a.Config.Simulation.MaxTurns
	}

	p, err := simulation.NewPolicy(policy, a.Catalog)
	if err != nil {
		return nil, err
	}
	src, err := a.NewSource()
	if err != nil {
		return nil, fmt.Errorf("failed to create client source: %w", err)
	}

	return &simulation.Runner{
		Engine:   a.Engine,
		Source:   src,
		Policy:   p,
		MaxTurns: maxTurns,
		Seed:     a.Seed,
		Logger:   a.Logger.WithComponent("simulation"),
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.Logger != nil {
		// Sync on stderr returns EINVAL on some platforms
		_ = a.Logger.Close()
	}
	return nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}
