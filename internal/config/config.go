package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. AUTOSHOP_SHOP_INITIAL_BALANCE
const EnvPrefix = "AUTOSHOP_"

type Config struct {
	// Economic constants of the shop
	Shop ShopConfig `yaml:"shop"`

	// Parts the shop knows about
	Catalog []PartConfig `yaml:"catalog"`

	// Stock on hand when the shop opens
	Stock []StockConfig `yaml:"stock"`

	// Pools the random client generator draws from
	Clients ClientsConfig `yaml:"clients"`

	// Headless simulation settings
	Simulation SimulationConfig `yaml:"simulation"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

type ShopConfig struct {
	InitialBalance           decimal.Decimal `yaml:"initial_balance" env:"INITIAL_BALANCE"`
	LaborMultiplier          decimal.Decimal `yaml:"labor_multiplier" env:"LABOR_MULTIPLIER"`                     // repair price = part price * multiplier
	FailurePenaltyMultiplier decimal.Decimal `yaml:"failure_penalty_multiplier" env:"FAILURE_PENALTY_MULTIPLIER"` // penalty = repair price * multiplier
	RefusalPenalty           decimal.Decimal `yaml:"refusal_penalty" env:"REFUSAL_PENALTY"`
	DeliveryDelay            int             `yaml:"delivery_delay" env:"DELIVERY_DELAY"` // processed cars until a purchase arrives
}

type PartConfig struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"`
	Description string          `yaml:"description,omitempty"`
	Price       decimal.Decimal `yaml:"price"` // supplier price and base of the repair price
}

type StockConfig struct {
	Part     string `yaml:"part"`
	Quantity int    `yaml:"quantity"`
}

type ClientsConfig struct {
	FirstNames []string        `yaml:"first_names"`
	LastNames  []string        `yaml:"last_names"`
	Vehicles   []VehicleConfig `yaml:"vehicles"`
	MinYear    int             `yaml:"min_year"`
}

type VehicleConfig struct {
	Brand  string   `yaml:"brand"`
	Models []string `yaml:"models"`
}

type SimulationConfig struct {
	Seed     int64  `yaml:"seed" env:"SEED"` // 0 picks a random seed
	MaxTurns int    `yaml:"max_turns" env:"MAX_TURNS"`
	Policy   string `yaml:"policy" env:"POLICY"` // greedy or always
}

type LoggingConfig struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
	File        string `yaml:"file" env:"FILE"` // used by the TUI, which owns the terminal
}

// DefaultConfigPath returns ~/.config/autoshop/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "autoshop")
	}
	return filepath.Join(homeDir, ".config", "autoshop")
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// DefaultConfig returns a playable shop
func DefaultConfig() *Config {
	return &Config{
		Shop: ShopConfig{
			InitialBalance:           d(20000),
			LaborMultiplier:          decimal.RequireFromString("1.5"),
			FailurePenaltyMultiplier: d(2),
			RefusalPenalty:           d(500),
			DeliveryDelay:            0,
		},
		Catalog: []PartConfig{
			{Name: "Brake Pads", Type: "brakes", Price: d(2500)},
			{Name: "Brake Disc", Type: "brakes", Price: d(4000)},
			{Name: "Oil Filter", Type: "filters", Price: d(400)},
			{Name: "Air Filter", Type: "filters", Price: d(600)},
			{Name: "Battery", Type: "battery", Price: d(6000)},
			{Name: "Spark Plug", Type: "engine", Price: d(300)},
			{Name: "Timing Belt", Type: "engine", Price: d(3500)},
			{Name: "Clutch Kit", Type: "transmission", Price: d(9000)},
			{Name: "Shock Absorber", Type: "suspension", Price: d(4200)},
			{Name: "Tire", Type: "tires", Price: d(5000)},
			{Name: "Alternator", Type: "electrical", Price: d(12000)},
		},
		Stock: []StockConfig{
			{Part: "Brake Pads", Quantity: 2},
			{Part: "Oil Filter", Quantity: 4},
			{Part: "Spark Plug", Quantity: 4},
			{Part: "Battery", Quantity: 1},
			{Part: "Tire", Quantity: 2},
		},
		Clients: ClientsConfig{
			FirstNames: []string{"Ivan", "Anna", "Sergey", "Olga", "Dmitry", "Elena", "Pavel", "Maria", "Alexey", "Natalia"},
			LastNames:  []string{"Petrov", "Ivanova", "Smirnov", "Kuznetsova", "Popov", "Sokolova", "Volkov", "Morozova"},
			Vehicles: []VehicleConfig{
				{Brand: "Lada", Models: []string{"Granta", "Vesta", "Niva"}},
				{Brand: "Kia", Models: []string{"Rio", "Ceed", "Sportage"}},
				{Brand: "Hyundai", Models: []string{"Solaris", "Creta"}},
				{Brand: "Toyota", Models: []string{"Camry", "Corolla", "RAV4"}},
				{Brand: "Volkswagen", Models: []string{"Polo", "Tiguan"}},
			},
			MinYear: 1995,
		},
		Simulation: SimulationConfig{
			Seed:     0,
			MaxTurns: 50,
			Policy:   "greedy",
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: true,
			File:        filepath.Join(configDir(), "autoshop.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist.
// Values from a .env file in the working directory and AUTOSHOP_* environment
// variables override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// keep defaults
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

func applyEnv(cfg *Config) error {
	// A missing .env is normal; existing variables win over the file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	sections := []struct {
		prefix string
		target any
	}{
		{"SHOP_", &cfg.Shop},
		{"SIM_", &cfg.Simulation},
		{"LOG_", &cfg.Logging},
	}
	for _, s := range sections {
		if err := env.ParseWithOptions(s.target, env.Options{Prefix: EnvPrefix + s.prefix}); err != nil {
			return fmt.Errorf("parse environment: %w", err)
		}
	}
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the directory of the log file
func (c *Config) EnsureDirectories() error {
	if c.Logging.File == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.Logging.File), 0755)
}

// Validate checks the economic constants and that stock refers to catalog parts
func (c *Config) Validate() error {
	one := decimal.NewFromInt(1)
	if c.Shop.InitialBalance.IsNegative() {
		return errors.New("shop.initial_balance cannot be negative")
	}
	if c.Shop.LaborMultiplier.LessThan(one) {
		return errors.New("shop.labor_multiplier must be at least 1")
	}
	if c.Shop.FailurePenaltyMultiplier.IsNegative() {
		return errors.New("shop.failure_penalty_multiplier cannot be negative")
	}
	if c.Shop.RefusalPenalty.IsNegative() {
		return errors.New("shop.refusal_penalty cannot be negative")
	}
	if c.Shop.DeliveryDelay < 0 {
		return errors.New("shop.delivery_delay cannot be negative")
	}

	if len(c.Catalog) == 0 {
		return errors.New("catalog is empty")
	}
	names := make(map[string]bool, len(c.Catalog))
	for _, p := range c.Catalog {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			return errors.New("catalog entry without a name")
		}
		if names[key] {
			return fmt.Errorf("duplicate catalog entry %q", p.Name)
		}
		names[key] = true
	}
	for _, s := range c.Stock {
		if !names[strings.ToLower(strings.TrimSpace(s.Part))] {
			return fmt.Errorf("stock refers to unknown part %q", s.Part)
		}
		if s.Quantity < 0 {
			return fmt.Errorf("stock of %q cannot be negative", s.Part)
		}
	}

	if len(c.Clients.FirstNames) == 0 || len(c.Clients.Vehicles) == 0 {
		return errors.New("clients need at least one first name and one vehicle")
	}
	for _, v := range c.Clients.Vehicles {
		if strings.TrimSpace(v.Brand) == "" || len(v.Models) == 0 {
			return fmt.Errorf("vehicle brand %q needs at least one model", v.Brand)
		}
	}

	switch c.Simulation.Policy {
	case "greedy", "always":
	default:
		return fmt.Errorf("unknown simulation policy %q", c.Simulation.Policy)
	}
	if c.Simulation.MaxTurns < 0 {
		return errors.New("simulation.max_turns cannot be negative")
	}
	return nil
}
