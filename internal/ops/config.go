package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"main/internal/backtest"
	"main/internal/recorder"
	"main/internal/schema"
	"main/internal/strategy"
)

// FileConfig mirrors the JSON config layout. Price-like fields arrive
// as decimal strings so config files never encode scaled integers.
type FileConfig struct {
	Registry RegistryConfig `json:"registry"`
	Backtest BacktestConfig `json:"backtest"`
	Strategy StrategyConfig `json:"strategy"`
	Feed     FeedConfig     `json:"feed"`
	Journal  JournalConfig  `json:"journal"`
}

// RegistryConfig defines venue and symbol mappings.
type RegistryConfig struct {
	Venues  []VenueConfig  `json:"venues"`
	Symbols []SymbolConfig `json:"symbols"`
}

// VenueConfig describes a venue entry.
type VenueConfig struct {
	Name string `json:"name"`
}

// SymbolConfig describes a symbol entry.
type SymbolConfig struct {
	Name       string `json:"name"`
	Venue      string `json:"venue"`
	TickSize   string `json:"tickSize"`
	Multiplier int64  `json:"multiplier"`
}

// BacktestConfig describes one run.
type BacktestConfig struct {
	StartNano       int64          `json:"startNano"`
	EndNano         int64          `json:"endNano"`
	InitialCapital  string         `json:"initialCapital"`
	Costs           CostConfig     `json:"costs"`
	Slippage        SlippageConfig `json:"slippage"`
	FeedLatencyNs   int64          `json:"feedLatencyNs"`
	OrderLatencyNs  int64          `json:"orderLatencyNs"`
	LatencySeed     int64          `json:"latencySeed"`
	MaxPositionSize int64          `json:"maxPositionSize"`
	BatchSize       int            `json:"batchSize"`
	Validation      *bool          `json:"validation"`
	DetailedLogging bool           `json:"detailedLogging"`
}

// CostConfig prices one executed contract.
type CostConfig struct {
	PerContract string `json:"perContract"`
	Exchange    string `json:"exchange"`
	Regulatory  string `json:"regulatory"`
	Minimum     string `json:"minimum"`
}

// SlippageConfig parameterizes the fill price adjustment.
type SlippageConfig struct {
	Fixed        string  `json:"fixed"`
	VolumeCoef   float64 `json:"volumeCoef"`
	MarketImpact float64 `json:"marketImpact"`
}

// StrategyConfig tunes the imbalance strategy.
type StrategyConfig struct {
	Threshold   float64 `json:"threshold"`
	MinSpread   string  `json:"minSpread"`
	DepthLevels int     `json:"depthLevels"`
	TradeSize   int64   `json:"tradeSize"`
	StopLoss    string  `json:"stopLoss"`
	TakeProfit  string  `json:"takeProfit"`
}

// FeedConfig selects the tick source.
type FeedConfig struct {
	Type       string          `json:"type"`
	Path       string          `json:"path"`
	Dir        string          `json:"dir"`
	FilePrefix string          `json:"filePrefix"`
	Symbol     string          `json:"symbol"`
	Postgres   *PostgresConfig `json:"postgres"`

	// synthetic type only
	Count     int    `json:"count"`
	Seed      int64  `json:"seed"`
	BasePrice string `json:"basePrice"`
}

// PostgresConfig describes the tick database connection.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// JournalConfig describes where converted ticks are journaled.
type JournalConfig struct {
	Dir             string `json:"dir"`
	SegmentMaxBytes int64  `json:"segmentMaxBytes"`
	FilePrefix      string `json:"filePrefix"`
	SyncOnRotate    bool   `json:"syncOnRotate"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Registry *schema.Registry
	Backtest backtest.Config
	Strategy strategy.ImbalanceConfig
	Feed     FeedConfig
	Journal  recorder.Config
}

// Load reads a JSON config file and resolves every section.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}

	registry, err := buildRegistry(cfg.Registry)
	if err != nil {
		return Loaded{}, err
	}
	btCfg, err := resolveBacktest(cfg.Backtest)
	if err != nil {
		return Loaded{}, err
	}
	stratCfg, err := resolveStrategy(cfg.Strategy)
	if err != nil {
		return Loaded{}, err
	}
	if err := validateFeed(cfg.Feed, registry); err != nil {
		return Loaded{}, err
	}

	return Loaded{
		Registry: registry,
		Backtest: btCfg,
		Strategy: stratCfg,
		Feed:     cfg.Feed,
		Journal: recorder.Config{
			Dir:             cfg.Journal.Dir,
			SegmentMaxBytes: cfg.Journal.SegmentMaxBytes,
			FilePrefix:      cfg.Journal.FilePrefix,
			SyncOnRotate:    cfg.Journal.SyncOnRotate,
		},
	}, nil
}

// LoadRegistry reads a JSON config file and only builds the registry.
func LoadRegistry(path string) (*schema.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return buildRegistry(cfg.Registry)
}

func buildRegistry(cfg RegistryConfig) (*schema.Registry, error) {
	reg := schema.NewRegistry()
	for _, venue := range cfg.Venues {
		if _, err := reg.AddVenue(venue.Name); err != nil {
			return nil, err
		}
	}
	for _, sym := range cfg.Symbols {
		venueID, ok := reg.VenueIDByName(sym.Venue)
		if !ok {
			return nil, fmt.Errorf("venue not found: %s", sym.Venue)
		}
		tickSize, err := parsePrice(sym.TickSize, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid tick size for %s: %w", sym.Name, err)
		}
		multiplier := sym.Multiplier
		if multiplier == 0 {
			multiplier = 1
		}
		if _, err := reg.AddSymbol(sym.Name, venueID, tickSize, multiplier); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func resolveBacktest(cfg BacktestConfig) (backtest.Config, error) {
	out := backtest.DefaultConfig()
	out.StartNano = cfg.StartNano
	if cfg.EndNano > 0 {
		out.EndNano = cfg.EndNano
	}

	capital, err := parsePrice(cfg.InitialCapital, schema.Price(out.InitialCapital))
	if err != nil {
		return out, fmt.Errorf("initialCapital: %w", err)
	}
	out.InitialCapital = schema.Notional(capital)

	costs := &out.TransactionCosts
	if costs.CommissionPerContract, err = parseFee(cfg.Costs.PerContract, costs.CommissionPerContract); err != nil {
		return out, fmt.Errorf("costs.perContract: %w", err)
	}
	if costs.ExchangeFee, err = parseFee(cfg.Costs.Exchange, costs.ExchangeFee); err != nil {
		return out, fmt.Errorf("costs.exchange: %w", err)
	}
	if costs.RegulatoryFee, err = parseFee(cfg.Costs.Regulatory, costs.RegulatoryFee); err != nil {
		return out, fmt.Errorf("costs.regulatory: %w", err)
	}
	if costs.MinimumFee, err = parseFee(cfg.Costs.Minimum, costs.MinimumFee); err != nil {
		return out, fmt.Errorf("costs.minimum: %w", err)
	}

	if out.Slippage.Fixed, err = parsePrice(cfg.Slippage.Fixed, out.Slippage.Fixed); err != nil {
		return out, fmt.Errorf("slippage.fixed: %w", err)
	}
	if cfg.Slippage.VolumeCoef > 0 {
		out.Slippage.VolumeCoef = cfg.Slippage.VolumeCoef
	}
	if cfg.Slippage.MarketImpact > 0 {
		out.Slippage.MarketImpact = cfg.Slippage.MarketImpact
	}

	if cfg.FeedLatencyNs > 0 {
		out.FeedLatencyNs = cfg.FeedLatencyNs
	}
	if cfg.OrderLatencyNs > 0 {
		out.OrderLatencyNs = cfg.OrderLatencyNs
	}
	out.LatencySeed = cfg.LatencySeed
	if cfg.MaxPositionSize > 0 {
		out.MaxPositionSize = schema.Quantity(cfg.MaxPositionSize)
	}
	if cfg.BatchSize > 0 {
		out.BatchSize = cfg.BatchSize
	}
	if cfg.Validation != nil {
		out.Validation = *cfg.Validation
	}
	out.DetailedLogging = cfg.DetailedLogging

	return out, out.Validate()
}

func resolveStrategy(cfg StrategyConfig) (strategy.ImbalanceConfig, error) {
	out := strategy.ImbalanceConfig{
		Threshold:   cfg.Threshold,
		DepthLevels: cfg.DepthLevels,
		TradeSize:   schema.Quantity(cfg.TradeSize),
	}
	var err error
	if out.MinSpread, err = parsePrice(cfg.MinSpread, 0); err != nil {
		return out, fmt.Errorf("strategy.minSpread: %w", err)
	}
	if out.StopLoss, err = parsePrice(cfg.StopLoss, 0); err != nil {
		return out, fmt.Errorf("strategy.stopLoss: %w", err)
	}
	if out.TakeProfit, err = parsePrice(cfg.TakeProfit, 0); err != nil {
		return out, fmt.Errorf("strategy.takeProfit: %w", err)
	}
	return out, nil
}

func validateFeed(cfg FeedConfig, reg *schema.Registry) error {
	switch cfg.Type {
	case "csv", "jsonl":
		if cfg.Path == "" {
			return fmt.Errorf("feed.path is empty for type %s", cfg.Type)
		}
	case "wal":
		if cfg.Dir == "" {
			return fmt.Errorf("feed.dir is empty for type wal")
		}
	case "postgres":
		if cfg.Postgres == nil {
			return fmt.Errorf("feed.postgres is missing")
		}
		if cfg.Symbol == "" {
			return fmt.Errorf("feed.symbol is empty for type postgres")
		}
		if _, ok := reg.SymbolIDByName(cfg.Symbol); !ok {
			return fmt.Errorf("feed symbol not found: %s", cfg.Symbol)
		}
	case "synthetic":
		if cfg.Count <= 0 {
			return fmt.Errorf("feed.count must be > 0 for type synthetic")
		}
	case "":
		return fmt.Errorf("feed.type is empty")
	default:
		return fmt.Errorf("unknown feed type: %s", cfg.Type)
	}
	return nil
}

func parsePrice(s string, fallback schema.Price) (schema.Price, error) {
	if s == "" {
		return fallback, nil
	}
	return schema.ParsePrice(s)
}

func parseFee(s string, fallback schema.Fee) (schema.Fee, error) {
	p, err := parsePrice(s, schema.Price(fallback))
	return schema.Fee(p), err
}
