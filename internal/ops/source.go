package ops

import (
	"fmt"

	"main/internal/feed"
	"main/internal/schema"
	"main/pkg/conn"
)

// BuildSource turns the feed section into a usable tick source. The
// returned closer releases the database connection for the postgres
// type and is a no-op otherwise.
func BuildSource(loaded Loaded) (feed.Source, func() error, error) {
	noop := func() error { return nil }
	cfg := loaded.Feed

	switch cfg.Type {
	case "csv":
		return feed.CSVSource{Path: cfg.Path}, noop, nil

	case "jsonl":
		return feed.JSONLSource{Path: cfg.Path}, noop, nil

	case "wal":
		return feed.WALSource{Dir: cfg.Dir, FilePrefix: cfg.FilePrefix}, noop, nil

	case "synthetic":
		basePrice, err := parsePrice(cfg.BasePrice, 0)
		if err != nil {
			return nil, noop, fmt.Errorf("feed.basePrice: %w", err)
		}
		var symbolID schema.SymbolID
		if cfg.Symbol != "" {
			id, ok := loaded.Registry.SymbolIDByName(cfg.Symbol)
			if !ok {
				return nil, noop, fmt.Errorf("feed symbol not found: %s", cfg.Symbol)
			}
			symbolID = id
		}
		return feed.SyntheticSource{Config: feed.SyntheticConfig{
			SymbolID:  symbolID,
			Count:     cfg.Count,
			Seed:      cfg.Seed,
			BasePrice: basePrice,
			StartNano: loaded.Backtest.StartNano,
		}}, noop, nil

	case "postgres":
		client, err := conn.New(conn.Option{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		})
		if err != nil {
			return nil, noop, err
		}
		symbolID, ok := loaded.Registry.SymbolIDByName(cfg.Symbol)
		if !ok {
			_ = client.Close()
			return nil, noop, fmt.Errorf("feed symbol not found: %s", cfg.Symbol)
		}
		source := feed.DBSource{
			Store:     feed.NewStore(client),
			SymbolID:  symbolID,
			StartNano: loaded.Backtest.StartNano,
			EndNano:   loaded.Backtest.EndNano,
		}
		return source, client.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown feed type: %s", cfg.Type)
	}
}
