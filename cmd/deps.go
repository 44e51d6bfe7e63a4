package cmd

import (
	"fmt"

	"github.com/abhisek/acompana/internal/config"
	"github.com/abhisek/acompana/internal/guest"
	"github.com/abhisek/acompana/internal/logger"
	"github.com/abhisek/acompana/internal/pgstore"
	"github.com/abhisek/acompana/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.Backend = b
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.UserID = u
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openRepo opens the configured questionnaire store. The returned function
// closes it.
func openRepo(cmd *cobra.Command, cfg config.Config) (store.AdminRepository, func() error, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pg, err := pgstore.Open(cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		return pg, pg.Close, nil
	default:
		dbPath, err := resolveDBPath(cmd, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		return st, st.Close, nil
	}
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(logger.Options{
		Mode:     cfg.Log.Mode,
		Level:    cfg.Log.Level,
		Redact:   cfg.Log.Redact,
		HashSalt: cfg.Log.HashSalt,
	})
}

// openGuest returns the store for names captured before sign-up.
func openGuest(cfg config.Config) (guest.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Guest.Backend {
	case config.GuestNone:
		return guest.Discard{}, noop, nil
	case config.GuestRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Guest.RedisAddr,
			Password: cfg.Guest.RedisPassword,
			DB:       cfg.Guest.RedisDB,
		})
		return guest.NewRedisStore(client, cfg.UserID, cfg.Guest.TTL), client.Close, nil
	default:
		dir := cfg.Guest.Dir
		if dir == "" {
			d, err := store.DataHome()
			if err != nil {
				return nil, nil, err
			}
			dir = d
		}
		return guest.NewFileStore(dir), noop, nil
	}
}
