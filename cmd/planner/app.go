package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	catalogclient "github.com/KirkDiggler/spell-planner/internal/clients/catalog"
	"github.com/KirkDiggler/spell-planner/internal/config"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/catalog"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/character"
	"github.com/KirkDiggler/spell-planner/internal/pkg/clock"
	"github.com/KirkDiggler/spell-planner/internal/pkg/idgen"
	"github.com/KirkDiggler/spell-planner/internal/redis"
	characterrepo "github.com/KirkDiggler/spell-planner/internal/repositories/character"
)

// app wires configuration into services
type app struct {
	cfg        *config.Config
	catalog    catalog.Service
	characters character.Service
	closers    []func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	a := &app{cfg: cfg}

	source, err := newSource(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	a.catalog, err = catalog.NewOrchestrator(&catalog.Config{
		Source:       source,
		Classes:      cfg.Catalog.Classes,
		FetchTimeout: cfg.Catalog.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}

	repo, err := a.newRepository()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.characters, err = character.NewOrchestrator(&character.Config{
		Repository:  repo,
		Catalog:     a.catalog,
		IDGenerator: idgen.NewUUID(idgen.CharacterPrefix),
		Clock:       clock.New(),
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create character service: %w", err)
	}

	return a, nil
}

func newSource(cfg config.CatalogConfig) (catalogclient.Source, error) {
	if cfg.BaseURL != "" {
		slog.Debug("using http catalog source", "base_url", cfg.BaseURL)
		return catalogclient.NewHTTP(&catalogclient.HTTPConfig{
			BaseURL:     cfg.BaseURL,
			HTTPTimeout: cfg.Timeout,
		})
	}
	slog.Debug("using directory catalog source", "dir", cfg.Dir)
	return catalogclient.NewDir(&catalogclient.DirConfig{Dir: cfg.Dir})
}

func (a *app) newRepository() (characterrepo.Repository, error) {
	store := a.cfg.Store
	switch store.Backend {
	case config.StoreRedis:
		client, err := redis.NewClient(a.cfg.Redis.Addr, &redis.Options{
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			UseTLS:   a.cfg.Redis.UseTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return characterrepo.NewRedis(&characterrepo.RedisConfig{Client: client, Key: store.Key})

	case config.StoreSQLite:
		db, err := characterrepo.OpenSQLite(store.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return characterrepo.NewSQLite(&characterrepo.SQLiteConfig{DB: db, Key: store.Key})

	default:
		slog.Warn("using in-memory character store, data is lost on exit")
		return characterrepo.NewMemory(clock.New()), nil
	}
}

// Close releases store connections
func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// withApp builds the app for a command and closes it afterwards
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
