package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/soyeahso/meshbuilder/internal/config"
	"github.com/soyeahso/meshbuilder/internal/hooks"
	"github.com/soyeahso/meshbuilder/internal/llm"
	"github.com/soyeahso/meshbuilder/internal/service"
	"github.com/soyeahso/meshbuilder/internal/store"
)

// app holds the components shared by the commands that talk to providers.
type app struct {
	cfg      config.Config
	registry *llm.Registry
	cache    store.Cache
	hooks    *hooks.Manager
	svc      *service.Service
}

// newApp wires providers, the cache, and the hook manager from the loaded
// config.
func newApp() (*app, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}

	hm := hooks.NewManager(log)
	hm.OnAll(hooks.AllEvents, "log", func(_ context.Context, p hooks.Payload) error {
		log.Debug().Str("event", p.Event).Interface("data", p.Data).Msg("hook")
		return nil
	})

	registry := llm.NewRegistryFromConfig(cfg.Providers, log)
	cache, err := store.OpenCache(cfg.Cache, paths.CacheDB(), log)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	return &app{
		cfg:      cfg,
		registry: registry,
		cache:    cache,
		hooks:    hm,
		svc:      service.New(registry, cache, hm, log),
	}, nil
}

// Close waits for async hooks and closes the cache.
func (a *app) Close() error {
	a.hooks.Wait()
	return a.cache.Close()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
