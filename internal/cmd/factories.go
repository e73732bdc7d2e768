package cmd

import (
	"relay/internal/adapters/storage"
	"relay/internal/config"
	"relay/internal/services"
)

// Container holds all dependencies for the application
type Container struct {
	Claims   *services.Claims
	Registry *services.Registry
	Router   *services.Router
	Sweeper  *services.Sweeper
	Topology *services.Topology

	// Internal - for cleanup only
	store *storage.SQLiteStore
}

// NewContainer creates a new Container with all dependencies wired
func NewContainer(settings *config.Settings) (*Container, error) {
	store, err := storage.NewSQLiteStore(settings.ResolvedDBPath())
	if err != nil {
		return nil, err
	}

	registry := services.NewRegistry(store)
	topology := services.NewTopology(store)
	claims := services.NewClaims(store)
	router := services.NewRouter(registry, topology, claims, store, store)
	sweeper := services.NewSweeper(claims, settings.IdleAfter(), settings.ReleaseAfter())

	return &Container{
		Claims:   claims,
		Registry: registry,
		Router:   router,
		Sweeper:  sweeper,
		Topology: topology,
		store:    store,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
