// Package registry manages connector registration and lookup.
//
// Connector packages register a factory for their source type from init(),
// keyed by the same enumeration the API layer validates against; the sync
// orchestrator dispatches through a Registry instead of switching on type
// strings.
package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
	"github.com/ecochain/ecochain/pkg/models"
)

// Factory creates a connector instance. Connectors are stateless; each sync
// opens and closes its own connection, so instances are cheap.
type Factory func() core.Connector

// Registry is a concurrency-safe factory table keyed by source type.
type Registry struct {
	mu        sync.RWMutex
	factories map[models.SourceType]Factory
	logger    *zap.Logger
}

// Global registry instance, populated by connector package init functions.
var globalRegistry = NewRegistry()

// NewRegistry creates an empty connector registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[models.SourceType]Factory),
		logger:    logger.With(zap.String("component", "connector_registry")),
	}
}

// Register adds a connector factory for a source type.
func (r *Registry) Register(typ models.SourceType, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[typ]; exists {
		return ecoerrors.Newf(ecoerrors.ErrorTypeConfig, "connector %s already registered", typ)
	}

	r.factories[typ] = factory
	r.logger.Info("connector registered", zap.String("type", string(typ)))
	return nil
}

// Get creates a connector instance for a source type.
func (r *Registry) Get(typ models.SourceType) (core.Connector, error) {
	r.mu.RLock()
	factory, exists := r.factories[typ]
	r.mu.RUnlock()

	if !exists {
		return nil, ecoerrors.Newf(ecoerrors.ErrorTypeConfig, "no connector registered for type %q", typ)
	}
	return factory(), nil
}

// Has reports whether a connector is registered for a source type.
func (r *Registry) Has(typ models.SourceType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[typ]
	return exists
}

// Types returns the registered source types, sorted.
func (r *Registry) Types() []models.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]models.SourceType, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Register adds a connector factory to the global registry.
func Register(typ models.SourceType, factory Factory) error {
	return globalRegistry.Register(typ, factory)
}

// MustRegister registers a connector factory and panics on conflict.
// Intended for connector package init functions.
func MustRegister(typ models.SourceType, factory Factory) {
	if err := Register(typ, factory); err != nil {
		panic(err)
	}
}

// Default returns the global registry instance.
func Default() *Registry {
	return globalRegistry
}
