// Package di provides dependency injection configuration for the inventory daemon.
package di

import (
	"github.com/samber/do/v2"

	"github.com/microsdeck/microsdeck-server/internal/config"
	"github.com/microsdeck/microsdeck-server/internal/di/providers"
	"github.com/microsdeck/microsdeck-server/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Device events and reconciliation
	do.Provide(injector, providers.ProvideMonitor)
	do.Provide(injector, providers.ProvideReconcileLoop)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.MonitorHandle](injector)
	_ = do.MustInvoke[*providers.ReconcileLoopHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
