package di

import (
	"go.uber.org/zap"

	"explorer-backend/application/explorer"
	querybus "explorer-backend/application/queries/bus"
	"explorer-backend/infrastructure/config"
	"explorer-backend/infrastructure/persistence/memory"
	"explorer-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *memory.UniverseStore
	Engine   *explorer.Engine
	Dynamic  *config.Dynamic
	Runner   *explorer.Runner
	QueryBus *querybus.QueryBus
	Metrics  *observability.Collector
}
