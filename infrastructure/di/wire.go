//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"mosaic-backend/application/orchestrator"
	"mosaic-backend/application/workflows"
	"mosaic-backend/infrastructure/config"
	"mosaic-backend/pkg/observability"
)

// Container holds the assembled application.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Registry     *prometheus.Registry
	Metrics      *observability.Metrics
	Overrides    *config.Watcher
	Runner       *workflows.Runner
	Orchestrator *orchestrator.Orchestrator
}

// SuperSet is the main provider set.
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideOverridesWatcher,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideRegistry,
	ProvideMetrics,
	ProvidePasswordHasher,
	ProvideRunner,
	ProvideStoreDeps,
	ProvideUserConcept,
	ProvideWebSessionConcept,
	ProvideFriendConcept,
	ProvideChatConcept,
	ProvideCollabConcept,
	ProvideGalleryConcept,
	ProvideTrashConcept,
	ProvidePostConcept,
	ProvideOrchestrator,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer builds the full dependency graph.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
