// Package di assembles the application. Each concept gets its own
// decorated store over the shared backend; the orchestrator is the only
// object callers need out of the container.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mosaic-backend/application/orchestrator"
	"mosaic-backend/application/workflows"
	"mosaic-backend/domain/chat"
	"mosaic-backend/domain/collab"
	"mosaic-backend/domain/friend"
	"mosaic-backend/domain/gallery"
	"mosaic-backend/domain/post"
	"mosaic-backend/domain/trash"
	"mosaic-backend/domain/user"
	"mosaic-backend/domain/websession"
	"mosaic-backend/infrastructure/config"
	"mosaic-backend/infrastructure/persistence/decorators"
	dynamostore "mosaic-backend/infrastructure/persistence/dynamodb"
	"mosaic-backend/infrastructure/persistence/memory"
	"mosaic-backend/infrastructure/persistence/store"
	"mosaic-backend/pkg/auth"
	"mosaic-backend/pkg/observability"
)

// ProvideLogLevel parses the configured level into the handle shared by
// the logger and the overrides watcher.
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return level, nil
}

// ProvideLogger builds the process logger on the shared atomic level.
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

// ProvideOverridesWatcher starts the overrides watcher when a file is
// configured, returning nil otherwise. The initial overrides are applied
// before the watcher is handed out, and every reload re-applies them to
// the config and retunes the log level.
func ProvideOverridesWatcher(cfg *config.Config, level zap.AtomicLevel, logger *zap.Logger) (*config.Watcher, error) {
	if cfg.OverridesFile == "" {
		return nil, nil
	}

	w, err := config.NewWatcher(cfg.OverridesFile, logger)
	if err != nil {
		return nil, err
	}

	apply := func(o *config.Overrides) {
		o.ApplyTo(cfg)
		if o.LogLevel != "" {
			if parsed, err := zapcore.ParseLevel(o.LogLevel); err == nil {
				level.SetLevel(parsed)
			} else {
				logger.Warn("ignoring invalid log level override", zap.String("logLevel", o.LogLevel))
			}
		}
	}
	apply(w.Current())
	w.OnChange(apply)
	return w, nil
}

// ProvideAWSConfig loads AWS configuration for the configured region.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideRegistry creates the metrics registry.
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics registers the application collectors.
func ProvideMetrics(reg *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(reg)
}

// ProvidePasswordHasher creates the credential hasher.
func ProvidePasswordHasher() auth.PasswordHasher {
	return auth.NewArgon2Hasher()
}

// ProvideRunner creates the workflow runner.
func ProvideRunner(logger *zap.Logger, metrics *observability.Metrics) *workflows.Runner {
	return workflows.NewRunner(logger, metrics)
}

// storeDeps carries everything a decorated store needs.
type storeDeps struct {
	cfg     *config.Config
	client  *awsdynamodb.Client
	metrics *observability.Metrics
	logger  *zap.Logger
}

// ProvideStoreDeps bundles the shared store dependencies. Taking the
// overrides watcher sequences store construction after the initial
// overrides have been merged, so breaker overrides reach the stores.
func ProvideStoreDeps(cfg *config.Config, client *awsdynamodb.Client, metrics *observability.Metrics, logger *zap.Logger, _ *config.Watcher) storeDeps {
	return storeDeps{cfg: cfg, client: client, metrics: metrics, logger: logger}
}

// newStore builds the configured backend for one collection and wraps it
// with the circuit breaker and metrics decorators.
func newStore[T store.Document](deps storeDeps, collection string) store.Store[T] {
	var base store.Store[T]
	switch deps.cfg.StoreBackend {
	case "memory":
		base = memory.NewStore[T](collection, deps.logger)
	default:
		base = dynamostore.NewStore[T](deps.client, deps.cfg.DynamoDBTable, collection, deps.logger)
	}

	breakerCfg := breakerConfig(deps.cfg.Breaker, collection)
	guarded := decorators.WithCircuitBreaker(base, breakerCfg, deps.logger)
	return decorators.WithMetrics[T](guarded, collection, deps.metrics)
}

func breakerConfig(cfg config.BreakerConfig, name string) decorators.CircuitBreakerConfig {
	out := decorators.DefaultCircuitBreakerConfig(name)
	if cfg.MaxRequests > 0 {
		out.MaxRequests = cfg.MaxRequests
	}
	if cfg.IntervalSeconds > 0 {
		out.Interval = time.Duration(cfg.IntervalSeconds) * time.Second
	}
	if cfg.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.FailureThreshold > 0 {
		out.FailureThreshold = cfg.FailureThreshold
	}
	if cfg.MinRequests > 0 {
		out.MinRequests = cfg.MinRequests
	}
	return out
}

// ProvideUserConcept wires the user module.
func ProvideUserConcept(deps storeDeps, hasher auth.PasswordHasher) *user.Concept {
	return user.NewConcept(newStore[*user.User](deps, "users"), hasher, deps.logger)
}

// ProvideWebSessionConcept wires the web session module.
func ProvideWebSessionConcept(deps storeDeps) *websession.Concept {
	return websession.NewConcept(newStore[*websession.Session](deps, "websessions"), deps.logger)
}

// ProvideFriendConcept wires the friend module.
func ProvideFriendConcept(deps storeDeps) *friend.Concept {
	return friend.NewConcept(
		newStore[*friend.Request](deps, "friend_requests"),
		newStore[*friend.Friendship](deps, "friendships"),
		deps.logger,
	)
}

// ProvideChatConcept wires the chat module.
func ProvideChatConcept(deps storeDeps) *chat.Concept {
	return chat.NewConcept(
		newStore[*chat.Session](deps, "chats"),
		newStore[*chat.Message](deps, "chat_messages"),
		deps.logger,
	)
}

// ProvideCollabConcept wires the collaborative session module.
func ProvideCollabConcept(deps storeDeps) *collab.Concept {
	return collab.NewConcept(
		newStore[*collab.Session](deps, "collab_sessions"),
		newStore[*collab.Entry](deps, "collab_entries"),
		deps.logger,
	)
}

// ProvideGalleryConcept wires the gallery module.
func ProvideGalleryConcept(deps storeDeps) *gallery.Concept {
	return gallery.NewConcept(newStore[*gallery.Item](deps, "gallery_items"), deps.logger)
}

// ProvideTrashConcept wires the trash module.
func ProvideTrashConcept(deps storeDeps) *trash.Concept {
	return trash.NewConcept(newStore[*trash.Item](deps, "trash_items"), deps.logger)
}

// ProvidePostConcept wires the post module.
func ProvidePostConcept(deps storeDeps) *post.Concept {
	return post.NewConcept(newStore[*post.Post](deps, "posts"), deps.logger)
}

// ProvideOrchestrator assembles the external operation surface.
func ProvideOrchestrator(
	users *user.Concept,
	sessions *websession.Concept,
	friends *friend.Concept,
	chats *chat.Concept,
	collabs *collab.Concept,
	galleries *gallery.Concept,
	trashcan *trash.Concept,
	posts *post.Concept,
	runner *workflows.Runner,
	logger *zap.Logger,
) *orchestrator.Orchestrator {
	return orchestrator.NewOrchestrator(users, sessions, friends, chats, collabs, galleries, trashcan, posts, runner, logger)
}
