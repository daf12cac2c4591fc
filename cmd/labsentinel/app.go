package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/labsentinel/audit"
	"github.com/c360studio/labsentinel/cache"
	"github.com/c360studio/labsentinel/config"
	"github.com/c360studio/labsentinel/inference"
	"github.com/c360studio/labsentinel/llm"
	"github.com/c360studio/labsentinel/model"
	"github.com/c360studio/labsentinel/protocol"
)

// App wires the cache backend, model registry, inference client, and
// audit pipeline together for the CLI.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	natsConn *nats.Conn
	store    cache.Store

	registry  *model.Registry
	metrics   *prometheus.Registry
	pipeline  *audit.Pipeline
	protocols *protocol.Store
}

// NewApp creates an application from validated configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}

	if err := app.startCache(ctx); err != nil {
		return nil, err
	}

	app.registry = buildRegistry(cfg.Inference)

	client := llm.NewClient(app.registry,
		llm.WithHTTPClient(&http.Client{Timeout: cfg.Inference.Timeout}),
		llm.WithRetryConfig(retryConfig(cfg.Inference)),
		llm.WithLogger(logger),
	)

	app.metrics = prometheus.NewRegistry()
	app.pipeline = audit.NewPipeline(
		inference.NewVision(client),
		inference.NewComparer(client),
		audit.WithCache(app.store),
		audit.WithPolicy(cfg.Scoring),
		audit.WithLogger(logger),
		audit.WithMetrics(audit.NewMetrics(app.metrics)),
	)

	protocols, err := protocol.NewStore(
		protocol.WithDir(cfg.Protocols.Dir),
		protocol.WithGlobs(cfg.Protocols.Globs),
		protocol.WithStoreLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("load protocols: %w", err)
	}
	app.protocols = protocols

	return app, nil
}

func (a *App) startCache(ctx context.Context) error {
	switch a.cfg.Cache.Backend {
	case "memory":
		a.store = cache.NewMemoryStore()
	case "file":
		a.store = cache.NewFileStore(a.cfg.Cache.Path, a.logger)
	case "nats":
		conn, err := nats.Connect(a.cfg.Cache.NATSURL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return fmt.Errorf("create JetStream context: %w", err)
		}
		store, err := cache.NewNATSStore(ctx, js, a.logger)
		if err != nil {
			conn.Close()
			return err
		}
		a.natsConn = conn
		a.store = store
	default:
		return fmt.Errorf("unknown cache backend: %s", a.cfg.Cache.Backend)
	}
	return nil
}

// Shutdown releases held connections.
func (a *App) Shutdown() {
	if a.natsConn != nil {
		a.natsConn.Drain()
		a.natsConn.Close()
	}
}

// CacheLen reports how many entries the active backend holds.
func (a *App) CacheLen(ctx context.Context) (int, error) {
	switch s := a.store.(type) {
	case *cache.MemoryStore:
		return s.Len(), nil
	case *cache.FileStore:
		return s.Len(ctx), nil
	case *cache.NATSStore:
		return s.Len(ctx)
	default:
		return 0, fmt.Errorf("cache backend does not report size")
	}
}

// CacheClear drops every cached inference result.
func (a *App) CacheClear(ctx context.Context) error {
	switch s := a.store.(type) {
	case *cache.MemoryStore:
		s.Clear()
		return nil
	case *cache.FileStore:
		return s.Clear(ctx)
	case *cache.NATSStore:
		return s.Clear(ctx)
	default:
		return fmt.Errorf("cache backend does not support clearing")
	}
}

// buildRegistry applies configuration overrides on top of the default
// hosted model chains.
func buildRegistry(cfg config.InferenceConfig) *model.Registry {
	registry := model.NewDefaultRegistry()

	if cfg.BaseURL != "" {
		for _, name := range registry.ListEndpoints() {
			ep := registry.GetEndpoint(name)
			ep.URL = cfg.BaseURL
			registry.SetEndpoint(name, ep)
		}
	}

	if len(cfg.VisionModels) > 0 {
		names := overrideEndpoints(registry, "vision", cfg.BaseURL, cfg.VisionModels, 2000)
		registry.SetCapability(model.CapabilityVision, &model.CapabilityConfig{
			Description: "Scientific description of lab imagery",
			Preferred:   names[:1],
			Fallback:    names[1:],
		})
	}

	if cfg.ReasoningModel != "" {
		names := overrideEndpoints(registry, "reasoning", cfg.BaseURL, []string{cfg.ReasoningModel}, 4000)
		registry.SetCapability(model.CapabilityReasoning, &model.CapabilityConfig{
			Description: "Structured comparison against protocol text",
			Preferred:   names,
		})
	}

	return registry
}

// overrideEndpoints registers configured model identifiers under
// generated endpoint names and returns those names in order.
func overrideEndpoints(registry *model.Registry, prefix, baseURL string, models []string, maxTokens int) []string {
	names := make([]string, 0, len(models))
	for i, m := range models {
		name := fmt.Sprintf("%s-override-%d", prefix, i)
		registry.SetEndpoint(name, &model.EndpointConfig{
			Provider:  "openai",
			URL:       baseURL,
			Model:     m,
			MaxTokens: maxTokens,
		})
		names = append(names, name)
	}
	return names
}

func retryConfig(cfg config.InferenceConfig) llm.RetryConfig {
	retry := llm.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	return retry
}
