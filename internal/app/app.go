// Package app wires the application together: configuration, logging,
// database pool and migrations, Genkit with the configured AI provider, and
// the stores and services the commands use.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurenia/aurenia/db"
	"github.com/aurenia/aurenia/internal/companion"
	"github.com/aurenia/aurenia/internal/completion"
	"github.com/aurenia/aurenia/internal/config"
	"github.com/aurenia/aurenia/internal/page"
	"github.com/aurenia/aurenia/internal/retrieval"
	"github.com/aurenia/aurenia/internal/study"
)

// App holds the initialized application components.
// Call Close to release resources.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Pool      *pgxpool.Pool
	Genkit    *genkit.Genkit
	Pages     *page.Store
	Retriever *retrieval.Store

	completer *completion.Client
}

// Completer returns the completion client as the engine's completer.
func (a *App) Completer() companion.Completer { return a.completer }

// Setup creates and initializes the application. On error everything
// already initialized is released.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			a.Close()
		}
	}()

	pool, err := providePool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	g, embedder, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	client, err := completion.New(completion.Config{
		Genkit:    g,
		ModelName: cfg.FullModelName(),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}
	a.completer = client

	a.Pages = page.NewStore(pool, logger)
	a.Retriever = retrieval.NewStore(pool, embedder, logger)
	return a, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// OpenDocument starts a session for reading one stored document.
func (a *App) OpenDocument(document string) *page.DocumentSession {
	return page.NewDocumentSession(a.Pages, page.NewViewport(), document)
}

// Engine builds a conversation engine bound to an open document session.
func (a *App) Engine(session *page.DocumentSession) (*companion.Engine, error) {
	return companion.New(companion.Config{
		Completer:          a.completer,
		Pages:              session,
		Retriever:          a.Retriever,
		Document:           session.Document(),
		Language:           a.Config.Language,
		UseDocumentContext: a.Config.UseDocumentContext,
		Logger:             a.Logger,
	})
}

// Study builds the study service bound to an open document session.
func (a *App) Study(session *page.DocumentSession) (*study.Service, error) {
	return study.New(study.Config{
		Completer: a.completer,
		Pages:     session,
		Language:  a.Config.Language,
		Logger:    a.Logger,
	})
}

// providePool runs migrations and opens the connection pool.
func providePool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// provideGenkit initializes Genkit for the configured provider and returns
// the instance together with the provider's embedder.
func provideGenkit(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*genkit.Genkit, ai.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit registration, no auto-discovery.
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		logger.Info("initialized Genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)
		return g, ollama.Embedder(g, cfg.OllamaHost), nil

	case config.ProviderOpenAI:
		g := genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, nil, errors.New("initializing genkit with openai provider")
		}
		logger.Info("initialized Genkit with openai provider", "model", cfg.ModelName)
		return g, genkit.LookupEmbedder(g, api.NewName("openai", cfg.EmbedderModel)), nil

	default: // gemini
		g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized Genkit with gemini provider", "model", cfg.ModelName)
		return g, googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel), nil
	}
}
