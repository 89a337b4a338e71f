// Package app provides application initialization and dependency injection.
//
// App is the container that wires the fusion engine together: tracing,
// the PostgreSQL pool, Genkit with the Google AI plugin, the vector
// store registry, and the engine itself. Construction is explicit and
// ordered; Close releases everything in reverse.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mimir-ai/mimir/internal/config"
	"github.com/mimir-ai/mimir/internal/rag"
	"github.com/mimir-ai/mimir/internal/vectorstore"
)

// App is the core application container.
type App struct {
	Config *config.Config

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool
	Registry *vectorstore.Registry
	Engine   *rag.Engine

	otelCleanup func()
}

// Close gracefully shuts down all resources in reverse construction
// order: the engine drains its history queue first so pending writes
// still have a live pool.
func (a *App) Close() error {
	slog.Info("shutting down application")

	if a.Engine != nil {
		a.Engine.Close()
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		slog.Info("database pool closed")
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
