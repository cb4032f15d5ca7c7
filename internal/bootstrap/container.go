// Package bootstrap wires adapters into the session controller.
package bootstrap

import (
	"context"

	"github.com/0xcro3dile/docqa-go/internal/adapters/backend"
	"github.com/0xcro3dile/docqa-go/internal/adapters/events"
	"github.com/0xcro3dile/docqa-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/docqa-go/internal/adapters/loader"
	"github.com/0xcro3dile/docqa-go/internal/config"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const moduleBootstrap = "BOOTSTRAP"

type Container struct {
	Config  *config.Config
	Logger  logger.ILogger
	Backend *backend.Client
	Bus     *events.SnapshotBus
	Loader  *loader.FileLoader
	Session *usecases.SessionController
}

// NewContainer builds everything a front end needs. The caller picks the
// logger since the terminal view must keep stdout clean.
func NewContainer(cfg *config.Config, log logger.ILogger) *Container {
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	bus := events.NewSnapshotBus(log)

	return &Container{
		Config:  cfg,
		Logger:  log,
		Backend: client,
		Bus:     bus,
		Loader:  loader.NewFileLoader(loader.DefaultExtensions(), loader.DefaultMaxBytes),
		Session: usecases.NewSessionController(client, client, bus, log),
	}
}

// CheckBackend logs whether the backend answers its health check.
// A failed check is not fatal; the first upload or query reports it.
func (c *Container) CheckBackend(ctx context.Context) bool {
	health, err := c.Backend.Health(ctx)
	if err != nil {
		c.Logger.Warn(moduleBootstrap, "Backend unreachable", map[string]interface{}{
			"url":   c.Config.Backend.BaseURL,
			"error": err.Error(),
		})
		return false
	}

	c.Logger.Info(moduleBootstrap, "Backend reachable", map[string]interface{}{
		"url":        c.Config.Backend.BaseURL,
		"status":     health.Status,
		"pinecone":   health.Pinecone,
		"embeddings": health.Embeddings,
	})
	return health.Healthy()
}

// StartAutoUpload watches the configured folder in the background.
// It is a no-op when no folder is configured.
func (c *Container) StartAutoUpload(ctx context.Context) error {
	dir := c.Config.Watch.Dir
	if dir == "" {
		return nil
	}

	watcher, err := filewatcher.NewFSNotifyWatcher(loader.DefaultExtensions(), c.Logger)
	if err != nil {
		return err
	}

	autoUpload := usecases.NewAutoUploadUseCase(watcher, c.Loader, c.Session, c.Logger)
	go func() {
		defer watcher.Stop()
		if err := autoUpload.Run(ctx, dir); err != nil {
			c.Logger.Error(moduleBootstrap, "Auto upload stopped", map[string]interface{}{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}()
	return nil
}

// Close releases the event bus and flushes the logger.
func (c *Container) Close() {
	if err := c.Bus.Close(); err != nil {
		c.Logger.Warn(moduleBootstrap, "Event bus close failed", map[string]interface{}{"error": err.Error()})
	}
	_ = c.Logger.Sync()
}
