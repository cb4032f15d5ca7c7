// Package usecases contains application business rules.
// The session controller turns user intents into collaborator calls and
// owns the conversation thread, the upload session and the in-flight flags.
package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const moduleSession = "SESSION"

// SessionController is the single writer of the session state.
// All mutations happen under mu; collaborator calls run outside it.
type SessionController struct {
	ingestion ports.IngestionService
	query     ports.QueryService
	notifier  ports.StateNotifier
	logger    logger.ILogger
	now       func() time.Time

	mu             sync.Mutex
	thread         *entities.Thread
	upload         entities.UploadSession
	uploadInFlight bool
	queryInFlight  bool
	version        uint64
}

// Option customizes a SessionController.
type Option func(*SessionController)

// WithClock overrides the timestamp source for new messages.
func WithClock(now func() time.Time) Option {
	return func(c *SessionController) { c.now = now }
}

// NewSessionController creates a SessionController with injected dependencies.
// notifier may be nil when nothing renders the state.
func NewSessionController(
	ingestion ports.IngestionService,
	query ports.QueryService,
	notifier ports.StateNotifier,
	log logger.ILogger,
	opts ...Option,
) *SessionController {
	c := &SessionController{
		ingestion: ingestion,
		query:     query,
		notifier:  notifier,
		logger:    log,
		now:       time.Now,
		thread:    entities.NewThread(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *SessionController) Snapshot() entities.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// ToggleSources flips the disclosure state of one assistant message and
// returns the new value.
func (c *SessionController) ToggleSources(ctx context.Context, messageID string) (bool, error) {
	c.mu.Lock()
	expanded, ok := c.thread.ToggleSources(messageID)
	if !ok {
		c.mu.Unlock()
		return false, ErrNoSources
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	c.publish(ctx, snap)
	return expanded, nil
}

// commitLocked bumps the version and captures the state. Caller holds mu.
func (c *SessionController) commitLocked() entities.Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *SessionController) snapshotLocked() entities.Snapshot {
	return entities.Snapshot{
		Version:        c.version,
		Entries:        c.thread.Entries(),
		Upload:         c.upload,
		UploadInFlight: c.uploadInFlight,
		QueryInFlight:  c.queryInFlight,
	}
}

// publish is called without mu held so slow subscribers never stall writers.
func (c *SessionController) publish(ctx context.Context, snap entities.Snapshot) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Publish(ctx, snap); err != nil {
		c.logger.Warn(moduleSession, "Failed to publish snapshot", map[string]interface{}{
			"version": snap.Version,
			"error":   err.Error(),
		})
	}
}
