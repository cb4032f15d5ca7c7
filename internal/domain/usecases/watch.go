package usecases

import (
	"context"
	"errors"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

const moduleWatcher = "WATCHER"

// Uploader is the slice of the session controller the watcher needs.
type Uploader interface {
	SubmitUpload(ctx context.Context, file entities.FileUpload) (<-chan struct{}, error)
}

// AutoUploadUseCase uploads documents dropped into a watched folder.
// Files arriving while an upload is pending are skipped, not queued.
type AutoUploadUseCase struct {
	watcher  ports.FileWatcher
	loader   ports.FileLoader
	uploader Uploader
	logger   logger.ILogger
}

func NewAutoUploadUseCase(
	watcher ports.FileWatcher,
	loader ports.FileLoader,
	uploader Uploader,
	log logger.ILogger,
) *AutoUploadUseCase {
	return &AutoUploadUseCase{
		watcher:  watcher,
		loader:   loader,
		uploader: uploader,
		logger:   log,
	}
}

// Run watches dir until ctx is done or the watcher closes its channel.
func (uc *AutoUploadUseCase) Run(ctx context.Context, dir string) error {
	events, err := uc.watcher.Watch(ctx, dir)
	if err != nil {
		return err
	}
	uc.logger.Info(moduleWatcher, "Watching folder for documents", map[string]interface{}{"dir": dir})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			uc.handle(ctx, event)
		}
	}
}

func (uc *AutoUploadUseCase) handle(ctx context.Context, event ports.FileEvent) {
	if event.Operation != ports.FileCreated {
		return
	}
	if !uc.loader.Supports(event.Path) {
		uc.logger.Debug(moduleWatcher, "Ignoring unsupported file", map[string]interface{}{"path": event.Path})
		return
	}

	file, err := uc.loader.Load(ctx, event.Path)
	if err != nil {
		uc.logger.Warn(moduleWatcher, "Failed to read dropped file", map[string]interface{}{
			"path":  event.Path,
			"error": err.Error(),
		})
		return
	}

	if _, err := uc.uploader.SubmitUpload(ctx, *file); err != nil {
		if errors.Is(err, ErrUploadInFlight) {
			uc.logger.Warn(moduleWatcher, "Upload already running, skipping file", map[string]interface{}{"path": event.Path})
			return
		}
		uc.logger.Error(moduleWatcher, "Auto upload rejected", map[string]interface{}{
			"path":  event.Path,
			"error": err.Error(),
		})
	}
}
