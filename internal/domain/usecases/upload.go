package usecases

import (
	"context"
	"fmt"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// SubmitUpload sends a document to the ingestion service.
// It is rejected with ErrUploadInFlight while another upload is pending.
// The returned channel is closed once the result has been applied to the
// session; failures end up in the thread as error messages, never here.
func (c *SessionController) SubmitUpload(ctx context.Context, file entities.FileUpload) (<-chan struct{}, error) {
	c.mu.Lock()
	if c.uploadInFlight {
		c.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	c.uploadInFlight = true
	c.upload.Status = entities.UploadUploading
	snap := c.commitLocked()
	c.mu.Unlock()

	c.publish(ctx, snap)
	c.logger.Info(moduleSession, "Upload started", map[string]interface{}{
		"file_name": file.Name,
		"bytes":     len(file.Data),
	})

	// once issued the call runs to completion
	callCtx := context.WithoutCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := c.ingestion.Ingest(callCtx, file)
		c.finishUpload(callCtx, file.Name, result, err)
	}()
	return done, nil
}

func (c *SessionController) finishUpload(ctx context.Context, fileName string, result *entities.IngestResult, err error) {
	if err == nil && result == nil {
		err = fmt.Errorf("ingestion returned no result")
	}

	c.mu.Lock()
	if err != nil {
		failure := &UploadFailure{Cause: classify(err), Err: err}
		// previous ready metadata is kept; only the status changes
		c.upload.Status = entities.UploadFailed
		c.thread.Append(entities.NewErrorMessage(
			fmt.Sprintf("Failed to upload: %s", failure.Error()), c.now()))
		c.uploadInFlight = false
		snap := c.commitLocked()
		c.mu.Unlock()

		c.logger.Error(moduleSession, "Upload failed", map[string]interface{}{
			"file_name": fileName,
			"cause":     failure.Cause.String(),
			"error":     failure.Error(),
		})
		c.publish(ctx, snap)
		return
	}

	c.upload = entities.UploadSession{
		FileName:      fileName,
		ChunksCreated: result.ChunksCreated,
		VectorsStored: result.VectorsStored,
		Status:        entities.UploadReady,
	}
	c.thread.Append(entities.NewSystemMessage(
		fmt.Sprintf("Document %q uploaded successfully! %d chunks created.", fileName, result.ChunksCreated),
		c.now()))
	c.uploadInFlight = false
	snap := c.commitLocked()
	c.mu.Unlock()

	c.logger.Info(moduleSession, "Upload finished", map[string]interface{}{
		"file_name":      fileName,
		"chunks_created": result.ChunksCreated,
		"vectors_stored": result.VectorsStored,
	})
	c.publish(ctx, snap)
}
