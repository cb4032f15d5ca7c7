package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

func TestSubmitUpload_SuccessAppendsSystemMessage(t *testing.T) {
	ing := &mockIngestion{ingestFn: func(file entities.FileUpload) (*entities.IngestResult, error) {
		return &entities.IngestResult{ChunksCreated: 12, VectorsStored: 12}, nil
	}}
	c := newTestController(ing, &mockQuery{}, nil)

	done, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: "doc.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	wait(t, done)

	snap := c.Snapshot()
	require.Len(t, snap.Entries, 1)
	msg := snap.Entries[0].Message
	assert.Equal(t, entities.KindSystem, msg.Kind)
	assert.Contains(t, msg.Content, "12")
	assert.Contains(t, msg.Content, "doc.pdf")

	assert.Equal(t, entities.UploadSession{
		FileName:      "doc.pdf",
		ChunksCreated: 12,
		VectorsStored: 12,
		Status:        entities.UploadReady,
	}, snap.Upload)
	assert.False(t, snap.UploadInFlight)

	require.Equal(t, 1, ing.callCount())
	assert.Equal(t, []byte("%PDF"), ing.calls[0].Data)
}

func TestSubmitUpload_StatusUploadingWhileInFlight(t *testing.T) {
	ing := &mockIngestion{gate: make(chan struct{})}
	c := newTestController(ing, &mockQuery{}, nil)

	done, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: "doc.pdf"})
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, entities.UploadUploading, snap.Upload.Status)
	assert.True(t, snap.UploadInFlight)
	assert.True(t, snap.IsEmpty())

	close(ing.gate)
	wait(t, done)
}

func TestSubmitUpload_RejectsWhileUploading(t *testing.T) {
	ing := &mockIngestion{gate: make(chan struct{})}
	c := newTestController(ing, &mockQuery{}, nil)

	done, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: "first.pdf"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: "second.pdf"})
		assert.ErrorIs(t, err, ErrUploadInFlight)
		assert.Nil(t, again)
	}

	close(ing.gate)
	wait(t, done)

	assert.Equal(t, 1, ing.callCount())
	snap := c.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "first.pdf", snap.Upload.FileName)

	// the flag is clear again, so a new upload is accepted
	next, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: "third.pdf"})
	require.NoError(t, err)
	wait(t, next)
	assert.Equal(t, 2, ing.callCount())
}

func TestSubmitUpload_FailureAppendsErrorMessage(t *testing.T) {
	ing := &mockIngestion{ingestFn: func(file entities.FileUpload) (*entities.IngestResult, error) {
		return nil, fmt.Errorf("calling backend: %w", errors.New("connection refused"))
	}}
	c := newTestController(ing, &mockQuery{}, nil)

	done, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: "doc.pdf"})
	require.NoError(t, err)
	wait(t, done)

	snap := c.Snapshot()
	require.Len(t, snap.Entries, 1)
	msg := snap.Entries[0].Message
	assert.Equal(t, entities.KindError, msg.Kind)
	assert.True(t, strings.HasPrefix(msg.Content, "Failed to upload: "))
	assert.Contains(t, msg.Content, "connection refused")

	assert.Equal(t, entities.UploadFailed, snap.Upload.Status)
	assert.False(t, snap.Upload.HasDocument())
	assert.False(t, snap.UploadInFlight)
}

func TestSubmitUpload_FailedReuploadKeepsPreviousDocument(t *testing.T) {
	fail := false
	ing := &mockIngestion{ingestFn: func(file entities.FileUpload) (*entities.IngestResult, error) {
		if fail {
			return nil, &ports.StatusError{Code: 500, Detail: "Error processing file: empty"}
		}
		return &entities.IngestResult{ChunksCreated: 7, VectorsStored: 6}, nil
	}}
	c := newTestController(ing, &mockQuery{}, nil)

	done, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: "good.pdf"})
	require.NoError(t, err)
	wait(t, done)

	fail = true
	done, err = c.SubmitUpload(context.Background(), entities.FileUpload{Name: "bad.pdf"})
	require.NoError(t, err)
	wait(t, done)

	snap := c.Snapshot()
	assert.Equal(t, "good.pdf", snap.Upload.FileName)
	assert.Equal(t, 7, snap.Upload.ChunksCreated)
	assert.Equal(t, 6, snap.Upload.VectorsStored)
	assert.Equal(t, entities.UploadFailed, snap.Upload.Status)

	require.Len(t, snap.Entries, 2)
	assert.Equal(t, entities.KindSystem, snap.Entries[0].Message.Kind)
	assert.Equal(t, entities.KindError, snap.Entries[1].Message.Kind)
	assert.Contains(t, snap.Entries[1].Message.Content, "Error processing file: empty")
}

func TestSubmitUpload_SuccessReplacesPreviousDocument(t *testing.T) {
	chunks := 3
	ing := &mockIngestion{ingestFn: func(file entities.FileUpload) (*entities.IngestResult, error) {
		chunks++
		return &entities.IngestResult{ChunksCreated: chunks, VectorsStored: chunks}, nil
	}}
	c := newTestController(ing, &mockQuery{}, nil)

	for _, name := range []string{"a.txt", "b.txt"} {
		done, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: name})
		require.NoError(t, err)
		wait(t, done)
	}

	snap := c.Snapshot()
	assert.Equal(t, "b.txt", snap.Upload.FileName)
	assert.Equal(t, 5, snap.Upload.ChunksCreated)
	assert.Len(t, snap.Entries, 2)
}

func TestSubmitUpload_NilResultIsFailure(t *testing.T) {
	ing := &mockIngestion{ingestFn: func(file entities.FileUpload) (*entities.IngestResult, error) {
		return nil, nil
	}}
	c := newTestController(ing, &mockQuery{}, nil)

	done, err := c.SubmitUpload(context.Background(), entities.FileUpload{Name: "x.txt"})
	require.NoError(t, err)
	wait(t, done)

	snap := c.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, entities.KindError, snap.Entries[0].Message.Kind)
	assert.Equal(t, entities.UploadFailed, snap.Upload.Status)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CauseStatus, classify(fmt.Errorf("wrap: %w", &ports.StatusError{Code: 502})))
	assert.Equal(t, CauseMalformed, classify(fmt.Errorf("decoding: %w", ports.ErrMalformedResponse)))
	assert.Equal(t, CauseUnreachable, classify(errors.New("dial tcp: refused")))
	assert.Equal(t, CauseUnreachable, classify(context.DeadlineExceeded))
}

func TestFailures_Unwrap(t *testing.T) {
	cause := &ports.StatusError{Code: 404}
	var uf error = &UploadFailure{Cause: CauseStatus, Err: cause}
	var qf error = &QueryFailure{Cause: CauseStatus, Err: cause}

	var target *ports.StatusError
	assert.True(t, errors.As(uf, &target))
	assert.True(t, errors.As(qf, &target))
	assert.Equal(t, "backend returned status 404", uf.Error())
}
