package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// ingestResponse is the /upload reply. Extra fields such as "status",
// "filename" and "documents_loaded" are ignored.
type ingestResponse struct {
	ChunksCreated *int `json:"chunks_created" validate:"required,gte=0"`
	VectorsStored *int `json:"vectors_stored" validate:"required,gte=0"`
}

// Ingest uploads the raw file as the single "file" multipart field.
func (c *Client) Ingest(ctx context.Context, file entities.FileUpload) (*entities.IngestResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out ingestResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return &entities.IngestResult{
		ChunksCreated: *out.ChunksCreated,
		VectorsStored: *out.VectorsStored,
	}, nil
}
