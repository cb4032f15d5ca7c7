package backend

import (
	"context"
	"net/http"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

type healthResponse struct {
	Status     string `json:"status" validate:"required"`
	Pinecone   string `json:"pinecone"`
	Embeddings string `json:"embeddings"`
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*entities.BackendHealth, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	var out healthResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return &entities.BackendHealth{
		Status:     out.Status,
		Pinecone:   out.Pinecone,
		Embeddings: out.Embeddings,
	}, nil
}
