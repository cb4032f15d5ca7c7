package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// queryRequest is the /query request body.
type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

// queryResponse is the /query reply. Each source's "metadata" is ignored.
type queryResponse struct {
	Answer  *string         `json:"answer" validate:"required"`
	Sources []sourcePayload `json:"sources" validate:"omitempty,dive"`
}

type sourcePayload struct {
	Content string   `json:"content"`
	Score   *float64 `json:"score" validate:"required"`
}

// Query asks the backend a question. Scores are passed through unchanged;
// range checks belong to the session controller.
func (c *Client) Query(ctx context.Context, in entities.QueryRequest) (*entities.QueryResponse, error) {
	jsonData, err := json.Marshal(queryRequest{Question: in.Question, TopK: in.TopK})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/query", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out queryResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	var sources []entities.Citation
	if len(out.Sources) > 0 {
		sources = make([]entities.Citation, len(out.Sources))
		for i, s := range out.Sources {
			sources[i] = entities.Citation{Content: s.Content, Score: *s.Score}
		}
	}

	return &entities.QueryResponse{
		Answer:  *out.Answer,
		Sources: sources,
	}, nil
}
