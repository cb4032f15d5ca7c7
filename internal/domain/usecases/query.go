package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// DefaultTopK is the number of passages requested per question.
const DefaultTopK = 3

// SubmitQuestion asks the query service about the uploaded document.
// The question is appended to the thread before the call is issued. Empty
// questions and questions asked while another one is pending are rejected
// without touching the thread. The returned channel is closed once the
// answer (or the error message) has been appended.
func (c *SessionController) SubmitQuestion(ctx context.Context, text string) (<-chan struct{}, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	c.mu.Lock()
	if c.queryInFlight {
		c.mu.Unlock()
		return nil, ErrQueryInFlight
	}
	c.thread.Append(entities.NewUserMessage(question, c.now()))
	c.queryInFlight = true
	snap := c.commitLocked()
	c.mu.Unlock()

	c.publish(ctx, snap)

	callCtx := context.WithoutCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := c.query.Query(callCtx, entities.QueryRequest{
			Question: question,
			TopK:     DefaultTopK,
		})
		c.finishQuestion(callCtx, resp, err)
	}()
	return done, nil
}

func (c *SessionController) finishQuestion(ctx context.Context, resp *entities.QueryResponse, err error) {
	if err == nil && resp == nil {
		err = fmt.Errorf("query returned no response")
	}

	if err != nil {
		failure := &QueryFailure{Cause: classify(err), Err: err}

		c.mu.Lock()
		c.thread.Append(entities.NewErrorMessage(fmt.Sprintf("Error: %s", failure.Error()), c.now()))
		c.queryInFlight = false
		snap := c.commitLocked()
		c.mu.Unlock()

		c.logger.Error(moduleSession, "Query failed", map[string]interface{}{
			"cause": failure.Cause.String(),
			"error": failure.Error(),
		})
		c.publish(ctx, snap)
		return
	}

	sources := c.sanitizeSources(resp.Sources)

	c.mu.Lock()
	c.thread.Append(entities.NewAssistantMessage(resp.Answer, sources, c.now()))
	c.queryInFlight = false
	snap := c.commitLocked()
	c.mu.Unlock()

	c.logger.Info(moduleSession, "Question answered", map[string]interface{}{
		"sources": len(sources),
	})
	c.publish(ctx, snap)
}

// sanitizeSources clamps every score into [0,1].
func (c *SessionController) sanitizeSources(raw []entities.Citation) []entities.Citation {
	if len(raw) == 0 {
		return nil
	}
	sources := make([]entities.Citation, len(raw))
	for i, s := range raw {
		citation, adjusted := entities.NewCitation(s.Content, s.Score)
		if adjusted {
			c.logger.Warn(moduleSession, "Clamped out-of-range source score", map[string]interface{}{
				"index": i,
				"score": s.Score,
			})
		}
		sources[i] = citation
	}
	return sources
}
