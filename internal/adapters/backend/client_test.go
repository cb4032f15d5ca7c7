package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

func newTestClient(url string) *Client {
	return NewClient(url, 5*time.Second, logger.NewNopLogger())
}

func TestClient_DefaultValues(t *testing.T) {
	c := NewClient("", -1, logger.NewNopLogger())
	assert.Equal(t, "http://localhost:8000", c.baseURL)
	assert.Equal(t, time.Duration(0), c.client.Timeout)

	c = NewClient("http://backend:9000/", 0, logger.NewNopLogger())
	assert.Equal(t, "http://backend:9000", c.baseURL)
}

func TestClient_Ingest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "doc.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":           "success",
			"filename":         "doc.pdf",
			"documents_loaded": 3,
			"chunks_created":   12,
			"vectors_stored":   12,
		})
	}))
	defer server.Close()

	res, err := newTestClient(server.URL).Ingest(context.Background(), entities.FileUpload{
		Name: "doc.pdf",
		Data: []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, &entities.IngestResult{ChunksCreated: 12, VectorsStored: 12}, res)
}

func TestClient_IngestZeroChunksIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chunks_created":0,"vectors_stored":0}`))
	}))
	defer server.Close()

	res, err := newTestClient(server.URL).Ingest(context.Background(), entities.FileUpload{Name: "empty.txt"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ChunksCreated)
}

func TestClient_IngestMalformed(t *testing.T) {
	bodies := map[string]string{
		"not json":       `<html>oops</html>`,
		"missing chunks": `{"vectors_stored": 4}`,
		"negative":       `{"chunks_created": -1, "vectors_stored": 4}`,
		"wrong type":     `{"chunks_created": "12", "vectors_stored": 4}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			res, err := newTestClient(server.URL).Ingest(context.Background(), entities.FileUpload{Name: "a.txt"})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ports.ErrMalformedResponse)
		})
	}
}

func TestClient_StatusErrorCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"File type .exe not supported"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Ingest(context.Background(), entities.FileUpload{Name: "a.exe"})

	var statusErr *ports.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Equal(t, "File type .exe not supported", statusErr.Detail)
	assert.Contains(t, err.Error(), "File type .exe not supported")
}

func TestClient_StatusErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Query(context.Background(), entities.QueryRequest{Question: "q", TopK: 3})

	var statusErr *ports.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "backend returned status 502", err.Error())
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Query(context.Background(), entities.QueryRequest{Question: "q", TopK: 3})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrMalformedResponse))

	var statusErr *ports.StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "What is the summary?", body["question"])
		assert.Equal(t, float64(3), body["top_k"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer": "A short summary.",
			"sources": []map[string]interface{}{
				{"content": "first passage...", "score": 0.87, "metadata": map[string]string{"page": "1"}},
				{"content": "second passage...", "score": 1.3},
			},
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Query(context.Background(), entities.QueryRequest{
		Question: "What is the summary?",
		TopK:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", resp.Answer)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, entities.Citation{Content: "first passage...", Score: 0.87}, resp.Sources[0])
	// out-of-range scores are left for the controller to clamp
	assert.Equal(t, 1.3, resp.Sources[1].Score)
}

func TestClient_QueryWithoutSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"No relevant information found in the knowledge base.","sources":[]}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Query(context.Background(), entities.QueryRequest{Question: "q", TopK: 3})
	require.NoError(t, err)
	assert.Empty(t, resp.Sources)
}

func TestClient_QueryMalformed(t *testing.T) {
	bodies := map[string]string{
		"missing answer":       `{"sources":[]}`,
		"source without score": `{"answer":"a","sources":[{"content":"x"}]}`,
		"truncated":            `{"answer":"a"`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			resp, err := newTestClient(server.URL).Query(context.Background(), entities.QueryRequest{Question: "q", TopK: 3})
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ports.ErrMalformedResponse)
		})
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"healthy","pinecone":"connected","embeddings":"ready"}`))
	}))
	defer server.Close()

	h, err := newTestClient(server.URL).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Healthy())
	assert.Equal(t, "connected", h.Pinecone)
}

func TestReadDetail_ListDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","question"],"msg":"field required"}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Query(context.Background(), entities.QueryRequest{})
	var statusErr *ports.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Contains(t, statusErr.Detail, "field required")
}
