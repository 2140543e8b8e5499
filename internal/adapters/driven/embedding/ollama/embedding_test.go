package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbeddingService(Config{BaseURL: srv.URL, Model: "nomic-embed-text", HTTPClient: srv.Client()})
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, []string{"a", "b"}, req.Input)

		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1, 0, 0}, {0, 1, 0}}})
	})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, vecs)
	assert.Equal(t, 3, svc.Dimensions())
}

func TestEmbed_Single(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.5, 0.5}}})
	})

	vec, err := svc.Embed(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:0"})
	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1}}})
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestEmbedBatch_ServerError(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestPing(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	})

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_Unavailable(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	assert.Error(t, svc.Ping(context.Background()))
}
