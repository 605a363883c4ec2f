package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenAICompatibleClient, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenAICompatibleClientWithHTTP(server.Client()), server.URL
}

func TestComplete(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	client, base := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"choices":[{"message":{"content":"The answer is 42."}}]}`))
	})

	answer, err := client.Complete(context.Background(), ChatConfig{
		BaseURL: base + "/v1/",
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
	}, []ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "what is the answer?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", answer)

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])
}

func TestComplete_EmptyContent(t *testing.T) {
	client, base := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	})

	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: base}, []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no message content")
}

func TestComplete_UpstreamError(t *testing.T) {
	client, base := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), ChatConfig{BaseURL: base}, []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestEmbedBatch(t *testing.T) {
	var gotInput []interface{}
	client, base := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotInput = body["input"].([]interface{})
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]},{"embedding":[0.3,0.4]}]}`))
	})

	vectors, err := client.EmbedBatch(context.Background(), EmbeddingConfig{BaseURL: base, Model: "text-embedding-3-small"}, []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
	assert.Equal(t, []interface{}{"first", "second"}, gotInput)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	client, base := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[0.1]}]}`))
	})

	_, err := client.EmbedBatch(context.Background(), EmbeddingConfig{BaseURL: base}, []string{"first", "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count mismatch")
}

func TestEmbedBatch_RejectsEmptyText(t *testing.T) {
	client := NewOpenAICompatibleClient()
	_, err := client.EmbedBatch(context.Background(), EmbeddingConfig{}, []string{"ok", "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty text")
}

func TestEmbedBatch_NoInput(t *testing.T) {
	client := NewOpenAICompatibleClient()
	vectors, err := client.EmbedBatch(context.Background(), EmbeddingConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbed_SingleText(t *testing.T) {
	client, base := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[1,2,3]}]}`))
	})

	vec, err := client.Embed(context.Background(), EmbeddingConfig{BaseURL: base}, "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
}

func TestOCR_SendsDataURL(t *testing.T) {
	var gotBody string
	client, base := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(raw)
		w.Write([]byte(`{"choices":[{"message":{"content":"extracted words"}}]}`))
	})

	extractor := NewOCRExtractor(client, OCRConfig{BaseURL: base, Model: "gpt-4o"})
	text, err := extractor.ExtractText(context.Background(), []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "extracted words", text)
	assert.Contains(t, gotBody, "data:image/png;base64,")
	assert.Contains(t, gotBody, "image_url")
}

func TestOCR_EmptyImage(t *testing.T) {
	client := NewOpenAICompatibleClient()
	_, err := client.OCR(context.Background(), OCRConfig{}, nil, "image/png")
	require.Error(t, err)
}
