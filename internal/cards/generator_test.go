package cards

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func textGeneratorConfig(url string) GeneratorConfig {
	return GeneratorConfig{
		BaseURL:    url,
		APIKey:     "test-key",
		Model:      "test-model",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	}
}

func TestChatTextGenerator_Generate(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Warm wishes!"}},
			},
		})
	}))
	defer server.Close()

	gen := NewChatTextGenerator(textGeneratorConfig(server.URL), zaptest.NewLogger(t))
	text, err := gen.GenerateText(context.Background(), "write a card")
	require.NoError(t, err)
	assert.Equal(t, "Warm wishes!", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestChatTextGenerator_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "second try"}},
			},
		})
	}))
	defer server.Close()

	gen := NewChatTextGenerator(textGeneratorConfig(server.URL), zaptest.NewLogger(t))
	text, err := gen.GenerateText(context.Background(), "write a card")
	require.NoError(t, err)
	assert.Equal(t, "second try", text)
	assert.Equal(t, 2, attempts)
}

func TestChatTextGenerator_ClientErrorNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	gen := NewChatTextGenerator(textGeneratorConfig(server.URL), zaptest.NewLogger(t))
	_, err := gen.GenerateText(context.Background(), "write a card")

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "text-generation", svcErr.Service)
	assert.Equal(t, 1, attempts)
}

func TestInferenceImageGenerator_Generate(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/test-model", r.URL.Path)
		w.Write(png)
	}))
	defer server.Close()

	gen := NewInferenceImageGenerator(textGeneratorConfig(server.URL), zaptest.NewLogger(t))
	ref, err := gen.GenerateImage(context.Background(), "a birthday illustration")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "data:image/png;base64,"))
}

func TestInferenceImageGenerator_RetriesWhileModelLoads(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("img"))
	}))
	defer server.Close()

	gen := NewInferenceImageGenerator(textGeneratorConfig(server.URL), zaptest.NewLogger(t))
	_, err := gen.GenerateImage(context.Background(), "a birthday illustration")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestGeneratorConfig_Configured(t *testing.T) {
	assert.False(t, GeneratorConfig{}.Configured())
	assert.True(t, GeneratorConfig{APIKey: "k"}.Configured())
}
