package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		provider string
		key      string
		wantErr  bool
	}{
		{ProviderOpenAI, "sk-test", false},
		{ProviderOpenAI, "", true},
		{ProviderAnthropic, "key", false},
		{ProviderAnthropic, "", true},
		{ProviderGemini, "key", false},
		{ProviderGemini, "", true},
		{ProviderCerebras, "key", false},
		{ProviderCerebras, "", true},
		{ProviderMock, "", false},
		{"llamafile", "key", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.key, func(t *testing.T) {
			gen, err := NewGenerator(tt.provider, tt.key, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, gen)
		})
	}
}

func TestAnthropicGenerator(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"  hello from the void \n"}]}`))
	}))
	defer srv.Close()

	g := NewAnthropicGenerator("key", "")
	g.endpoint = srv.URL

	text, err := g.Generate(context.Background(), "you are a ghost", "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hello from the void", text)
	assert.Equal(t, anthropicDefaultModel, got.Model)
	assert.Equal(t, "you are a ghost", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "say hi", got.Messages[0].Content)
}

func TestAnthropicGenerator_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	g := NewAnthropicGenerator("key", "")
	g.endpoint = srv.URL

	_, err := g.Generate(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiGenerator(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"signal received"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiGenerator("key", "gemini-test")
	g.baseURL = srv.URL

	text, err := g.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "signal received", text)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "system", got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "user", got.Contents[0].Parts[0].Text)
}

func TestChatGenerator(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" static hums "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("key")
	cfg.BaseURL = srv.URL
	g := newChatGenerator(ProviderCerebras, cfg, cerebrasDefaultModel)

	text, err := g.Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "static hums", text)
	assert.Equal(t, cerebrasDefaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Content)
}
