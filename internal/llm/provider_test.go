package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// mockProvider is a test implementation of Provider
type mockProvider struct {
	name     string
	response *Response
	err      error
	calls    int
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func TestRequest_Fields(t *testing.T) {
	req := Request{
		Model:       "gpt-4o",
		MaxTokens:   1000,
		Temperature: 0.7,
		System:      "You are helpful",
		Messages: []Message{
			{Role: RoleUser, Content: "Hello"},
		},
	}

	if req.Model != "gpt-4o" {
		t.Errorf("Model = %v, want gpt-4o", req.Model)
	}
	if req.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %v, want 1000", req.MaxTokens)
	}
	if len(req.Messages) != 1 {
		t.Errorf("Messages len = %v, want 1", len(req.Messages))
	}
}

func TestRole_Constants(t *testing.T) {
	if RoleSystem != "system" {
		t.Errorf("RoleSystem = %v, want system", RoleSystem)
	}
	if RoleUser != "user" {
		t.Errorf("RoleUser = %v, want user", RoleUser)
	}
	if RoleAssistant != "assistant" {
		t.Errorf("RoleAssistant = %v, want assistant", RoleAssistant)
	}
}

// Tests for ResilientProvider

func TestDefaultResilientConfig(t *testing.T) {
	cfg := DefaultResilientConfig()

	if !cfg.EnableCircuitBreaker {
		t.Error("EnableCircuitBreaker should be true by default")
	}
	if !cfg.EnableRetry {
		t.Error("EnableRetry should be true by default")
	}
	if !cfg.EnableBulkhead {
		t.Error("EnableBulkhead should be true by default")
	}
	if !cfg.EnableRateLimit {
		t.Error("EnableRateLimit should be true by default")
	}
	if cfg.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want 5", cfg.MaxConcurrent)
	}
	if cfg.RatePerSecond != 2 {
		t.Errorf("RatePerSecond = %d, want 2", cfg.RatePerSecond)
	}
}

func TestNewResilientProvider(t *testing.T) {
	p := &mockProvider{name: "test"}
	rp := NewResilientProvider(p, DefaultResilientConfig())

	if rp == nil {
		t.Fatal("NewResilientProvider returned nil")
	}
	if rp.Name() != "test" {
		t.Errorf("Name() = %v, want test", rp.Name())
	}
	if rp.circuitBreaker == nil {
		t.Error("circuitBreaker should be set")
	}
	if rp.retrier == nil {
		t.Error("retrier should be set")
	}
	if rp.bulkhead == nil {
		t.Error("bulkhead should be set")
	}
	if rp.rateLimit == nil {
		t.Error("rateLimit should be set")
	}
}

func TestNewResilientProvider_NoPatterns(t *testing.T) {
	p := &mockProvider{name: "test"}
	rp := NewResilientProvider(p, ResilientConfig{})

	if rp.circuitBreaker != nil {
		t.Error("circuitBreaker should be nil when disabled")
	}
	if rp.retrier != nil {
		t.Error("retrier should be nil when disabled")
	}
	if rp.bulkhead != nil {
		t.Error("bulkhead should be nil when disabled")
	}
	if rp.rateLimit != nil {
		t.Error("rateLimit should be nil when disabled")
	}
}

func TestResilientProvider_Generate_Success(t *testing.T) {
	p := &mockProvider{
		name: "test",
		response: &Response{
			Content:      "Hello from resilient!",
			FinishReason: "stop",
		},
	}

	cfg := ResilientConfig{
		EnableRetry:    true,
		EnableBulkhead: true,
		MaxConcurrent:  2,
		RatePerSecond:  10,
	}
	rp := NewResilientProvider(p, cfg)

	resp, err := rp.Generate(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "Hello from resilient!" {
		t.Errorf("Content = %v, want Hello from resilient!", resp.Content)
	}
}

func TestResilientProvider_Generate_NoPatterns(t *testing.T) {
	p := &mockProvider{
		name:     "test",
		response: &Response{Content: "Direct call"},
	}

	rp := NewResilientProvider(p, ResilientConfig{})

	resp, err := rp.Generate(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "Direct call" {
		t.Errorf("Content = %v, want Direct call", resp.Content)
	}
}

func TestResilientProvider_Generate_NonRetryableError(t *testing.T) {
	p := &mockProvider{
		name: "test",
		err:  fmt.Errorf("API error (status 401): unauthorized"),
	}

	cfg := ResilientConfig{EnableRetry: true}
	rp := NewResilientProvider(p, cfg)

	_, err := rp.Generate(context.Background(), &Request{})
	if err == nil {
		t.Fatal("Generate() expected error")
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (no retry for 401)", p.calls)
	}
}

func TestResilientProvider_Close(t *testing.T) {
	p := &mockProvider{name: "test"}

	rp := NewResilientProvider(p, ResilientConfig{
		EnableRateLimit: true,
		RatePerSecond:   2,
	})
	if err := rp.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	rp = NewResilientProvider(p, ResilientConfig{})
	if err := rp.Close(); err != nil {
		t.Errorf("Close() without rate limit error = %v", err)
	}
}

func TestIsRetryableHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"status 429", fmt.Errorf("request failed: status 429"), true},
		{"status 500", fmt.Errorf("internal error: status 500"), true},
		{"status 502", fmt.Errorf("gateway: status 502 bad gateway"), true},
		{"status 503", fmt.Errorf("service unavailable: status 503"), true},
		{"status 504", fmt.Errorf("timeout: status 504"), true},
		{"status 400", fmt.Errorf("bad request: status 400"), false},
		{"status 401", fmt.Errorf("unauthorized: status 401"), false},
		{"generic error", fmt.Errorf("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isRetryableHTTPError(tt.err)
			if got != tt.want {
				t.Errorf("isRetryableHTTPError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, 0},
		{"status 429", fmt.Errorf("status 429"), 429},
		{"status 500", fmt.Errorf("error: status 500"), 500},
		{"unknown pattern", fmt.Errorf("HTTP 429"), 0},
		{"no status", fmt.Errorf("connection error"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractStatusCode(tt.err)
			if got != tt.want {
				t.Errorf("extractStatusCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLLMHTTPClient(t *testing.T) {
	client := newLLMHTTPClient()

	if client == nil {
		t.Fatal("newLLMHTTPClient() returned nil")
	}
	if client.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 120s", client.Timeout)
	}
	if client.Transport == nil {
		t.Error("Transport should not be nil")
	}
}

// Tests for ClaudeProvider

func TestNewClaudeProvider_Defaults(t *testing.T) {
	p := NewClaudeProvider(ClaudeConfig{APIKey: "test-key"})

	if p == nil {
		t.Fatal("NewClaudeProvider returned nil")
	}
	if p.apiKey != "test-key" {
		t.Errorf("apiKey = %v, want test-key", p.apiKey)
	}
	if p.baseURL != "https://api.anthropic.com" {
		t.Errorf("baseURL = %v, want https://api.anthropic.com", p.baseURL)
	}
	if p.model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %v, want claude-sonnet-4-20250514", p.model)
	}
}

func TestClaudeProvider_Name(t *testing.T) {
	p := NewClaudeProvider(ClaudeConfig{APIKey: "test", Model: "claude-3-opus"})
	if p.Name() != "claude/claude-3-opus" {
		t.Errorf("Name() = %v, want claude/claude-3-opus", p.Name())
	}
}

func TestClaudeProvider_BuildRequest(t *testing.T) {
	p := NewClaudeProvider(ClaudeConfig{APIKey: "test", Model: "claude-3-opus"})

	t.Run("defaults", func(t *testing.T) {
		got := p.buildRequest(&Request{
			Messages: []Message{{Role: RoleUser, Content: "Hello"}},
		})
		if got.Model != "claude-3-opus" {
			t.Errorf("Model = %v, want claude-3-opus", got.Model)
		}
		if got.MaxTokens != 4096 {
			t.Errorf("MaxTokens = %v, want 4096", got.MaxTokens)
		}
	})

	t.Run("custom model and tokens", func(t *testing.T) {
		got := p.buildRequest(&Request{
			Model:     "custom-model",
			MaxTokens: 1000,
			Messages:  []Message{{Role: RoleUser, Content: "Hello"}},
		})
		if got.Model != "custom-model" {
			t.Errorf("Model = %v, want custom-model", got.Model)
		}
		if got.MaxTokens != 1000 {
			t.Errorf("MaxTokens = %v, want 1000", got.MaxTokens)
		}
	})

	t.Run("system message extracted from messages", func(t *testing.T) {
		got := p.buildRequest(&Request{
			System: "Default system",
			Messages: []Message{
				{Role: RoleSystem, Content: "Override system"},
				{Role: RoleUser, Content: "Hello"},
			},
		})
		if got.System != "Override system" {
			t.Errorf("System = %v, want Override system", got.System)
		}
		for _, m := range got.Messages {
			if m.Role == "system" {
				t.Error("system message should not be in messages array")
			}
		}
	})
}

func TestClaudeProvider_Generate_HTTPSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Method = %v, want POST", r.Method)
		}
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Path = %v, want /v1/messages", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %v, want test-key", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("anthropic-version = %v, want 2023-06-01", r.Header.Get("anthropic-version"))
		}

		resp := claudeResponse{
			ID:   "msg_test",
			Type: "message",
			Role: "assistant",
			Content: []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{
				{Type: "text", Text: "Hello "},
				{Type: "text", Text: "from Claude!"},
			},
			StopReason: "end_turn",
		}
		resp.Usage.InputTokens = 10
		resp.Usage.OutputTokens = 5

		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewClaudeProvider(ClaudeConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	got, err := p.Generate(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got.Content != "Hello from Claude!" {
		t.Errorf("Content = %v, want Hello from Claude!", got.Content)
	}
	if got.Usage.InputTokens != 10 {
		t.Errorf("InputTokens = %v, want 10", got.Usage.InputTokens)
	}
}

func TestClaudeProvider_Generate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal server error"}`))
	}))
	defer server.Close()

	p := NewClaudeProvider(ClaudeConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	_, err := p.Generate(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	if err == nil {
		t.Fatal("Generate() expected error for HTTP 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should contain status code 500, got: %v", err)
	}
	if !isRetryableHTTPError(err) {
		t.Error("500 error should be retryable")
	}
}

// Tests for OpenAIProvider

func TestNewOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key"})

	if p == nil {
		t.Fatal("NewOpenAIProvider returned nil")
	}
	if p.baseURL != "https://api.openai.com" {
		t.Errorf("baseURL = %v, want https://api.openai.com", p.baseURL)
	}
	if p.model != "gpt-4o" {
		t.Errorf("model = %v, want gpt-4o", p.model)
	}
}

func TestOpenAIProvider_Name(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-4-turbo"})
	if p.Name() != "openai/gpt-4-turbo" {
		t.Errorf("Name() = %v, want openai/gpt-4-turbo", p.Name())
	}
}

func TestOpenAIProvider_BuildRequest_SystemMessage(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-4o"})

	got := p.buildRequest(&Request{
		System:   "You are a helpful assistant",
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})

	if len(got.Messages) != 2 {
		t.Fatalf("Messages len = %d, want 2", len(got.Messages))
	}
	if got.Messages[0].Role != "system" {
		t.Errorf("first message role = %v, want system", got.Messages[0].Role)
	}
	if got.Messages[0].Content != "You are a helpful assistant" {
		t.Errorf("first message content = %v", got.Messages[0].Content)
	}
}

func TestOpenAIProvider_Generate_HTTPSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Path = %v, want /v1/chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %v, want Bearer test-key", r.Header.Get("Authorization"))
		}

		resp := map[string]interface{}{
			"id": "chatcmpl-test",
			"choices": []map[string]interface{}{
				{
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": "Hello from OpenAI!",
					},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]interface{}{
				"prompt_tokens":     10,
				"completion_tokens": 5,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	got, err := p.Generate(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got.Content != "Hello from OpenAI!" {
		t.Errorf("Content = %v, want Hello from OpenAI!", got.Content)
	}
}

func TestOpenAIProvider_Generate_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"choices": []map[string]interface{}{},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	_, err := p.Generate(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	if err == nil {
		t.Error("Generate() expected error for empty choices")
	}
}

func TestOpenAIProvider_Generate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "bad-key",
		BaseURL: server.URL,
	})

	_, err := p.Generate(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	if err == nil {
		t.Fatal("Generate() expected error for HTTP 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should contain status code 401, got: %v", err)
	}
	if isRetryableHTTPError(err) {
		t.Error("401 error should not be retryable")
	}
}

// Context cancellation tests

func TestClaudeProvider_Generate_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	defer server.Close()

	p := NewClaudeProvider(ClaudeConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, &Request{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	if err == nil {
		t.Error("Generate() expected error for cancelled context")
	}
}

func TestOpenAIProvider_Generate_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{})
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, &Request{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	if err == nil {
		t.Error("Generate() expected error for cancelled context")
	}
}
