package providers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/c360studio/labsentinel/llm"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
		baseURL  string
		expected string
	}{
		{"openai default", &OpenAIProvider{}, "", "https://api.openai.com/v1/chat/completions"},
		{"nim base", &OpenAIProvider{}, "https://integrate.api.nvidia.com/v1", "https://integrate.api.nvidia.com/v1/chat/completions"},
		{"trailing slash stripped", &OpenAIProvider{}, "https://integrate.api.nvidia.com/v1/", "https://integrate.api.nvidia.com/v1/chat/completions"},
		{"full path untouched", &OpenAIProvider{}, "https://example.com/v1/chat/completions", "https://example.com/v1/chat/completions"},
		{"ollama default", &OllamaProvider{}, "", "http://localhost:11434/v1/chat/completions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.provider.BuildURL(tt.baseURL); got != tt.expected {
				t.Errorf("BuildURL(%q) = %q, want %q", tt.baseURL, got, tt.expected)
			}
		})
	}
}

func TestOpenAIHeaders(t *testing.T) {
	t.Setenv("NVIDIA_API_KEY", "nvapi-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	provider := &OpenAIProvider{}
	req, _ := http.NewRequest(http.MethodPost, "https://example.com", nil)
	provider.SetHeaders(req)

	if got := req.Header.Get("Authorization"); got != "Bearer nvapi-test" {
		t.Errorf("NVIDIA_API_KEY should win, got %q", got)
	}

	t.Setenv("NVIDIA_API_KEY", "")
	req2, _ := http.NewRequest(http.MethodPost, "https://example.com", nil)
	provider.SetHeaders(req2)
	if got := req2.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("should fall back to OPENAI_API_KEY, got %q", got)
	}
}

func TestBuildRequestBodyTextOnly(t *testing.T) {
	provider := &OllamaProvider{}
	temp := 0.0

	body, err := provider.BuildRequestBody("test-model", []llm.Message{
		{Role: "system", Content: "You are an auditor."},
		{Role: "user", Content: "Compare these."},
	}, &temp, 2000)
	if err != nil {
		t.Fatalf("build body: %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}

	if req["model"] != "test-model" {
		t.Errorf("model = %v", req["model"])
	}
	if req["temperature"] != 0.0 {
		t.Errorf("explicit zero temperature must be sent, got %v", req["temperature"])
	}
	if req["max_tokens"] != 2000.0 {
		t.Errorf("max_tokens = %v", req["max_tokens"])
	}

	messages := req["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	first := messages[0].(map[string]any)
	if _, isString := first["content"].(string); !isString {
		t.Error("text-only messages carry plain string content")
	}
}

func TestBuildRequestBodyWithImage(t *testing.T) {
	provider := &OpenAIProvider{}

	body, err := provider.BuildRequestBody("vision-model", []llm.Message{
		{Role: "user", Content: "Describe this image", ImageURL: "data:image/jpeg;base64,aGVsbG8="},
	}, nil, 0)
	if err != nil {
		t.Fatalf("build body: %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}

	if _, present := req["temperature"]; present {
		t.Error("nil temperature must be omitted")
	}
	if _, present := req["max_tokens"]; present {
		t.Error("zero max_tokens must be omitted")
	}

	messages := req["messages"].([]any)
	content := messages[0].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("expected text and image parts, got %d", len(content))
	}

	textPart := content[0].(map[string]any)
	if textPart["type"] != "text" || textPart["text"] != "Describe this image" {
		t.Errorf("unexpected text part: %v", textPart)
	}

	imagePart := content[1].(map[string]any)
	if imagePart["type"] != "image_url" {
		t.Errorf("unexpected image part type: %v", imagePart["type"])
	}
	imageURL := imagePart["image_url"].(map[string]any)
	if imageURL["url"] != "data:image/jpeg;base64,aGVsbG8=" {
		t.Errorf("unexpected image url: %v", imageURL["url"])
	}
}

func TestParseResponse(t *testing.T) {
	provider := &OllamaProvider{}

	body := []byte(`{
		"model": "test-model",
		"choices": [{"message": {"role": "assistant", "content": "A gel."}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 100, "completion_tokens": 20, "total_tokens": 120}
	}`)

	resp, err := provider.ParseResponse(body, "test-model")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Content != "A gel." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 120 {
		t.Errorf("total tokens = %d", resp.Usage.TotalTokens)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}
}

func TestParseResponseNoChoices(t *testing.T) {
	provider := &OllamaProvider{}

	if _, err := provider.ParseResponse([]byte(`{"model": "m", "choices": []}`), "m"); err == nil {
		t.Error("expected error for empty choices")
	}
	if _, err := provider.ParseResponse([]byte(`not json`), "m"); err == nil {
		t.Error("expected error for malformed body")
	}
}
