package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nachoal/vision-chat-go/llm"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewClient(); err == nil {
		t.Fatal("expected error when no API key is available")
	}
}

func TestNewClientReadsEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.options.APIKey != "sk-from-env" {
		t.Fatalf("APIKey = %q, want sk-from-env", client.options.APIKey)
	}
}

func TestChatRequestShape(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(llm.ChatResponse{
			Choices: []llm.Choice{{
				Message:      llm.ResponseMessage{Role: llm.RoleAssistant, Content: "a cat"},
				FinishReason: "stop",
			}},
			Usage: &llm.Usage{TotalTokens: 25},
		})
	}))
	defer srv.Close()

	client, err := NewClient(
		llm.WithAPIKey("sk-test"),
		llm.WithBaseURL(srv.URL),
	)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{llm.UserMessage("what animal?", "data:image/png;base64,Zm9v")},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if resp.Text() != "a cat" {
		t.Fatalf("Text() = %q, want a cat", resp.Text())
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q", gotAuth)
	}

	// Defaults fill in the fixed model and token budget
	if gotBody["model"] != "gpt-4o-mini" {
		t.Fatalf("model = %v, want gpt-4o-mini", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(300) {
		t.Fatalf("max_tokens = %v, want 300", gotBody["max_tokens"])
	}

	// The message carries text plus the inline image part
	msgs := gotBody["messages"].([]interface{})
	content := msgs[0].(map[string]interface{})["content"].([]interface{})
	if len(content) != 2 {
		t.Fatalf("got %d content parts, want 2", len(content))
	}
	imgPart := content[1].(map[string]interface{})
	if imgPart["type"] != "image_url" {
		t.Fatalf("part type = %v, want image_url", imgPart["type"])
	}
	url := imgPart["image_url"].(map[string]interface{})["url"].(string)
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("image url = %q", url)
	}
}

func TestChatSurfacesAPIErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Rate limit reached for gpt-4o-mini",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(llm.WithAPIKey("sk-test"), llm.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{llm.TextMessage(llm.RoleUser, "hi")},
	})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "Rate limit reached for gpt-4o-mini") {
		t.Fatalf("error should carry the API message verbatim, got: %v", err)
	}
}

func TestChatNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client, err := NewClient(llm.WithAPIKey("sk-test"), llm.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{llm.TextMessage(llm.RoleUser, "hi")},
	})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "status 502") || !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("error should include status and body, got: %v", err)
	}
}

func TestChatSingleAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(llm.WithAPIKey("sk-test"), llm.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{llm.TextMessage(llm.RoleUser, "hi")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("got %d attempts, want 1 (no retries)", calls)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []llm.Model{
				{ID: "gpt-4o-mini", Object: "model", OwnedBy: "openai"},
				{ID: "gpt-4o", Object: "model", OwnedBy: "openai"},
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(llm.WithAPIKey("sk-test"), llm.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[0].ID != "gpt-4o-mini" {
		t.Fatalf("unexpected models: %+v", models)
	}
}
