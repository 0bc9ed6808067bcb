package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserMessageTextOnly(t *testing.T) {
	msg := UserMessage("hello", "")

	if msg.Role != RoleUser {
		t.Fatalf("Role = %q, want user", msg.Role)
	}
	if len(msg.Content) != 1 {
		t.Fatalf("got %d content parts, want 1", len(msg.Content))
	}
	if msg.Content[0].Type != "text" || msg.Content[0].Text != "hello" {
		t.Fatalf("unexpected part: %+v", msg.Content[0])
	}
}

func TestUserMessageWithImage(t *testing.T) {
	msg := UserMessage("what is this?", "data:image/png;base64,Zm9v")

	if len(msg.Content) != 2 {
		t.Fatalf("got %d content parts, want 2", len(msg.Content))
	}
	if msg.Content[1].Type != "image_url" {
		t.Fatalf("second part type = %q, want image_url", msg.Content[1].Type)
	}
	if msg.Content[1].ImageURL == nil || msg.Content[1].ImageURL.URL != "data:image/png;base64,Zm9v" {
		t.Fatalf("unexpected image part: %+v", msg.Content[1])
	}
}

func TestMessageJSONShape(t *testing.T) {
	msg := UserMessage("hi", "data:image/png;base64,Zm9v")

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	// Text parts must not leak image_url keys and vice versa
	for _, want := range []string{
		`"role":"user"`,
		`"type":"text"`,
		`"text":"hi"`,
		`"type":"image_url"`,
		`"url":"data:image/png;base64,Zm9v"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("marshalled message missing %s:\n%s", want, got)
		}
	}
	if strings.Count(got, `"image_url"`) != 2 { // type value + object key
		t.Errorf("unexpected image_url occurrences:\n%s", got)
	}
}

func TestChatResponseText(t *testing.T) {
	var nilResp *ChatResponse
	if got := nilResp.Text(); got != "" {
		t.Fatalf("nil response Text() = %q, want empty", got)
	}

	empty := &ChatResponse{}
	if got := empty.Text(); got != "" {
		t.Fatalf("empty response Text() = %q, want empty", got)
	}

	resp := &ChatResponse{
		Choices: []Choice{
			{Message: ResponseMessage{Content: "first"}},
			{Message: ResponseMessage{Content: "second"}},
		},
	}
	if got := resp.Text(); got != "first" {
		t.Fatalf("Text() = %q, want first", got)
	}
}

func TestClientOptions(t *testing.T) {
	opts := ClientOptions{}
	for _, opt := range []ClientOption{
		WithAPIKey("sk-test"),
		WithBaseURL("http://localhost:8080/v1"),
		WithModel("gpt-4o-mini"),
		WithMaxTokens(300),
		WithHeaders(map[string]string{"X-Test": "1"}),
	} {
		opt(&opts)
	}

	if opts.APIKey != "sk-test" || opts.BaseURL != "http://localhost:8080/v1" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.DefaultModel != "gpt-4o-mini" || opts.MaxTokens != 300 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.Headers["X-Test"] != "1" {
		t.Fatalf("headers not applied: %+v", opts.Headers)
	}
}
