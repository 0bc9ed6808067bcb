// Package chat ties the LLM client, image encoding, and the
// conversation log together. Every submitted exchange ends up in the
// store, whether or not the API call succeeded.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nachoal/vision-chat-go/imaging"
	"github.com/nachoal/vision-chat-go/llm"
	"github.com/nachoal/vision-chat-go/store"
)

// ErrEmptyPrompt is returned when a submission has neither a prompt
// nor an image. Nothing is sent or persisted in that case.
var ErrEmptyPrompt = errors.New("please provide a prompt or an image")

// Config contains service configuration
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// DefaultConfig returns a default service configuration
func DefaultConfig() Config {
	return Config{
		Model:     "gpt-4o-mini",
		MaxTokens: 300,
	}
}

// Option configures the service
type Option func(*Config)

// WithModel sets the model sent with every request
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithMaxTokens sets the response token budget
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float32) Option {
	return func(c *Config) {
		c.Temperature = t
	}
}

// Service handles one prompt/response exchange at a time
type Service struct {
	client llm.Client
	store  *store.Store
	logger *slog.Logger
	config Config
}

// New creates a chat service
func New(client llm.Client, st *store.Store, logger *slog.Logger, opts ...Option) *Service {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		client: client,
		store:  st,
		logger: logger,
		config: config,
	}
}

// Result is the outcome of one exchange. Err holds the API error when
// the call failed; Response and Record carry its literal text either way.
type Result struct {
	Response string
	Record   store.Conversation
	Err      error
}

// Ask sends the prompt (plus optional image) to the model, persists
// the exchange, and returns the response text. The record is written
// on both the success and failure paths; only validation and encoding
// problems before the API call skip persistence.
func (s *Service) Ask(ctx context.Context, prompt, imagePath string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && imagePath == "" {
		return nil, ErrEmptyPrompt
	}

	// Encode the image, if any, before touching the network
	var b64 string
	if imagePath != "" {
		img, err := imaging.Load(imagePath)
		if err != nil {
			return nil, fmt.Errorf("error reading image: %w", err)
		}
		b64, err = imaging.EncodeBase64(img)
		if err != nil {
			return nil, err
		}
	}

	var imageURL string
	if b64 != "" {
		imageURL = imaging.DataURL(b64)
	}

	request := &llm.ChatRequest{
		Model:       s.config.Model,
		Messages:    []llm.Message{llm.UserMessage(prompt, imageURL)},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	s.logger.Debug("sending chat request", "model", s.config.Model, "has_image", b64 != "")

	var responseText string
	response, err := s.client.Chat(ctx, request)
	if err != nil {
		// The literal error text is what gets stored and displayed
		responseText = fmt.Sprintf("Error: %v", err)
		s.logger.Warn("chat request failed", "error", err)
	} else {
		responseText = response.Text()
		if response.Usage != nil {
			s.logger.Debug("chat request complete", "total_tokens", response.Usage.TotalTokens)
		}
	}

	rec := store.Conversation{
		UserPrompt:  prompt,
		Base64Image: b64,
		BotResponse: responseText,
	}
	if saveErr := s.store.Save(&rec); saveErr != nil {
		return nil, saveErr
	}

	return &Result{
		Response: responseText,
		Record:   rec,
		Err:      err,
	}, nil
}

// History returns all stored exchanges, most recent first
func (s *Service) History() ([]store.Conversation, error) {
	return s.store.All()
}
