package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bimmerbailey/ryulog/internal/config"
	"github.com/bimmerbailey/ryulog/internal/llm/ollama"
)

// Provider defines the interface for LLM interactions.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Chat sends messages and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// ChatStream sends messages and returns a channel of streaming events.
	// The channel is closed when the stream completes or fails.
	ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error)

	// Heartbeat returns nil if the provider is reachable.
	Heartbeat(ctx context.Context) error

	// ModelAvailable reports whether model is ready without a download.
	ModelAvailable(ctx context.Context, model string) (bool, error)
}

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender: "system", "user", or "assistant"
	Role string

	// Content is the message text
	Content string
}

// ChatOptions configures chat behavior.
// All fields are optional; nil opts uses provider defaults.
type ChatOptions struct {
	// Model overrides the provider's default model
	Model string

	// Temperature controls randomness; 0 keeps explanations repeatable
	Temperature float32

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int
}

// Response represents a complete LLM response.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

// StreamEvent represents a single event in a streaming response.
type StreamEvent struct {
	// Content is the incremental text chunk
	Content string

	// Done indicates if this is the final event in the stream
	Done bool

	// Error terminates the stream when non-nil
	Error error
}

// Common errors returned by LLM providers. The ollama package's sentinels
// are the same values.
var (
	ErrProviderUnavailable = ollama.ErrProviderUnavailable
	ErrContextCanceled     = ollama.ErrContextCanceled
	ErrModelNotFound       = ollama.ErrModelNotFound
)

// NewProvider creates an LLM provider based on the configuration.
func NewProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	providerType := strings.ToLower(cfg.LLM.Provider)
	logger.Debug("creating llm provider", "type", providerType)

	switch providerType {
	case "ollama":
		p, err := ollama.New(ollama.Config{
			Host:      cfg.LLM.Ollama.Host,
			Model:     cfg.LLM.Ollama.Model,
			KeepAlive: cfg.LLM.Ollama.KeepAlive,
			NumCtx:    cfg.LLM.Ollama.NumCtx,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &ollamaProviderAdapter{provider: p}, nil

	case "":
		return nil, errors.New("llm provider not specified in configuration")

	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: ollama)", providerType)
	}
}

// ollamaProviderAdapter adapts ollama.Provider to Provider. The ollama
// package keeps its own types so it does not import this one.
type ollamaProviderAdapter struct {
	provider *ollama.Provider
}

func toOllama(messages []Message, opts *ChatOptions) ([]ollama.Message, *ollama.ChatOptions) {
	out := make([]ollama.Message, len(messages))
	for i, msg := range messages {
		out[i] = ollama.Message{Role: msg.Role, Content: msg.Content}
	}
	if opts == nil {
		return out, nil
	}
	return out, &ollama.ChatOptions{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
}

func (a *ollamaProviderAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	msgs, o := toOllama(messages, opts)
	resp, err := a.provider.Chat(ctx, msgs, o)
	if err != nil {
		return nil, err
	}
	return &Response{
		Content:      resp.Content,
		Model:        resp.Model,
		TokensPrompt: resp.TokensPrompt,
		TokensTotal:  resp.TokensTotal,
	}, nil
}

func (a *ollamaProviderAdapter) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error) {
	msgs, o := toOllama(messages, opts)
	stream, err := a.provider.ChatStream(ctx, msgs, o)
	if err != nil {
		return nil, err
	}

	events := make(chan StreamEvent, 10)
	go func() {
		defer close(events)
		for ev := range stream {
			events <- StreamEvent{Content: ev.Content, Done: ev.Done, Error: ev.Error}
		}
	}()
	return events, nil
}

func (a *ollamaProviderAdapter) Heartbeat(ctx context.Context) error {
	return a.provider.Heartbeat(ctx)
}

func (a *ollamaProviderAdapter) ModelAvailable(ctx context.Context, model string) (bool, error) {
	return a.provider.ModelAvailable(ctx, model)
}

// Collect drains a stream, passing each chunk to onChunk, and returns the
// full text. onChunk may be nil.
func Collect(stream <-chan StreamEvent, onChunk func(string)) (string, error) {
	var sb strings.Builder
	for ev := range stream {
		if ev.Error != nil {
			return sb.String(), ev.Error
		}
		if ev.Content != "" {
			sb.WriteString(ev.Content)
			if onChunk != nil {
				onChunk(ev.Content)
			}
		}
	}
	return sb.String(), nil
}
