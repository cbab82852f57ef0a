// Package ollama talks to a local Ollama server for `ryulog explain`.
//
// The package keeps its own message types so that it does not import
// internal/llm; llm adapts them.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "llama3.2"

// Config holds Ollama-specific configuration.
type Config struct {
	Host      string // API endpoint; empty uses OLLAMA_HOST or localhost:11434
	Model     string // model used when a request names none
	KeepAlive string // how long the model stays loaded, e.g. "5m"
	NumCtx    int    // context window override when positive
}

type Message struct {
	Role    string
	Content string
}

type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

// StreamEvent is one chunk of a streamed reply. An event with Error set
// is always the last one.
type StreamEvent struct {
	Content string
	Done    bool
	Error   error
}

var (
	ErrProviderUnavailable = errors.New("llm provider is not reachable")
	ErrContextCanceled     = errors.New("operation was canceled")
	ErrModelNotFound       = errors.New("requested model is not available")
)

// Provider sends chat requests to one Ollama server. It is safe for
// concurrent use.
type Provider struct {
	client    *api.Client
	config    Config
	keepAlive *api.Duration
	logger    *slog.Logger
}

// New creates a provider. Nothing is sent to the server until the first
// request.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	var client *api.Client
	if cfg.Host != "" {
		u, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host: %w", err)
		}
		client = api.NewClient(u, http.DefaultClient)
	} else {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		client = c
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	p := &Provider{client: client, config: cfg, logger: logger}
	if cfg.KeepAlive != "" {
		d, err := time.ParseDuration(cfg.KeepAlive)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama keep_alive %q: %w", cfg.KeepAlive, err)
		}
		p.keepAlive = &api.Duration{Duration: d}
	}

	logger.Debug("ollama provider ready", "host", cfg.Host, "model", cfg.Model)
	return p, nil
}

// Chat sends messages and waits for the complete reply.
func (p *Provider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	req, err := p.request(messages, opts, false)
	if err != nil {
		return nil, err
	}

	var (
		sb   strings.Builder
		last api.ChatResponse
	)
	err = p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		last = resp
		return nil
	})
	if err != nil {
		return nil, p.wrap(err, req.Model)
	}

	p.logger.Debug("chat completed", "model", last.Model,
		"prompt_tokens", last.PromptEvalCount, "eval_tokens", last.EvalCount)
	return &Response{
		Content:      sb.String(),
		Model:        last.Model,
		TokensPrompt: last.PromptEvalCount,
		TokensTotal:  last.PromptEvalCount + last.EvalCount,
	}, nil
}

// ChatStream sends messages and returns a channel of reply chunks. The
// channel is closed when the reply ends, fails or ctx is cancelled.
func (p *Provider) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error) {
	req, err := p.request(messages, opts, true)
	if err != nil {
		return nil, err
	}

	events := make(chan StreamEvent, 16)
	send := func(ev StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(events)

		err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if resp.Message.Content == "" && !resp.Done {
				return nil
			}
			if !send(StreamEvent{Content: resp.Message.Content, Done: resp.Done}) {
				return ctx.Err()
			}
			if resp.Done {
				p.logger.Debug("chat stream completed", "model", resp.Model,
					"prompt_tokens", resp.PromptEvalCount, "eval_tokens", resp.EvalCount)
			}
			return nil
		})
		if err != nil {
			// The receiver may be gone; a full buffer must not block forever.
			select {
			case events <- StreamEvent{Error: p.wrap(err, req.Model), Done: true}:
			default:
			}
		}
	}()

	return events, nil
}

// Heartbeat returns nil when the server answers.
func (p *Provider) Heartbeat(ctx context.Context) error {
	if err := p.client.Heartbeat(ctx); err != nil {
		p.logger.Debug("ollama heartbeat failed", "error", err)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return nil
}

// ModelAvailable reports whether model has been pulled. A name without a
// tag matches its ":latest" variant.
func (p *Provider) ModelAvailable(ctx context.Context, model string) (bool, error) {
	list, err := p.client.List(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	want := model
	if !strings.Contains(want, ":") {
		want += ":latest"
	}
	for _, m := range list.Models {
		if m.Name == model || m.Model == model || m.Name == want || m.Model == want {
			return true, nil
		}
	}
	p.logger.Debug("model not pulled", "model", model, "available", len(list.Models))
	return false, nil
}

// request builds a chat request with the provider's runner options.
func (p *Provider) request(messages []Message, opts *ChatOptions, stream bool) (*api.ChatRequest, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	if opts == nil {
		opts = &ChatOptions{}
	}

	req := &api.ChatRequest{
		Model:     p.config.Model,
		Messages:  make([]api.Message, len(messages)),
		Stream:    &stream,
		KeepAlive: p.keepAlive,
		Options:   map[string]interface{}{"temperature": opts.Temperature},
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	for i, m := range messages {
		req.Messages[i] = api.Message{Role: m.Role, Content: m.Content}
	}
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}
	if p.config.NumCtx > 0 {
		req.Options["num_ctx"] = p.config.NumCtx
	}

	p.logger.Debug("sending chat request", "model", req.Model, "messages", len(messages), "stream", stream)
	return req, nil
}

// wrap maps client errors onto the package sentinels.
func (p *Provider) wrap(err error, model string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrContextCanceled, err)
	}
	var status api.StatusError
	if errors.As(err, &status) && status.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s (run `ollama pull %s`)", ErrModelNotFound, model, model)
	}
	p.logger.Error("ollama request failed", "model", model, "error", err)
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
