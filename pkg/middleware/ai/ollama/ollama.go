// Package ollama provides a flow client for locally hosted models via an
// Ollama server. Useful as an offline fallback when no hosted provider
// key is configured.
package ollama

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/ragbase-ai/go-ragbase/pkg/helpers"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/ai"
	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// DefaultModel is used when New is called with an empty model name.
const DefaultModel = "llama3.2"

// Client implements the ai.Client interface for Ollama.
//
// Provides streaming chat completions against a local Ollama server.
//
// Example:
//
//	client, _ := ollama.New("llama3.2")
//	agent := ai.Agent(client)
type Client struct {
	client *api.Client
	model  string
	config *Config
}

// Config holds Ollama-specific configuration.
//
// All fields are optional with sensible defaults.
type Config struct {
	// Optional. Ollama server host (defaults to localhost:11434 or OLLAMA_HOST env)
	Host string

	// Optional. Controls randomness in token selection (0.0-2.0)
	Temperature *float32

	// Optional. Nucleus sampling parameter (0.0-1.0)
	TopP *float32

	// Optional. Maximum number of tokens in the response
	MaxTokens *int

	// Optional. Strings that stop text generation when encountered
	Stop []string

	// Optional. How long the model stays loaded in memory (e.g. "5m", "1h")
	KeepAlive string

	// Optional. Enable/disable streaming of responses (true by default)
	Stream *bool

	// Optional. Structured output format (json_object or json_schema)
	ResponseFormat *ai.ResponseFormat
}

// Option interface for functional options pattern
type Option interface {
	Apply(*Config)
}

type configOption struct{ config *Config }

func (o configOption) Apply(cfg *Config) {
	if o.config.Host != "" {
		cfg.Host = o.config.Host
	}
	if o.config.Temperature != nil {
		cfg.Temperature = o.config.Temperature
	}
	if o.config.TopP != nil {
		cfg.TopP = o.config.TopP
	}
	if o.config.MaxTokens != nil {
		cfg.MaxTokens = o.config.MaxTokens
	}
	if len(o.config.Stop) > 0 {
		cfg.Stop = o.config.Stop
	}
	if o.config.KeepAlive != "" {
		cfg.KeepAlive = o.config.KeepAlive
	}
	if o.config.Stream != nil {
		cfg.Stream = o.config.Stream
	}
	if o.config.ResponseFormat != nil {
		cfg.ResponseFormat = o.config.ResponseFormat
	}
}

// WithConfig sets custom Ollama configuration.
//
// Only non-zero fields override the defaults.
func WithConfig(config *Config) Option {
	return configOption{config: config}
}

// DefaultConfig returns sensible defaults for Ollama.
//
// Host resolution is left to the Ollama SDK (OLLAMA_HOST env or
// localhost:11434); generation matches the question-answering setup:
// deterministic sampling, 8000 max tokens, streaming on.
func DefaultConfig() *Config {
	return &Config{
		Temperature: helpers.PtrOf(float32(0.0)),
		MaxTokens:   helpers.PtrOf(8000),
		KeepAlive:   "5m",
		Stream:      helpers.PtrOf(true),
	}
}

// New creates a new Ollama client with optional configuration.
//
// Example:
//
//	client, err := ollama.New("llama3.2", ollama.WithConfig(&ollama.Config{
//		Host: "http://remote:11434",
//	}))
func New(model string, opts ...Option) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt.Apply(config)
	}

	var client *api.Client
	var err error

	if config.Host == "" {
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create client from environment: %w", err)
		}
	} else {
		u, parseErr := url.Parse(config.Host)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid host URL: %w", parseErr)
		}
		client = api.NewClient(u, http.DefaultClient)
	}

	return &Client{
		client: client,
		model:  model,
		config: config,
	}, nil
}

// Model returns the model name this client is bound to.
func (c *Client) Model() string {
	return c.model
}

var _ ai.Client = (*Client)(nil)

// Chat implements the ai.Client interface with streaming support.
//
// Input: assembled prompt via ragbase.Request
// Output: streamed response via ragbase.Response
// Behavior: STREAMING - writes content fragments as they arrive
func (c *Client) Chat(r *ragbase.Request, w *ragbase.Response, opts *ai.ChatOptions) error {
	var input string
	if err := ragbase.Read(r, &input); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var schema *ai.ResponseFormat
	if opts != nil {
		schema = opts.Schema
	}
	req := c.buildChatRequest(input, schema)

	responseFunc := func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		_, err := w.Data.Write([]byte(resp.Message.Content))
		return err
	}

	if err := c.client.Chat(r.Context, req, responseFunc); err != nil {
		return fmt.Errorf("failed to chat with ollama: %w", err)
	}
	return nil
}

// buildChatRequest creates an Ollama ChatRequest from client config and
// an optional per-request schema override.
func (c *Client) buildChatRequest(input string, schemaOverride *ai.ResponseFormat) *api.ChatRequest {
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "user", Content: input},
		},
		Options: make(map[string]any),
	}

	if c.config.Temperature != nil {
		req.Options["temperature"] = *c.config.Temperature
	}
	if c.config.TopP != nil {
		req.Options["top_p"] = *c.config.TopP
	}
	if c.config.MaxTokens != nil {
		req.Options["num_predict"] = *c.config.MaxTokens
	}
	if len(c.config.Stop) > 0 {
		req.Options["stop"] = c.config.Stop
	}
	if c.config.KeepAlive != "" {
		req.Options["keep_alive"] = c.config.KeepAlive
	}
	if c.config.Stream != nil {
		req.Stream = c.config.Stream
	}

	responseFormat := c.config.ResponseFormat
	if schemaOverride != nil {
		responseFormat = schemaOverride
	}
	if responseFormat != nil {
		req.Format = formatFor(responseFormat)
	}

	return req
}

// formatFor renders a response format as Ollama's format field: the
// schema object itself for json_schema, the "json" keyword otherwise.
func formatFor(responseFormat *ai.ResponseFormat) json.RawMessage {
	if responseFormat.Type == "json_schema" && responseFormat.Schema != nil {
		if schemaBytes, err := json.Marshal(responseFormat.Schema); err == nil {
			return json.RawMessage(schemaBytes)
		}
	}
	return json.RawMessage(`"json"`)
}
