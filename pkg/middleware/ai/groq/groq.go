// Package groq provides a flow client for Groq's OpenAI-compatible Chat
// Completions API. Groq hosts both model tiers used by the adaptive
// router: a fast general model and a heavier reasoning model.
//
// Example usage:
//
//	client, err := groq.New("llama-3.3-70b-versatile")
//	if err != nil {
//		log.Fatal(err)
//	}
//	flow := ragbase.NewFlow().Use(ai.Agent(client))
package groq

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/openai/openai-go/v2/shared/constant"

	"github.com/ragbase-ai/go-ragbase/pkg/helpers"
	"github.com/ragbase-ai/go-ragbase/pkg/middleware/ai"
	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Default model tiers.
const (
	// GeneralModel handles everyday lookup-style questions.
	GeneralModel = "llama-3.3-70b-versatile"
	// ComplexModel handles analytical and philosophical questions that
	// benefit from deeper reasoning.
	ComplexModel = "deepseek-r1-distill-llama-70b"
)

// Client implements the ai.Client interface for Groq.
//
// Provides streaming chat completions against Groq's hosted models.
type Client struct {
	client *openai.Client
	model  shared.ChatModel
	config *Config
}

// Config holds Groq-specific configuration.
//
// All fields are optional with sensible defaults.
type Config struct {
	// Required. API key for Groq authentication (GROQ_API_KEY env by default)
	APIKey string

	// Optional. Base URL (defaults to Groq's OpenAI-compatible endpoint)
	BaseURL string

	// Optional. Controls randomness in token selection (0.0-2.0)
	Temperature *float32

	// Optional. Nucleus sampling parameter (0.0-1.0)
	TopP *float32

	// Optional. Maximum number of tokens in the response
	MaxTokens *int

	// Optional. Strings that stop text generation when encountered
	Stop []string

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
	if o.config.APIKey != "" {
		cfg.APIKey = o.config.APIKey
	}
	if o.config.BaseURL != "" {
		cfg.BaseURL = o.config.BaseURL
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
	if o.config.Stream != nil {
		cfg.Stream = o.config.Stream
	}
	if o.config.ResponseFormat != nil {
		cfg.ResponseFormat = o.config.ResponseFormat
	}
}

// WithConfig sets custom Groq configuration.
//
// Only non-zero fields override the defaults.
//
// Example:
//
//	client, _ := groq.New(groq.ComplexModel, groq.WithConfig(&groq.Config{
//	    Temperature: helpers.PtrOf(float32(0.2)),
//	}))
func WithConfig(cfg *Config) Option {
	return configOption{config: cfg}
}

// DefaultConfig returns sensible defaults for Groq.
//
// API key from GROQ_API_KEY, deterministic sampling, 8000 max completion
// tokens, streaming on.
func DefaultConfig() *Config {
	return &Config{
		APIKey:      os.Getenv("GROQ_API_KEY"),
		BaseURL:     DefaultBaseURL,
		Temperature: helpers.PtrOf(float32(0.0)),
		MaxTokens:   helpers.PtrOf(8000),
		Stream:      helpers.PtrOf(true),
	}
}

// New creates a new Groq client with optional configuration.
//
// Requires GROQ_API_KEY environment variable or config.APIKey.
//
// Example:
//
//	client, err := groq.New(groq.GeneralModel)
//	if err != nil { log.Fatal(err) }
func New(model string, opts ...Option) (*Client, error) {
	if model == "" {
		model = GeneralModel
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt.Apply(config)
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set or provided in config")
	}

	clientOptions := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(helpers.DefaultString(config.BaseURL, DefaultBaseURL)),
	}

	openaiClient := openai.NewClient(clientOptions...)

	return &Client{
		client: &openaiClient,
		model:  shared.ChatModel(model),
		config: config,
	}, nil
}

// Model returns the model name this client is bound to.
func (c *Client) Model() string {
	return string(c.model)
}

var _ ai.Client = (*Client)(nil)

// Chat implements the ai.Client interface with streaming support.
//
// Input: assembled prompt via ragbase.Request
// Output: streamed response via ragbase.Response
// Behavior: STREAMING - writes token fragments as they arrive
func (c *Client) Chat(r *ragbase.Request, w *ragbase.Response, opts *ai.ChatOptions) error {
	var input string
	if err := ragbase.Read(r, &input); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	params := c.buildChatParams(input, opts)

	shouldStream := c.config.Stream == nil || *c.config.Stream
	if shouldStream {
		return c.executeStreamingRequest(params, r, w)
	}
	return c.executeNonStreamingRequest(params, r, w)
}

// buildChatParams creates Groq chat completion parameters from client
// config and per-request options.
func (c *Client) buildChatParams(input string, opts *ai.ChatOptions) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(input),
		},
	}

	if c.config.Temperature != nil {
		params.Temperature = openai.Float(float64(*c.config.Temperature))
	}
	if c.config.TopP != nil {
		params.TopP = openai.Float(float64(*c.config.TopP))
	}
	if c.config.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*c.config.MaxTokens))
	}
	if len(c.config.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: c.config.Stop}
	}

	// Per-request schema takes priority over the client-level format.
	responseFormat := c.config.ResponseFormat
	if opts != nil && opts.Schema != nil {
		responseFormat = opts.Schema
	}
	if responseFormat != nil {
		c.setResponseFormat(responseFormat, &params)
	}

	return params
}

// setResponseFormat applies structured output requirements to the request.
func (c *Client) setResponseFormat(responseFormat *ai.ResponseFormat, params *openai.ChatCompletionNewParams) {
	switch responseFormat.Type {
	case "json_object":
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: constant.JSONObject("").Default()},
		}
	case "json_schema":
		if responseFormat.Schema != nil {
			c.setJSONSchemaFormat(responseFormat.Schema, params)
		}
	}
}

// setJSONSchemaFormat sets a strict JSON schema response format, falling
// back to json_object when the schema cannot be marshaled.
func (c *Client) setJSONSchemaFormat(schema any, params *openai.ChatCompletionNewParams) {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: constant.JSONObject("").Default()},
		}
		return
	}

	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			Type: constant.JSONSchema("").Default(),
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "response_schema",
				Schema:      schemaBytes,
				Strict:      openai.Bool(true),
				Description: openai.String("Generated schema for structured response"),
			},
		},
	}
}

// executeStreamingRequest streams completion fragments to the response writer.
func (c *Client) executeStreamingRequest(params openai.ChatCompletionNewParams, r *ragbase.Request, w *ragbase.Response) (err error) {
	stream := c.client.Chat.Completions.NewStreaming(r.Context, params)
	defer func() {
		if closeErr := stream.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close stream: %w", closeErr)
		}
	}()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			if _, writeErr := w.Data.Write([]byte(delta.Content)); writeErr != nil {
				return writeErr
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("failed to receive stream response: %w", err)
	}

	return nil
}

// executeNonStreamingRequest performs a blocking completion call.
func (c *Client) executeNonStreamingRequest(params openai.ChatCompletionNewParams, r *ragbase.Request, w *ragbase.Response) error {
	response, err := c.client.Chat.Completions.New(r.Context, params)
	if err != nil {
		return fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(response.Choices) == 0 {
		return fmt.Errorf("no response choices returned")
	}

	_, err = w.Data.Write([]byte(response.Choices[0].Message.Content))
	return err
}
