// Package ai defines the model client abstraction shared by all inference
// providers, plus the agent middleware that exposes a client as a flow stage.
package ai

import (
	"github.com/invopop/jsonschema"

	"github.com/ragbase-ai/go-ragbase/pkg/ragbase"
)

// Client is the interface for AI inference providers.
//
// A client reads the fully assembled prompt from the request and streams
// the model's response to the response writer as fragments arrive.
type Client interface {
	Chat(r *ragbase.Request, w *ragbase.Response, opts *ChatOptions) error
}

// ChatOptions holds per-request options for a chat call.
type ChatOptions struct {
	Schema *ResponseFormat // Structured output requirements, if any
}

// Config holds model configuration parameters shared across providers.
type Config struct {
	// Model parameters
	Temperature      *float32 `json:"temperature,omitempty"`       // 0.0 - 2.0, controls randomness
	TopP             *float32 `json:"top_p,omitempty"`             // 0.0 - 1.0, nucleus sampling
	MaxTokens        *int     `json:"max_tokens,omitempty"`        // Maximum tokens to generate
	Stop             []string `json:"stop,omitempty"`              // Stop sequences
	PresencePenalty  *float32 `json:"presence_penalty,omitempty"`  // -2.0 - 2.0, penalize new tokens
	FrequencyPenalty *float32 `json:"frequency_penalty,omitempty"` // -2.0 - 2.0, penalize frequent tokens

	// Response format
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"` // JSON schema for structured output
	Streaming      *bool           `json:"streaming,omitempty"`       // Enable/disable streaming
}

// ResponseFormat defines structured output requirements
type ResponseFormat struct {
	Type   string             `json:"type"`             // "json_object" or "json_schema"
	Schema *jsonschema.Schema `json:"schema,omitempty"` // JSON schema for validation
}

// DefaultConfig returns sensible defaults.
//
// Generation defaults follow the question-answering setup: deterministic
// sampling and a generous completion budget.
func DefaultConfig() *Config {
	return &Config{
		Temperature: Float32Ptr(0.0),
		MaxTokens:   IntPtr(8000),
		Streaming:   BoolPtr(true),
	}
}

// Agent exposes a client as a flow stage.
//
// Example:
//
//	flow := ragbase.NewFlow().Use(prompt.Template(tmpl)).Use(ai.Agent(client))
func Agent(client Client, opts ...*ChatOptions) ragbase.Handler {
	return ragbase.HandlerFunc(func(r *ragbase.Request, w *ragbase.Response) error {
		var chatOpts *ChatOptions
		if len(opts) > 0 {
			chatOpts = opts[0]
		}
		return client.Chat(r, w, chatOpts)
	})
}

// Helper functions for pointer creation
func Float32Ptr(f float32) *float32 { return &f }
func IntPtr(i int) *int             { return &i }
func BoolPtr(b bool) *bool          { return &b }
