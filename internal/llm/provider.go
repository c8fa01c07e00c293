package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON from a prompt. Question generation
// and idea extraction both sit on top of this interface, so swapping the
// backing model is a config change.
type Provider interface {
	// Generate runs one completion. When req.Schema is set the provider
	// uses its native structured-output mechanism and the returned
	// Content is schema-validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID reports the configured model identifier.
	ModelID() string
}

// Request is a single prompt to the model.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Generation here is single-turn, so
	// this usually holds exactly one user message.
	Messages []Message

	// Schema, when set, constrains the output to the given JSON Schema.
	// When nil the Content comes back as raw text.
	Schema *Schema

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature in [0, 1]. Zero means deterministic.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema describes the JSON shape the model must produce.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "book-questions". Used as
	// the tool name for Anthropic and the schema name for OpenAI.
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Normalized stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is the model's output.
type Response struct {
	// Content is validated JSON when the request carried a Schema,
	// otherwise the raw text.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is one of the Stop* constants.
	StopReason string
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
