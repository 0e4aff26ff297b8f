// Package llm abstracts chat-completion providers behind a single interface.
// Concrete clients live in the gemini and ollama subpackages; the factory
// subpackage picks one from configuration.
package llm

import "context"

// Message roles as the providers expect them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a chat exchange sent to the provider.
type Message struct {
	Role    string
	Content string
}

// Options control generation determinism. Regulatory answers want low
// temperature and tight sampling; the zero value of a field means "provider
// default".
type Options struct {
	Temperature     float64
	MaxOutputTokens int
	TopP            float64
	TopK            int
}

// Provider generates a completion for a message history.
type Provider interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}
