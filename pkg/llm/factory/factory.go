// Package factory builds the configured llm.Provider.
package factory

import (
	"regulation-chat-be/internal/config"
	"regulation-chat-be/pkg/llm"
	"regulation-chat-be/pkg/llm/gemini"
	"regulation-chat-be/pkg/llm/ollama"
)

// NewFromConfig returns the chat provider named by AI_LLM_PROVIDER. Anything
// other than "ollama" falls back to Gemini.
func NewFromConfig(cfg *config.Config) llm.Provider {
	if cfg.Ai.LLMProvider == "ollama" {
		return ollama.New(cfg.Ai.OllamaBaseURL, cfg.Ai.LLMModel)
	}
	return gemini.New(cfg.Keys.GoogleGemini, cfg.Ai.LLMModel)
}
