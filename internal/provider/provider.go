// Package provider wires the hosted chat-completion backends used by the
// visibility scan. Each vendor lives in its own sub-package with its own
// request/response schema; this package only holds the shared plumbing and
// the config-driven factory.
package provider

import (
	"fmt"

	"github.com/llmcheck/visibility/config"
	"github.com/llmcheck/visibility/internal/provider/gemini"
	"github.com/llmcheck/visibility/internal/provider/openai"
	"github.com/llmcheck/visibility/internal/provider/perplexity"
	"github.com/llmcheck/visibility/internal/scan"
)

// InstructionSuffix is appended to every prompt so models answer with
// concrete entities instead of generic advice, which is what the mention
// detector needs to work with.
const InstructionSuffix = " Please mention specific websites, brands, or companies by name in your answer."

// FromConfig builds the fixed, ordered provider set for a scan. All three
// providers must be configured: the result matrix is defined over the closed
// model set.
func FromConfig(cfg config.ProvidersConfig) ([]scan.Provider, error) {
	if cfg.ChatGPT.APIKey == "" {
		return nil, fmt.Errorf("chatgpt provider: api key not configured (OPENAI_API_KEY)")
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini provider: api key not configured (GEMINI_API_KEY)")
	}
	if cfg.Perplexity.APIKey == "" {
		return nil, fmt.Errorf("perplexity provider: api key not configured (PERPLEXITY_API_KEY)")
	}
	return []scan.Provider{
		openai.NewClient(cfg.ChatGPT, InstructionSuffix),
		gemini.NewClient(cfg.Gemini, InstructionSuffix),
		perplexity.NewClient(cfg.Perplexity, InstructionSuffix),
	}, nil
}
