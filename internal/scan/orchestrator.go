package scan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/llmcheck/visibility/config"
	"github.com/llmcheck/visibility/internal/helpers"
	"github.com/llmcheck/visibility/internal/metrics"
)

// Provider is one chat-completion backend. Adapters do not retry and do not
// enforce timeouts; both are the orchestrator's concern.
type Provider interface {
	Model() Model
	Complete(ctx context.Context, prompt string) (string, error)
}

// Validation errors, reported before any provider call is made.
var (
	ErrMissingURL  = errors.New("target url required")
	ErrInvalidURL  = errors.New("target url is not a valid url")
	ErrPromptCount = fmt.Errorf("exactly %d custom prompts required", PromptCount)
	ErrNoProviders = errors.New("no providers configured")
)

// Orchestrator fans one query out across the prompts x providers matrix and
// aggregates the outcomes fail-soft: a single cell erroring or timing out
// never aborts the rest of the scan.
type Orchestrator struct {
	providers   []Provider
	callTimeout time.Duration
	logger      *log.Logger
}

// NewOrchestrator builds an orchestrator over a fixed, ordered provider set.
func NewOrchestrator(cfg config.ScanConfig, providers []Provider, logger *log.Logger) (*Orchestrator, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[SCAN] ", log.LstdFlags)
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Orchestrator{providers: providers, callTimeout: timeout, logger: logger}, nil
}

// Run executes one visibility scan. Results are ordered prompts-outer,
// providers-inner regardless of completion order. Errored cells count toward
// TotalQueries but never TotalFound. No retries: a caller that wants a retry
// re-invokes the whole scan.
func (o *Orchestrator) Run(ctx context.Context, q Query) (Output, error) {
	if q.TargetURL == "" {
		return Output{}, ErrMissingURL
	}
	normalized, err := helpers.CanonicalURL(q.TargetURL)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	prompts := q.CustomPrompts
	if len(prompts) > 0 {
		if len(prompts) != PromptCount {
			return Output{}, ErrPromptCount
		}
	} else {
		prompts = PromptsForIndustry(q.Industry)
	}

	// Tokens are URL-derived and invariant across all cells; extract once.
	tokens := helpers.ExtractDomainTokens(q.TargetURL)

	type cell struct {
		prompt   string
		provider Provider
	}
	cells := make([]cell, 0, len(prompts)*len(o.providers))
	for _, prompt := range prompts {
		for _, p := range o.providers {
			cells = append(cells, cell{prompt: prompt, provider: p})
		}
	}

	tasks := make([]Task, len(cells))
	for i, c := range cells {
		c := c
		tasks[i] = func(taskCtx context.Context) (string, error) {
			start := time.Now()
			text, err := c.provider.Complete(taskCtx, c.prompt)
			metrics.ProviderLatency.WithLabelValues(string(c.provider.Model())).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.ProviderRequests.WithLabelValues(string(c.provider.Model()), "error").Inc()
				return "", err
			}
			metrics.ProviderRequests.WithLabelValues(string(c.provider.Model()), "ok").Inc()
			return text, nil
		}
	}

	o.logger.Printf("scanning %s: %d prompts x %d models", normalized, len(prompts), len(o.providers))
	outcomes := Gather(ctx, o.callTimeout, tasks)

	results := make([]VisibilityResult, len(cells))
	totalFound := 0
	for i, c := range cells {
		res := VisibilityResult{Model: c.provider.Model(), Prompt: c.prompt}
		if outcomes[i].Err != nil {
			res.Error = true
			o.logger.Printf("cell failed (%s): %v", c.provider.Model(), outcomes[i].Err)
		} else if snippet := helpers.ExtractMention(outcomes[i].Value, tokens.RootDomain, tokens.BrandName); snippet != "" {
			// An empty or off-topic response is "not found", never an error.
			res.Found = true
			res.Snippet = snippet
			totalFound++
			metrics.MentionsFound.WithLabelValues(string(c.provider.Model())).Inc()
		}
		results[i] = res
	}

	return Output{
		ID:            uuid.New().String(),
		NormalizedURL: normalized,
		Industry:      q.Industry,
		TotalFound:    totalFound,
		TotalQueries:  len(results),
		Results:       results,
		ScannedAt:     time.Now().UTC(),
	}, nil
}
