package agent

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/logging"
	"github.com/hupe1980/agentflow/model"
)

// Options configures a built-in collaborator.
type Options struct {
	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// Temperature overrides the model default when > 0.
	Temperature float64
}

// baseAgent bundles the shared identity, model handle and status reporting of
// the built-in collaborators.
type baseAgent struct {
	role   core.AgentRole
	model  model.Model
	logger logging.Logger
	temp   float64
}

func newBaseAgent(role core.AgentRole, m model.Model, optFns ...func(o *Options)) baseAgent {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return baseAgent{role: role, model: m, logger: opts.Logger, temp: opts.Temperature}
}

// Role returns the collaborator's slot in the workflow.
func (b *baseAgent) Role() core.AgentRole { return b.role }

// llmAuditor is the optional richer logging surface for model round-trips.
// logging.FlowLogger satisfies it.
type llmAuditor interface {
	LogLLMCall(model string, tokens int, dur time.Duration, success bool, err error)
}

// generate runs one model call, timing it and reporting it to the logger's
// LLM audit surface when present.
func (b *baseAgent) generate(ctx context.Context, req model.Request) (*model.Response, error) {
	start := time.Now()
	resp, err := b.model.Generate(ctx, req)
	if a, ok := b.logger.(llmAuditor); ok {
		tokens := 0
		if err == nil && resp.Usage != nil {
			tokens = resp.Usage.TotalTokens
		}
		a.LogLLMCall(b.model.Info().Name, tokens, time.Since(start), err == nil, err)
	}
	return resp, err
}

// Status implements the side-effect-free introspection surface of the
// contract.
func (b *baseAgent) Status() core.AgentStatus {
	info := b.model.Info()
	return core.AgentStatus{
		Agent: b.role.String(),
		State: "active",
		Details: map[string]any{
			"model":    info.Name,
			"provider": info.Provider,
		},
	}
}

var urlPattern = regexp.MustCompile(`https?://[^\s)>\]]+`)

// extractSources collects source references from model output: explicit
// "Source:" lines and bare URLs, deduplicated in first-seen order.
func extractSources(content string) []string {
	var sources []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "Source:"); ok {
			add(rest)
			continue
		}
		for _, u := range urlPattern.FindAllString(trimmed, -1) {
			add(u)
		}
	}
	return sources
}

// estimateConfidence derives a [0,1] quality estimate from the shape of the
// model output. Longer answers and cited sources raise the score; the cap
// keeps heuristic estimates below certainty.
func estimateConfidence(content string, sources int) float64 {
	c := 0.5
	switch n := utf8.RuneCountInString(content); {
	case n >= 200:
		c += 0.2
	case n >= 80:
		c += 0.1
	}
	if sources > 4 {
		sources = 4
	}
	c += 0.05 * float64(sources)
	if c > 0.95 {
		c = 0.95
	}
	return core.ClampConfidence(c)
}
