package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/model"
)

const researchInstructions = "You are a research assistant. Gather the factual information needed to " +
	"answer the query, summarize it clearly and cite your sources as lines starting with \"Source:\"."

// ResearchAgent is the information-gathering collaborator. It prompts the
// model for a sourced summary and derives confidence from answer length and
// citation count.
type ResearchAgent struct {
	baseAgent
}

// NewResearchAgent creates a ResearchAgent on top of m.
func NewResearchAgent(m model.Model, optFns ...func(o *Options)) *ResearchAgent {
	return &ResearchAgent{baseAgent: newBaseAgent(core.RoleResearch, m, optFns...)}
}

// Process implements core.Agent.
func (a *ResearchAgent) Process(ctx context.Context, actx core.AgentContext) (core.AgentResponse, error) {
	a.logger.Debug("research agent processing", "query_id", actx.QueryID)

	resp, err := a.generate(ctx, model.Request{
		Instructions: researchInstructions,
		Prompt:       fmt.Sprintf("Research the following query and report your findings:\n\n%s", actx.OriginalQuery),
		Temperature:  a.temp,
	})
	if err != nil {
		return core.AgentResponse{}, fmt.Errorf("research generation failed: %w", err)
	}

	sources := extractSources(resp.Content)
	return core.AgentResponse{
		AgentType:  core.RoleResearch,
		Content:    resp.Content,
		Confidence: estimateConfidence(resp.Content, len(sources)),
		Sources:    sources,
		Metadata: map[string]any{
			"model": a.model.Info().Name,
		},
	}, nil
}
