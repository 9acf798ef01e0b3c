package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/model"
	"github.com/hupe1980/agentflow/workflow"
)

const decisionInstructions = "You are a decision maker. Weigh the findings handed to you, state a clear " +
	"recommendation and briefly justify the trade-offs you considered."

// DecisionAgent is the recommendation collaborator. It reads the responses of
// the agents that ran before it from the agent context and grounds its
// recommendation in them.
type DecisionAgent struct {
	baseAgent
}

// NewDecisionAgent creates a DecisionAgent on top of m.
func NewDecisionAgent(m model.Model, optFns ...func(o *Options)) *DecisionAgent {
	return &DecisionAgent{baseAgent: newBaseAgent(core.RoleDecision, m, optFns...)}
}

// Process implements core.Agent.
func (a *DecisionAgent) Process(ctx context.Context, actx core.AgentContext) (core.AgentResponse, error) {
	a.logger.Debug("decision agent processing", "query_id", actx.QueryID)

	prior := priorResponses(actx)
	resp, err := a.generate(ctx, model.Request{
		Instructions: decisionInstructions,
		Prompt:       buildDecisionPrompt(actx.OriginalQuery, prior),
		Temperature:  a.temp,
	})
	if err != nil {
		return core.AgentResponse{}, fmt.Errorf("decision generation failed: %w", err)
	}

	confidence := estimateConfidence(resp.Content, 0)
	if len(prior) > 0 {
		// A recommendation is only as sound as the inputs it is built on.
		confidence = core.ClampConfidence((confidence + workflow.WeightedConfidence(prior)) / 2)
	}

	return core.AgentResponse{
		AgentType:  core.RoleDecision,
		Content:    resp.Content,
		Confidence: confidence,
		Metadata: map[string]any{
			"model":             a.model.Info().Name,
			"inputs_considered": len(prior),
		},
	}, nil
}

func priorResponses(actx core.AgentContext) map[core.AgentRole]core.AgentResponse {
	prior, _ := actx.ProcessedData["previous_responses"].(map[core.AgentRole]core.AgentResponse)
	return prior
}

func buildDecisionPrompt(query string, prior map[core.AgentRole]core.AgentResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Decide on the following query:\n\n%s\n", query)
	if len(prior) == 0 {
		return sb.String()
	}

	roles := make([]core.AgentRole, 0, len(prior))
	for role := range prior {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	sb.WriteString("\nFindings from earlier agents:\n")
	for _, role := range roles {
		resp := prior[role]
		fmt.Fprintf(&sb, "\n[%s] (confidence %.2f)\n%s\n", role, resp.Confidence, resp.Content)
	}
	return sb.String()
}
