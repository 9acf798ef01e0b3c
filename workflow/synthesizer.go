package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/model"
)

const (
	// FallbackNoResponses is the final response when no agent produced output.
	FallbackNoResponses = "No agent responses available"

	// FallbackSynthesisFailed is the final response when the combining call fails.
	FallbackSynthesisFailed = "Failed to synthesize responses"
)

const synthesisInstructions = "You merge multiple specialist answers into one coherent response. " +
	"Combine key information from all agents, maintain coherence and accuracy, " +
	"preserve important details and provide clear structure."

// synthesize merges the collected agent responses into the final response.
// Zero responses yield the fixed fallback with confidence 0; a single
// response passes through unchanged without any combining call; two or more
// responses invoke the injected combining capability and aggregate confidence
// with WeightedConfidence. Combining failures are absorbed (SynthesisFailure).
func (e *Engine) synthesize(ctx context.Context, state core.WorkflowState) core.WorkflowState {
	responses := state.AgentResponses

	if len(responses) == 0 {
		state.FinalResponse = FallbackNoResponses
		state.TotalConfidence = 0.0
		return state
	}

	if len(responses) == 1 {
		for _, resp := range responses {
			state.FinalResponse = resp.Content
			state.TotalConfidence = resp.Confidence
		}
		return state
	}

	resp, err := e.synth.Generate(ctx, model.Request{
		Instructions: synthesisInstructions,
		Prompt:       buildSynthesisPrompt(state.OriginalQuery, responses),
	})
	e.recorder.ObserveSynthesis(len(responses), err == nil)
	if err != nil {
		e.logger.Error("synthesis failed", "query_id", state.QueryID, "error", err)
		state = state.AppendError("synthesis: %v", err)
		state.FinalResponse = FallbackSynthesisFailed
		state.TotalConfidence = 0.0
		return state
	}

	state.FinalResponse = resp.Content
	state.TotalConfidence = WeightedConfidence(responses)
	state = state.AppendMessage("Synthesis completed with confidence: %.2f", state.TotalConfidence)
	return state
}

// WeightedConfidence aggregates response confidences into a [0,1] score.
// Clean responses weigh 1.0, responses carrying an error weigh 0.5; when the
// total weight is zero the confidence defaults to 0.5. Pure function, kept
// independent of the opaque combining call so it is testable in isolation.
func WeightedConfidence(responses map[core.AgentRole]core.AgentResponse) float64 {
	var total, weight float64
	for _, resp := range responses {
		w := 1.0
		if resp.Failed() {
			w = 0.5
		}
		total += resp.Confidence * w
		weight += w
	}
	if weight == 0 {
		return 0.5
	}
	return total / weight
}

// buildSynthesisPrompt renders the combining prompt in a deterministic role
// order so identical inputs produce identical prompts.
func buildSynthesisPrompt(query string, responses map[core.AgentRole]core.AgentResponse) string {
	roles := make([]string, 0, len(responses))
	for role := range responses {
		roles = append(roles, role.String())
	}
	sort.Strings(roles)

	var b strings.Builder
	b.WriteString("Synthesize the following agent responses into a comprehensive answer.\n\n")
	fmt.Fprintf(&b, "Original Query: %s\n\nAgent Responses:\n", query)
	for _, role := range roles {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", role, responses[core.AgentRole(role)].Content)
	}
	return b.String()
}
