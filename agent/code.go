package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/model"
)

const codeInstructions = "You are a senior software engineer. Produce working, well-structured code " +
	"for the request, wrapped in fenced code blocks, with a short explanation of the approach."

// CodeAgent is the code generation and analysis collaborator. Confidence is
// raised when the model output actually contains fenced code.
type CodeAgent struct {
	baseAgent
}

// NewCodeAgent creates a CodeAgent on top of m.
func NewCodeAgent(m model.Model, optFns ...func(o *Options)) *CodeAgent {
	return &CodeAgent{baseAgent: newBaseAgent(core.RoleCode, m, optFns...)}
}

// Process implements core.Agent.
func (a *CodeAgent) Process(ctx context.Context, actx core.AgentContext) (core.AgentResponse, error) {
	a.logger.Debug("code agent processing", "query_id", actx.QueryID)

	resp, err := a.generate(ctx, model.Request{
		Instructions: codeInstructions,
		Prompt:       actx.OriginalQuery,
		Temperature:  a.temp,
	})
	if err != nil {
		return core.AgentResponse{}, fmt.Errorf("code generation failed: %w", err)
	}

	confidence := estimateConfidence(resp.Content, 0)
	hasCode := strings.Contains(resp.Content, "```")
	if hasCode {
		confidence = core.ClampConfidence(confidence + 0.1)
	} else {
		confidence = core.ClampConfidence(confidence - 0.15)
	}

	return core.AgentResponse{
		AgentType:  core.RoleCode,
		Content:    resp.Content,
		Confidence: confidence,
		Metadata: map[string]any{
			"model":             a.model.Info().Name,
			"contains_code":     hasCode,
			"detected_language": detectLanguage(resp.Content),
		},
	}, nil
}

// detectLanguage reads the info string of the first fenced code block.
func detectLanguage(content string) string {
	idx := strings.Index(content, "```")
	if idx < 0 {
		return ""
	}
	rest := content[idx+3:]
	end := strings.IndexByte(rest, '\n')
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
