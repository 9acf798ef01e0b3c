package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentflow/core"
)

// processResult carries the outcome of one collaborator call across the
// timeout boundary.
type processResult struct {
	resp core.AgentResponse
	err  error
}

// runAgentNode executes one collaborator under the configured timeout and
// absorbs every failure mode (error, panic, timeout, malformed result) into a
// degraded AgentResponse. It is the sole suspension point of a workflow
// instance; caller cancellation observed here leaves the state untouched so
// the engine loop can mark it CANCELLED.
func (e *Engine) runAgentNode(ctx context.Context, state core.WorkflowState, role core.AgentRole) core.WorkflowState {
	agent, err := e.hub.Agent(role)
	if err != nil {
		e.logger.Error("agent lookup failed", "query_id", state.QueryID, "role", role.String(), "error", err)
		state = state.AppendError("%s agent: %v", role, err)
		return state.RecordResponse(role, degradedResponse(role, fmt.Sprintf("%s agent unavailable", role), err))
	}

	actx := buildAgentContext(state, role)

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.AgentTimeout())
	defer cancel()

	start := time.Now()

	// Buffered so a collaborator ignoring cancellation cannot block the
	// goroutine forever.
	done := make(chan processResult, 1)
	go func() {
		done <- safeProcess(callCtx, agent, actx)
	}()

	var res processResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		if ctx.Err() != nil {
			// Caller cancellation, not a collaborator timeout. Leave the
			// state partially populated; the engine loop marks CANCELLED.
			return state.AppendMessage("%s agent interrupted by cancellation", role)
		}
		res = processResult{err: fmt.Errorf("agent timed out after %s: %w", e.cfg.AgentTimeout(), callCtx.Err())}
	}

	elapsed := time.Since(start)
	success := res.err == nil && !res.resp.Failed()
	e.recorder.ObserveAgentCall(role.String(), success, elapsed)
	if e.audit != nil {
		e.audit.LogAgentCall(role.String(), elapsed, success, res.err)
	}

	resp := res.resp
	if res.err != nil {
		e.logger.Error("agent call failed", "query_id", state.QueryID, "role", role.String(), "error", res.err)
		state = state.AppendError("%s agent: %v", role, res.err)
		resp = degradedResponse(role, fmt.Sprintf("%s processing failed", role), res.err)
	}
	resp.AgentType = role
	resp.ProcessingTime = elapsed.Seconds()

	state = state.RecordResponse(role, resp)
	state = state.AppendMessage("%s completed: %s", role, truncate(resp.Content, 200))
	e.logger.Debug("agent node finished", "query_id", state.QueryID, "role", role.String(), "confidence", resp.Confidence, "duration", elapsed)
	return state
}

// safeProcess invokes the collaborator, converting panics and malformed
// results into errors so no failure mode escapes the node.
func safeProcess(ctx context.Context, agent core.Agent, actx core.AgentContext) (res processResult) {
	defer func() {
		if r := recover(); r != nil {
			res = processResult{err: fmt.Errorf("agent panicked: %v", r)}
		}
	}()

	resp, err := agent.Process(ctx, actx)
	if err != nil {
		return processResult{err: err}
	}
	if resp.Content == "" && resp.Error == "" {
		return processResult{err: fmt.Errorf("malformed agent response: empty content")}
	}
	return processResult{resp: resp}
}

// buildAgentContext assembles the collaborator input from state fields.
// Decision-style agents additionally receive the prior responses.
func buildAgentContext(state core.WorkflowState, role core.AgentRole) core.AgentContext {
	actx := core.AgentContext{
		QueryID:       state.QueryID,
		OriginalQuery: state.OriginalQuery,
		QueryType:     state.QueryType,
		Metadata:      state.Metadata,
		Timestamp:     time.Now().UTC(),
	}
	if role == core.RoleDecision {
		previous := make(map[core.AgentRole]core.AgentResponse, len(state.AgentResponses))
		for r, resp := range state.AgentResponses {
			previous[r] = resp
		}
		actx.ProcessedData = map[string]any{"previous_responses": previous}
	}
	return actx
}

// degradedResponse is the zero-confidence response recorded for any absorbed
// collaborator failure.
func degradedResponse(role core.AgentRole, content string, err error) core.AgentResponse {
	return core.AgentResponse{
		AgentType:  role,
		Content:    content,
		Confidence: 0.0,
		Error:      err.Error(),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
