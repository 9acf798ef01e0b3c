package workflow

import (
	"strings"

	"github.com/hupe1980/agentflow/core"
)

// route is the initial routing node. It marks the state as processing,
// assesses priority, and picks the first agent from the query type:
// RESEARCH→research, CODE→code, DECISION→decision, GENERAL→research.
func (e *Engine) route(state core.WorkflowState) core.WorkflowState {
	state.CurrentStatus = core.QueryStatusProcessing
	state.Priority = priorityFor(state.OriginalQuery)

	switch state.QueryType {
	case core.QueryTypeCode:
		state.NextAgent = core.RoleCode
	case core.QueryTypeDecision:
		state.NextAgent = core.RoleDecision
	default:
		state.NextAgent = core.RoleResearch
	}

	state = state.AppendMessage("Query routed to %s agent with %s priority", state.NextAgent, state.Priority)
	e.logger.Debug("routed query", "query_id", state.QueryID, "next_agent", state.NextAgent.String(), "priority", string(state.Priority))
	return state
}

// afterResearch decides the next node after the research agent ran.
// Transition order matters: code hop first, decision hop second, synthesizer
// otherwise. Visited guards are scoped to the current retry generation.
func afterResearch(state core.WorkflowState) node {
	if !state.Visited(core.RoleCode) &&
		(state.QueryType == core.QueryTypeCode || strings.Contains(strings.ToLower(state.OriginalQuery), "code")) {
		return nodeCode
	}
	if !state.Visited(core.RoleDecision) && state.QueryType == core.QueryTypeDecision {
		return nodeDecision
	}
	return nodeSynthesizer
}

// afterCode decides the next node after the code agent ran. Research backs up
// code output for decision queries and for low-confidence code responses.
func afterCode(state core.WorkflowState) node {
	if !state.Visited(core.RoleResearch) &&
		(state.QueryType == core.QueryTypeDecision || state.ConfidenceScores[core.RoleCode] < 0.7) {
		return nodeResearch
	}
	return nodeSynthesizer
}

// nodeForRole maps the router's agent decision to a state machine node.
func nodeForRole(role core.AgentRole) node {
	switch role {
	case core.RoleCode:
		return nodeCode
	case core.RoleDecision:
		return nodeDecision
	default:
		return nodeResearch
	}
}

var (
	criticalKeywords = []string{"critical", "emergency", "outage", "immediately"}
	highKeywords     = []string{"urgent", "asap", "important", "deadline"}
	lowKeywords      = []string{"whenever", "no rush", "low priority", "someday"}
)

// priorityFor assesses processing priority from the query text.
func priorityFor(query string) core.Priority {
	q := strings.ToLower(query)
	for _, kw := range criticalKeywords {
		if strings.Contains(q, kw) {
			return core.PriorityCritical
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(q, kw) {
			return core.PriorityHigh
		}
	}
	for _, kw := range lowKeywords {
		if strings.Contains(q, kw) {
			return core.PriorityLow
		}
	}
	return core.PriorityMedium
}
