package core

import (
	"context"
	"time"
)

// AgentContext is the input record handed to a collaborator's Process call.
// It is built from the current WorkflowState by the executing node.
type AgentContext struct {
	QueryID       string         `json:"query_id"`
	OriginalQuery string         `json:"original_query"`
	QueryType     QueryType      `json:"query_type"`
	ProcessedData map[string]any `json:"processed_data,omitempty"` // prior responses for decision-style agents
	Metadata      map[string]any `json:"metadata,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// AgentResponse is the structured output of a single collaborator invocation.
//
// Confidence is always clamped to [0,1] by the executing node; ProcessingTime
// is wall-clock seconds measured by the node, not the collaborator.
type AgentResponse struct {
	AgentType      AgentRole      `json:"agent_type"`
	Content        string         `json:"content"`
	Confidence     float64        `json:"confidence"`
	ProcessingTime float64        `json:"processing_time"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Sources        []string       `json:"sources,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// Failed reports whether the response carries an error.
func (r AgentResponse) Failed() bool { return r.Error != "" }

// AgentStatus is a best-effort, side-effect-free status record exposed by a
// collaborator. State is "unknown" when the collaborator exposes none.
type AgentStatus struct {
	Agent   string         `json:"agent"`
	State   string         `json:"state"`
	Details map[string]any `json:"details,omitempty"`
}

// UnknownStatus builds the status record used for collaborators that expose
// no status of their own.
func UnknownStatus(name string) AgentStatus {
	return AgentStatus{Agent: name, State: "unknown"}
}

// Agent is the contract every external collaborator must satisfy.
//
// Process may fail with an error (or panic); the workflow engine converts any
// failure into a degraded AgentResponse and never lets it escape the
// execution node. Implementations must respect context cancellation since the
// engine enforces a bounded timeout at this boundary.
//
// Status must be side-effect-free and callable at any time, including while a
// Process call is in flight.
type Agent interface {
	Role() AgentRole
	Process(ctx context.Context, actx AgentContext) (AgentResponse, error)
	Status() AgentStatus
}
