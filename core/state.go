package core

import (
	"fmt"
	"time"
)

// ValidationReport captures the outcome of the validator gate. It is stored
// in WorkflowState.Metadata under MetadataKeyValidation.
type ValidationReport struct {
	IsValid   bool      `json:"is_valid"`
	Issues    []string  `json:"issues,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MetadataKeyValidation is the metadata key holding the ValidationReport.
const MetadataKeyValidation = "validation"

// WorkflowState is the single mutable record owned exclusively by one
// in-flight query execution. It is created at the start of Execute, advanced
// by exactly one node at a time, and discarded once the caller extracts the
// Result. The state is passed by value into each transition function and
// returned, keeping data flow auditable; it requires no locking.
//
// AgentsVisited accumulates across the whole execution and feeds
// Result.AgentsUsed. The visited-set routing guards operate on the current
// retry generation only (see Visited / ResetGeneration); a role re-invoked in
// a later generation overwrites its prior entry in AgentResponses.
type WorkflowState struct {
	QueryID       string
	OriginalQuery string
	QueryType     QueryType
	Priority      Priority

	NextAgent AgentRole // zero value means no routing decision yet

	AgentsVisited     []AgentRole // cumulative, append-only
	generationVisited []AgentRole // reset at the start of each retry generation

	Messages       []string
	AgentResponses map[AgentRole]AgentResponse

	CurrentStatus    QueryStatus
	ConfidenceScores map[AgentRole]float64
	ProcessingTimes  map[AgentRole]float64

	FinalResponse   string
	TotalConfidence float64
	Metadata        map[string]any

	Errors     []string
	RetryCount int
}

// NewWorkflowState initializes the state for a fresh query execution in
// PENDING status with empty collections.
func NewWorkflowState(queryID, query string, queryType QueryType, metadata map[string]any) WorkflowState {
	if queryType == "" {
		queryType = QueryTypeGeneral
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return WorkflowState{
		QueryID:          queryID,
		OriginalQuery:    query,
		QueryType:        queryType,
		Priority:         PriorityMedium,
		CurrentStatus:    QueryStatusPending,
		AgentResponses:   map[AgentRole]AgentResponse{},
		ConfidenceScores: map[AgentRole]float64{},
		ProcessingTimes:  map[AgentRole]float64{},
		Metadata:         metadata,
	}
}

// Visited reports whether the role already ran within the current retry
// generation. Earlier generations do not count, so the validator retry path
// can re-invoke a role with a fresh visited set.
func (s WorkflowState) Visited(role AgentRole) bool {
	for _, r := range s.generationVisited {
		if r == role {
			return true
		}
	}
	return false
}

// ResetGeneration clears the per-generation visited set. Called when the
// validator sends the workflow back to the router for another pass.
func (s WorkflowState) ResetGeneration() WorkflowState {
	s.generationVisited = nil
	return s
}

// RecordResponse stores a collaborator response and its derived score and
// timing, marks the role visited, and appends a transition message. The
// response confidence is clamped to [0,1].
func (s WorkflowState) RecordResponse(role AgentRole, resp AgentResponse) WorkflowState {
	resp.Confidence = ClampConfidence(resp.Confidence)
	s.AgentResponses[role] = resp
	s.ConfidenceScores[role] = resp.Confidence
	s.ProcessingTimes[role] = resp.ProcessingTime
	s.AgentsVisited = append(s.AgentsVisited, role)
	s.generationVisited = append(s.generationVisited, role)
	return s
}

// AppendMessage adds a human-readable transition event to the message log.
func (s WorkflowState) AppendMessage(format string, args ...any) WorkflowState {
	s.Messages = append(s.Messages, fmt.Sprintf(format, args...))
	return s
}

// AppendError records a non-fatal failure description.
func (s WorkflowState) AppendError(format string, args ...any) WorkflowState {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
	return s
}

// Result is the record returned to the caller by Execute. Status is always
// terminal: COMPLETED, FAILED or CANCELLED, never PENDING or PROCESSING.
type Result struct {
	QueryID         string                `json:"query_id"`
	Status          QueryStatus           `json:"status"`
	Response        string                `json:"response"`
	Confidence      float64               `json:"confidence"`
	AgentsUsed      []AgentRole           `json:"agents_used"`
	ProcessingTimes map[AgentRole]float64 `json:"processing_times"`
	Errors          []string              `json:"errors,omitempty"`
	Metadata        map[string]any        `json:"metadata,omitempty"`
}

// ResultOf extracts the caller-facing result record from a final state.
// A non-terminal status is coerced to FAILED so the Execute contract holds.
func ResultOf(s WorkflowState) Result {
	status := s.CurrentStatus
	if !status.Terminal() {
		status = QueryStatusFailed
	}
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata["retry_count"] = s.RetryCount
	s.Metadata["priority"] = s.Priority
	return Result{
		QueryID:         s.QueryID,
		Status:          status,
		Response:        s.FinalResponse,
		Confidence:      s.TotalConfidence,
		AgentsUsed:      append([]AgentRole(nil), s.AgentsVisited...),
		ProcessingTimes: s.ProcessingTimes,
		Errors:          append([]string(nil), s.Errors...),
		Metadata:        s.Metadata,
	}
}
