package core

import "fmt"

// QueryType categorizes an incoming query and drives initial routing.
type QueryType string

const (
	// QueryTypeResearch marks queries answered by information gathering.
	QueryTypeResearch QueryType = "RESEARCH"
	// QueryTypeCode marks queries requiring code generation or analysis.
	QueryTypeCode QueryType = "CODE"
	// QueryTypeDecision marks queries requiring multi-factor decision making.
	QueryTypeDecision QueryType = "DECISION"
	// QueryTypeGeneral is the default for unclassified queries.
	QueryTypeGeneral QueryType = "GENERAL"
)

// QueryStatus tracks the lifecycle of a query execution.
//
// Valid transitions: PENDING → PROCESSING → {COMPLETED, FAILED}. Re-entry to
// PROCESSING happens only through the validator retry path. CANCELLED is
// reachable from any suspension point.
type QueryStatus string

const (
	// QueryStatusPending is the initial status before routing.
	QueryStatusPending QueryStatus = "PENDING"
	// QueryStatusProcessing indicates the workflow is advancing through nodes.
	QueryStatusProcessing QueryStatus = "PROCESSING"
	// QueryStatusCompleted indicates the response passed validation.
	QueryStatusCompleted QueryStatus = "COMPLETED"
	// QueryStatusFailed indicates validation failed with retries exhausted.
	QueryStatusFailed QueryStatus = "FAILED"
	// QueryStatusCancelled indicates the caller cancelled the execution.
	QueryStatusCancelled QueryStatus = "CANCELLED"
)

// Terminal reports whether the status is a valid end state for a returned result.
func (s QueryStatus) Terminal() bool {
	return s == QueryStatusCompleted || s == QueryStatusFailed || s == QueryStatusCancelled
}

// Priority expresses processing urgency assigned during routing.
type Priority string

const (
	// PriorityLow for background-grade queries.
	PriorityLow Priority = "LOW"
	// PriorityMedium is the default priority.
	PriorityMedium Priority = "MEDIUM"
	// PriorityHigh for time-sensitive queries.
	PriorityHigh Priority = "HIGH"
	// PriorityCritical for queries flagged as emergencies.
	PriorityCritical Priority = "CRITICAL"
)

// AgentRole identifies a collaborator slot in the workflow. Roles form a
// closed enumeration; free-form role strings are rejected by ParseRole.
type AgentRole string

const (
	// RoleResearch is the information-gathering collaborator.
	RoleResearch AgentRole = "research"
	// RoleCode is the code generation collaborator.
	RoleCode AgentRole = "code"
	// RoleDecision is the decision-making collaborator.
	RoleDecision AgentRole = "decision"
)

// ErrUnknownRole is returned when a role name is not part of the closed
// role enumeration. Use errors.Is to detect it.
var ErrUnknownRole = fmt.Errorf("unknown agent role")

// Valid reports whether the role is part of the closed enumeration.
func (r AgentRole) Valid() bool {
	switch r {
	case RoleResearch, RoleCode, RoleDecision:
		return true
	default:
		return false
	}
}

// String returns the role name.
func (r AgentRole) String() string { return string(r) }

// ParseRole converts a role name into an AgentRole, rejecting names outside
// the closed enumeration with ErrUnknownRole.
func ParseRole(name string) (AgentRole, error) {
	r := AgentRole(name)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	return r, nil
}

// Roles returns all roles of the closed enumeration in a stable order.
func Roles() []AgentRole {
	return []AgentRole{RoleResearch, RoleCode, RoleDecision}
}

// ClampConfidence forces a confidence score into the [0,1] interval.
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
