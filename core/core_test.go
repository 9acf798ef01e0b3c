package core

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, name := range []string{"research", "code", "decision"} {
		role, err := ParseRole(name)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", name, err)
		}
		if role.String() != name {
			t.Fatalf("expected %q, got %q", name, role)
		}
	}

	if _, err := ParseRole("planner"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if _, err := ParseRole(""); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole for empty name, got %v", err)
	}
}

func TestQueryStatusTerminal(t *testing.T) {
	terminal := []QueryStatus{QueryStatusCompleted, QueryStatusFailed, QueryStatusCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []QueryStatus{QueryStatusPending, QueryStatusProcessing} {
		if s.Terminal() {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	if got := ClampConfidence(-0.5); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	if got := ClampConfidence(1.5); got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
	if got := ClampConfidence(0.42); got != 0.42 {
		t.Fatalf("expected 0.42, got %f", got)
	}
}

func TestNewWorkflowStateDefaults(t *testing.T) {
	state := NewWorkflowState("q1", "hello", "", nil)
	if state.QueryType != QueryTypeGeneral {
		t.Fatalf("expected GENERAL default, got %s", state.QueryType)
	}
	if state.CurrentStatus != QueryStatusPending {
		t.Fatalf("expected PENDING, got %s", state.CurrentStatus)
	}
	if state.Priority != PriorityMedium {
		t.Fatalf("expected MEDIUM, got %s", state.Priority)
	}
	if state.Metadata == nil || state.AgentResponses == nil {
		t.Fatalf("expected initialized collections")
	}
}

func TestRecordResponseClampsAndMarksVisited(t *testing.T) {
	state := NewWorkflowState("q1", "hello", QueryTypeResearch, nil)
	state = state.RecordResponse(RoleResearch, AgentResponse{Content: "x", Confidence: 1.7})

	if got := state.ConfidenceScores[RoleResearch]; got != 1.0 {
		t.Fatalf("expected clamped confidence 1.0, got %f", got)
	}
	if !state.Visited(RoleResearch) {
		t.Fatalf("expected research to be visited")
	}
	if state.Visited(RoleCode) {
		t.Fatalf("code should not be visited")
	}
}

func TestResetGenerationKeepsCumulativeVisits(t *testing.T) {
	state := NewWorkflowState("q1", "hello", QueryTypeResearch, nil)
	state = state.RecordResponse(RoleResearch, AgentResponse{Content: "a", Confidence: 0.5})
	state = state.ResetGeneration()

	if state.Visited(RoleResearch) {
		t.Fatalf("generation reset should clear the visited guard")
	}
	if len(state.AgentsVisited) != 1 {
		t.Fatalf("cumulative visits must survive the reset, got %d", len(state.AgentsVisited))
	}

	state = state.RecordResponse(RoleResearch, AgentResponse{Content: "b", Confidence: 0.6})
	if len(state.AgentsVisited) != 2 {
		t.Fatalf("expected 2 cumulative visits, got %d", len(state.AgentsVisited))
	}
	if got := state.AgentResponses[RoleResearch].Content; got != "b" {
		t.Fatalf("re-visit must overwrite the response, got %q", got)
	}
}

func TestResultOfCoercesNonTerminalStatus(t *testing.T) {
	state := NewWorkflowState("q1", "hello", QueryTypeGeneral, nil)
	state.CurrentStatus = QueryStatusProcessing
	state.RetryCount = 2

	result := ResultOf(state)
	if result.Status != QueryStatusFailed {
		t.Fatalf("expected non-terminal status coerced to FAILED, got %s", result.Status)
	}
	if !result.Status.Terminal() {
		t.Fatalf("result status must always be terminal")
	}
	if result.Metadata["retry_count"] != 2 {
		t.Fatalf("expected retry_count 2 in metadata, got %v", result.Metadata["retry_count"])
	}
	if result.Metadata["priority"] != PriorityMedium {
		t.Fatalf("expected priority in metadata, got %v", result.Metadata["priority"])
	}
}

func TestResultOfCopiesSlices(t *testing.T) {
	state := NewWorkflowState("q1", "hello", QueryTypeGeneral, nil)
	state.CurrentStatus = QueryStatusCompleted
	state = state.RecordResponse(RoleResearch, AgentResponse{Content: "x", Confidence: 0.5})

	result := ResultOf(state)
	result.AgentsUsed[0] = RoleDecision
	if state.AgentsVisited[0] != RoleResearch {
		t.Fatalf("result must not alias state slices")
	}
}
