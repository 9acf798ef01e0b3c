package workflow

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/hupe1980/agentflow/core"
)

// Validation issue kinds, used as metric labels and recorded verbatim in the
// validation report alongside the human-readable issue text.
const (
	issueEmptyResponse = "empty_response"
	issueLowConfidence = "low_confidence"
	issueTooManyErrors = "too_many_errors"
	issueTooShort      = "response_too_short"
)

// validate is the deterministic quality gate. It never calls out. The second
// return value reports whether the workflow should re-enter the router for
// another retry generation.
//
// The gate rejects when any of these hold: the final response is empty, the
// total confidence is strictly below the configured minimum (exactly at the
// minimum passes), more than the allowed number of errors accumulated, or the
// final response is shorter than the configured character count.
func (e *Engine) validate(state core.WorkflowState) (core.WorkflowState, bool) {
	var issues, kinds []string

	if state.FinalResponse == "" {
		issues = append(issues, "No final response generated")
		kinds = append(kinds, issueEmptyResponse)
	}
	if state.TotalConfidence < e.cfg.MinConfidence {
		issues = append(issues, fmt.Sprintf("Low confidence: %.2f", state.TotalConfidence))
		kinds = append(kinds, issueLowConfidence)
	}
	if len(state.Errors) > e.cfg.MaxErrors {
		issues = append(issues, fmt.Sprintf("Too many errors: %d", len(state.Errors)))
		kinds = append(kinds, issueTooManyErrors)
	}
	if state.FinalResponse != "" && utf8.RuneCountInString(state.FinalResponse) < e.cfg.MinResponseLength {
		issues = append(issues, "Response too short")
		kinds = append(kinds, issueTooShort)
	}

	valid := len(issues) == 0
	state.Metadata[core.MetadataKeyValidation] = core.ValidationReport{
		IsValid:   valid,
		Issues:    issues,
		Timestamp: time.Now().UTC(),
	}
	e.recorder.ObserveValidation(valid, kinds)
	if e.audit != nil {
		e.audit.LogValidation(state.QueryID, valid, issues)
	}

	if valid {
		state.CurrentStatus = core.QueryStatusCompleted
		return state, false
	}

	if state.RetryCount < e.cfg.MaxAttempts {
		state.RetryCount++
		state.CurrentStatus = core.QueryStatusProcessing
		state = state.AppendMessage("Validation failed, retry %d: %v", state.RetryCount, issues)
		e.logger.Warn("validation failed, retrying", "query_id", state.QueryID, "retry", state.RetryCount, "issues", issues)
		return state, true
	}

	state.CurrentStatus = core.QueryStatusFailed
	e.logger.Error("validation failed, retries exhausted", "query_id", state.QueryID, "issues", issues)
	return state, false
}
