// Package workflow implements the stateful orchestration engine: a
// deterministic router/state machine over the agent roles, a generic agent
// execution node that absorbs collaborator failures, a synthesizer combining
// agent outputs with weighted confidence, a validator quality gate, and a
// bounded retry loop re-entering the router.
//
// One WorkflowState advances through exactly one node at a time; distinct
// queries execute as independent workflow instances sharing only the
// communication hub. The engine's Execute entrypoint never returns an error:
// total failure is communicated via the result's FAILED status.
package workflow
