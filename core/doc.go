// Package core provides the foundational domain types and interfaces used by
// AgentFlow. It defines the core abstractions for:
//
//   - Queries (typed, prioritized units of work submitted to the orchestrator)
//   - Agents (external collaborators specialized in one task domain)
//   - WorkflowState (the single mutable record owned by one in-flight query)
//   - AgentResponse / Result (structured outputs of agents and executions)
//
// The package intentionally keeps implementation concerns (routing, synthesis,
// validation, message passing, concrete agents) out of scope, exposing small
// interfaces to enable custom collaborators and extensions.
package core
