// Package agent provides the built-in collaborators satisfying the core.Agent
// contract: a research agent for information gathering, a code agent for code
// generation and analysis, and a decision agent that weighs prior responses.
// All three run on top of an injected model.Model; the workflow engine only
// depends on the contract, so custom collaborators can replace them freely.
package agent
