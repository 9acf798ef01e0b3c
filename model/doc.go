// Package model defines the opaque generative-text capabilities consumed by
// the workflow engine and the built-in agents: a minimal text-transform Model
// interface plus a Classifier for query categorization. Provider adapters
// (model/anthropic, model/openai) implement Model over the official SDKs; the
// deterministic parts of the engine are testable with MockModel and the
// keyword classifier without invoking any generative model.
package model
