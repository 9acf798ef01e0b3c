// Package config loads and validates AgentFlow configuration from YAML.
// All knobs default to values safe for local development; the validator gate
// thresholds default to the engine's quality contract (confidence 0.3,
// minimum length 50, at most 2 absorbed errors).
package config
