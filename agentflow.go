// Package agentflow provides a high-level façade over the workflow engine and
// the agent communication hub, enabling rapid construction of multi-agent
// query pipelines. Most applications interact with this package by:
//  1. Creating an Orchestrator via New() (optionally overriding the default
//     configuration, synthesizer model or logger)
//  2. Registering collaborators for the research, code and decision roles
//  3. Submitting queries with Execute() and reading the returned Result
//
// The façade delegates orchestration to workflow.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a real synthesizer
// model, a structured logger and a Prometheus recorder.
package agentflow

import (
	"context"
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/hupe1980/agentflow/config"
	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/logging"
	"github.com/hupe1980/agentflow/metrics"
	"github.com/hupe1980/agentflow/model"
	"github.com/hupe1980/agentflow/model/anthropic"
	"github.com/hupe1980/agentflow/model/openai"
	"github.com/hupe1980/agentflow/protocol"
	"github.com/hupe1980/agentflow/workflow"
)

// Options configures the Orchestrator instance.
type Options struct {
	// Config carries the retry bound, agent timeout, queue capacity and the
	// validation thresholds. Defaults to config.Default().
	Config *config.Config

	// Synthesizer is the model used to merge multiple agent responses into
	// one final answer. Defaults to a mock model.
	Synthesizer model.Model

	// Classifier categorizes queries submitted without an explicit type.
	// Defaults to the deterministic keyword classifier.
	Classifier model.Classifier

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Recorder receives execution measurements. Defaults to Noop.
	Recorder metrics.Recorder
}

// Orchestrator is the high-level façade aggregating the workflow engine and
// the communication hub.
type Orchestrator struct {
	engine *workflow.Engine
}

// New creates a new Orchestrator with optional overrides. Any unset
// collaborator is initialized with a safe in-process default.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Config:      config.Default(),
		Synthesizer: model.NewMockModel("synthesizer", "mock"),
		Classifier:  model.NewKeywordClassifier(),
		Logger:      logging.NoOpLogger{},
		Recorder:    metrics.NoopRecorder{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	e := workflow.New(func(o *workflow.Options) {
		o.Config = opts.Config
		o.Synthesizer = opts.Synthesizer
		o.Classifier = opts.Classifier
		o.Logger = opts.Logger
		o.Recorder = opts.Recorder
	})

	return &Orchestrator{engine: e}
}

// ModelFromConfig builds the generative model selected by an LLM
// configuration section. Unset fields keep the adapter defaults; provider
// "mock" needs no credentials.
func ModelFromConfig(cfg config.LLMConfig) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
		}), nil
	case "mock":
		name := cfg.Model
		if name == "" {
			name = "mock"
		}
		return model.NewMockModel(name, "mock"), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}

// NewFromConfig creates an Orchestrator wired from a loaded configuration:
// the synthesizer from the llm section and the logger from the logging
// section. Option functions run afterwards and may override both.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*Orchestrator, error) {
	m, err := ModelFromConfig(cfg.LLM)
	if err != nil {
		return nil, err
	}
	fromCfg := func(o *Options) {
		o.Config = cfg
		o.Synthesizer = m
		o.Logger = logging.NewLoggerFromConfig(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	}
	return New(append([]func(o *Options){fromCfg}, optFns...)...), nil
}

// RegisterAgent adds a collaborator to the underlying hub. Registering the
// same role twice overwrites the previous handle.
func (o *Orchestrator) RegisterAgent(a core.Agent) { o.engine.Register(a) }

// Hub exposes the communication hub for direct messaging and status
// introspection.
func (o *Orchestrator) Hub() *protocol.Hub { return o.engine.Hub() }

// Execute runs the full workflow for one query. A fresh query ID is generated
// and the query type is classified automatically. The returned Result always
// carries a terminal status; Execute never returns an error.
func (o *Orchestrator) Execute(ctx context.Context, query string) core.Result {
	return o.engine.Execute(ctx, uuid.NewString(), query, "", nil)
}

// ExecuteTyped runs the workflow with a caller-chosen query ID, an explicit
// query type and initial metadata. An empty queryType triggers
// classification; an empty queryID is replaced with a generated one.
func (o *Orchestrator) ExecuteTyped(ctx context.Context, queryID, query string, queryType core.QueryType, metadata map[string]any) core.Result {
	if queryID == "" {
		queryID = uuid.NewString()
	}
	return o.engine.Execute(ctx, queryID, query, queryType, metadata)
}
