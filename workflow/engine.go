package workflow

import (
	"context"
	"time"

	"github.com/hupe1980/agentflow/config"
	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/logging"
	"github.com/hupe1980/agentflow/metrics"
	"github.com/hupe1980/agentflow/model"
	"github.com/hupe1980/agentflow/protocol"
)

// node identifies one state of the workflow state machine.
type node string

const (
	nodeRouter      node = "router"
	nodeResearch    node = "research"
	nodeCode        node = "code"
	nodeDecision    node = "decision"
	nodeSynthesizer node = "synthesizer"
	nodeValidator   node = "validator"
	nodeEnd         node = "end"
)

// Options configures an Engine instance using the functional options pattern.
type Options struct {
	// Config contains the engine knobs (retry bound, timeouts, gate
	// thresholds). Defaults to config.Default().
	Config *config.Config

	// Hub is the shared registry and message bus. A private hub is created
	// when none is provided.
	Hub *protocol.Hub

	// Synthesizer is the opaque text-combining capability used when two or
	// more agent responses must be merged. Defaults to a mock model.
	Synthesizer model.Model

	// Classifier categorizes queries submitted without an explicit type.
	// Defaults to the deterministic keyword classifier.
	Classifier model.Classifier

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// Recorder receives engine measurements. Defaults to Noop.
	Recorder metrics.Recorder
}

// auditLogger is the richer logging surface detected by interface upgrade on
// the injected Logger. logging.FlowLogger satisfies it; plain loggers fall
// back to the generic Info/Warn/Error calls.
type auditLogger interface {
	LogAgentCall(role string, dur time.Duration, success bool, err error)
	LogValidation(queryID string, valid bool, issues []string)
	LogWorkflowRun(queryID string, nodes, retries int, dur time.Duration, status string)
}

// Engine orchestrates the routing, execution, synthesis and validation of one
// query at a time per workflow instance. It is safe for concurrent Execute
// calls: each call owns its WorkflowState exclusively, and the only shared
// state is the hub.
type Engine struct {
	cfg        *config.Config
	hub        *protocol.Hub
	synth      model.Model
	classifier model.Classifier
	logger     logging.Logger
	audit      auditLogger // nil when the logger has no audit surface
	recorder   metrics.Recorder
}

// New creates an Engine with sensible defaults and optional configuration.
func New(optFns ...func(o *Options)) *Engine {
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
	if opts.Hub == nil {
		opts.Hub = protocol.NewHub(func(o *protocol.Options) {
			o.QueueCapacity = opts.Config.QueueCapacity
			o.Logger = opts.Logger
		})
	}
	e := &Engine{
		cfg:        opts.Config,
		hub:        opts.Hub,
		synth:      opts.Synthesizer,
		classifier: opts.Classifier,
		logger:     opts.Logger,
		recorder:   opts.Recorder,
	}
	e.audit, _ = opts.Logger.(auditLogger)
	return e
}

// Register makes a collaborator available for routing and messaging.
// Registering a role twice overwrites the previous handle.
func (e *Engine) Register(a core.Agent) { e.hub.Register(a.Role(), a) }

// Hub exposes the shared communication hub for status introspection and
// best-effort messaging.
func (e *Engine) Hub() *protocol.Hub { return e.hub }

// Execute runs the full workflow for one query and returns the result record.
// It never returns an error and never panics past this boundary: collaborator
// failures are absorbed into degraded responses, validation failure after
// exhausted retries surfaces as status FAILED, and caller cancellation
// surfaces as status CANCELLED with the partially populated record.
func (e *Engine) Execute(ctx context.Context, queryID, query string, queryType core.QueryType, metadata map[string]any) core.Result {
	start := time.Now()

	if queryType == "" {
		queryType = e.classify(ctx, query)
	}

	state := core.NewWorkflowState(queryID, query, queryType, metadata)
	e.logger.Info("starting workflow execution", "query_id", queryID, "query_type", string(queryType))

	current := nodeRouter
	steps := 0
	for current != nodeEnd {
		if ctx.Err() != nil {
			state.CurrentStatus = core.QueryStatusCancelled
			state = state.AppendMessage("Execution cancelled: %v", ctx.Err())
			break
		}
		steps++

		switch current {
		case nodeRouter:
			state = e.route(state)
			current = nodeForRole(state.NextAgent)

		case nodeResearch:
			state = e.runAgentNode(ctx, state, core.RoleResearch)
			current = afterResearch(state)

		case nodeCode:
			state = e.runAgentNode(ctx, state, core.RoleCode)
			current = afterCode(state)

		case nodeDecision:
			state = e.runAgentNode(ctx, state, core.RoleDecision)
			current = nodeSynthesizer

		case nodeSynthesizer:
			state = e.synthesize(ctx, state)
			current = nodeValidator

		case nodeValidator:
			var retry bool
			state, retry = e.validate(state)
			if retry {
				state = state.ResetGeneration()
				current = nodeRouter
			} else {
				current = nodeEnd
			}
		}
	}

	result := core.ResultOf(state)
	e.recorder.ObserveExecution(string(result.Status), state.RetryCount, time.Since(start))
	if e.audit != nil {
		e.audit.LogWorkflowRun(queryID, steps, state.RetryCount, time.Since(start), string(result.Status))
	} else {
		e.logger.Info("workflow execution finished",
			"query_id", queryID,
			"status", string(result.Status),
			"steps", steps,
			"retries", state.RetryCount,
			"duration", time.Since(start),
		)
	}
	return result
}

// classify resolves the query type for untyped queries. Classification
// failures fall back to GENERAL and never abort the workflow.
func (e *Engine) classify(ctx context.Context, query string) core.QueryType {
	if e.classifier == nil {
		return core.QueryTypeGeneral
	}
	qt, err := e.classifier.Classify(ctx, query)
	if err != nil {
		e.logger.Warn("query classification failed, defaulting to GENERAL", "error", err)
		return core.QueryTypeGeneral
	}
	return qt
}
