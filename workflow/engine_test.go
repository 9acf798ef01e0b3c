package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentflow/config"
	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/logging"
	"github.com/hupe1980/agentflow/model"
)

// The rich logger must keep satisfying the engine's audit surface.
var _ auditLogger = (*logging.FlowLogger)(nil)

// stubAgent is a scriptable collaborator for engine tests.
type stubAgent struct {
	role    core.AgentRole
	process func(ctx context.Context, actx core.AgentContext) (core.AgentResponse, error)

	mu    sync.Mutex
	calls int
}

func (s *stubAgent) Role() core.AgentRole { return s.role }

func (s *stubAgent) Status() core.AgentStatus {
	return core.AgentStatus{Agent: s.role.String(), State: "active"}
}

func (s *stubAgent) Process(ctx context.Context, actx core.AgentContext) (core.AgentResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.process(ctx, actx)
}

func (s *stubAgent) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// goodAgent answers confidently with a response long enough to pass validation.
func goodAgent(role core.AgentRole) *stubAgent {
	return &stubAgent{role: role, process: func(context.Context, core.AgentContext) (core.AgentResponse, error) {
		return core.AgentResponse{
			Content:    strings.Repeat(role.String()+" findings. ", 10),
			Confidence: 0.85,
		}, nil
	}}
}

// captureRecorder records engine measurements for assertions.
type captureRecorder struct {
	mu         sync.Mutex
	executions []string
	agentCalls []string
}

func (r *captureRecorder) ObserveExecution(status string, retries int, dur time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions = append(r.executions, status)
}

func (r *captureRecorder) ObserveAgentCall(role string, success bool, dur time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agentCalls = append(r.agentCalls, role)
}

func (r *captureRecorder) ObserveValidation(valid bool, issues []string) {}
func (r *captureRecorder) ObserveSynthesis(responses int, success bool)  {}

// auditSpy records the audit events the engine emits through a logger that
// exposes the richer surface.
type auditSpy struct {
	mu          sync.Mutex
	agentCalls  []string
	validations []bool
	runs        []string
	runNodes    []int
}

func (a *auditSpy) Debug(string, ...any) {}
func (a *auditSpy) Info(string, ...any)  {}
func (a *auditSpy) Warn(string, ...any)  {}
func (a *auditSpy) Error(string, ...any) {}

func (a *auditSpy) LogAgentCall(role string, dur time.Duration, success bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.agentCalls = append(a.agentCalls, role)
}

func (a *auditSpy) LogValidation(queryID string, valid bool, issues []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.validations = append(a.validations, valid)
}

func (a *auditSpy) LogWorkflowRun(queryID string, nodes, retries int, dur time.Duration, status string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runs = append(a.runs, status)
	a.runNodes = append(a.runNodes, nodes)
}

func TestExecute_AuditLoggerReceivesRunEvents(t *testing.T) {
	spy := &auditSpy{}
	e := New(func(o *Options) { o.Logger = spy })
	e.Register(goodAgent(core.RoleResearch))

	result := e.Execute(context.Background(), "q1", "summarize this", core.QueryTypeGeneral, nil)

	require.Equal(t, core.QueryStatusCompleted, result.Status)
	assert.Equal(t, []string{"research"}, spy.agentCalls)
	assert.Equal(t, []bool{true}, spy.validations)
	assert.Equal(t, []string{"COMPLETED"}, spy.runs)
	// router, research, synthesizer, validator.
	assert.Equal(t, []int{4}, spy.runNodes)
}

func TestExecute_GeneralQuerySingleAgentPassthrough(t *testing.T) {
	synth := model.NewMockModel("synth", "mock")
	e := New(func(o *Options) { o.Synthesizer = synth })
	research := goodAgent(core.RoleResearch)
	e.Register(research)

	result := e.Execute(context.Background(), "q1", "summarize the meeting notes", core.QueryTypeGeneral, nil)

	assert.Equal(t, core.QueryStatusCompleted, result.Status)
	assert.Equal(t, []core.AgentRole{core.RoleResearch}, result.AgentsUsed)
	assert.Equal(t, 1, research.Calls())
	assert.Equal(t, 0, synth.Calls(), "single response must bypass synthesis")
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
	assert.Equal(t, 0, result.Metadata["retry_count"])
}

func TestExecute_CodeQueryRoutesToCodeFirst(t *testing.T) {
	e := New()
	var order []core.AgentRole
	var mu sync.Mutex
	track := func(role core.AgentRole) *stubAgent {
		return &stubAgent{role: role, process: func(context.Context, core.AgentContext) (core.AgentResponse, error) {
			mu.Lock()
			order = append(order, role)
			mu.Unlock()
			return core.AgentResponse{
				Content:    strings.Repeat(role.String()+" output. ", 10),
				Confidence: 0.9,
			}, nil
		}}
	}
	e.Register(track(core.RoleResearch))
	e.Register(track(core.RoleCode))

	result := e.Execute(context.Background(), "q1", "implement a parser", core.QueryTypeCode, nil)

	assert.Equal(t, core.QueryStatusCompleted, result.Status)
	require.NotEmpty(t, order)
	assert.Equal(t, core.RoleCode, order[0], "CODE queries must reach the code agent first")
}

func TestExecute_DecisionQueryRoutesToDecisionAgent(t *testing.T) {
	e := New()
	e.Register(goodAgent(core.RoleResearch))
	e.Register(goodAgent(core.RoleCode))

	var prior map[core.AgentRole]core.AgentResponse
	decision := &stubAgent{role: core.RoleDecision, process: func(_ context.Context, actx core.AgentContext) (core.AgentResponse, error) {
		prior, _ = actx.ProcessedData["previous_responses"].(map[core.AgentRole]core.AgentResponse)
		return core.AgentResponse{
			Content:    strings.Repeat("go with option B. ", 10),
			Confidence: 0.8,
		}, nil
	}}
	e.Register(decision)

	result := e.Execute(context.Background(), "q1", "pick one option", core.QueryTypeDecision, nil)

	assert.Equal(t, core.QueryStatusCompleted, result.Status)
	assert.Equal(t, []core.AgentRole{core.RoleDecision}, result.AgentsUsed)
	assert.Equal(t, 1, decision.Calls())
	assert.NotNil(t, prior, "decision agent must receive the prior-response map")
}

func TestBuildAgentContext_DecisionSeesPriorResponses(t *testing.T) {
	state := core.NewWorkflowState("q1", "pick one", core.QueryTypeDecision, nil)
	state = state.RecordResponse(core.RoleResearch, core.AgentResponse{Content: "facts", Confidence: 0.7})

	actx := buildAgentContext(state, core.RoleDecision)
	prior, ok := actx.ProcessedData["previous_responses"].(map[core.AgentRole]core.AgentResponse)
	require.True(t, ok)
	assert.Equal(t, "facts", prior[core.RoleResearch].Content)

	// Other roles get no prior responses.
	actx = buildAgentContext(state, core.RoleCode)
	assert.Nil(t, actx.ProcessedData)
}

func TestExecute_UntypedQueryIsClassified(t *testing.T) {
	e := New()
	code := goodAgent(core.RoleCode)
	e.Register(goodAgent(core.RoleResearch))
	e.Register(code)

	result := e.Execute(context.Background(), "q1", "debug this function for me", "", nil)

	assert.Equal(t, core.QueryStatusCompleted, result.Status)
	assert.Equal(t, core.RoleCode, result.AgentsUsed[0])
}

func TestExecute_UnregisteredAgentDegradesAndExhaustsRetries(t *testing.T) {
	rec := &captureRecorder{}
	e := New(func(o *Options) { o.Recorder = rec })

	result := e.Execute(context.Background(), "q1", "summarize this", core.QueryTypeGeneral, nil)

	assert.Equal(t, core.QueryStatusFailed, result.Status)
	assert.Equal(t, e.cfg.MaxAttempts, result.Metadata["retry_count"])
	assert.LessOrEqual(t, result.Metadata["retry_count"].(int), e.cfg.MaxAttempts)
	// One research attempt per generation: the initial pass plus each retry.
	assert.Len(t, result.AgentsUsed, e.cfg.MaxAttempts+1)
	assert.NotEmpty(t, result.Errors)
	assert.Equal(t, []string{"FAILED"}, rec.executions)
}

func TestExecute_AgentErrorYieldsDegradedResponse(t *testing.T) {
	cfg := config.Default()
	cfg.MaxAttempts = 0
	e := New(func(o *Options) { o.Config = cfg })
	e.Register(&stubAgent{role: core.RoleResearch, process: func(context.Context, core.AgentContext) (core.AgentResponse, error) {
		return core.AgentResponse{}, errors.New("backend unreachable")
	}})

	result := e.Execute(context.Background(), "q1", "summarize this", core.QueryTypeGeneral, nil)

	assert.Equal(t, core.QueryStatusFailed, result.Status)
	assert.Equal(t, "research processing failed", result.Response)
	assert.Equal(t, 0.0, result.Confidence)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "backend unreachable")
}

func TestExecute_AgentPanicIsAbsorbed(t *testing.T) {
	cfg := config.Default()
	cfg.MaxAttempts = 0
	e := New(func(o *Options) { o.Config = cfg })
	e.Register(&stubAgent{role: core.RoleResearch, process: func(context.Context, core.AgentContext) (core.AgentResponse, error) {
		panic("boom")
	}})

	var result core.Result
	assert.NotPanics(t, func() {
		result = e.Execute(context.Background(), "q1", "summarize this", core.QueryTypeGeneral, nil)
	})

	assert.Equal(t, core.QueryStatusFailed, result.Status)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "agent panicked")
}

func TestExecute_AgentTimeoutYieldsDegradedResponse(t *testing.T) {
	cfg := config.Default()
	cfg.MaxAttempts = 0
	cfg.AgentTimeoutSeconds = 1
	e := New(func(o *Options) { o.Config = cfg })
	e.Register(&stubAgent{role: core.RoleResearch, process: func(ctx context.Context, _ core.AgentContext) (core.AgentResponse, error) {
		<-ctx.Done()
		return core.AgentResponse{}, ctx.Err()
	}})

	result := e.Execute(context.Background(), "q1", "summarize this", core.QueryTypeGeneral, nil)

	assert.Equal(t, core.QueryStatusFailed, result.Status)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "timed out")
}

func TestExecute_CancellationYieldsCancelled(t *testing.T) {
	e := New()
	e.Register(&stubAgent{role: core.RoleResearch, process: func(ctx context.Context, _ core.AgentContext) (core.AgentResponse, error) {
		<-ctx.Done()
		return core.AgentResponse{}, ctx.Err()
	}})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	result := e.Execute(ctx, "q1", "summarize this", core.QueryTypeGeneral, nil)

	assert.Equal(t, core.QueryStatusCancelled, result.Status)
	assert.True(t, result.Status.Terminal())
}

func TestExecute_RetryResetsVisitedGuards(t *testing.T) {
	cfg := config.Default()
	cfg.MaxAttempts = 1
	e := New(func(o *Options) { o.Config = cfg })

	// Confident but too short: every generation fails the length gate.
	research := &stubAgent{role: core.RoleResearch, process: func(context.Context, core.AgentContext) (core.AgentResponse, error) {
		return core.AgentResponse{Content: "too short", Confidence: 0.9}, nil
	}}
	e.Register(research)

	result := e.Execute(context.Background(), "q1", "summarize this", core.QueryTypeGeneral, nil)

	assert.Equal(t, core.QueryStatusFailed, result.Status)
	assert.Equal(t, 2, research.Calls(), "retry generation must re-invoke the agent")
	assert.Equal(t, []core.AgentRole{core.RoleResearch, core.RoleResearch}, result.AgentsUsed)
	assert.Equal(t, 1, result.Metadata["retry_count"])
}

func TestExecute_ResultStatusAlwaysTerminal(t *testing.T) {
	e := New()
	e.Register(goodAgent(core.RoleResearch))
	e.Register(goodAgent(core.RoleCode))
	e.Register(goodAgent(core.RoleDecision))

	queries := []struct {
		query     string
		queryType core.QueryType
	}{
		{"summarize this", core.QueryTypeGeneral},
		{"implement a cache", core.QueryTypeCode},
		{"pick a database", core.QueryTypeDecision},
		{"what is raft", core.QueryTypeResearch},
	}
	for _, q := range queries {
		result := e.Execute(context.Background(), "q1", q.query, q.queryType, nil)
		assert.True(t, result.Status.Terminal(), "query %q returned %s", q.query, result.Status)
	}
}

func TestExecute_ConcurrentQueriesShareOneHub(t *testing.T) {
	e := New()
	e.Register(goodAgent(core.RoleResearch))
	e.Register(goodAgent(core.RoleCode))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := e.Execute(context.Background(), "q", "summarize this", core.QueryTypeGeneral, nil)
			assert.True(t, result.Status.Terminal())
		}()
	}
	wg.Wait()
}
