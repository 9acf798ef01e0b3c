package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives measurements from the workflow engine. Labels are plain
// strings so the package stays decoupled from the domain enums.
type Recorder interface {
	// ObserveExecution records one completed workflow execution.
	ObserveExecution(status string, retries int, duration time.Duration)

	// ObserveAgentCall records one collaborator invocation.
	ObserveAgentCall(role string, success bool, duration time.Duration)

	// ObserveValidation records one validator gate decision.
	ObserveValidation(valid bool, issues []string)

	// ObserveSynthesis records one synthesizer pass.
	ObserveSynthesis(responses int, success bool)
}

// NoopRecorder discards all measurements. Useful for testing or when metrics
// collection is disabled.
type NoopRecorder struct{}

// ObserveExecution implements Recorder.
func (NoopRecorder) ObserveExecution(string, int, time.Duration) {}

// ObserveAgentCall implements Recorder.
func (NoopRecorder) ObserveAgentCall(string, bool, time.Duration) {}

// ObserveValidation implements Recorder.
func (NoopRecorder) ObserveValidation(bool, []string) {}

// ObserveSynthesis implements Recorder.
func (NoopRecorder) ObserveSynthesis(int, bool) {}

// PrometheusRecorder implements the Recorder interface using Prometheus metrics.
type PrometheusRecorder struct {
	executionsTotal    *prometheus.CounterVec
	executionDuration  *prometheus.HistogramVec
	retriesTotal       prometheus.Counter
	agentCallsTotal    *prometheus.CounterVec
	agentCallDuration  *prometheus.HistogramVec
	validationsTotal   *prometheus.CounterVec
	validationIssues   *prometheus.CounterVec
	synthesisTotal     *prometheus.CounterVec
	synthesisResponses prometheus.Histogram
}

// NewPrometheusRecorder creates a new Prometheus-based metrics recorder.
// Metrics are registered on the default registry via promauto.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		executionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentflow_executions_total",
				Help: "Total number of workflow executions by terminal status",
			},
			[]string{"status"},
		),
		executionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentflow_execution_duration_seconds",
				Help:    "Duration of workflow executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		retriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentflow_retries_total",
				Help: "Total number of validator-triggered retry generations",
			},
		),
		agentCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentflow_agent_calls_total",
				Help: "Total number of collaborator invocations by role and outcome",
			},
			[]string{"role", "status"},
		),
		agentCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentflow_agent_call_duration_seconds",
				Help:    "Duration of collaborator invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"role"},
		),
		validationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentflow_validations_total",
				Help: "Total number of validator gate decisions",
			},
			[]string{"outcome"},
		),
		validationIssues: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentflow_validation_issues_total",
				Help: "Total number of validation issues by kind",
			},
			[]string{"issue"},
		),
		synthesisTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentflow_synthesis_total",
				Help: "Total number of synthesizer passes by outcome",
			},
			[]string{"status"},
		),
		synthesisResponses: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentflow_synthesis_responses",
				Help:    "Number of agent responses combined per synthesis",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
	}
}

// ObserveExecution implements Recorder.
func (p *PrometheusRecorder) ObserveExecution(status string, retries int, duration time.Duration) {
	p.executionsTotal.WithLabelValues(status).Inc()
	p.executionDuration.WithLabelValues(status).Observe(duration.Seconds())
	p.retriesTotal.Add(float64(retries))
}

// ObserveAgentCall implements Recorder.
func (p *PrometheusRecorder) ObserveAgentCall(role string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	p.agentCallsTotal.WithLabelValues(role, status).Inc()
	p.agentCallDuration.WithLabelValues(role).Observe(duration.Seconds())
}

// ObserveValidation implements Recorder.
func (p *PrometheusRecorder) ObserveValidation(valid bool, issues []string) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	p.validationsTotal.WithLabelValues(outcome).Inc()
	for _, issue := range issues {
		p.validationIssues.WithLabelValues(issue).Inc()
	}
}

// ObserveSynthesis implements Recorder.
func (p *PrometheusRecorder) ObserveSynthesis(responses int, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	p.synthesisTotal.WithLabelValues(status).Inc()
	p.synthesisResponses.Observe(float64(responses))
}
