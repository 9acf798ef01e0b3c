package protocol

import (
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/logging"
)

// ErrAgentNotRegistered is returned by registry lookups for roles without a
// registered collaborator. Message delivery deliberately does not surface it;
// sends to unregistered roles are best-effort drops per the protocol contract.
var ErrAgentNotRegistered = fmt.Errorf("agent not registered")

// DefaultQueueCapacity bounds each per-role message queue unless overridden.
const DefaultQueueCapacity = 128

// Message is one unit of best-effort inter-agent communication.
type Message struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Type      string    `json:"type"`
	Content   any       `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusReporter is the optional introspection surface of a registered
// collaborator. Handles that do not implement it report an "unknown" status.
type StatusReporter interface {
	Status() core.AgentStatus
}

// Options configures a Hub.
type Options struct {
	// QueueCapacity bounds each per-role queue. When a queue is full the
	// incoming message is dropped and logged, preserving the no-backpressure
	// contract. Defaults to DefaultQueueCapacity.
	QueueCapacity int

	// Logger receives delivery-miss and drop diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// Hub is the shared registry and message bus used by the workflow engine and
// its collaborators. It is the only mutable state shared across concurrently
// executing queries; every operation is safe for concurrent use, and append,
// drain and broadcast are linearizable per role-name queue.
type Hub struct {
	mu       sync.RWMutex
	agents   map[core.AgentRole]any
	queues   map[core.AgentRole][]Message
	capacity int
	logger   logging.Logger
}

// NewHub creates a Hub with optional overrides.
func NewHub(optFns ...func(o *Options)) *Hub {
	opts := Options{
		QueueCapacity: DefaultQueueCapacity,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = DefaultQueueCapacity
	}
	return &Hub{
		agents:   make(map[core.AgentRole]any),
		queues:   make(map[core.AgentRole][]Message),
		capacity: opts.QueueCapacity,
		logger:   opts.Logger,
	}
}

// Register adds a collaborator handle under a role, creating its message
// queue. Registering an already-registered role overwrites the handle and
// keeps the existing queue. There is no dynamic unregistration.
func (h *Hub) Register(role core.AgentRole, handle any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.agents[role] = handle
	if _, ok := h.queues[role]; !ok {
		h.queues[role] = []Message{}
	}
	h.logger.Info("agent registered", "role", role.String())
}

// Agent returns the registered collaborator for a role when it satisfies the
// core.Agent contract. Lookup misses surface ErrAgentNotRegistered so callers
// can inspect them, unlike best-effort message delivery.
func (h *Hub) Agent(role core.AgentRole) (core.Agent, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	handle, ok := h.agents[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAgentNotRegistered, role)
	}
	a, ok := handle.(core.Agent)
	if !ok {
		return nil, fmt.Errorf("%w: %q does not implement the agent contract", ErrAgentNotRegistered, role)
	}
	return a, nil
}

// Registered returns the currently registered roles in unspecified order.
func (h *Hub) Registered() []core.AgentRole {
	h.mu.RLock()
	defer h.mu.RUnlock()
	roles := make([]core.AgentRole, 0, len(h.agents))
	for r := range h.agents {
		roles = append(roles, r)
	}
	return roles
}

// Send appends a message to the destination role's queue. Messages to
// unregistered roles, and messages arriving at a full queue, are logged and
// dropped: fire-and-forget, no delivery guarantee, no backpressure.
func (h *Hub) Send(from, to core.AgentRole, msgType string, content any) {
	msg := Message{
		From:      from.String(),
		To:        to.String(),
		Type:      msgType,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	queue, ok := h.queues[to]
	if !ok {
		h.logger.Warn("message dropped, agent not registered", "from", msg.From, "to", msg.To, "type", msgType)
		return
	}
	if len(queue) >= h.capacity {
		h.logger.Warn("message dropped, queue full", "from", msg.From, "to", msg.To, "type", msgType, "capacity", h.capacity)
		return
	}
	h.queues[to] = append(queue, msg)
	h.logger.Debug("message sent", "from", msg.From, "to", msg.To, "type", msgType)
}

// Receive atomically returns the destination's queued messages in FIFO order
// and resets the queue to empty. Messages enqueued concurrently with the
// drain are either included or left for the next drain, never lost.
func (h *Hub) Receive(role core.AgentRole) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	queue, ok := h.queues[role]
	if !ok || len(queue) == 0 {
		return []Message{}
	}
	h.queues[role] = []Message{}
	return queue
}

// Broadcast fans a message out to every registered role except the sender.
func (h *Hub) Broadcast(from core.AgentRole, msgType string, content any) {
	for _, role := range h.Registered() {
		if role == from {
			continue
		}
		h.Send(from, role, msgType, content)
	}
}

// Status returns a best-effort status record for one role. Unregistered roles
// and handles without a status surface yield an "unknown" status record.
func (h *Hub) Status(role core.AgentRole) core.AgentStatus {
	h.mu.RLock()
	handle, ok := h.agents[role]
	h.mu.RUnlock()
	if !ok {
		return core.UnknownStatus(role.String())
	}
	if reporter, ok := handle.(StatusReporter); ok {
		return reporter.Status()
	}
	return core.UnknownStatus(role.String())
}

// AllStatuses returns the status of every registered collaborator.
func (h *Hub) AllStatuses() map[core.AgentRole]core.AgentStatus {
	statuses := make(map[core.AgentRole]core.AgentStatus)
	for _, role := range h.Registered() {
		statuses[role] = h.Status(role)
	}
	return statuses
}
