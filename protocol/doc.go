// Package protocol implements the lightweight inter-agent communication
// protocol: a collaborator registry plus per-role bounded FIFO message
// queues. Delivery is fire-and-forget: a message addressed to an unregistered
// role is logged and dropped, with no retry and no backpressure. Queue drains
// are snapshot-and-clear and linearizable per role.
package protocol
