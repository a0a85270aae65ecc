package gatehouse

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryCarrier defines a public type used by gatehouse APIs.
//
// MemoryCarrier is a process-local SessionCarrier for tests and single-node
// deployments. Destroy rotates the low-level session identifier so a binding
// hash computed before the call can never match one computed after it.
type MemoryCarrier struct {
	mu            sync.Mutex
	id            string
	authenticated bool
}

// NewMemoryCarrier describes the newmemorycarrier operation and its observable behavior.
//
// NewMemoryCarrier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryCarrier() *MemoryCarrier {
	return &MemoryCarrier{id: uuid.NewString()}
}

// SessionID describes the sessionid operation and its observable behavior.
//
// SessionID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *MemoryCarrier) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Destroy describes the destroy operation and its observable behavior.
//
// Destroy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *MemoryCarrier) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = uuid.NewString()
	c.authenticated = false
}

// SetAuthenticated describes the setauthenticated operation and its observable behavior.
//
// SetAuthenticated does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *MemoryCarrier) SetAuthenticated(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = v
}

// Authenticated reports the flag last set through SetAuthenticated.
func (c *MemoryCarrier) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}
