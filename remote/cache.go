package remote

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Status is the tri-state reachability verdict for a host.
type Status int

const (
	StatusUnknown Status = iota
	StatusReachable
	StatusUnreachable
)

func (s Status) String() string {
	switch s {
	case StatusReachable:
		return "reachable"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// handshakeCommand is the lightweight remote-execution check. A host
// that can run it is considered reachable for the rest of the run.
const handshakeCommand = "hostname"

// Cache memoizes per-run host reachability. Each host is handshaked at
// most once per run; concurrent first checks for the same host collapse
// into a single in-flight attempt and all callers receive its verdict.
// Verdicts are never invalidated within a run.
type Cache struct {
	// OnFirstCheck, when set, fires exactly once per host, right after
	// its handshake completes.
	OnFirstCheck func(host string, reachable bool)

	runner Runner

	mu    sync.Mutex
	hosts map[string]Status
	group singleflight.Group
}

func NewCache(runner Runner) *Cache {
	return &Cache{
		runner: runner,
		hosts:  make(map[string]Status),
	}
}

// Check reports whether host answers remote execution at all. The first
// call per host performs the handshake; every later call returns the
// memoized verdict without touching the network.
func (c *Cache) Check(ctx context.Context, host string) bool {
	c.mu.Lock()
	if st, ok := c.hosts[host]; ok {
		c.mu.Unlock()
		return st == StatusReachable
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(host, func() (any, error) {
		st := StatusUnreachable
		if _, err := c.runner.Run(ctx, host, handshakeCommand); err == nil {
			st = StatusReachable
		}
		c.mu.Lock()
		c.hosts[host] = st
		c.mu.Unlock()
		if c.OnFirstCheck != nil {
			c.OnFirstCheck(host, st == StatusReachable)
		}
		return st, nil
	})
	return v.(Status) == StatusReachable
}

// Lookup returns the memoized verdict without probing.
func (c *Cache) Lookup(host string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hosts[host]
}
