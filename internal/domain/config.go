package domain

import (
	"time"
)

const (
	DefaultMaxConcurrentNodes = 4
	DefaultNodeTimeout        = 30 * time.Second
	DefaultAgentTimeout       = 60 * time.Second
)

// Config holds engine-level knobs. Zero values are replaced by defaults;
// per-node settings in a node's config bag override these for that node.
type Config struct {
	// MaxConcurrentNodes bounds how many dependency-independent nodes may
	// execute in parallel within one run.
	MaxConcurrentNodes int

	// NodeTimeout bounds a single executor invocation.
	NodeTimeout time.Duration

	// AgentTimeout bounds agent capability calls, independent of
	// NodeTimeout and of any caller-level deadline.
	AgentTimeout time.Duration

	// RunRetention is how long persisted run records are kept when a run
	// store is attached. Zero keeps records indefinitely.
	RunRetention time.Duration
}

func (c *Config) ApplyDefaults() {
	if c.MaxConcurrentNodes == 0 {
		c.MaxConcurrentNodes = DefaultMaxConcurrentNodes
	}
	if c.NodeTimeout == 0 {
		c.NodeTimeout = DefaultNodeTimeout
	}
	if c.AgentTimeout == 0 {
		c.AgentTimeout = DefaultAgentTimeout
	}
}

func (c *Config) Validate() error {
	if c.MaxConcurrentNodes < 0 {
		return NewConfigError("max_concurrent_nodes", ErrInvalidInput)
	}
	if c.NodeTimeout < 0 {
		return NewConfigError("node_timeout", ErrInvalidInput)
	}
	if c.AgentTimeout < 0 {
		return NewConfigError("agent_timeout", ErrInvalidInput)
	}
	if c.RunRetention < 0 {
		return NewConfigError("run_retention", ErrInvalidInput)
	}
	return nil
}
