package simulation

import (
	"time"
)

// SimulationResult captures the final state of the simulation for reporting
type SimulationResult struct {
	ScenarioName     string                 `json:"scenario_name"`
	Seed             int64                  `json:"seed"`
	Duration         time.Duration          `json:"duration"`
	TotalRequests    uint64                 `json:"total_requests"`
	TotalAnswered    uint64                 `json:"total_answered"`
	TotalNotFound    uint64                 `json:"total_not_found"`
	TotalNoData      uint64                 `json:"total_no_data"`
	TotalUnsupported uint64                 `json:"total_unsupported"`
	TotalErrors      uint64                 `json:"total_errors"`
	TotalMismatches  uint64                 `json:"total_mismatches"`
	AgentStats       map[string]*AgentStats `json:"agent_stats"`
	Invariants       []InvariantResult      `json:"invariants"`
	Success          bool                   `json:"success"`
}

// AgentStats are per agent group counters, updated atomically.
type AgentStats struct {
	Requests    uint64 `json:"requests"`
	Answered    uint64 `json:"answered"`
	NotFound    uint64 `json:"not_found"`
	NoData      uint64 `json:"no_data"`
	Unsupported uint64 `json:"unsupported"`
	Errors      uint64 `json:"errors"`
	Mismatches  uint64 `json:"mismatches"`
}

type InvariantResult struct {
	Metric   string `json:"metric"`
	Scope    string `json:"scope"`
	Expected string `json:"expected"` // e.g. "> 0.95"
	Actual   string `json:"actual"`   // e.g. "0.98"
	Passed   bool   `json:"passed"`
}

// Scenario is a load test definition, read from YAML or JSON.
type Scenario struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Seed        int64         `json:"seed" yaml:"seed"` // Deterministic seed
	Agents      []AgentConfig `json:"agents" yaml:"agents"`
	Invariants  []Invariant   `json:"invariants,omitempty" yaml:"invariants,omitempty"`
}

type Invariant struct {
	Metric    string  `json:"metric" yaml:"metric"`       // e.g., "answered_rate", "not_found_rate", "error_rate"
	Condition string  `json:"condition" yaml:"condition"` // e.g., ">", "<", ">=", "<="
	Value     float64 `json:"value" yaml:"value"`
	Scope     string  `json:"scope" yaml:"scope"` // "global" or specific agent name
}

// AgentConfig describes a group of simulated users. Each instance runs its
// own conversation and replays Turns in order, wrapping around.
type AgentConfig struct {
	Name     string        `json:"name" yaml:"name"`
	Count    int           `json:"count" yaml:"count"`
	Behavior BehaviorType  `json:"behavior" yaml:"behavior"`
	Rate     int           `json:"rate" yaml:"rate"` // Requests per second
	Burst    int           `json:"burst" yaml:"burst"`
	Jitter   time.Duration `json:"jitter" yaml:"jitter"`
	Turns    []Turn        `json:"turns" yaml:"turns"`
}

// Turn is one scripted question. Expect, when set, must appear in the answer.
type Turn struct {
	Intent string         `json:"intent" yaml:"intent"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Expect string         `json:"expect,omitempty" yaml:"expect,omitempty"`
}

type BehaviorType string

const (
	BehaviorPeriodic BehaviorType = "periodic"
	BehaviorGreedy   BehaviorType = "greedy"
	BehaviorPoisson  BehaviorType = "poisson"
	BehaviorBursty   BehaviorType = "bursty"
)
