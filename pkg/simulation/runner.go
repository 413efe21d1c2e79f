// Package simulation replays scripted conversations against a running
// daemon and checks rate invariants over the answers.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/preetimant/coursesensei/pkg/client"
)

// LoadScenario reads a scenario file. JSON is accepted as a subset of YAML;
// durations are written as strings such as "30s".
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Validate checks that every agent group can run.
func (s Scenario) Validate() error {
	var errs []error
	if s.Duration <= 0 {
		errs = append(errs, errors.New("duration must be positive"))
	}
	if len(s.Agents) == 0 {
		errs = append(errs, errors.New("at least one agent is required"))
	}
	for _, a := range s.Agents {
		if a.Count <= 0 {
			errs = append(errs, fmt.Errorf("agent %q: count must be positive", a.Name))
		}
		if len(a.Turns) == 0 {
			errs = append(errs, fmt.Errorf("agent %q: no turns", a.Name))
		}
		for i, t := range a.Turns {
			if t.Intent == "" {
				errs = append(errs, fmt.Errorf("agent %q: turn %d has no intent", a.Name, i))
			}
		}
		switch a.Behavior {
		case BehaviorGreedy:
		case BehaviorBursty:
			if a.Burst <= 0 {
				errs = append(errs, fmt.Errorf("agent %q: bursty behavior needs burst > 0", a.Name))
			}
		case BehaviorPoisson, BehaviorPeriodic, "":
			if a.Rate <= 0 {
				errs = append(errs, fmt.Errorf("agent %q: rate must be positive", a.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("agent %q: unknown behavior %q", a.Name, a.Behavior))
		}
	}
	return errors.Join(errs...)
}

// RunScenario runs every agent until the scenario duration elapses or ctx is
// done, then evaluates the invariants.
func RunScenario(ctx context.Context, s Scenario, c *client.Client, logger *slog.Logger) SimulationResult {
	if logger == nil {
		logger = slog.Default()
	}
	if s.Seed == 0 {
		s.Seed = time.Now().UnixNano()
	}

	logger.Info("running scenario", "name", s.Name, "seed", s.Seed, "duration", s.Duration)

	ctx, cancel := context.WithTimeout(ctx, s.Duration)
	defer cancel()

	res := SimulationResult{
		ScenarioName: s.Name,
		Seed:         s.Seed,
		Duration:     s.Duration,
		AgentStats:   make(map[string]*AgentStats),
	}
	// Stats are grouped by agent config name and allocated before any
	// goroutine starts, so the map is read-only afterwards.
	for _, a := range s.Agents {
		if _, ok := res.AgentStats[a.Name]; !ok {
			res.AgentStats[a.Name] = &AgentStats{}
		}
	}

	var wg sync.WaitGroup
	for agentIdx, agentCfg := range s.Agents {
		for i := 0; i < agentCfg.Count; i++ {
			wg.Add(1)
			a := &agent{
				id:     fmt.Sprintf("%s-%s", agentCfg.Name, uuid.NewString()[:8]),
				cfg:    agentCfg,
				conv:   c.NewConversation(),
				rng:    rand.New(rand.NewSource(s.Seed + int64(agentIdx*1000) + int64(i))),
				global: &res,
				stats:  res.AgentStats[agentCfg.Name],
				logger: logger,
			}
			go func() {
				defer wg.Done()
				a.run(ctx)
			}()
		}
	}
	wg.Wait()

	evaluateInvariants(&res, s.Invariants)

	res.Success = true
	for _, inv := range res.Invariants {
		if !inv.Passed {
			res.Success = false
			break
		}
	}
	return res
}

type agent struct {
	id     string
	cfg    AgentConfig
	conv   *client.Conversation
	rng    *rand.Rand
	next   int
	global *SimulationResult
	stats  *AgentStats
	logger *slog.Logger
}

func (a *agent) run(ctx context.Context) {
	a.logger.Debug("agent started", "agent_id", a.id, "session", a.conv.Session())

	switch a.cfg.Behavior {
	case BehaviorGreedy:
		for ctx.Err() == nil {
			a.act(ctx)
		}
	case BehaviorPoisson:
		lambda := float64(a.cfg.Rate)
		for {
			interval := -math.Log(1-a.rng.Float64()) / lambda
			if !sleep(ctx, time.Duration(interval*float64(time.Second))) {
				return
			}
			a.act(ctx)
		}
	case BehaviorBursty:
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for k := 0; k < a.cfg.Burst && ctx.Err() == nil; k++ {
					a.act(ctx)
				}
			}
		}
	case BehaviorPeriodic:
		fallthrough
	default:
		interval := time.Second / time.Duration(a.cfg.Rate)
		if interval == 0 {
			interval = time.Millisecond * 10
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if a.cfg.Jitter > 0 && !sleep(ctx, time.Duration(a.rng.Int63n(int64(a.cfg.Jitter)))) {
					return
				}
				a.act(ctx)
			}
		}
	}
}

// act sends the next scripted turn.
func (a *agent) act(ctx context.Context) {
	turn := a.cfg.Turns[a.next%len(a.cfg.Turns)]
	a.next++

	answer, err := a.conv.Ask(ctx, client.Query{Intent: turn.Intent, Params: turn.Params})
	if err != nil && ctx.Err() != nil {
		// cut off by the end of the run
		return
	}

	add := func(global, local *uint64) {
		atomic.AddUint64(global, 1)
		atomic.AddUint64(local, 1)
	}
	add(&a.global.TotalRequests, &a.stats.Requests)

	if err != nil {
		a.logger.Warn("request failed", "agent_id", a.id, "intent", turn.Intent, "error", err)
		add(&a.global.TotalErrors, &a.stats.Errors)
		return
	}

	switch answer.Outcome {
	case client.OutcomeAnswered:
		add(&a.global.TotalAnswered, &a.stats.Answered)
	case client.OutcomeNotFound:
		add(&a.global.TotalNotFound, &a.stats.NotFound)
	case client.OutcomeNoData:
		add(&a.global.TotalNoData, &a.stats.NoData)
	case client.OutcomeUnsupported:
		add(&a.global.TotalUnsupported, &a.stats.Unsupported)
	default:
		add(&a.global.TotalErrors, &a.stats.Errors)
	}

	if turn.Expect != "" && !strings.Contains(answer.Text, turn.Expect) {
		a.logger.Warn("unexpected answer", "agent_id", a.id, "intent", turn.Intent, "want", turn.Expect, "got", answer.Text)
		add(&a.global.TotalMismatches, &a.stats.Mismatches)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func snapshot(s *AgentStats) AgentStats {
	return AgentStats{
		Requests:    atomic.LoadUint64(&s.Requests),
		Answered:    atomic.LoadUint64(&s.Answered),
		NotFound:    atomic.LoadUint64(&s.NotFound),
		NoData:      atomic.LoadUint64(&s.NoData),
		Unsupported: atomic.LoadUint64(&s.Unsupported),
		Errors:      atomic.LoadUint64(&s.Errors),
		Mismatches:  atomic.LoadUint64(&s.Mismatches),
	}
}

func evaluateInvariants(res *SimulationResult, invariants []Invariant) {
	for _, inv := range invariants {
		expected := fmt.Sprintf("%s %.2f", inv.Condition, inv.Value)

		var stats AgentStats
		if inv.Scope == "global" || inv.Scope == "" {
			stats = AgentStats{
				Requests:    atomic.LoadUint64(&res.TotalRequests),
				Answered:    atomic.LoadUint64(&res.TotalAnswered),
				NotFound:    atomic.LoadUint64(&res.TotalNotFound),
				NoData:      atomic.LoadUint64(&res.TotalNoData),
				Unsupported: atomic.LoadUint64(&res.TotalUnsupported),
				Errors:      atomic.LoadUint64(&res.TotalErrors),
				Mismatches:  atomic.LoadUint64(&res.TotalMismatches),
			}
		} else if s, ok := res.AgentStats[inv.Scope]; ok {
			stats = snapshot(s)
		} else {
			res.Invariants = append(res.Invariants, InvariantResult{
				Metric: inv.Metric, Scope: inv.Scope, Expected: expected, Actual: "N/A", Passed: false,
			})
			continue
		}

		actual, ok := metricValue(stats, inv.Metric)
		if !ok {
			res.Invariants = append(res.Invariants, InvariantResult{
				Metric: inv.Metric, Scope: inv.Scope, Expected: expected, Actual: "unknown metric", Passed: false,
			})
			continue
		}

		var passed bool
		switch inv.Condition {
		case ">":
			passed = actual > inv.Value
		case ">=":
			passed = actual >= inv.Value
		case "<":
			passed = actual < inv.Value
		case "<=":
			passed = actual <= inv.Value
		case "==":
			passed = math.Abs(actual-inv.Value) < 0.0001
		}

		res.Invariants = append(res.Invariants, InvariantResult{
			Metric:   inv.Metric,
			Scope:    inv.Scope,
			Expected: expected,
			Actual:   fmt.Sprintf("%.4f", actual),
			Passed:   passed,
		})
	}
}

func metricValue(s AgentStats, metric string) (float64, bool) {
	if metric == "requests" {
		return float64(s.Requests), true
	}
	var n uint64
	switch metric {
	case "answered_rate":
		n = s.Answered
	case "not_found_rate":
		n = s.NotFound
	case "no_data_rate":
		n = s.NoData
	case "unsupported_rate":
		n = s.Unsupported
	case "error_rate":
		n = s.Errors
	case "mismatch_rate":
		n = s.Mismatches
	default:
		return 0, false
	}
	if s.Requests == 0 {
		return 0, true
	}
	return float64(n) / float64(s.Requests), true
}
