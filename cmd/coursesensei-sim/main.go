package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/preetimant/coursesensei/pkg/client"
	"github.com/preetimant/coursesensei/pkg/simulation"
)

func main() {
	var (
		scenarioFile string
		apiURL       string
		token        string
		jsonOutput   bool
		outputFile   string
	)

	flag.StringVar(&scenarioFile, "scenario", "", "Path to scenario YAML or JSON file")
	flag.StringVar(&apiURL, "api", "http://127.0.0.1:8090", "Base URL of coursesensei-d")
	flag.StringVar(&token, "token", os.Getenv("COURSESENSEI_WEBHOOK_TOKEN"), "webhook bearer token")
	flag.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	flag.StringVar(&outputFile, "out", "", "Write output to file instead of stdout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	scenario := defaultScenario()
	if scenarioFile != "" {
		var err error
		scenario, err = simulation.LoadScenario(scenarioFile)
		if err != nil {
			logger.Error("failed to load scenario", "path", scenarioFile, "error", err)
			os.Exit(2)
		}
	} else {
		logger.Info("no scenario file provided, running default demo scenario")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(apiURL, client.WithToken(token), client.WithRetries(0, nil))
	result := simulation.RunScenario(ctx, scenario, c, logger)

	if err := writeReport(result, jsonOutput, outputFile, os.Stdout); err != nil {
		logger.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	if !result.Success {
		os.Exit(1)
	}
}

func defaultScenario() simulation.Scenario {
	return simulation.Scenario{
		Name:        "Default Demo",
		Duration:    10 * time.Second,
		Description: "Students browsing one course",
		Agents: []simulation.AgentConfig{
			{
				Name:     "students",
				Count:    5,
				Behavior: simulation.BehaviorPeriodic,
				Rate:     2,
				Turns: []simulation.Turn{
					{Intent: "GetCourseCredits", Params: map[string]any{"courseName": "Databases 101"}},
					{Intent: "GetInstructorForCourse", Params: map[string]any{"courseName": "Databases 101"}},
					{Intent: "NextPage"},
					{Intent: "GetAssessmentDetails", Params: map[string]any{"courseName": "Databases 101"}},
				},
			},
		},
		Invariants: []simulation.Invariant{
			{Metric: "error_rate", Condition: "==", Value: 0, Scope: "global"},
		},
	}
}

func writeReport(res simulation.SimulationResult, jsonFmt bool, filePath string, stdout io.Writer) error {
	var output []byte

	if jsonFmt {
		var err error
		output, err = json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
	} else {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "\n--- Simulation Report: %s ---\n", res.ScenarioName)
		fmt.Fprintf(&buf, "Duration: %s | Seed: %d\n", res.Duration, res.Seed)
		fmt.Fprintf(&buf, "Requests: %d | Answered: %d | Not found: %d | No data: %d | Unsupported: %d | Errors: %d | Mismatches: %d\n",
			res.TotalRequests, res.TotalAnswered, res.TotalNotFound, res.TotalNoData,
			res.TotalUnsupported, res.TotalErrors, res.TotalMismatches)

		names := make([]string, 0, len(res.AgentStats))
		for name := range res.AgentStats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			st := res.AgentStats[name]
			fmt.Fprintf(&buf, "  %-16s requests=%d answered=%d not_found=%d errors=%d\n",
				name, st.Requests, st.Answered, st.NotFound, st.Errors)
		}

		if len(res.Invariants) > 0 {
			buf.WriteString("\nInvariants:\n")
			for _, inv := range res.Invariants {
				status := "FAIL"
				if inv.Passed {
					status = "PASS"
				}
				fmt.Fprintf(&buf, "[%s] %s (%s): Expected %s, Got %s\n", status, inv.Metric, inv.Scope, inv.Expected, inv.Actual)
			}
		}
		output = buf.Bytes()
	}

	if filePath != "" {
		if err := os.WriteFile(filePath, output, 0644); err != nil {
			return fmt.Errorf("failed to write report to %s: %w", filePath, err)
		}
		fmt.Fprintf(stdout, "Report written to %s\n", filePath)
		return nil
	}
	fmt.Fprintln(stdout, string(output))
	return nil
}
