package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/preetimant/coursesensei/pkg/simulation"
)

func sampleResult() simulation.SimulationResult {
	return simulation.SimulationResult{
		ScenarioName:  "demo",
		Seed:          7,
		Duration:      time.Second,
		TotalRequests: 10,
		TotalAnswered: 9,
		TotalNotFound: 1,
		AgentStats: map[string]*simulation.AgentStats{
			"students": {Requests: 10, Answered: 9, NotFound: 1},
		},
		Invariants: []simulation.InvariantResult{
			{Metric: "error_rate", Scope: "global", Expected: "== 0.00", Actual: "0.0000", Passed: true},
		},
		Success: true,
	}
}

func TestWriteReport_Text(t *testing.T) {
	var out bytes.Buffer
	if err := writeReport(sampleResult(), false, "", &out); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Simulation Report: demo", "Answered: 9", "students", "[PASS] error_rate (global)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report missing %q:\n%s", want, out.String())
		}
	}
}

func TestWriteReport_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	var out bytes.Buffer
	if err := writeReport(sampleResult(), true, path, &out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got simulation.SimulationResult
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalAnswered != 9 || !got.Success {
		t.Errorf("round trip = %+v", got)
	}
}

func TestDefaultScenario_Valid(t *testing.T) {
	if err := defaultScenario().Validate(); err != nil {
		t.Fatal(err)
	}
}
