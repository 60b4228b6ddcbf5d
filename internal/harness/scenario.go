package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario scripts a sequence of joint moves against a circuit and states
// what the machine must answer along the way.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Circuit is the path of a CUE file, CUE directory or compiled JSON
	// circuit. Relative paths resolve against the scenario file.
	Circuit string `yaml:"circuit"`

	// Initial holds expectations on the initial state.
	Initial *Expect `yaml:"initial,omitempty"`

	// Steps are applied in order. A step whose moves are rejected leaves
	// the state unchanged.
	Steps []Step `yaml:"steps"`

	// Assertions validate the finished trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one joint move, one move per role in role order.
type Step struct {
	Moves  []string `yaml:"moves"`
	Expect *Expect  `yaml:"expect,omitempty"`
}

// Expect lists what must hold after a step. Unset fields are not checked.
type Expect struct {
	// State is the exact set of true base sentences.
	State []string `yaml:"state,omitempty"`

	Terminal *bool `yaml:"terminal,omitempty"`

	// Legal maps roles to their exact legal moves, in circuit order.
	Legal map[string][]string `yaml:"legal,omitempty"`

	// Goals maps roles to goal values. Only checked on terminal states.
	Goals map[string]int `yaml:"goals,omitempty"`

	// Error is the machine error code the step's moves must be rejected
	// with, e.g. UNKNOWN_MOVE.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a sentence is true in some visited state
	// - "trace_order": sentences first become true in the given order
	// - "trace_count": a role played a move exactly Count times
	// - "final_state": the last state holds Sentences and scores Goals
	// - "replay": the recorded match replays to identical states
	Type string `yaml:"type"`

	Sentence  string         `yaml:"sentence,omitempty"`
	Sentences []string       `yaml:"sentences,omitempty"`
	Role      string         `yaml:"role,omitempty"`
	Move      string         `yaml:"move,omitempty"`
	Count     int            `yaml:"count,omitempty"`
	Goals     map[string]int `yaml:"goals,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertReplay        = "replay"
)

// LoadScenario reads and parses a scenario YAML file. The circuit path is
// resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Circuit != "" && !filepath.IsAbs(scenario.Circuit) {
		scenario.Circuit = filepath.Join(filepath.Dir(path), scenario.Circuit)
	}
	if _, err := os.Stat(scenario.Circuit); os.IsNotExist(err) {
		return nil, fmt.Errorf("invalid scenario: circuit not found: %s", scenario.Circuit)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted. When
// filter is non-empty only files whose base name contains it are returned.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" && !strings.Contains(filepath.Base(path), filter) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Circuit == "" {
		return fmt.Errorf("circuit is required")
	}
	if s.Initial != nil && s.Initial.Error != "" {
		return fmt.Errorf("initial: error cannot be expected before any move")
	}

	for i, step := range s.Steps {
		if len(step.Moves) == 0 {
			return fmt.Errorf("steps[%d]: moves is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Sentence == "" {
			return fmt.Errorf("assertions[%d]: sentence is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Sentences) == 0 {
			return fmt.Errorf("assertions[%d]: sentences list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Role == "" || a.Move == "" {
			return fmt.Errorf("assertions[%d]: role and move are required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Sentences) == 0 && len(a.Goals) == 0 {
			return fmt.Errorf("assertions[%d]: sentences or goals is required for final_state", index)
		}
	case AssertReplay:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
