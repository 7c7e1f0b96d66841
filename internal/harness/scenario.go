package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/statetree/internal/seed"
	"github.com/roach88/statetree/internal/tree"
)

// Scenario defines a store test scenario: an initial state, a sequence of
// transactions and assertions over the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Initial is the inline initial state. Mutually exclusive with
	// InitialFile; when both are empty the store starts as {}.
	Initial map[string]any `yaml:"initial,omitempty"`

	// InitialFile loads the initial state through the seed package.
	// Relative paths resolve against the scenario file's directory.
	InitialFile string `yaml:"initial_file,omitempty"`

	// ComponentIndex enables the component index over this collection path.
	ComponentIndex string `yaml:"component_index,omitempty"`

	// Observe lists patterns to subscribe to. Every notification is kept
	// in the result and the golden trace.
	Observe []string `yaml:"observe,omitempty"`

	// Steps are dispatched in order, one transaction each.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state, the diffs and the notifications.
	Assertions []Assertion `yaml:"assertions"`

	// BaseDir is the directory of the scenario file.
	BaseDir string `yaml:"-"`
}

// Step is one transaction.
type Step struct {
	// Name labels the step in errors and traces.
	Name string `yaml:"name,omitempty"`

	// Mutations are applied atomically in order.
	Mutations []MutationSpec `yaml:"mutations"`

	// ExpectValid is the expected validity of the transaction.
	// Defaults to true.
	ExpectValid *bool `yaml:"expect_valid,omitempty"`
}

// Expected returns the expected validity of the step.
func (s Step) Expected() bool {
	return s.ExpectValid == nil || *s.ExpectValid
}

// MutationSpec describes one mutation. Exactly one field must be set.
type MutationSpec struct {
	Set         *ValueOp       `yaml:"set,omitempty"`
	Push        *ValueOp       `yaml:"push,omitempty"`
	RemoveKey   *PathOp        `yaml:"remove_key,omitempty"`
	RemoveWhere *RemoveWhereOp `yaml:"remove_where,omitempty"`
	Update      *UpdateOp      `yaml:"update,omitempty"`
}

// PathOp names a location.
type PathOp struct {
	Path string `yaml:"path"`
}

// ValueOp writes Value at Path. A missing value is null.
type ValueOp struct {
	Path  string `yaml:"path"`
	Value any    `yaml:"value"`
}

// RemoveWhereOp removes array elements. Elements that are objects are
// matched against Match (partial match); other elements are compared with
// Equals.
type RemoveWhereOp struct {
	Path   string         `yaml:"path"`
	Match  map[string]any `yaml:"match,omitempty"`
	Equals any            `yaml:"equals,omitempty"`
}

// UpdateOp is a named read-modify-write.
type UpdateOp struct {
	Path string `yaml:"path"`

	// Op is one of increment, decrement, toggle or append.
	Op string `yaml:"op"`

	// By is the increment or decrement amount. Defaults to 1.
	By any `yaml:"by,omitempty"`

	// Value is the suffix for append.
	Value any `yaml:"value,omitempty"`
}

// Update operations.
const (
	UpdateIncrement = "increment"
	UpdateDecrement = "decrement"
	UpdateToggle    = "toggle"
	UpdateAppend    = "append"
)

// Assertion validates an outcome of the run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "state_equals": the value at Path equals Value
	// - "state_absent": nothing exists at Path
	// - "diff_contains": step Step produced an entry at Path (From/To when given)
	// - "history_length": the store holds Count records
	// - "entities_with_component": the index lists exactly Entities for Component
	// - "notification_count": Pattern's subscription was called Count times
	Type string `yaml:"type"`

	Path      string   `yaml:"path,omitempty"`
	Value     any      `yaml:"value,omitempty"`
	Step      *int     `yaml:"step,omitempty"`
	From      any      `yaml:"from,omitempty"`
	To        any      `yaml:"to,omitempty"`
	Count     *int     `yaml:"count,omitempty"`
	Component string   `yaml:"component,omitempty"`
	Entities  []string `yaml:"entities,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
}

// Assertion type constants.
const (
	AssertStateEquals           = "state_equals"
	AssertStateAbsent           = "state_absent"
	AssertDiffContains          = "diff_contains"
	AssertHistoryLength         = "history_length"
	AssertEntitiesWithComponent = "entities_with_component"
	AssertNotificationCount     = "notification_count"
)

// LoadScenario reads and parses a scenario YAML file.
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
	scenario.BaseDir = filepath.Dir(path)
	return scenario, nil
}

// ParseScenario parses scenario YAML. Relative initial_file paths resolve
// against the working directory until BaseDir is set.
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

// InitialState builds the scenario's starting tree.
func (s *Scenario) InitialState() (tree.Value, error) {
	if s.InitialFile != "" {
		file := s.InitialFile
		if !filepath.IsAbs(file) && s.BaseDir != "" {
			file = filepath.Join(s.BaseDir, file)
		}
		v, err := seed.Load(file)
		if err != nil {
			return nil, fmt.Errorf("load initial state: %w", err)
		}
		return v, nil
	}
	if s.Initial == nil {
		return tree.Object{}, nil
	}
	v, err := tree.FromGo(s.Initial)
	if err != nil {
		return nil, fmt.Errorf("convert initial state: %w", err)
	}
	return v, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Initial != nil && s.InitialFile != "" {
		return fmt.Errorf("initial and initial_file are mutually exclusive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if len(step.Mutations) == 0 {
			return fmt.Errorf("steps[%d]: mutations list is required and must be non-empty", i)
		}
		for j, m := range step.Mutations {
			if err := validateMutation(m); err != nil {
				return fmt.Errorf("steps[%d].mutations[%d]: %w", i, j, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, len(s.Steps)); err != nil {
			return err
		}
	}
	return nil
}

func validateMutation(m MutationSpec) error {
	set := 0
	if m.Set != nil {
		set++
	}
	if m.Push != nil {
		set++
	}
	if m.RemoveKey != nil {
		set++
	}
	if m.RemoveWhere != nil {
		set++
	}
	if m.Update != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of set, push, remove_key, remove_where, update is required (got %d)", set)
	}

	if m.RemoveWhere != nil && m.RemoveWhere.Match == nil && m.RemoveWhere.Equals == nil {
		return fmt.Errorf("remove_where needs match or equals")
	}
	if m.Update != nil {
		switch m.Update.Op {
		case UpdateIncrement, UpdateDecrement, UpdateToggle, UpdateAppend:
		default:
			return fmt.Errorf("unknown update op %q", m.Update.Op)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStateEquals:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for state_equals", index)
		}
	case AssertStateAbsent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for state_absent", index)
		}
	case AssertDiffContains:
		if a.Step == nil || *a.Step < 0 || *a.Step >= steps {
			return fmt.Errorf("assertions[%d]: step must name one of the %d steps for diff_contains", index, steps)
		}
	case AssertHistoryLength:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history_length", index)
		}
	case AssertEntitiesWithComponent:
		if a.Component == "" {
			return fmt.Errorf("assertions[%d]: component is required for entities_with_component", index)
		}
	case AssertNotificationCount:
		if a.Pattern == "" {
			return fmt.Errorf("assertions[%d]: pattern is required for notification_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for notification_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
