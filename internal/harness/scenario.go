package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

// Scenario defines one import conformance test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup holds SQL statements run before anything else, typically to
	// create extra tables.
	Setup []string `yaml:"setup,omitempty"`

	// Seed is a bare table mapping imported in merge mode before the steps.
	Seed yaml.Node `yaml:"seed,omitempty"`

	// Steps are imports run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final store.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Golden compares the final export with testdata/golden/{Name}.golden.
	Golden bool `yaml:"golden,omitempty"`
}

// Step imports one document.
type Step struct {
	// Document is the import document as YAML. Exactly one of Document
	// and Raw is set.
	Document yaml.Node `yaml:"document,omitempty"`

	// Raw is the import document as JSON text, for inputs YAML cannot
	// express (malformed JSON, duplicate keys).
	Raw string `yaml:"raw,omitempty"`

	// Mode is the conflict mode; empty means merge.
	Mode string `yaml:"mode,omitempty"`

	Clear  bool `yaml:"clear,omitempty"`
	DryRun bool `yaml:"dry_run,omitempty"`

	// Expect is checked against the import result. Nil means the import
	// must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the expected import outcome.
type Expect struct {
	// Error is the expected error code (e.g. "E205"). Empty means success.
	Error string `yaml:"error,omitempty"`

	// Tables holds the expected counts per table. Tables not listed are
	// not checked.
	Tables map[string]Counts `yaml:"tables,omitempty"`

	// StoreUnchanged requires the store snapshot to be identical before
	// and after the step.
	StoreUnchanged bool `yaml:"store_unchanged,omitempty"`
}

// Counts are the expected per-table outcome counts.
type Counts struct {
	Inserted  int `yaml:"inserted"`
	Updated   int `yaml:"updated"`
	Unchanged int `yaml:"unchanged"`
	Skipped   int `yaml:"skipped"`
}

// Assertion validates the final store state.
type Assertion struct {
	// Type is one of AssertRow, AssertRowCount, AssertAbsent.
	Type string `yaml:"type"`

	// Table is the table to query.
	Table string `yaml:"table"`

	// Where filters rows by exact column values. A null value matches
	// NULL.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (used by row). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number of rows (used by row_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertRow      = "row"
	AssertRowCount = "row_count"
	AssertAbsent   = "absent"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if !isZero(s.Seed) && s.Seed.Kind != yaml.MappingNode {
		return fmt.Errorf("seed must be a mapping of table name to rows")
	}

	for i, step := range s.Steps {
		hasDoc, hasRaw := !isZero(step.Document), step.Raw != ""
		if hasDoc == hasRaw {
			return fmt.Errorf("steps[%d]: exactly one of document and raw is required", i)
		}
		if _, err := transfer.ParseMode(step.Mode); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.Expect != nil && step.Expect.Error != "" && len(step.Expect.Tables) > 0 {
			return fmt.Errorf("steps[%d].expect: tables cannot be combined with error", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
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
	if a.Table == "" {
		return fmt.Errorf("assertions[%d]: table is required", index)
	}

	switch a.Type {
	case AssertRow:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for row", index)
		}
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertAbsent:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for absent", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func isZero(n yaml.Node) bool {
	return n.Kind == 0
}
