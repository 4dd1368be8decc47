package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunScenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		scenario, err := LoadScenario(f)
		require.NoError(t, err, f)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Steps, len(scenario.Steps))
			require.NotNil(t, result.Snapshot)
			require.NotNil(t, result.Export)
		})
	}
}

func TestRunRecordsSteps(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/conflict_modes.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.Len(t, result.Steps, 3)

	// import-1 is the seed
	assert.Equal(t, "import-2", result.Steps[0].ImportID)
	assert.Equal(t, "import-3", result.Steps[1].ImportID)
	assert.Empty(t, result.Steps[2].ImportID)
	assert.Equal(t, "E205", result.Steps[2].Error)
}

func TestRunDetectsWrongCounts(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_counts
description: "Expects an update where an insert happens"
steps:
  - document:
      cars: [{carId: c1, name: Miata}]
    expect:
      tables:
        cars: {updated: 1}
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "table cars")
}

func TestRunDetectsUnexpectedError(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: unexpected_error
description: "Malformed input without an expect clause"
steps:
  - raw: '{"cars": ['
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `expected error "", got "E201"`)
}

func TestRunDetectsStoreChange(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: store_changes
description: "A real insert is not a no-op"
steps:
  - document:
      cars: [{carId: c1, name: Miata}]
    expect:
      store_unchanged: true
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "store changed")
}

func TestRunSetupFailure(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: bad_setup
description: "Invalid SQL in setup"
setup:
  - CREATE TABLE
steps:
  - raw: '{}'
`))
	require.NoError(t, err)

	_, err = Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0]")
}

func TestRunIsDeterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/round_trip_is_idempotent.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Snapshot.Digest, second.Snapshot.Digest)
	assert.Equal(t, first.Steps, second.Steps)
}
