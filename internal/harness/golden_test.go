package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// To regenerate golden files:
//
//	go test ./internal/harness -run TestScenarios_Golden -update
func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTrace_OmitsAbsentSides(t *testing.T) {
	scenario := mustParse(t, `
name: trace_shape
initial: { a: 1 }
observe: ["a", "b"]
steps:
  - mutations:
      - remove_key: { path: a }
      - set: { path: b, value: null }
`)

	result, err := Run(scenario)
	require.NoError(t, err)

	trace, err := result.Trace("trace_shape")
	require.NoError(t, err)
	data, err := result.CanonicalTrace("trace_shape")
	require.NoError(t, err)

	assert.Contains(t, string(data), `{"from":1,"path":"a","pattern":"a","step":0}`)
	assert.Contains(t, string(data), `{"path":"b","pattern":"b","step":0,"to":null}`)
	assert.Contains(t, trace, "final_hash")
}
