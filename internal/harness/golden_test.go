package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoldenTraces(t *testing.T) {
	for _, name := range []string{"light_toggle", "mark_alternation"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("../../testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			require.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshotJSON_Deterministic(t *testing.T) {
	s, err := LoadScenario("../../testdata/scenarios/mark_alternation.yaml")
	require.NoError(t, err)

	r1, err := Run(s)
	require.NoError(t, err)
	r2, err := Run(s)
	require.NoError(t, err)

	j1, err := SnapshotJSON(s.Name, r1)
	require.NoError(t, err)
	j2, err := SnapshotJSON(s.Name, r2)
	require.NoError(t, err)
	require.Equal(t, string(j1), string(j2))
}
