package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *RuntimeError
		want string
	}{
		{
			name: "match and step",
			err:  NewReplayDivergedError("m1", 3, "state", "a", "b"),
			want: "REPLAY_DIVERGED: recorded state does not match replay (match=m1, step=3)",
		},
		{
			name: "match only",
			err:  NewQuotaError("m1", 11, 10),
			want: "QUOTA_EXCEEDED: match exceeded max steps (11 > 10) (match=m1)",
		},
		{
			name: "bare",
			err:  &RuntimeError{Code: ErrCodeMissingPolicy, Message: "no policy for role x", Step: -1},
			want: "MISSING_POLICY: no policy for role x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestRuntimeError_Predicates(t *testing.T) {
	diverged := fmt.Errorf("replay: %w", NewReplayDivergedError("m", 0, "state", "a", "b"))
	assert.True(t, IsReplayDivergedError(diverged))
	assert.False(t, IsQuotaError(diverged))
	assert.False(t, IsCircuitMismatchError(diverged))

	mismatch := NewCircuitMismatchError("m", "hash", "x", "y")
	assert.True(t, IsCircuitMismatchError(mismatch))
	assert.Equal(t, `CIRCUIT_MISMATCH: recorded hash "x" differs from circuit hash "y" (match=m)`, mismatch.Error())

	assert.True(t, IsQuotaError(NewQuotaError("m", 2, 1)))
}

func TestNewReplayDivergedError_Details(t *testing.T) {
	err := NewReplayDivergedError("m", 1, "state", "rec", "comp")
	assert.Equal(t, "rec", err.Details["recorded"])
	assert.Equal(t, "comp", err.Details["computed"])
}
