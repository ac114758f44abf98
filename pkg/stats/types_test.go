package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAccepted verifies a measurement counts as accepted only when it was
// tasked OK and matched the majority result.
func TestAccepted(t *testing.T) {
	tests := []struct {
		name      string
		tasking   TaskingEvaluation
		consensus ConsensusEvaluation
		expected  bool
	}{
		{
			name:      "tasked and majority",
			tasking:   TaskingOK,
			consensus: ConsensusMajorityResult,
			expected:  true,
		},
		{
			name:      "tasked but minority",
			tasking:   TaskingOK,
			consensus: ConsensusMinorityResult,
			expected:  false,
		},
		{
			name:      "not in round",
			tasking:   TaskingTaskNotInRound,
			consensus: "",
			expected:  false,
		},
		{
			name:      "not in round but majority somehow",
			tasking:   TaskingTaskNotInRound,
			consensus: ConsensusMajorityResult,
			expected:  false,
		},
		{
			name:      "tasked but never evaluated",
			tasking:   TaskingOK,
			consensus: "",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Measurement{
				StationID:           "station1",
				ParticipantAddress:  "0x10",
				TaskingEvaluation:   tt.tasking,
				ConsensusEvaluation: tt.consensus,
			}
			assert.Equal(t, tt.expected, m.Accepted())
		})
	}
}

func TestEvaluated(t *testing.T) {
	evaluated := Measurement{ConsensusEvaluation: ConsensusMinorityResult}
	assert.True(t, evaluated.Evaluated())

	dropped := Measurement{TaskingEvaluation: TaskingTaskNotInRound}
	assert.False(t, dropped.Evaluated())
}
