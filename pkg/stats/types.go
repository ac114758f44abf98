package stats

// TaskingEvaluation says whether a measurement was actually scheduled and
// executed by the tasking round.
type TaskingEvaluation string

const (
	TaskingOK             TaskingEvaluation = "OK"
	TaskingTaskNotInRound TaskingEvaluation = "TASK_NOT_IN_ROUND"
)

// ConsensusEvaluation says whether a measurement agreed with the majority of
// peers evaluating the same task. Empty means the measurement was dropped
// before tasking and never evaluated.
type ConsensusEvaluation string

const (
	ConsensusMajorityResult ConsensusEvaluation = "MAJORITY_RESULT"
	ConsensusMinorityResult ConsensusEvaluation = "MINORITY_RESULT"
)

// Measurement is one station/participant activity observation handed to the
// ingestion path by the submission/consensus pipeline.
type Measurement struct {
	StationID           string              `json:"station_id"`
	ParticipantAddress  string              `json:"participant_address"`
	InetGroup           string              `json:"inet_group"`
	TaskingEvaluation   TaskingEvaluation   `json:"tasking_evaluation"`
	ConsensusEvaluation ConsensusEvaluation `json:"consensus_evaluation,omitempty"`
}

// Accepted reports whether the measurement counts toward the accepted
// counter: it must have been tasked and have matched the majority.
func (m *Measurement) Accepted() bool {
	return m.TaskingEvaluation == TaskingOK && m.ConsensusEvaluation == ConsensusMajorityResult
}

// Evaluated reports whether a consensus evaluation is present at all.
// Only evaluated measurements contribute to the participant-subnet set.
func (m *Measurement) Evaluated() bool {
	return m.ConsensusEvaluation != ""
}
