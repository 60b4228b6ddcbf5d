package ir

// MatchRecord is the header of one recorded match.
type MatchRecord struct {
	ID            string `json:"id"`
	CircuitHash   string `json:"circuit_hash"`
	CircuitName   string `json:"circuit_name,omitempty"`
	Roles         []Role `json:"roles"`
	Seq           int64  `json:"seq"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// StepRecord is one move of a match: the state at step Step and the joint
// move played from it, in role order.
type StepRecord struct {
	MatchID string `json:"match_id"`
	Step    int    `json:"step"`
	StateID string `json:"state_id"`
	State   State  `json:"state"`
	Moves   []Move `json:"moves"`
	Seq     int64  `json:"seq"`
}

// ResultRecord closes a match with its terminal state and goal values in
// role order.
type ResultRecord struct {
	MatchID      string `json:"match_id"`
	FinalStateID string `json:"final_state_id"`
	FinalState   State  `json:"final_state"`
	Goals        []int  `json:"goals"`
	Steps        int    `json:"steps"`
	Seq          int64  `json:"seq"`
}
