package calibration

// State defines the states of the interactive calibration flow.
type State string

const (
	StateSelectEndpoint  State = "SelectEndpoint"
	StateSelectModel     State = "SelectModel"
	StateRunStageOne     State = "RunStageOne"
	StateConfirmStageTwo State = "ConfirmStageTwo"
	StateRunStageTwo     State = "RunStageTwo"
	StateSkipStageTwo    State = "SkipStageTwo"
	StateDone            State = "Done"
	StateAborted         State = "Aborted"
)

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// Stage is a calibration stage identifier understood by the service tool.
type Stage string

const (
	StageJointCoarse Stage = "JointCoarse"
	StageLinearHall  Stage = "LinearHall"
)

// StageResult records one delegate invocation.
type StageResult struct {
	Stage    Stage    `json:"stage"`
	Command  string   `json:"command"`
	ExitCode int      `json:"exitCode"`
	Output   []string `json:"output,omitempty"`
	DryRun   bool     `json:"dryRun,omitempty"`
}

// Result is the outcome of one run of the flow. Stages only holds commands
// that were actually executed (or printed, in dry-run mode), in order.
type Result struct {
	State    State         `json:"state"`
	Endpoint string        `json:"endpoint,omitempty"`
	Model    string        `json:"model,omitempty"`
	Stages   []StageResult `json:"stages,omitempty"`
	// Reason is set when State is StateAborted.
	Reason string `json:"reason,omitempty"`
}

// LastExitCode returns the exit code of the last executed stage. ok is false
// if no stage ran.
func (r Result) LastExitCode() (code int, ok bool) {
	if len(r.Stages) == 0 {
		return 0, false
	}
	return r.Stages[len(r.Stages)-1].ExitCode, true
}

// Ran reports whether stage was executed during the run.
func (r Result) Ran(stage Stage) bool {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return true
		}
	}
	return false
}
