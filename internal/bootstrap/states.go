package bootstrap

import "fmt"

const stageErrorTemplateConstant = "bootstrap stopped before %s: %v"

// State is a stage of the bootstrap state machine.
type State string

// States in the only order a run may visit them.
const (
	StateStart            State = State("START")
	StateEnvironmentReady State = State("ENV_OK")
	StateGeneratorReady   State = State("GENERATOR_OK")
	StateRegistryReady    State = State("REGISTRY_READY")
	StateSubmodulesSynced State = State("SUBMODULES_SYNCED")
	StateBuildGenerated   State = State("BUILD_GENERATED")
	StateDone             State = State("DONE")
)

// StateSequence lists every state in visiting order.
func StateSequence() []State {
	return []State{
		StateStart,
		StateEnvironmentReady,
		StateGeneratorReady,
		StateRegistryReady,
		StateSubmodulesSynced,
		StateBuildGenerated,
		StateDone,
	}
}

// StageError reports the state a run failed to reach.
type StageError struct {
	State State
	Err   error
}

// Error describes the aborted stage.
func (stageError StageError) Error() string {
	return fmt.Sprintf(stageErrorTemplateConstant, stageError.State, stageError.Err)
}

// Unwrap exposes the collaborator failure.
func (stageError StageError) Unwrap() error {
	return stageError.Err
}
