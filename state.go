package obsctl

import "fmt"

// State is a Session lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateBringingUp    State = "bringing_up"
	StateReady         State = "ready"
	StateConfiguring   State = "configuring"
	StateConfigured    State = "configured"
	StateStreaming     State = "streaming"
	StateStopped       State = "stopped"
	StateTornDown      State = "torn_down"
	StateFailed        State = "failed"
)

// AllStates lists every state in lifecycle order.
var AllStates = []State{
	StateUninitialized,
	StateBringingUp,
	StateReady,
	StateConfiguring,
	StateConfigured,
	StateStreaming,
	StateStopped,
	StateTornDown,
	StateFailed,
}

// transitions is the edge set of the session machine. Failed and TornDown
// are reachable from every state and are checked separately.
var transitions = map[State][]State{
	StateUninitialized: {StateBringingUp},
	StateBringingUp:    {StateReady},
	StateReady:         {StateConfiguring},
	StateConfiguring:   {StateConfigured, StateStopped},
	StateConfigured:    {StateConfiguring, StateStreaming},
	StateStreaming:     {StateStopped},
	StateStopped:       {StateConfiguring, StateStreaming},
	// A failed configure keeps the engine up; configuring again may recover.
	StateFailed: {StateConfiguring},
}

// canTransition reports whether from -> to is a legal edge.
func canTransition(from, to State) bool {
	if from == StateTornDown {
		return false
	}
	if to == StateFailed || to == StateTornDown {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// HasOutput reports whether an output object exists in state s.
func (s State) HasOutput() bool {
	switch s {
	case StateConfigured, StateStreaming, StateStopped:
		return true
	}
	return false
}

// Live reports whether the engine is up in state s.
func (s State) Live() bool {
	switch s {
	case StateReady, StateConfiguring, StateConfigured, StateStreaming, StateStopped:
		return true
	}
	return false
}

type transitionError struct {
	from, to State
}

func (e *transitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.from, e.to)
}
