package lifecycle

import "fmt"

// transitionTable is the source of truth for legal lifecycle transitions.
// Every transition not listed is rejected. Terminal states map to an empty
// set; init verifies the table covers every state.
var transitionTable = map[State][]State{
	StateInStorage:        {StateReadyForShipment, StateDeployed, StateSalvagePending},
	StateReadyForShipment: {StateInTransit},
	StateInTransit:        {StateDelivered},
	StateDelivered:        {StateInStorage, StateDeployed},
	StateDeployed:         {StateRedeployPending, StateSalvagePending, StateReadyForShipment, StateInStorage},
	StateRedeployPending:  {StateDeployed, StateInStorage, StateReadyForShipment},
	StateSalvagePending:   {StateReadyForShipment},
	StateSalvaged:         {},
}

func init() {
	for _, state := range AllStates {
		if _, ok := transitionTable[state]; !ok {
			panic(fmt.Sprintf("lifecycle: transition table missing entry for state %s", state))
		}
	}
	for from := range transitionTable {
		if _, err := ParseState(string(from)); err != nil {
			panic(fmt.Sprintf("lifecycle: transition table keyed by unknown state %s", from))
		}
	}
}

// Machine validates lifecycle state transitions against the static table.
type Machine struct {
	transitions map[State][]State
}

// NewMachine creates a machine with the default transition table.
func NewMachine() *Machine {
	return &Machine{transitions: transitionTable}
}

// CanTransition reports whether target is reachable from current in one
// step. Pure lookup, no side effects; callers use it to pre-validate
// UI or permission gating before a mutating call.
func (m *Machine) CanTransition(current, target State) bool {
	for _, t := range m.transitions[current] {
		if t == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns nil if the transition is allowed, or a
// structured TransitionError if not.
func (m *Machine) ValidateTransition(current, target State) error {
	if m.CanTransition(current, target) {
		return nil
	}
	code := "LIFECYCLE_INVALID_TRANSITION"
	if len(m.transitions[current]) == 0 {
		code = "LIFECYCLE_STATE_TERMINAL"
	}
	return &TransitionError{
		Code:    code,
		From:    current,
		To:      target,
		Message: fmt.Sprintf("no transition defined from %s to %s", current, target),
	}
}

// AllowedTransitions returns all valid target states from the given state.
func (m *Machine) AllowedTransitions(from State) []State {
	return append([]State(nil), m.transitions[from]...)
}

// TransitionError is a structured error for invalid transitions.
type TransitionError struct {
	Code    string `json:"code"`
	From    State  `json:"from"`
	To      State  `json:"to"`
	Message string `json:"message"`
}

func (e *TransitionError) Error() string {
	return e.Message
}

// ValidationError reports a missing or malformed transition context.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
