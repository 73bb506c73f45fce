package lifecycle

import "fmt"

// State is one of the eight lifecycle stages an asset occupies.
type State string

const (
	StateInStorage        State = "InStorage"
	StateReadyForShipment State = "ReadyForShipment"
	StateInTransit        State = "InTransit"
	StateDelivered        State = "Delivered"
	StateDeployed         State = "Deployed"
	StateRedeployPending  State = "RedeployPending"
	StateSalvagePending   State = "SalvagePending"
	StateSalvaged         State = "Salvaged" // terminal
)

// AllStates lists every lifecycle state.
var AllStates = []State{
	StateInStorage,
	StateReadyForShipment,
	StateInTransit,
	StateDelivered,
	StateDeployed,
	StateRedeployPending,
	StateSalvagePending,
	StateSalvaged,
}

// ParseState validates a state string supplied by a caller.
func ParseState(s string) (State, error) {
	for _, state := range AllStates {
		if State(s) == state {
			return state, nil
		}
	}
	return "", fmt.Errorf("unknown lifecycle state %q", s)
}
