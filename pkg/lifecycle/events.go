package lifecycle

// Event types emitted by the engine. State changes carry a per-target
// suffix so the log reads as StateChanged_Deployed, StateChanged_Salvaged,
// and so on.
const (
	EventTypeReplaced           = "Replaced"
	EventTypeReplacedBy         = "ReplacedBy"
	EventTypeLocationReassigned = "LocationReassignedAfterDelivery"
)

// StateChangedEventType returns the event type tag for a transition into
// the given state.
func StateChangedEventType(target State) string {
	return "StateChanged_" + string(target)
}

// DeployContext carries the desk and user a device is deployed to. An empty
// UserName or UserEmail means "keep the existing value" so redeploys can
// move a device without reassigning it.
type DeployContext struct {
	Desk      string `json:"desk"`
	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

// DeliveryContext carries the destination recorded when a shipment arrives.
type DeliveryContext struct {
	ToSite   string `json:"toSite"`
	Location string `json:"location"`
	Floor    string `json:"floor"`
	Desk     string `json:"desk,omitempty"`
}

// PickupContext carries optional shipment routing recorded at pickup.
type PickupContext struct {
	DestinationSite string `json:"destinationSite"`
	Carrier         string `json:"carrier,omitempty"`
	TrackingNumber  string `json:"trackingNumber,omitempty"`
}

// TransitionContext bundles the per-target context variants accepted by
// TransitionToState. At most one field is consulted per transition.
type TransitionContext struct {
	Deploy   *DeployContext   `json:"deploy,omitempty"`
	Delivery *DeliveryContext `json:"delivery,omitempty"`
	Pickup   *PickupContext   `json:"pickup,omitempty"`
}

// StateChangedPayload is the event payload for every state transition.
type StateChangedPayload struct {
	OldState State              `json:"oldState"`
	NewState State              `json:"newState"`
	Context  *TransitionContext `json:"context,omitempty"`
}

// ReplacedPayload links the two halves of a replacement: a Replaced event
// on the new asset and a ReplacedBy event on the old one.
type ReplacedPayload struct {
	OldAssetTag string `json:"oldAssetTag"`
	NewAssetTag string `json:"newAssetTag"`
}

// LocationReassignedPayload records an in-place location correction on a
// delivered asset; no state change is involved.
type LocationReassignedPayload struct {
	OldLocation string `json:"oldLocation,omitempty"`
	OldFloor    string `json:"oldFloor,omitempty"`
	OldDesk     string `json:"oldDesk,omitempty"`
	Location    string `json:"location"`
	Floor       string `json:"floor,omitempty"`
	Desk        string `json:"desk,omitempty"`
}
