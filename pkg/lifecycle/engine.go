package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ZetallicA/assetflow/pkg/assets"
)

// Engine validates and executes single-asset state transitions and their
// side effects. Every mutating operation runs in one database transaction:
// the asset save and the event append commit together or not at all.
type Engine struct {
	db      *gorm.DB
	machine *Machine
	logger  *slog.Logger
}

// NewEngine creates a lifecycle engine bound to the given database.
func NewEngine(db *gorm.DB, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:      db,
		machine: NewMachine(),
		logger:  logger,
	}
}

// Machine exposes the transition machine for read-only validation.
func (e *Engine) Machine() *Machine { return e.machine }

// CanTransition reports whether target is reachable from current.
func (e *Engine) CanTransition(current, target State) bool {
	return e.machine.CanTransition(current, target)
}

// TransitionToState loads the asset, validates the transition, applies the
// target state's side effects, stamps the update, and appends exactly one
// StateChanged event. On any failure the asset and the log are unchanged.
func (e *Engine) TransitionToState(ctx context.Context, assetTag string, target State, actor string, tc *TransitionContext) (*assets.AssetRecord, error) {
	var result *assets.AssetRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := e.TransitionTx(tx, assetTag, target, actor, tc, time.Now().UTC())
		if err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("asset transitioned",
		"assetTag", assetTag,
		"to", target,
		"actor", actor)
	return result, nil
}

// TransitionTx executes one transition inside an existing transaction. The
// transfer and salvage workflows use it to compose transitions with their
// own writes atomically.
func (e *Engine) TransitionTx(tx *gorm.DB, assetTag string, target State, actor string, tc *TransitionContext, now time.Time) (*assets.AssetRecord, error) {
	store := assets.NewAssetStore(tx)

	a, err := store.GetByTag(assetTag)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%s: %w", assetTag, assets.ErrAssetNotFound)
	}

	current := State(a.LifecycleState)
	if err := e.machine.ValidateTransition(current, target); err != nil {
		return nil, err
	}

	if err := e.applyStateEffects(a, target, actor, tc, now); err != nil {
		return nil, err
	}

	a.LifecycleState = string(target)
	a.UpdatedAt = now
	a.UpdatedBy = actor

	if err := store.Save(a); err != nil {
		return nil, err
	}

	event, err := assets.NewEvent(assetTag, StateChangedEventType(target), StateChangedPayload{
		OldState: current,
		NewState: target,
		Context:  tc,
	}, actor)
	if err != nil {
		return nil, err
	}
	if err := assets.NewEventStore(tx).Append(event); err != nil {
		return nil, err
	}

	return a, nil
}

// DeployAsset transitions an asset to Deployed at the given desk for the
// given user.
func (e *Engine) DeployAsset(ctx context.Context, assetTag, desk, userName, userEmail, actor string) (*assets.AssetRecord, error) {
	return e.TransitionToState(ctx, assetTag, StateDeployed, actor, &TransitionContext{
		Deploy: &DeployContext{Desk: desk, UserName: userName, UserEmail: userEmail},
	})
}

// ReplaceAsset deploys newTag to the old asset's user and desk, then sends
// oldTag to SalvagePending (or RedeployPending when sendOldToSalvage is
// false), and appends a linked Replaced/ReplacedBy event pair. Both asset
// updates and both events commit in a single transaction; a failure on
// either leg rolls the whole operation back.
func (e *Engine) ReplaceAsset(ctx context.Context, oldTag, newTag, desk, userName, userEmail, actor string, sendOldToSalvage bool) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		deployCtx := &TransitionContext{
			Deploy: &DeployContext{Desk: desk, UserName: userName, UserEmail: userEmail},
		}
		if _, err := e.TransitionTx(tx, newTag, StateDeployed, actor, deployCtx, now); err != nil {
			return fmt.Errorf("deploy replacement %s: %w", newTag, err)
		}

		oldTarget := StateSalvagePending
		if !sendOldToSalvage {
			oldTarget = StateRedeployPending
		}
		if _, err := e.TransitionTx(tx, oldTag, oldTarget, actor, nil, now); err != nil {
			return fmt.Errorf("retire replaced %s: %w", oldTag, err)
		}

		events := assets.NewEventStore(tx)
		payload := ReplacedPayload{OldAssetTag: oldTag, NewAssetTag: newTag}

		replaced, err := assets.NewEvent(newTag, EventTypeReplaced, payload, actor)
		if err != nil {
			return err
		}
		if err := events.Append(replaced); err != nil {
			return err
		}

		replacedBy, err := assets.NewEvent(oldTag, EventTypeReplacedBy, payload, actor)
		if err != nil {
			return err
		}
		return events.Append(replacedBy)
	})
	if err != nil {
		return err
	}
	e.logger.Info("asset replaced",
		"oldTag", oldTag,
		"newTag", newTag,
		"sendOldToSalvage", sendOldToSalvage,
		"actor", actor)
	return nil
}

// RedeployAsset moves a pending asset back into service. An empty newDesk
// returns the asset to storage; otherwise it is deployed to the new desk
// with the existing user assignment preserved.
func (e *Engine) RedeployAsset(ctx context.Context, assetTag, newDesk, actor string) (*assets.AssetRecord, error) {
	if newDesk == "" {
		return e.TransitionToState(ctx, assetTag, StateInStorage, actor, nil)
	}
	return e.TransitionToState(ctx, assetTag, StateDeployed, actor, &TransitionContext{
		Deploy: &DeployContext{Desk: newDesk},
	})
}

// MarkSalvagePending sends an asset toward disposal, wiping its sensitive
// fields.
func (e *Engine) MarkSalvagePending(ctx context.Context, assetTag, actor string) (*assets.AssetRecord, error) {
	return e.TransitionToState(ctx, assetTag, StateSalvagePending, actor, nil)
}

// MarkReadyForShipment stages an asset for carrier pickup.
func (e *Engine) MarkReadyForShipment(ctx context.Context, assetTag, actor string) (*assets.AssetRecord, error) {
	return e.TransitionToState(ctx, assetTag, StateReadyForShipment, actor, nil)
}

// PickupAsset records carrier pickup, optionally copying routing details
// onto the asset.
func (e *Engine) PickupAsset(ctx context.Context, assetTag string, pickup *PickupContext, actor string) (*assets.AssetRecord, error) {
	var tc *TransitionContext
	if pickup != nil {
		tc = &TransitionContext{Pickup: pickup}
	}
	return e.TransitionToState(ctx, assetTag, StateInTransit, actor, tc)
}

// DeliverAsset records arrival at the destination site.
func (e *Engine) DeliverAsset(ctx context.Context, assetTag string, delivery *DeliveryContext, actor string) (*assets.AssetRecord, error) {
	return e.TransitionToState(ctx, assetTag, StateDelivered, actor, &TransitionContext{Delivery: delivery})
}

// ReassignLocationAfterDelivery corrects the location of a delivered asset
// without a state change, logging a LocationReassignedAfterDelivery event.
// Only legal while the asset is in Delivered.
func (e *Engine) ReassignLocationAfterDelivery(ctx context.Context, assetTag, location, floor, desk, actor string) (*assets.AssetRecord, error) {
	if location == "" {
		return nil, &ValidationError{Field: "location", Message: "location is required"}
	}

	var result *assets.AssetRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := assets.NewAssetStore(tx)
		a, err := store.GetByTag(assetTag)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%s: %w", assetTag, assets.ErrAssetNotFound)
		}
		if State(a.LifecycleState) != StateDelivered {
			return &IneligibleError{
				Op:     "reassign location",
				Reason: fmt.Sprintf("asset %s is %s, not Delivered", assetTag, a.LifecycleState),
			}
		}

		payload := LocationReassignedPayload{
			OldLocation: a.Location,
			OldFloor:    a.Floor,
			OldDesk:     a.Desk,
			Location:    location,
			Floor:       floor,
			Desk:        desk,
		}

		now := time.Now().UTC()
		a.Location = location
		a.Floor = floor
		a.Desk = desk
		a.UpdatedAt = now
		a.UpdatedBy = actor

		if err := store.Save(a); err != nil {
			return err
		}

		event, err := assets.NewEvent(assetTag, EventTypeLocationReassigned, payload, actor)
		if err != nil {
			return err
		}
		if err := assets.NewEventStore(tx).Append(event); err != nil {
			return err
		}

		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IneligibleError reports an operation requested against an asset, transfer,
// or batch in a state that does not permit it.
type IneligibleError struct {
	Op     string `json:"op"`
	Reason string `json:"reason"`
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
