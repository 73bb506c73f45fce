package lifecycle

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ZetallicA/assetflow/pkg/assets"
)

// salvageEligibleStates are the lifecycle states from which an asset may be
// sealed into Salvaged by batch finalization.
var salvageEligibleStates = map[State]bool{
	StateDelivered:      true,
	StateSalvagePending: true,
}

// CanSalvage reports whether an asset in the given state may be sealed by
// batch finalization.
func CanSalvage(state State) bool {
	return salvageEligibleStates[state]
}

// SalvageTx drives an asset into the terminal Salvaged state inside an
// existing transaction. The transition table deliberately has no route into
// Salvaged; batch finalization is the only path, and it checks the
// disposal-eligibility states instead of the table.
func (e *Engine) SalvageTx(tx *gorm.DB, assetTag, actor string, now time.Time) (*assets.AssetRecord, error) {
	store := assets.NewAssetStore(tx)

	a, err := store.GetByTag(assetTag)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%s: %w", assetTag, assets.ErrAssetNotFound)
	}

	current := State(a.LifecycleState)
	if !CanSalvage(current) {
		return nil, &IneligibleError{
			Op:     "salvage",
			Reason: fmt.Sprintf("asset %s is %s, not Delivered or SalvagePending", assetTag, current),
		}
	}

	if err := e.applyStateEffects(a, StateSalvaged, actor, nil, now); err != nil {
		return nil, err
	}

	a.LifecycleState = string(StateSalvaged)
	a.UpdatedAt = now
	a.UpdatedBy = actor

	if err := store.Save(a); err != nil {
		return nil, err
	}

	event, err := assets.NewEvent(assetTag, StateChangedEventType(StateSalvaged), StateChangedPayload{
		OldState: current,
		NewState: StateSalvaged,
	}, actor)
	if err != nil {
		return nil, err
	}
	if err := assets.NewEventStore(tx).Append(event); err != nil {
		return nil, err
	}

	return a, nil
}
