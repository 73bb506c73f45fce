package lifecycle

import (
	"time"

	"github.com/ZetallicA/assetflow/pkg/assets"
)

// applyStateEffects mutates the asset with the target state's side effects.
// Each effect is independent and idempotent with respect to unrelated
// fields. Validation failures leave the asset untouched because the caller
// runs inside a transaction that rolls back on error.
func (e *Engine) applyStateEffects(a *assets.AssetRecord, target State, actor string, tc *TransitionContext, now time.Time) error {
	switch target {
	case StateDeployed:
		return applyDeployed(a, actor, tc, now)
	case StateDelivered:
		return applyDelivered(a, actor, tc, now)
	case StateInStorage:
		e.applyInStorage(a)
	case StateReadyForShipment:
		a.ReadyForPickupAt = &now
		a.ReadyForPickupBy = actor
	case StateInTransit:
		applyInTransit(a, actor, tc, now)
	case StateSalvagePending:
		clearSensitiveFields(a)
	case StateSalvaged:
		// No field mutation beyond the generic stamp; warn if the record
		// lost identity or tracking data somewhere along the way.
		if a.AssetTag == "" {
			e.logger.Warn("salvaged asset has empty asset tag")
		}
		if a.CurrentSite == "" {
			e.logger.Warn("salvaged asset has no current site", "assetTag", a.AssetTag)
		}
	}
	return nil
}

func applyDeployed(a *assets.AssetRecord, actor string, tc *TransitionContext, now time.Time) error {
	if tc == nil || tc.Deploy == nil {
		return &ValidationError{Field: "deploy", Message: "deploy context is required"}
	}
	d := tc.Deploy
	if d.Desk == "" {
		return &ValidationError{Field: "deploy.desk", Message: "desk is required"}
	}
	a.CurrentDesk = d.Desk
	a.DeployedAt = &now
	a.DeployedBy = actor
	// Empty user fields mean "keep the existing assignment"; redeploys move
	// a device between desks without reassigning it.
	if d.UserName != "" {
		a.DeployedToUser = d.UserName
	}
	if d.UserEmail != "" {
		a.DeployedToEmail = d.UserEmail
	}
	return nil
}

func applyDelivered(a *assets.AssetRecord, actor string, tc *TransitionContext, now time.Time) error {
	if tc == nil || tc.Delivery == nil {
		return &ValidationError{Field: "delivery", Message: "delivery context is required"}
	}
	d := tc.Delivery
	if d.ToSite == "" {
		return &ValidationError{Field: "delivery.toSite", Message: "destination site is required"}
	}
	a.CurrentSite = d.ToSite
	a.Location = d.Location
	a.Floor = d.Floor
	a.Desk = d.Desk
	a.DeliveredAt = &now
	a.DeliveredBy = actor
	return nil
}

// applyInStorage derives the storage location from the asset's current site.
// Log-only no-op if the site is unknown.
func (e *Engine) applyInStorage(a *assets.AssetRecord) {
	if a.CurrentSite == "" {
		e.logger.Warn("asset entering storage has no current site, skipping location derivation",
			"assetTag", a.AssetTag)
		return
	}
	a.CurrentStorageLocation = a.CurrentSite + " Storage"
	a.Floor = "Storage"
	a.Location = a.CurrentSite
}

func applyInTransit(a *assets.AssetRecord, actor string, tc *TransitionContext, now time.Time) {
	a.PickedUpAt = &now
	a.PickedUpBy = actor
	if tc == nil || tc.Pickup == nil {
		return
	}
	p := tc.Pickup
	if p.DestinationSite != "" {
		a.DestinationSite = p.DestinationSite
	}
	if p.Carrier != "" {
		a.Carrier = p.Carrier
	}
	if p.TrackingNumber != "" {
		a.TrackingNumber = p.TrackingNumber
	}
}

// clearSensitiveFields performs the irreversible wipe of network, telephony,
// and user-assignment data when an asset heads for salvage. Identification,
// procurement, and location fields are retained for tracking.
func clearSensitiveFields(a *assets.AssetRecord) {
	a.IPAddress = ""
	a.MACAddress = ""
	a.WallPort = ""
	a.SwitchName = ""
	a.SwitchPort = ""
	a.NetName = ""
	a.AssignedToUser = ""
	a.AssignedToEmail = ""
	a.DeployedToUser = ""
	a.DeployedToEmail = ""
	a.CurrentDesk = ""
	a.Desk = ""
	a.PhoneNumber = ""
	a.Extension = ""
	a.DeployedAt = nil
	a.DeployedBy = ""
}
