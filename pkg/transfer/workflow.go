// Package transfer implements the Draft -> Shipped -> Received sub-state
// machine for inter-site shipment legs. Ship and receive drive the
// underlying lifecycle transition in the same transaction as the transfer
// mutation, so a failed lifecycle transition leaves the transfer unchanged.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ZetallicA/assetflow/pkg/assets"
	"github.com/ZetallicA/assetflow/pkg/lifecycle"
)

// Event types appended to the asset's lifecycle log by transfer operations.
const (
	EventTypeTransferCreated  = "TransferCreated"
	EventTypeTransferShipped  = "TransferShipped"
	EventTypeTransferReceived = "TransferReceived"
)

// TransferCreatedPayload is the event payload for a new shipment leg.
type TransferCreatedPayload struct {
	TransferID     string `json:"transferId"`
	FromSite       string `json:"fromSite,omitempty"`
	ToSite         string `json:"toSite"`
	Carrier        string `json:"carrier,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

// TransferShippedPayload is the event payload for a shipped leg.
type TransferShippedPayload struct {
	TransferID string `json:"transferId"`
	ToSite     string `json:"toSite"`
}

// TransferReceivedPayload is the event payload for a received leg.
type TransferReceivedPayload struct {
	TransferID string `json:"transferId"`
	ToSite     string `json:"toSite"`
	ReceivedBy string `json:"receivedBy"`
}

// createEligibleStates are the lifecycle states from which a transfer may
// be opened.
var createEligibleStates = map[lifecycle.State]bool{
	lifecycle.StateInStorage:       true,
	lifecycle.StateDelivered:       true,
	lifecycle.StateRedeployPending: true,
	lifecycle.StateSalvagePending:  true,
}

// Workflow creates and advances shipment legs.
type Workflow struct {
	db     *gorm.DB
	engine *lifecycle.Engine
	logger *slog.Logger
}

// NewWorkflow creates a transfer workflow sharing the engine's database.
func NewWorkflow(db *gorm.DB, engine *lifecycle.Engine, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{db: db, engine: engine, logger: logger}
}

// CreateTransfer opens a Draft shipment leg for an asset, snapshotting the
// origin from the asset's current location. Only legal while the asset is
// in storage, delivered, redeploy-pending, or salvage-pending.
func (w *Workflow) CreateTransfer(ctx context.Context, assetTag, toSite, toBin, carrier, trackingNumber, actor string) (*assets.AssetTransferRecord, error) {
	if toSite == "" {
		return nil, &lifecycle.ValidationError{Field: "toSite", Message: "destination site is required"}
	}

	var result *assets.AssetTransferRecord
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := assets.NewAssetStore(tx).GetByTag(assetTag)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%s: %w", assetTag, assets.ErrAssetNotFound)
		}
		if !createEligibleStates[lifecycle.State(a.LifecycleState)] {
			return &lifecycle.IneligibleError{
				Op:     "create transfer",
				Reason: fmt.Sprintf("asset %s is %s", assetTag, a.LifecycleState),
			}
		}

		record := &assets.AssetTransferRecord{
			AssetTag:       assetTag,
			FromSite:       a.CurrentSite,
			FromStorageBin: a.CurrentStorageLocation,
			ToSite:         toSite,
			ToStorageBin:   toBin,
			Carrier:        carrier,
			TrackingNumber: trackingNumber,
			State:          assets.TransferStateDraft,
			CreatedBy:      actor,
		}
		if err := assets.NewTransferStore(tx).Create(record); err != nil {
			return err
		}

		event, err := assets.NewEvent(assetTag, EventTypeTransferCreated, TransferCreatedPayload{
			TransferID:     record.ID,
			FromSite:       record.FromSite,
			ToSite:         toSite,
			Carrier:        carrier,
			TrackingNumber: trackingNumber,
		}, actor)
		if err != nil {
			return err
		}
		if err := assets.NewEventStore(tx).Append(event); err != nil {
			return err
		}

		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.logger.Info("transfer created",
		"transferId", result.ID,
		"assetTag", assetTag,
		"toSite", toSite,
		"actor", actor)
	return result, nil
}

// ShipTransfer marks a Draft leg shipped and stages the asset for pickup.
// The transfer mutation commits only if the lifecycle transition succeeds.
func (w *Workflow) ShipTransfer(ctx context.Context, transferID, actor string) (*assets.AssetTransferRecord, error) {
	var result *assets.AssetTransferRecord
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := assets.NewTransferStore(tx)
		t, err := store.GetByID(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%s: %w", transferID, assets.ErrTransferNotFound)
		}
		if t.State != assets.TransferStateDraft {
			return &lifecycle.IneligibleError{
				Op:     "ship transfer",
				Reason: fmt.Sprintf("transfer %s is %s, not Draft", transferID, t.State),
			}
		}

		now := time.Now().UTC()
		if _, err := w.engine.TransitionTx(tx, t.AssetTag, lifecycle.StateReadyForShipment, actor, nil, now); err != nil {
			return err
		}

		t.State = assets.TransferStateShipped
		t.ShippedAt = &now
		t.ShippedBy = actor
		if err := store.Save(t); err != nil {
			return err
		}

		event, err := assets.NewEvent(t.AssetTag, EventTypeTransferShipped, TransferShippedPayload{
			TransferID: t.ID,
			ToSite:     t.ToSite,
		}, actor)
		if err != nil {
			return err
		}
		if err := assets.NewEventStore(tx).Append(event); err != nil {
			return err
		}

		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.logger.Info("transfer shipped", "transferId", transferID, "actor", actor)
	return result, nil
}

// ReceiveTransfer marks a Shipped leg received and delivers the asset to
// the transfer's destination. The storage bin becomes the delivery
// location and the floor defaults to Ground.
func (w *Workflow) ReceiveTransfer(ctx context.Context, transferID, receivedBy, actor string) (*assets.AssetTransferRecord, error) {
	var result *assets.AssetTransferRecord
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := assets.NewTransferStore(tx)
		t, err := store.GetByID(transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%s: %w", transferID, assets.ErrTransferNotFound)
		}
		if t.State != assets.TransferStateShipped {
			return &lifecycle.IneligibleError{
				Op:     "receive transfer",
				Reason: fmt.Sprintf("transfer %s is %s, not Shipped", transferID, t.State),
			}
		}

		now := time.Now().UTC()
		delivery := &lifecycle.TransitionContext{
			Delivery: &lifecycle.DeliveryContext{
				ToSite:   t.ToSite,
				Location: t.ToStorageBin,
				Floor:    "Ground",
			},
		}
		if _, err := w.engine.TransitionTx(tx, t.AssetTag, lifecycle.StateDelivered, actor, delivery, now); err != nil {
			return err
		}

		t.State = assets.TransferStateReceived
		t.ReceivedAt = &now
		t.ReceivedBy = receivedBy
		if err := store.Save(t); err != nil {
			return err
		}

		event, err := assets.NewEvent(t.AssetTag, EventTypeTransferReceived, TransferReceivedPayload{
			TransferID: t.ID,
			ToSite:     t.ToSite,
			ReceivedBy: receivedBy,
		}, actor)
		if err != nil {
			return err
		}
		if err := assets.NewEventStore(tx).Append(event); err != nil {
			return err
		}

		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.logger.Info("transfer received",
		"transferId", transferID,
		"receivedBy", receivedBy,
		"actor", actor)
	return result, nil
}

// ListByAsset returns all transfers for an asset, newest first.
func (w *Workflow) ListByAsset(ctx context.Context, assetTag string) ([]assets.AssetTransferRecord, error) {
	return assets.NewTransferStore(w.db.WithContext(ctx)).ListByAsset(assetTag)
}

// GetByTrackingNumber returns the most recent transfer for a tracking
// number.
func (w *Workflow) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*assets.AssetTransferRecord, error) {
	t, err := assets.NewTransferStore(w.db.WithContext(ctx)).GetByTrackingNumber(trackingNumber)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("tracking %s: %w", trackingNumber, assets.ErrTransferNotFound)
	}
	return t, nil
}

// ListPending returns Draft and Shipped transfers, optionally those
// touching a site as origin or destination.
func (w *Workflow) ListPending(ctx context.Context, site string) ([]assets.AssetTransferRecord, error) {
	return assets.NewTransferStore(w.db.WithContext(ctx)).ListPending(site)
}
