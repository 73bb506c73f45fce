// Package salvage groups disposal-bound assets into vendor pickup batches,
// produces the disposal manifest, and seals batches by driving every member
// into the terminal lifecycle state in one transaction.
package salvage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ZetallicA/assetflow/pkg/assets"
	"github.com/ZetallicA/assetflow/pkg/lifecycle"
)

// Event types appended by batch operations.
const (
	EventTypeAddedToBatch   = "AddedToSalvageBatch"
	EventTypeBatchFinalized = "SalvageBatchFinalized"
)

// AddedToBatchPayload is the event payload for a new batch member.
type AddedToBatchPayload struct {
	BatchID   string `json:"batchId"`
	BatchCode string `json:"batchCode"`
}

// BatchFinalizedPayload is the payload of the single batch-level
// finalization event.
type BatchFinalizedPayload struct {
	BatchID        string   `json:"batchId"`
	BatchCode      string   `json:"batchCode"`
	ManifestNumber string   `json:"manifestNumber"`
	AssetTags      []string `json:"assetTags"`
}

// Workflow manages salvage batches.
type Workflow struct {
	db     *gorm.DB
	engine *lifecycle.Engine
	logger *slog.Logger
}

// NewWorkflow creates a salvage workflow sharing the engine's database.
func NewWorkflow(db *gorm.DB, engine *lifecycle.Engine, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{db: db, engine: engine, logger: logger}
}

// BatchCode generates the code for a batch created at the given UTC time,
// in the form SAL-2026-08-31-151504.
func BatchCode(t time.Time) string {
	return "SAL-" + t.UTC().Format("2006-01-02") + "-" + t.UTC().Format("150405")
}

// maxBatchCodeRetries bounds the same-second collision retries in
// CreateBatch.
const maxBatchCodeRetries = 5

// CreateBatch creates an empty batch for a pickup vendor. Batch codes carry
// one-second resolution, so a create that collides with an existing code is
// retried at the next second before the duplicate is surfaced.
func (w *Workflow) CreateBatch(ctx context.Context, pickupVendor, actor string) (*assets.SalvageBatchRecord, error) {
	if pickupVendor == "" {
		return nil, &lifecycle.ValidationError{Field: "pickupVendor", Message: "pickup vendor is required"}
	}
	store := assets.NewBatchStore(w.db.WithContext(ctx))
	at := time.Now()
	var record *assets.SalvageBatchRecord
	for attempt := 0; ; attempt++ {
		record = &assets.SalvageBatchRecord{
			BatchCode:    BatchCode(at),
			PickupVendor: pickupVendor,
			CreatedBy:    actor,
		}
		err := store.Create(record)
		if err == nil {
			break
		}
		if !errors.Is(err, assets.ErrDuplicateBatchCode) || attempt >= maxBatchCodeRetries {
			return nil, err
		}
		at = at.Add(time.Second)
	}
	w.logger.Info("salvage batch created",
		"batchId", record.ID,
		"batchCode", record.BatchCode,
		"vendor", pickupVendor,
		"actor", actor)
	return record, nil
}

// GetBatch fetches a batch by id.
func (w *Workflow) GetBatch(ctx context.Context, batchID string) (*assets.SalvageBatchRecord, error) {
	b, err := assets.NewBatchStore(w.db.WithContext(ctx)).GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%s: %w", batchID, assets.ErrBatchNotFound)
	}
	return b, nil
}

// AddAssetToBatch assigns an asset to an open batch. The asset must be in
// Delivered or SalvagePending and must not already belong to any batch;
// sealed batches reject new members.
func (w *Workflow) AddAssetToBatch(ctx context.Context, assetTag, batchID, actor string) error {
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch, err := assets.NewBatchStore(tx).GetByID(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%s: %w", batchID, assets.ErrBatchNotFound)
		}
		if batch.IsFinalized() {
			return &lifecycle.IneligibleError{
				Op:     "add to batch",
				Reason: fmt.Sprintf("batch %s is finalized", batch.BatchCode),
			}
		}

		store := assets.NewAssetStore(tx)
		a, err := store.GetByTag(assetTag)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%s: %w", assetTag, assets.ErrAssetNotFound)
		}
		if !lifecycle.CanSalvage(lifecycle.State(a.LifecycleState)) {
			return &lifecycle.IneligibleError{
				Op:     "add to batch",
				Reason: fmt.Sprintf("asset %s is %s, not Delivered or SalvagePending", assetTag, a.LifecycleState),
			}
		}
		if a.SalvageBatchID != "" {
			return &lifecycle.IneligibleError{
				Op:     "add to batch",
				Reason: fmt.Sprintf("asset %s already belongs to batch %s", assetTag, a.SalvageBatchID),
			}
		}

		now := time.Now().UTC()
		a.SalvageBatchID = batchID
		a.UpdatedAt = now
		a.UpdatedBy = actor
		if err := store.Save(a); err != nil {
			return err
		}

		event, err := assets.NewEvent(assetTag, EventTypeAddedToBatch, AddedToBatchPayload{
			BatchID:   batchID,
			BatchCode: batch.BatchCode,
		}, actor)
		if err != nil {
			return err
		}
		return assets.NewEventStore(tx).Append(event)
	})
	if err != nil {
		return err
	}
	w.logger.Info("asset added to salvage batch",
		"assetTag", assetTag,
		"batchId", batchID,
		"actor", actor)
	return nil
}

// FinalizeBatch seals a batch: it records the vendor manifest number and
// pickup time, then drives every member asset into Salvaged. The
// eligibility check, the batch seal, and all member transitions commit
// together; one ineligible or failed member rolls the whole finalization
// back.
func (w *Workflow) FinalizeBatch(ctx context.Context, batchID, manifestNumber string, pickedUpAt time.Time, actor string) error {
	if manifestNumber == "" {
		return &lifecycle.ValidationError{Field: "manifestNumber", Message: "manifest number is required"}
	}

	var memberTags []string
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batchStore := assets.NewBatchStore(tx)
		batch, err := batchStore.GetByID(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%s: %w", batchID, assets.ErrBatchNotFound)
		}
		if batch.IsFinalized() {
			return &lifecycle.IneligibleError{
				Op:     "finalize batch",
				Reason: fmt.Sprintf("batch %s is already finalized", batch.BatchCode),
			}
		}

		members, err := assets.NewAssetStore(tx).ListByBatch(batchID)
		if err != nil {
			return err
		}

		// Fail fast before any mutation if a member drifted to an
		// ineligible state since it was added.
		for i := range members {
			if !lifecycle.CanSalvage(lifecycle.State(members[i].LifecycleState)) {
				return &lifecycle.IneligibleError{
					Op: "finalize batch",
					Reason: fmt.Sprintf("asset %s is %s, not Delivered or SalvagePending",
						members[i].AssetTag, members[i].LifecycleState),
				}
			}
		}

		now := time.Now().UTC()
		batch.PickupManifestNumber = manifestNumber
		batch.PickedUpAt = &pickedUpAt
		batch.FinalizedAt = &now
		batch.FinalizedBy = actor
		if err := batchStore.Save(batch); err != nil {
			return err
		}

		memberTags = make([]string, 0, len(members))
		for i := range members {
			if _, err := w.engine.SalvageTx(tx, members[i].AssetTag, actor, now); err != nil {
				return err
			}
			memberTags = append(memberTags, members[i].AssetTag)
		}

		// One batch-level event, keyed by the batch code so the seal shows
		// up in the event log alongside the per-member state changes.
		event, err := assets.NewEvent(batch.BatchCode, EventTypeBatchFinalized, BatchFinalizedPayload{
			BatchID:        batchID,
			BatchCode:      batch.BatchCode,
			ManifestNumber: manifestNumber,
			AssetTags:      memberTags,
		}, actor)
		if err != nil {
			return err
		}
		return assets.NewEventStore(tx).Append(event)
	})
	if err != nil {
		return err
	}
	w.logger.Info("salvage batch finalized",
		"batchId", batchID,
		"manifestNumber", manifestNumber,
		"members", len(memberTags),
		"actor", actor)
	return nil
}
