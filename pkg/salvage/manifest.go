package salvage

import (
	"context"
	"fmt"
	"time"

	"github.com/ZetallicA/assetflow/pkg/assets"
)

// weightEstimatesKg maps asset categories to advisory disposal weight
// estimates. Unknown categories carry no estimate; weights never block
// finalization.
var weightEstimatesKg = map[string]float64{
	"laptop":            2.5,
	"desktop":           8.0,
	"monitor":           5.0,
	"printer":           15.0,
	"server":            25.0,
	"network-equipment": 3.0,
}

// EstimateWeightKg returns the advisory weight for a category, or false if
// the category has no estimate.
func EstimateWeightKg(category string) (float64, bool) {
	w, ok := weightEstimatesKg[category]
	return w, ok
}

// ManifestEntry is one member line of a disposal manifest.
type ManifestEntry struct {
	AssetTag          string   `json:"assetTag"`
	SerialNumber      string   `json:"serialNumber,omitempty"`
	Manufacturer      string   `json:"manufacturer,omitempty"`
	Model             string   `json:"model,omitempty"`
	Notes             string   `json:"notes,omitempty"`
	EstimatedWeightKg *float64 `json:"estimatedWeightKg,omitempty"`
	BinNumber         string   `json:"binNumber,omitempty"`
}

// Manifest is the advisory disposal listing handed to the pickup vendor.
type Manifest struct {
	BatchID              string          `json:"batchId"`
	BatchCode            string          `json:"batchCode"`
	PickupVendor         string          `json:"pickupVendor"`
	ManifestNumber       string          `json:"manifestNumber,omitempty"`
	GeneratedAt          time.Time       `json:"generatedAt"`
	Entries              []ManifestEntry `json:"entries"`
	TotalEstimatedWeight float64         `json:"totalEstimatedWeightKg"`
}

// GenerateManifest produces the disposal manifest for a batch. Read-only;
// legal on both open and finalized batches.
func (w *Workflow) GenerateManifest(ctx context.Context, batchID string) (*Manifest, error) {
	db := w.db.WithContext(ctx)

	batch, err := assets.NewBatchStore(db).GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%s: %w", batchID, assets.ErrBatchNotFound)
	}

	members, err := assets.NewAssetStore(db).ListByBatch(batchID)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		BatchID:        batch.ID,
		BatchCode:      batch.BatchCode,
		PickupVendor:   batch.PickupVendor,
		ManifestNumber: batch.PickupManifestNumber,
		GeneratedAt:    time.Now().UTC(),
		Entries:        make([]ManifestEntry, 0, len(members)),
	}
	for i := range members {
		a := &members[i]
		entry := ManifestEntry{
			AssetTag:     a.AssetTag,
			SerialNumber: a.SerialNumber,
			Manufacturer: a.Manufacturer,
			Model:        a.Model,
			Notes:        a.Notes,
			BinNumber:    a.CurrentStorageLocation,
		}
		if weight, ok := EstimateWeightKg(a.Category); ok {
			entry.EstimatedWeightKg = &weight
			manifest.TotalEstimatedWeight += weight
		}
		manifest.Entries = append(manifest.Entries, entry)
	}
	return manifest, nil
}

// ReportBatch is one batch row of a salvage report.
type ReportBatch struct {
	BatchID        string     `json:"batchId"`
	BatchCode      string     `json:"batchCode"`
	PickupVendor   string     `json:"pickupVendor"`
	CreatedAt      time.Time  `json:"createdAt"`
	FinalizedAt    *time.Time `json:"finalizedAt,omitempty"`
	ManifestNumber string     `json:"manifestNumber,omitempty"`
	AssetCount     int64      `json:"assetCount"`
}

// Report aggregates salvage batch activity over a date range.
type Report struct {
	From            time.Time     `json:"from"`
	To              time.Time     `json:"to"`
	BatchCount      int           `json:"batchCount"`
	FinalizedCount  int           `json:"finalizedCount"`
	TotalAssetCount int64         `json:"totalAssetCount"`
	Batches         []ReportBatch `json:"batches"`
}

// GenerateSalvageReport returns batch and asset counts for batches created
// within [from, to].
func (w *Workflow) GenerateSalvageReport(ctx context.Context, from, to time.Time) (*Report, error) {
	db := w.db.WithContext(ctx)

	batches, err := assets.NewBatchStore(db).ListByDateRange(from, to)
	if err != nil {
		return nil, err
	}

	assetStore := assets.NewAssetStore(db)
	report := &Report{
		From:    from,
		To:      to,
		Batches: make([]ReportBatch, 0, len(batches)),
	}
	for i := range batches {
		b := &batches[i]
		count, err := assetStore.CountByBatch(b.ID)
		if err != nil {
			return nil, err
		}
		row := ReportBatch{
			BatchID:        b.ID,
			BatchCode:      b.BatchCode,
			PickupVendor:   b.PickupVendor,
			CreatedAt:      b.CreatedAt,
			FinalizedAt:    b.FinalizedAt,
			ManifestNumber: b.PickupManifestNumber,
			AssetCount:     count,
		}
		report.Batches = append(report.Batches, row)
		report.BatchCount++
		if b.IsFinalized() {
			report.FinalizedCount++
		}
		report.TotalAssetCount += count
	}
	return report, nil
}
