package lifecycle

import (
	"context"
	"fmt"

	"github.com/ZetallicA/assetflow/pkg/assets"
)

// Read-only listings, ordered by asset tag. No side effects.

// CreateAsset registers a new asset record. The caller supplies the tag;
// tags are never generated or reassigned.
func (e *Engine) CreateAsset(ctx context.Context, record *assets.AssetRecord) error {
	return assets.NewAssetStore(e.db.WithContext(ctx)).Create(record)
}

// GetAsset fetches a single asset by tag.
func (e *Engine) GetAsset(ctx context.Context, assetTag string) (*assets.AssetRecord, error) {
	a, err := assets.NewAssetStore(e.db.WithContext(ctx)).GetByTag(assetTag)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%s: %w", assetTag, assets.ErrAssetNotFound)
	}
	return a, nil
}

// ListByState returns assets in an arbitrary state, optionally site-filtered.
func (e *Engine) ListByState(ctx context.Context, state State, site string) ([]assets.AssetRecord, error) {
	return assets.NewAssetStore(e.db.WithContext(ctx)).ListByState(string(state), site)
}

// ListReadyForShipment returns assets staged for carrier pickup.
func (e *Engine) ListReadyForShipment(ctx context.Context) ([]assets.AssetRecord, error) {
	return e.ListByState(ctx, StateReadyForShipment, "")
}

// ListInTransit returns assets currently with a carrier.
func (e *Engine) ListInTransit(ctx context.Context) ([]assets.AssetRecord, error) {
	return e.ListByState(ctx, StateInTransit, "")
}

// ListDelivered returns assets awaiting put-away or deployment.
func (e *Engine) ListDelivered(ctx context.Context) ([]assets.AssetRecord, error) {
	return e.ListByState(ctx, StateDelivered, "")
}

// ListInStorage returns stored assets, optionally at one site.
func (e *Engine) ListInStorage(ctx context.Context, site string) ([]assets.AssetRecord, error) {
	return e.ListByState(ctx, StateInStorage, site)
}

// ListSalvagePending returns assets awaiting batch disposal, optionally at
// one site.
func (e *Engine) ListSalvagePending(ctx context.Context, site string) ([]assets.AssetRecord, error) {
	return e.ListByState(ctx, StateSalvagePending, site)
}

// ListEvents returns the paginated lifecycle history of an asset, newest
// first.
func (e *Engine) ListEvents(ctx context.Context, assetTag string, pageSize int, pageToken string) ([]assets.AssetEventRecord, string, error) {
	return assets.NewEventStore(e.db.WithContext(ctx)).ListByAsset(assetTag, pageSize, pageToken)
}
