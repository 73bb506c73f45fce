package assets

import (
	"fmt"

	"gorm.io/gorm"
)

// AssetStore provides persistence for asset records, keyed by asset tag.
type AssetStore struct {
	db *gorm.DB
}

// NewAssetStore creates a new AssetStore.
func NewAssetStore(db *gorm.DB) *AssetStore {
	return &AssetStore{db: db}
}

// AutoMigrate creates or updates all assetflow tables.
func AutoMigrate(db *gorm.DB) error {
	for _, model := range []any{
		&AssetRecord{},
		&AssetEventRecord{},
		&AssetTransferRecord{},
		&SalvageBatchRecord{},
	} {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto-migrate %T: %w", model, err)
		}
	}
	return nil
}

// GetByTag retrieves an asset by its tag. Returns nil, nil if absent.
func (s *AssetStore) GetByTag(tag string) (*AssetRecord, error) {
	var record AssetRecord
	err := s.db.Where("asset_tag = ?", tag).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset %s: %w", tag, err)
	}
	return &record, nil
}

// Create inserts a new asset record.
func (s *AssetStore) Create(record *AssetRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("create asset %s: %w", record.AssetTag, err)
	}
	return nil
}

// Save writes all fields of the asset back, guarded by the version the
// caller loaded. A concurrent writer bumps the version first and this save
// then matches zero rows, reported as ErrConflict; the caller must reload
// and retry or fail.
func (s *AssetStore) Save(record *AssetRecord) error {
	loaded := record.Version
	record.Version = loaded + 1

	res := s.db.Model(&AssetRecord{}).
		Where("asset_tag = ? AND version = ?", record.AssetTag, loaded).
		Select("*").
		Omit("created_at").
		Updates(record)
	if res.Error != nil {
		record.Version = loaded
		return fmt.Errorf("save asset %s: %w", record.AssetTag, res.Error)
	}
	if res.RowsAffected == 0 {
		record.Version = loaded
		return fmt.Errorf("save asset %s: %w", record.AssetTag, ErrConflict)
	}
	return nil
}

// ListByState returns all assets in the given lifecycle state, optionally
// filtered by current site, ordered by asset tag for deterministic output.
func (s *AssetStore) ListByState(state, site string) ([]AssetRecord, error) {
	query := s.db.Where("lifecycle_state = ?", state)
	if site != "" {
		query = query.Where("current_site = ?", site)
	}
	var records []AssetRecord
	if err := query.Order("asset_tag ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list assets in state %s: %w", state, err)
	}
	return records, nil
}

// ListByBatch returns the member assets of a salvage batch, ordered by tag.
func (s *AssetStore) ListByBatch(batchID string) ([]AssetRecord, error) {
	var records []AssetRecord
	err := s.db.Where("salvage_batch_id = ?", batchID).
		Order("asset_tag ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list batch %s members: %w", batchID, err)
	}
	return records, nil
}

// CountByBatch returns the number of member assets of a salvage batch.
func (s *AssetStore) CountByBatch(batchID string) (int64, error) {
	var count int64
	err := s.db.Model(&AssetRecord{}).
		Where("salvage_batch_id = ?", batchID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count batch %s members: %w", batchID, err)
	}
	return count, nil
}
