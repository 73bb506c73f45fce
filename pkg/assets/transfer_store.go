package assets

import (
	"fmt"

	"gorm.io/gorm"
)

// TransferStore provides persistence for shipment leg records.
type TransferStore struct {
	db *gorm.DB
}

// NewTransferStore creates a new TransferStore.
func NewTransferStore(db *gorm.DB) *TransferStore {
	return &TransferStore{db: db}
}

// GetByID retrieves a transfer by id. Returns nil, nil if absent.
func (s *TransferStore) GetByID(id string) (*AssetTransferRecord, error) {
	var record AssetTransferRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer %s: %w", id, err)
	}
	return &record, nil
}

// Create inserts a new transfer record.
func (s *TransferStore) Create(record *AssetTransferRecord) error {
	if record.ID == "" {
		record.ID = newID()
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("create transfer for %s: %w", record.AssetTag, err)
	}
	return nil
}

// Save writes all fields of the transfer back. Transfers are only mutated
// inside engine transactions that already hold the asset's version guard,
// so no separate concurrency token is needed here.
func (s *TransferStore) Save(record *AssetTransferRecord) error {
	res := s.db.Model(&AssetTransferRecord{}).
		Where("id = ?", record.ID).
		Select("*").
		Omit("created_at").
		Updates(record)
	if res.Error != nil {
		return fmt.Errorf("save transfer %s: %w", record.ID, res.Error)
	}
	return nil
}

// ListByAsset returns all transfers for an asset, newest first.
func (s *TransferStore) ListByAsset(assetTag string) ([]AssetTransferRecord, error) {
	var records []AssetTransferRecord
	err := s.db.Where("asset_tag = ?", assetTag).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list transfers for %s: %w", assetTag, err)
	}
	return records, nil
}

// GetByTrackingNumber returns the most recent transfer carrying the given
// tracking number. Returns nil, nil if none match.
func (s *TransferStore) GetByTrackingNumber(trackingNumber string) (*AssetTransferRecord, error) {
	var record AssetTransferRecord
	err := s.db.Where("tracking_number = ?", trackingNumber).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer by tracking %s: %w", trackingNumber, err)
	}
	return &record, nil
}

// ListPending returns transfers still in Draft or Shipped, optionally
// restricted to those touching a site as either origin or destination.
func (s *TransferStore) ListPending(site string) ([]AssetTransferRecord, error) {
	query := s.db.Where("state IN ?", []string{TransferStateDraft, TransferStateShipped})
	if site != "" {
		query = query.Where("from_site = ? OR to_site = ?", site, site)
	}
	var records []AssetTransferRecord
	if err := query.Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list pending transfers: %w", err)
	}
	return records, nil
}
