package assets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BatchStore provides persistence for salvage batch records.
type BatchStore struct {
	db *gorm.DB
}

// NewBatchStore creates a new BatchStore.
func NewBatchStore(db *gorm.DB) *BatchStore {
	return &BatchStore{db: db}
}

// GetByID retrieves a batch by id. Returns nil, nil if absent.
func (s *BatchStore) GetByID(id string) (*SalvageBatchRecord, error) {
	var record SalvageBatchRecord
	err := s.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}
	return &record, nil
}

// Create inserts a new batch record.
func (s *BatchStore) Create(record *SalvageBatchRecord) error {
	if record.ID == "" {
		record.ID = newID()
	}
	if err := s.db.Create(record).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("create batch %s: %w", record.BatchCode, ErrDuplicateBatchCode)
		}
		return fmt.Errorf("create batch %s: %w", record.BatchCode, err)
	}
	return nil
}

// isDuplicateKey reports whether err is a unique-constraint violation from
// any of the supported drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}

// Save writes all fields of the batch back.
func (s *BatchStore) Save(record *SalvageBatchRecord) error {
	res := s.db.Model(&SalvageBatchRecord{}).
		Where("id = ?", record.ID).
		Select("*").
		Omit("created_at").
		Updates(record)
	if res.Error != nil {
		return fmt.Errorf("save batch %s: %w", record.ID, res.Error)
	}
	return nil
}

// ListByDateRange returns batches created within [from, to], oldest first.
func (s *BatchStore) ListByDateRange(from, to time.Time) ([]SalvageBatchRecord, error) {
	var records []SalvageBatchRecord
	err := s.db.Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list batches in range: %w", err)
	}
	return records, nil
}
