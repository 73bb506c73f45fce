package assets

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// EventStore provides append-only operations on the lifecycle event log.
// There is no update or delete; events live independently of their asset.
type EventStore struct {
	db *gorm.DB
}

// NewEventStore creates a new EventStore.
func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// Append writes a new immutable event record.
func (s *EventStore) Append(event *AssetEventRecord) error {
	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("append event %s for %s: %w", event.EventType, event.AssetTag, err)
	}
	return nil
}

// ListByAsset returns paginated events for an asset, newest first.
// pageToken is an opaque "<RFC3339Nano>|<id>" cursor from a previous page;
// the id leg keeps pages lossless when multiple events share a timestamp,
// as every event appended inside one transaction does. Pass "" for the
// first page.
func (s *EventStore) ListByAsset(assetTag string, pageSize int, pageToken string) ([]AssetEventRecord, string, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := s.db.Where("asset_tag = ?", assetTag).
		Order("created_at DESC, id DESC").
		Limit(pageSize + 1)
	if pageToken != "" {
		t, id, err := decodePageToken(pageToken)
		if err != nil {
			return nil, "", err
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", t, t, id)
	}

	var records []AssetEventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", fmt.Errorf("list events for %s: %w", assetTag, err)
	}

	var nextToken string
	if len(records) > pageSize {
		last := records[pageSize-1]
		nextToken = last.CreatedAt.Format(time.RFC3339Nano) + "|" + last.ID
		records = records[:pageSize]
	}

	return records, nextToken, nil
}

func decodePageToken(token string) (time.Time, string, error) {
	ts, id, ok := strings.Cut(token, "|")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("invalid page token: missing id")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid page token: %w", err)
	}
	return t, id, nil
}

// ListByType returns events of one type across all assets, newest first.
func (s *EventStore) ListByType(eventType string, limit int) ([]AssetEventRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []AssetEventRecord
	err := s.db.Where("event_type = ?", eventType).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list events of type %s: %w", eventType, err)
	}
	return records, nil
}
