package assets

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB creates an in-memory SQLite DB with all assetflow tables
// migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestAssetStore_CreateAndGet(t *testing.T) {
	store := NewAssetStore(newTestDB(t))

	record := &AssetRecord{
		AssetTag:       "LT-001234",
		LifecycleState: "InStorage",
		CurrentSite:    "LIC",
		SerialNumber:   "SN-9981",
		Manufacturer:   "Dell",
		Model:          "Latitude 5440",
		Category:       "laptop",
	}
	require.NoError(t, store.Create(record))

	got, err := store.GetByTag("LT-001234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "InStorage", got.LifecycleState)
	assert.Equal(t, "LIC", got.CurrentSite)
	assert.Equal(t, "SN-9981", got.SerialNumber)
	assert.Equal(t, 0, got.Version)
	assert.True(t, got.IsEditable())
}

func TestAssetStore_Get_NotFound(t *testing.T) {
	store := NewAssetStore(newTestDB(t))

	got, err := store.GetByTag("nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAssetStore_Save_BumpsVersion(t *testing.T) {
	store := NewAssetStore(newTestDB(t))

	require.NoError(t, store.Create(&AssetRecord{
		AssetTag:       "LT-000001",
		LifecycleState: "InStorage",
	}))

	got, err := store.GetByTag("LT-000001")
	require.NoError(t, err)
	require.NotNil(t, got)

	got.Notes = "battery replaced"
	require.NoError(t, store.Save(got))
	assert.Equal(t, 1, got.Version)

	reloaded, err := store.GetByTag("LT-000001")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, 1, reloaded.Version)
	assert.Equal(t, "battery replaced", reloaded.Notes)
}

func TestAssetStore_Save_ConcurrentConflict(t *testing.T) {
	store := NewAssetStore(newTestDB(t))

	require.NoError(t, store.Create(&AssetRecord{
		AssetTag:       "LT-000002",
		LifecycleState: "InStorage",
	}))

	first, err := store.GetByTag("LT-000002")
	require.NoError(t, err)
	second, err := store.GetByTag("LT-000002")
	require.NoError(t, err)

	first.Notes = "first writer"
	require.NoError(t, store.Save(first))

	second.Notes = "stale writer"
	err = store.Save(second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	// The stale copy keeps its loaded version so the caller can reload.
	assert.Equal(t, 0, second.Version)

	reloaded, err := store.GetByTag("LT-000002")
	require.NoError(t, err)
	assert.Equal(t, "first writer", reloaded.Notes)
	assert.Equal(t, 1, reloaded.Version)
}

func TestAssetStore_ListByState(t *testing.T) {
	store := NewAssetStore(newTestDB(t))

	seed := []AssetRecord{
		{AssetTag: "LT-B", LifecycleState: "InStorage", CurrentSite: "LIC"},
		{AssetTag: "LT-A", LifecycleState: "InStorage", CurrentSite: "LIC"},
		{AssetTag: "LT-C", LifecycleState: "InStorage", CurrentSite: "Brooklyn"},
		{AssetTag: "LT-D", LifecycleState: "Deployed", CurrentSite: "LIC"},
	}
	for i := range seed {
		require.NoError(t, store.Create(&seed[i]))
	}

	all, err := store.ListByState("InStorage", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ordered by tag.
	assert.Equal(t, "LT-A", all[0].AssetTag)
	assert.Equal(t, "LT-B", all[1].AssetTag)
	assert.Equal(t, "LT-C", all[2].AssetTag)

	lic, err := store.ListByState("InStorage", "LIC")
	require.NoError(t, err)
	require.Len(t, lic, 2)
	assert.Equal(t, "LT-A", lic[0].AssetTag)
	assert.Equal(t, "LT-B", lic[1].AssetTag)
}

func TestAssetStore_ListAndCountByBatch(t *testing.T) {
	store := NewAssetStore(newTestDB(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(&AssetRecord{
			AssetTag:       fmt.Sprintf("LT-%03d", i),
			LifecycleState: "SalvagePending",
			SalvageBatchID: "batch-1",
		}))
	}
	require.NoError(t, store.Create(&AssetRecord{
		AssetTag:       "LT-999",
		LifecycleState: "SalvagePending",
	}))

	members, err := store.ListByBatch("batch-1")
	require.NoError(t, err)
	assert.Len(t, members, 3)

	count, err := store.CountByBatch("batch-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestEventStore_AppendAndDecode(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	type payload struct {
		OldState string `json:"oldState"`
		NewState string `json:"newState"`
	}
	event, err := NewEvent("LT-001", "StateChanged_Deployed", payload{
		OldState: "InStorage",
		NewState: "Deployed",
	}, "alice")
	require.NoError(t, err)
	require.NoError(t, store.Append(event))

	got, _, err := store.ListByAsset("LT-001", 10, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "StateChanged_Deployed", got[0].EventType)
	assert.Equal(t, "alice", got[0].CreatedBy)

	var decoded payload
	require.NoError(t, got[0].DecodePayload(&decoded))
	assert.Equal(t, "InStorage", decoded.OldState)
	assert.Equal(t, "Deployed", decoded.NewState)
}

func TestEventStore_Pagination(t *testing.T) {
	db := newTestDB(t)
	store := NewEventStore(db)

	// Distinct timestamps so newest-first ordering and the time-based
	// page token are unambiguous.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		event, err := NewEvent("LT-010", fmt.Sprintf("Event%d", i), nil, "system")
		require.NoError(t, err)
		event.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Append(event))
	}

	page1, token, err := store.ListByAsset("LT-010", 2, "")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotEmpty(t, token)
	assert.Equal(t, "Event4", page1[0].EventType)
	assert.Equal(t, "Event3", page1[1].EventType)

	page2, token, err := store.ListByAsset("LT-010", 2, token)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotEmpty(t, token)
	assert.Equal(t, "Event2", page2[0].EventType)
	assert.Equal(t, "Event1", page2[1].EventType)

	page3, token, err := store.ListByAsset("LT-010", 2, token)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Empty(t, token)
	assert.Equal(t, "Event0", page3[0].EventType)
}

func TestEventStore_Pagination_SharedTimestamps(t *testing.T) {
	db := newTestDB(t)
	store := NewEventStore(db)

	// Everything appended inside one transaction lands on the same
	// created_at; the cursor must still walk every event exactly once.
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		event, err := NewEvent("LT-010", fmt.Sprintf("Event%d", i), nil, "system")
		require.NoError(t, err)
		event.CreatedAt = at
		require.NoError(t, store.Append(event))
	}

	seen := make(map[string]int)
	token := ""
	for pages := 0; ; pages++ {
		require.Less(t, pages, 5, "pagination did not terminate")
		page, next, err := store.ListByAsset("LT-010", 2, token)
		require.NoError(t, err)
		for _, event := range page {
			seen[event.ID]++
		}
		if next == "" {
			break
		}
		token = next
	}

	require.Len(t, seen, 5)
	for id, count := range seen {
		assert.Equal(t, 1, count, "event %s returned more than once", id)
	}
}

func TestEventStore_Pagination_BadToken(t *testing.T) {
	store := NewEventStore(newTestDB(t))

	_, _, err := store.ListByAsset("LT-010", 10, "not-a-timestamp")
	require.Error(t, err)
}

func TestTransferStore_CreateAssignsID(t *testing.T) {
	store := NewTransferStore(newTestDB(t))

	record := &AssetTransferRecord{
		AssetTag:  "LT-001",
		ToSite:    "Brooklyn",
		State:     TransferStateDraft,
		CreatedBy: "alice",
	}
	require.NoError(t, store.Create(record))
	require.NotEmpty(t, record.ID)

	got, err := store.GetByID(record.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, TransferStateDraft, got.State)
	assert.Equal(t, "Brooklyn", got.ToSite)
}

func TestTransferStore_GetByTrackingNumber(t *testing.T) {
	store := NewTransferStore(newTestDB(t))

	older := &AssetTransferRecord{
		AssetTag:       "LT-001",
		ToSite:         "Brooklyn",
		TrackingNumber: "1Z999",
		State:          TransferStateReceived,
		CreatedBy:      "alice",
		CreatedAt:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &AssetTransferRecord{
		AssetTag:       "LT-001",
		ToSite:         "LIC",
		TrackingNumber: "1Z999",
		State:          TransferStateDraft,
		CreatedBy:      "alice",
		CreatedAt:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Create(older))
	require.NoError(t, store.Create(newer))

	got, err := store.GetByTrackingNumber("1Z999")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID)

	missing, err := store.GetByTrackingNumber("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTransferStore_ListPending(t *testing.T) {
	store := NewTransferStore(newTestDB(t))

	seed := []AssetTransferRecord{
		{AssetTag: "LT-A", FromSite: "LIC", ToSite: "Brooklyn", State: TransferStateDraft, CreatedBy: "a"},
		{AssetTag: "LT-B", FromSite: "Brooklyn", ToSite: "LIC", State: TransferStateShipped, CreatedBy: "a"},
		{AssetTag: "LT-C", FromSite: "LIC", ToSite: "Queens", State: TransferStateReceived, CreatedBy: "a"},
	}
	for i := range seed {
		require.NoError(t, store.Create(&seed[i]))
	}

	pending, err := store.ListPending("")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	brooklyn, err := store.ListPending("Brooklyn")
	require.NoError(t, err)
	assert.Len(t, brooklyn, 2)

	queens, err := store.ListPending("Queens")
	require.NoError(t, err)
	assert.Len(t, queens, 0)
}

func TestBatchStore_Create_DuplicateCode(t *testing.T) {
	store := NewBatchStore(newTestDB(t))

	first := &SalvageBatchRecord{
		BatchCode:    "SAL-2026-08-01-120000",
		PickupVendor: "EcoRecycle",
		CreatedBy:    "alice",
	}
	require.NoError(t, store.Create(first))

	dup := &SalvageBatchRecord{
		BatchCode:    "SAL-2026-08-01-120000",
		PickupVendor: "EcoRecycle",
		CreatedBy:    "alice",
	}
	err := store.Create(dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateBatchCode)
}

func TestBatchStore_CreateAndDateRange(t *testing.T) {
	store := NewBatchStore(newTestDB(t))

	july := &SalvageBatchRecord{
		BatchCode:    "SAL-2026-07-15-090000",
		PickupVendor: "EcoRecycle",
		CreatedBy:    "alice",
		CreatedAt:    time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC),
	}
	august := &SalvageBatchRecord{
		BatchCode:    "SAL-2026-08-10-090000",
		PickupVendor: "EcoRecycle",
		CreatedBy:    "alice",
		CreatedAt:    time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Create(july))
	require.NoError(t, store.Create(august))
	require.NotEmpty(t, july.ID)
	assert.False(t, july.IsFinalized())

	got, err := store.ListByDateRange(
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SAL-2026-08-10-090000", got[0].BatchCode)

	all, err := store.ListByDateRange(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "SAL-2026-07-15-090000", all[0].BatchCode)
}
