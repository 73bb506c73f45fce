package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ZetallicA/assetflow/pkg/assets"
	"github.com/ZetallicA/assetflow/pkg/lifecycle"
	"github.com/ZetallicA/assetflow/pkg/salvage"
	"github.com/ZetallicA/assetflow/pkg/transfer"
)

func newTestRouter(t *testing.T) (chi.Router, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, assets.AutoMigrate(db))

	engine := lifecycle.NewEngine(db, nil)
	transfers := transfer.NewWorkflow(db, engine, nil)
	batches := salvage.NewWorkflow(db, engine, nil)
	return NewRouter(engine, transfers, batches), db
}

func seedAsset(t *testing.T, db *gorm.DB, record *assets.AssetRecord) {
	t.Helper()
	require.NoError(t, assets.NewAssetStore(db).Create(record))
}

// doJSON performs a request with an optional JSON body and decodes the
// response into out when it is non-nil.
func doJSON(t *testing.T, router chi.Router, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Principal", "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestAPI_CreateAndGetAsset(t *testing.T) {
	router, _ := newTestRouter(t)

	var created assets.AssetRecord
	rec := doJSON(t, router, http.MethodPost, "/assets", map[string]string{
		"assetTag":     "LT-500",
		"currentSite":  "LIC",
		"serialNumber": "SN-500",
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "InStorage", created.LifecycleState)
	assert.Equal(t, "alice", created.UpdatedBy)

	var got assets.AssetRecord
	rec = doJSON(t, router, http.MethodGet, "/assets/LT-500", nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SN-500", got.SerialNumber)

	rec = doJSON(t, router, http.MethodGet, "/assets/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_UpdateAssetFields(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-505", LifecycleState: "InStorage"})

	var got assets.AssetRecord
	rec := doJSON(t, router, http.MethodPatch, "/assets/LT-505", map[string]string{
		"notes":        "loaner pool",
		"serialNumber": "SN-505",
	}, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "loaner pool", got.Notes)
	assert.Equal(t, "SN-505", got.SerialNumber)

	rec = doJSON(t, router, http.MethodPatch, "/assets/LT-505", map[string]string{
		"lifecycleState": "Salvaged",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-506", LifecycleState: "Salvaged"})
	rec = doJSON(t, router, http.MethodPatch, "/assets/LT-506", map[string]string{
		"notes": "x",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_CreateAsset_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/assets", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/assets", map[string]string{
		"assetTag":       "LT-501",
		"lifecycleState": "Broken",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ListAssets(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-510", LifecycleState: "InStorage", CurrentSite: "LIC"})
	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-511", LifecycleState: "InStorage", CurrentSite: "Brooklyn"})

	var list struct {
		Assets []assets.AssetRecord `json:"assets"`
	}
	rec := doJSON(t, router, http.MethodGet, "/assets?state=InStorage", nil, &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list.Assets, 2)

	rec = doJSON(t, router, http.MethodGet, "/assets?state=InStorage&site=LIC", nil, &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list.Assets, 1)

	// state is a required, validated selector.
	rec = doJSON(t, router, http.MethodGet, "/assets", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/assets?state=Bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_DeployAndEvents(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-520", LifecycleState: "InStorage", CurrentSite: "LIC"})

	var deployed assets.AssetRecord
	rec := doJSON(t, router, http.MethodPost, "/assets/LT-520/deploy", map[string]string{
		"desk":      "D-101",
		"userName":  "Jordan Reyes",
		"userEmail": "jreyes@example.com",
	}, &deployed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deployed", deployed.LifecycleState)
	assert.Equal(t, "D-101", deployed.CurrentDesk)

	// Missing desk is a validation failure.
	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-521", LifecycleState: "InStorage", CurrentSite: "LIC"})
	rec = doJSON(t, router, http.MethodPost, "/assets/LT-521/deploy", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var events struct {
		Events []assets.AssetEventRecord `json:"events"`
	}
	rec = doJSON(t, router, http.MethodGet, "/assets/LT-520/events", nil, &events)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, events.Events, 1)
	assert.Equal(t, "StateChanged_Deployed", events.Events[0].EventType)
	assert.Equal(t, "alice", events.Events[0].CreatedBy)
}

func TestAPI_AllowedTransitions(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-530", LifecycleState: "SalvagePending"})

	var got struct {
		CurrentState       string   `json:"currentState"`
		AllowedTransitions []string `json:"allowedTransitions"`
	}
	rec := doJSON(t, router, http.MethodGet, "/assets/LT-530/transitions", nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SalvagePending", got.CurrentState)
	assert.Equal(t, []string{"ReadyForShipment"}, got.AllowedTransitions)
}

func TestAPI_Transition(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-540", LifecycleState: "InStorage", CurrentSite: "LIC"})

	var got assets.AssetRecord
	rec := doJSON(t, router, http.MethodPost, "/assets/LT-540/transitions/ReadyForShipment", nil, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ReadyForShipment", got.LifecycleState)

	// An illegal transition maps to 400 with the structured error body.
	rec = doJSON(t, router, http.MethodPost, "/assets/LT-540/transitions/Delivered", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var te lifecycle.TransitionError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &te))
	assert.Equal(t, "LIFECYCLE_INVALID_TRANSITION", te.Code)

	rec = doJSON(t, router, http.MethodPost, "/assets/LT-540/transitions/Bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ShipmentFlow(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-550", LifecycleState: "ReadyForShipment", CurrentSite: "LIC"})

	var picked assets.AssetRecord
	rec := doJSON(t, router, http.MethodPost, "/assets/LT-550/pickup", map[string]string{
		"destinationSite": "Brooklyn",
		"carrier":         "UPS",
		"trackingNumber":  "1Z-550",
	}, &picked)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "InTransit", picked.LifecycleState)
	assert.Equal(t, "Brooklyn", picked.DestinationSite)

	var delivered assets.AssetRecord
	rec = doJSON(t, router, http.MethodPost, "/assets/LT-550/deliver", map[string]string{
		"toSite":   "Brooklyn",
		"location": "Receiving",
		"floor":    "1",
	}, &delivered)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Delivered", delivered.LifecycleState)
	assert.Equal(t, "Brooklyn", delivered.CurrentSite)

	var reassigned assets.AssetRecord
	rec = doJSON(t, router, http.MethodPost, "/assets/LT-550/reassign-location", map[string]string{
		"location": "Room 300",
		"floor":    "3",
	}, &reassigned)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Room 300", reassigned.Location)
}

func TestAPI_Replace(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-OLD", LifecycleState: "Deployed", CurrentSite: "LIC"})
	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-NEW", LifecycleState: "InStorage", CurrentSite: "LIC"})

	var got map[string]string
	rec := doJSON(t, router, http.MethodPost, "/assets/LT-OLD/replace", map[string]string{
		"newAssetTag": "LT-NEW",
		"desk":        "D-7",
	}, &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LT-OLD", got["oldAssetTag"])
	assert.Equal(t, "LT-NEW", got["newAssetTag"])

	a, err := assets.NewAssetStore(db).GetByTag("LT-OLD")
	require.NoError(t, err)
	assert.Equal(t, "SalvagePending", a.LifecycleState)

	rec = doJSON(t, router, http.MethodPost, "/assets/LT-OLD/replace", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_TransferFlow(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{
		AssetTag:       "LT-560",
		LifecycleState: "InStorage",
		CurrentSite:    "LIC",
	})

	var created assets.AssetTransferRecord
	rec := doJSON(t, router, http.MethodPost, "/transfers", map[string]string{
		"assetTag":       "LT-560",
		"toSite":         "Brooklyn",
		"toStorageBin":   "Shelf C-3",
		"carrier":        "FedEx",
		"trackingNumber": "FX-560",
	}, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, assets.TransferStateDraft, created.State)

	var shipped assets.AssetTransferRecord
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/transfers/%s/ship", created.ID), nil, &shipped)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assets.TransferStateShipped, shipped.State)

	// The asset must clear transit before receiving.
	doJSON(t, router, http.MethodPost, "/assets/LT-560/pickup", nil, nil)

	var received assets.AssetTransferRecord
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/transfers/%s/receive", created.ID),
		map[string]string{"receivedBy": "bob"}, &received)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, assets.TransferStateReceived, received.State)
	assert.Equal(t, "bob", received.ReceivedBy)

	// Query selectors.
	var list struct {
		Transfers []assets.AssetTransferRecord `json:"transfers"`
	}
	rec = doJSON(t, router, http.MethodGet, "/transfers?assetTag=LT-560", nil, &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list.Transfers, 1)

	var byTracking assets.AssetTransferRecord
	rec = doJSON(t, router, http.MethodGet, "/transfers?trackingNumber=FX-560", nil, &byTracking)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, byTracking.ID)

	rec = doJSON(t, router, http.MethodGet, "/transfers?pending=true", nil, &list)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list.Transfers, 0)

	rec = doJSON(t, router, http.MethodGet, "/transfers", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/transfers/nope/ship", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_TransferCreate_Ineligible(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-561", LifecycleState: "InTransit"})

	rec := doJSON(t, router, http.MethodPost, "/transfers", map[string]string{
		"assetTag": "LT-561",
		"toSite":   "Brooklyn",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_BatchFlow(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{
		AssetTag:       "LT-570",
		LifecycleState: "SalvagePending",
		CurrentSite:    "LIC",
		Category:       "laptop",
	})

	var batch assets.SalvageBatchRecord
	rec := doJSON(t, router, http.MethodPost, "/batches", map[string]string{
		"pickupVendor": "EcoRecycle",
	}, &batch)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, batch.ID)

	rec = doJSON(t, router, http.MethodPost, "/batches/"+batch.ID+"/assets", map[string]string{
		"assetTag": "LT-570",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var manifest salvage.Manifest
	rec = doJSON(t, router, http.MethodGet, "/batches/"+batch.ID+"/manifest", nil, &manifest)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, manifest.Entries, 1)
	assert.Equal(t, 2.5, manifest.TotalEstimatedWeight)

	var finalized assets.SalvageBatchRecord
	rec = doJSON(t, router, http.MethodPost, "/batches/"+batch.ID+"/finalize", map[string]string{
		"manifestNumber": "MAN-570",
	}, &finalized)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, finalized.IsFinalized())
	assert.Equal(t, "MAN-570", finalized.PickupManifestNumber)

	a, err := assets.NewAssetStore(db).GetByTag("LT-570")
	require.NoError(t, err)
	assert.Equal(t, "Salvaged", a.LifecycleState)

	// Re-finalizing is a conflict; the missing batch is a 404.
	rec = doJSON(t, router, http.MethodPost, "/batches/"+batch.ID+"/finalize", map[string]string{
		"manifestNumber": "MAN-571",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/batches/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var report salvage.Report
	rec = doJSON(t, router, http.MethodGet, "/reports/salvage?from=2026-01-01", nil, &report)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, report.BatchCount)
	assert.Equal(t, 1, report.FinalizedCount)
	assert.Equal(t, int64(1), report.TotalAssetCount)

	rec = doJSON(t, router, http.MethodGet, "/reports/salvage?from=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ActorFallsBackToSystem(t *testing.T) {
	router, db := newTestRouter(t)

	seedAsset(t, db, &assets.AssetRecord{AssetTag: "LT-580", LifecycleState: "InStorage", CurrentSite: "LIC"})

	req := httptest.NewRequest(http.MethodPost, "/assets/LT-580/ready-for-shipment", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got assets.AssetRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "system", got.ReadyForPickupBy)
	assert.Equal(t, "system", got.UpdatedBy)
}
