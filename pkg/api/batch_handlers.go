package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ZetallicA/assetflow/pkg/salvage"
)

func createBatchHandler(batches *salvage.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PickupVendor string `json:"pickupVendor"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		record, err := batches.CreateBatch(r.Context(), req.PickupVendor, extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

func getBatchHandler(batches *salvage.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := batches.GetBatch(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func addToBatchHandler(batches *salvage.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AssetTag string `json:"assetTag"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.AssetTag == "" {
			writeError(w, http.StatusBadRequest, "assetTag is required")
			return
		}
		if err := batches.AddAssetToBatch(r.Context(), req.AssetTag, chi.URLParam(r, "id"), extractActor(r)); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"assetTag": req.AssetTag,
			"batchId":  chi.URLParam(r, "id"),
		})
	}
}

func finalizeBatchHandler(batches *salvage.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ManifestNumber string     `json:"manifestNumber"`
			PickedUpAt     *time.Time `json:"pickedUpAt"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		pickedUpAt := time.Now().UTC()
		if req.PickedUpAt != nil {
			pickedUpAt = *req.PickedUpAt
		}
		if err := batches.FinalizeBatch(r.Context(), chi.URLParam(r, "id"), req.ManifestNumber, pickedUpAt, extractActor(r)); err != nil {
			writeDomainError(w, err)
			return
		}
		record, err := batches.GetBatch(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func manifestHandler(batches *salvage.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manifest, err := batches.GenerateManifest(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, manifest)
	}
}

func salvageReportHandler(batches *salvage.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := parseDateParam(r.URL.Query().Get("from"), time.Time{})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		to, err := parseDateParam(r.URL.Query().Get("to"), time.Now().UTC())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		report, err := batches.GenerateSalvageReport(r.Context(), from, to)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// parseDateParam accepts RFC3339 timestamps or bare dates.
func parseDateParam(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
