package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ZetallicA/assetflow/pkg/transfer"
)

func createTransferHandler(transfers *transfer.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AssetTag       string `json:"assetTag"`
			ToSite         string `json:"toSite"`
			ToStorageBin   string `json:"toStorageBin"`
			Carrier        string `json:"carrier"`
			TrackingNumber string `json:"trackingNumber"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.AssetTag == "" {
			writeError(w, http.StatusBadRequest, "assetTag is required")
			return
		}
		record, err := transfers.CreateTransfer(r.Context(), req.AssetTag, req.ToSite,
			req.ToStorageBin, req.Carrier, req.TrackingNumber, extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

// listTransfersHandler serves the transfer queries: by asset tag, by
// tracking number, or pending (optionally site-filtered). Exactly one
// selector applies per request.
func listTransfersHandler(transfers *transfer.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if tag := query.Get("assetTag"); tag != "" {
			records, err := transfers.ListByAsset(r.Context(), tag)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"transfers": records})
			return
		}

		if tracking := query.Get("trackingNumber"); tracking != "" {
			record, err := transfers.GetByTrackingNumber(r.Context(), tracking)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, record)
			return
		}

		if query.Get("pending") == "true" {
			records, err := transfers.ListPending(r.Context(), query.Get("site"))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"transfers": records})
			return
		}

		writeError(w, http.StatusBadRequest, "specify assetTag, trackingNumber, or pending=true")
	}
}

func shipTransferHandler(transfers *transfer.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := transfers.ShipTransfer(r.Context(), chi.URLParam(r, "id"), extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func receiveTransferHandler(transfers *transfer.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ReceivedBy string `json:"receivedBy"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		actor := extractActor(r)
		if req.ReceivedBy == "" {
			req.ReceivedBy = actor
		}
		record, err := transfers.ReceiveTransfer(r.Context(), chi.URLParam(r, "id"), req.ReceivedBy, actor)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}
