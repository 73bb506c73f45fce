package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ZetallicA/assetflow/pkg/assets"
	"github.com/ZetallicA/assetflow/pkg/lifecycle"
)

func createAssetHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var record assets.AssetRecord
		if err := decodeBody(r, &record); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if record.AssetTag == "" {
			writeError(w, http.StatusBadRequest, "assetTag is required")
			return
		}
		if record.LifecycleState == "" {
			record.LifecycleState = string(lifecycle.StateInStorage)
		}
		if _, err := lifecycle.ParseState(record.LifecycleState); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		record.UpdatedBy = extractActor(r)

		if err := engine.CreateAsset(r.Context(), &record); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

func getAssetHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := engine.GetAsset(r.Context(), chi.URLParam(r, "tag"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// updateAssetFieldsHandler serves inline edits of the editable asset
// fields; the engine enforces the allowed set.
func updateAssetFieldsHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]string
		if err := decodeBody(r, &fields); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := engine.UpdateAssetFields(r.Context(), chi.URLParam(r, "tag"), fields, extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func listAssetsHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := lifecycle.ParseState(r.URL.Query().Get("state"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		records, err := engine.ListByState(r.Context(), state, r.URL.Query().Get("site"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"assets": records})
	}
}

func listEventsHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageSize := 20
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 {
				pageSize = v
			}
		}
		events, nextToken, err := engine.ListEvents(r.Context(),
			chi.URLParam(r, "tag"), pageSize, r.URL.Query().Get("pageToken"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"events":        events,
			"nextPageToken": nextToken,
		})
	}
}

func allowedTransitionsHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := engine.GetAsset(r.Context(), chi.URLParam(r, "tag"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"currentState":       a.LifecycleState,
			"allowedTransitions": engine.Machine().AllowedTransitions(lifecycle.State(a.LifecycleState)),
		})
	}
}

func transitionHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := lifecycle.ParseState(chi.URLParam(r, "state"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var tc lifecycle.TransitionContext
		if err := decodeBody(r, &tc); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := engine.TransitionToState(r.Context(), chi.URLParam(r, "tag"), target, extractActor(r), &tc)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func deployHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lifecycle.DeployContext
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := engine.DeployAsset(r.Context(), chi.URLParam(r, "tag"),
			req.Desk, req.UserName, req.UserEmail, extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func redeployHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			NewDesk string `json:"newDesk"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := engine.RedeployAsset(r.Context(), chi.URLParam(r, "tag"), req.NewDesk, extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func replaceHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			NewAssetTag      string `json:"newAssetTag"`
			Desk             string `json:"desk"`
			UserName         string `json:"userName"`
			UserEmail        string `json:"userEmail"`
			SendOldToSalvage *bool  `json:"sendOldToSalvage"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.NewAssetTag == "" {
			writeError(w, http.StatusBadRequest, "newAssetTag is required")
			return
		}
		sendOldToSalvage := true
		if req.SendOldToSalvage != nil {
			sendOldToSalvage = *req.SendOldToSalvage
		}
		err := engine.ReplaceAsset(r.Context(), chi.URLParam(r, "tag"), req.NewAssetTag,
			req.Desk, req.UserName, req.UserEmail, extractActor(r), sendOldToSalvage)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"oldAssetTag": chi.URLParam(r, "tag"),
			"newAssetTag": req.NewAssetTag,
		})
	}
}

func salvagePendingHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := engine.MarkSalvagePending(r.Context(), chi.URLParam(r, "tag"), extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func readyForShipmentHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := engine.MarkReadyForShipment(r.Context(), chi.URLParam(r, "tag"), extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func pickupHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lifecycle.PickupContext
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var pickup *lifecycle.PickupContext
		if req.DestinationSite != "" || req.Carrier != "" || req.TrackingNumber != "" {
			pickup = &req
		}
		a, err := engine.PickupAsset(r.Context(), chi.URLParam(r, "tag"), pickup, extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func deliverHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lifecycle.DeliveryContext
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := engine.DeliverAsset(r.Context(), chi.URLParam(r, "tag"), &req, extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func reassignLocationHandler(engine *lifecycle.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Location string `json:"location"`
			Floor    string `json:"floor"`
			Desk     string `json:"desk"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := engine.ReassignLocationAfterDelivery(r.Context(), chi.URLParam(r, "tag"),
			req.Location, req.Floor, req.Desk, extractActor(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
