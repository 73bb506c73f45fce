package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ZetallicA/assetflow/pkg/lifecycle"
	"github.com/ZetallicA/assetflow/pkg/salvage"
	"github.com/ZetallicA/assetflow/pkg/transfer"
)

// NewRouter creates a chi router exposing the full workflow surface:
// single-asset lifecycle operations and queries, transfer legs, and
// salvage batches.
func NewRouter(engine *lifecycle.Engine, transfers *transfer.Workflow, batches *salvage.Workflow) chi.Router {
	r := chi.NewRouter()

	r.Route("/assets", func(r chi.Router) {
		r.Post("/", createAssetHandler(engine))
		r.Get("/", listAssetsHandler(engine))

		r.Route("/{tag}", func(r chi.Router) {
			r.Get("/", getAssetHandler(engine))
			r.Patch("/", updateAssetFieldsHandler(engine))
			r.Get("/events", listEventsHandler(engine))
			r.Get("/transitions", allowedTransitionsHandler(engine))
			r.Post("/transitions/{state}", transitionHandler(engine))

			r.Post("/deploy", deployHandler(engine))
			r.Post("/redeploy", redeployHandler(engine))
			r.Post("/replace", replaceHandler(engine))
			r.Post("/salvage-pending", salvagePendingHandler(engine))
			r.Post("/ready-for-shipment", readyForShipmentHandler(engine))
			r.Post("/pickup", pickupHandler(engine))
			r.Post("/deliver", deliverHandler(engine))
			r.Post("/reassign-location", reassignLocationHandler(engine))
		})
	})

	r.Route("/transfers", func(r chi.Router) {
		r.Post("/", createTransferHandler(transfers))
		r.Get("/", listTransfersHandler(transfers))
		r.Post("/{id}/ship", shipTransferHandler(transfers))
		r.Post("/{id}/receive", receiveTransferHandler(transfers))
	})

	r.Route("/batches", func(r chi.Router) {
		r.Post("/", createBatchHandler(batches))
		r.Get("/{id}", getBatchHandler(batches))
		r.Post("/{id}/assets", addToBatchHandler(batches))
		r.Post("/{id}/finalize", finalizeBatchHandler(batches))
		r.Get("/{id}/manifest", manifestHandler(batches))
	})

	r.Get("/reports/salvage", salvageReportHandler(batches))

	return r
}
