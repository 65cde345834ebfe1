package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the game API under /api
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rounds", func(r chi.Router) {
		r.Post("/", h.HandleRecordRound)
		r.Get("/", h.HandleGetHistory)
		r.Delete("/", h.HandleClearHistory)
	})

	r.Post("/predict", h.HandlePredict)

	r.Route("/model", func(r chi.Router) {
		r.Get("/", h.HandleModelStatus)
		r.Post("/train", h.HandleTrain)
	})

	r.Route("/shoes", func(r chi.Router) {
		r.Post("/", h.HandleNewShoe)
		r.Get("/current", h.HandleCurrentShoe)
	})

	r.Get("/roadmap", h.HandleRoadMap)

	// older API paths
	r.Get("/history", h.HandleGetHistory)
	r.Post("/add_result", h.HandleRecordRound)
}

// RegisterLegacyRoutes registers the form-era paths at the router root
func (h *Handler) RegisterLegacyRoutes(r chi.Router) {
	r.Post("/add_result", h.HandleRecordRound)
	r.Post("/predict", h.HandlePredict)
	r.Post("/train_model", h.HandleTrain)
	r.Post("/clear_history", h.HandleClearHistory)
	r.Post("/new_shoe", h.HandleNewShoe)
	r.Get("/get_history", h.HandleGetHistory)
}
