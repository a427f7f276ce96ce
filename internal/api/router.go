package api

import (
	"fxconvert/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(rateHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", rateHandler.GetStatus)
		r.Post("/reset", rateHandler.Reset)

		r.Get("/rates", rateHandler.GetRates)
		r.Post("/rates/refresh", rateHandler.RefreshRates)

		r.Get("/currencies", rateHandler.GetCurrencies)
		r.Put("/currencies", rateHandler.SetCurrencies)
		r.Put("/amount", rateHandler.SetAmount)

		r.Post("/conversions", rateHandler.Convert)
		r.Get("/history", rateHandler.GetHistory)
		r.Get("/history/stats", rateHandler.GetStatistics)
	})
	return router
}
