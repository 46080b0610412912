package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poll/analytics/internal/metrics"
)

func NewHandler(analyticsHandler *AnalyticsHandler, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/popular", analyticsHandler.PopularPolls)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(jwtSecret))

			r.Get("/overview", analyticsHandler.Overview)
			r.Get("/trends", analyticsHandler.VotingTrends)
			r.Route("/polls/{pollID}", func(r chi.Router) {
				r.Get("/", analyticsHandler.PollAnalytics)
				r.Get("/activity", analyticsHandler.PollActivity)
			})
		})
	})

	return r
}
