package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wdeck/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	apiLimiter := middleware.NewRateLimiter(60, 1*time.Minute) // 60 API calls per minute per client

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RateLimitMiddleware(apiLimiter))
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/journal", s.handleJournal).Methods(http.MethodGet)
	api.HandleFunc("/nav", s.handleNav).Methods(http.MethodPost)

	r.HandleFunc("/ws", s.Hub.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
