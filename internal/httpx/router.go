// Package httpx exposes the dashboard API.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/adpulse/adpulse/internal/obs"
	"github.com/adpulse/adpulse/internal/reports"
	"github.com/adpulse/adpulse/internal/store"
	"github.com/adpulse/adpulse/internal/utils"
)

type Handlers struct {
	log *slog.Logger
	st  store.Store
	svc *reports.Service
	m   *obs.Metrics
}

func NewRouter(log *slog.Logger, st store.Store, svc *reports.Service, m *obs.Metrics, corsOrigins []string) http.Handler {
	h := &Handlers{log: log, st: st, svc: svc, m: m}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(m.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", m.Handler())

	mux.Route("/api", func(api chi.Router) {
		api.Post("/imports/performance", h.importPerformance)
		api.Post("/imports/contracts", h.importContracts)

		api.Get("/reports/series", h.series)
		api.Get("/reports/totals", h.totals)
		api.Get("/reports/trend", h.trend)
		api.Get("/reports/anomalies", h.anomalies)
		api.Get("/reports/health", h.health)

		api.Post("/anomalies/{fingerprint}/ignore", h.ignoreAnomaly(true))
		api.Delete("/anomalies/{fingerprint}/ignore", h.ignoreAnomaly(false))
		api.Put("/anomalies/{fingerprint}/duration", h.anomalyDuration)

		api.Get("/contracts", h.listContracts)
		api.Delete("/contracts/{name}", h.deleteContract)

		api.Get("/tasks", h.listTasks)
		api.Post("/tasks", h.createTask)
		api.Patch("/tasks/{id}", h.updateTask)
		api.Delete("/tasks/{id}", h.deleteTask)

		api.Get("/announcements", h.listAnnouncements)
		api.Post("/announcements", h.createAnnouncement)
		api.Delete("/announcements/{id}", h.deleteAnnouncement)

		api.Get("/resources", h.listResources)
		api.Post("/resources", h.createResource)
		api.Delete("/resources/{id}", h.deleteResource)

		api.Get("/activity", h.listActivity)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
