package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adpulse/adpulse/internal/csvio"
	"github.com/adpulse/adpulse/internal/models"
	"github.com/adpulse/adpulse/internal/reports"
	"github.com/adpulse/adpulse/internal/store"
)

// uploadBody returns the CSV payload: the "file" part of a multipart form
// when present, the raw request body otherwise.
func uploadBody(r *http.Request) (io.ReadCloser, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return r.Body, nil
}

func (h *Handlers) importPerformance(w http.ResponseWriter, r *http.Request) {
	body, err := uploadBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	rows, report, err := csvio.ReadPerformance(body)
	if err != nil {
		// Malformed input: no partial write, the caller fixes the file.
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.st.UpsertPerformanceRows(r.Context(), rows)
	if err != nil {
		h.log.Error("performance import failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "storing rows failed")
		return
	}
	h.m.RowsImported.Add(float64(n))
	h.recordActivity(r, "import", "performance rows")
	report.RowsImported = n
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) importContracts(w http.ResponseWriter, r *http.Request) {
	body, err := uploadBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	terms, report, err := csvio.ReadContracts(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.st.UpsertContractTerms(r.Context(), terms)
	if err != nil {
		h.log.Error("contract import failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "storing contract terms failed")
		return
	}
	h.recordActivity(r, "import", "contract terms")
	report.RowsImported = n
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) series(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Series(r.Context(), r.URL.Query())
	if err != nil {
		h.log.Error("series failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "series unavailable")
		return
	}
	writeRaw(w, http.StatusOK, b)
}

func (h *Handlers) totals(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Totals(r.Context(), r.URL.Query())
	if err != nil {
		if errors.Is(err, reports.ErrBadGroup) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("totals failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "totals unavailable")
		return
	}
	writeRaw(w, http.StatusOK, b)
}

func (h *Handlers) trend(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Trend(r.Context(), r.URL.Query())
	if err != nil {
		h.log.Error("trend failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "trend unavailable")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) anomalies(w http.ResponseWriter, r *http.Request) {
	h.m.AnomalyRuns.Inc()
	out, err := h.svc.Anomalies(r.Context(), r.URL.Query().Get("include_ignored") == "1")
	if err != nil {
		h.log.Error("anomaly run failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "anomalies unavailable")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Health(r.Context())
	if err != nil {
		h.log.Error("health scoring failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "health unavailable")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type anomalyFlagRequest struct {
	CampaignName string `json:"campaign_name"`
	Days         int    `json:"days,omitempty"`
}

func (h *Handlers) ignoreAnomaly(ignored bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fingerprint := chi.URLParam(r, "fingerprint")
		var req anomalyFlagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "bad request body")
			return
		}
		flag, err := h.st.SetAnomalyIgnored(r.Context(), fingerprint, req.CampaignName, ignored)
		if err != nil {
			h.log.Error("anomaly flag failed", slog.String("err", err.Error()))
			writeError(w, http.StatusBadGateway, "saving flag failed")
			return
		}
		action := "ignore"
		if !ignored {
			action = "unignore"
		}
		h.recordActivity(r, action, "anomaly "+fingerprint)
		writeJSON(w, http.StatusOK, flag)
	}
}

func (h *Handlers) anomalyDuration(w http.ResponseWriter, r *http.Request) {
	fingerprint := chi.URLParam(r, "fingerprint")
	var req anomalyFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if req.Days < 0 {
		writeError(w, http.StatusBadRequest, "days must be >= 0")
		return
	}
	flag, err := h.st.SetAnomalyDuration(r.Context(), fingerprint, req.CampaignName, req.Days)
	if err != nil {
		h.log.Error("anomaly duration failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "saving duration failed")
		return
	}
	h.recordActivity(r, "set_duration", "anomaly "+fingerprint)
	writeJSON(w, http.StatusOK, flag)
}

// recordActivity logs a user-visible action. Failures are logged and
// swallowed: the log is advisory, never part of the request outcome.
func (h *Handlers) recordActivity(r *http.Request, action, subject string) {
	e := models.ActivityEntry{
		ID:        uuid.NewString(),
		Actor:     r.Header.Get("X-User"),
		Action:    action,
		Subject:   subject,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.st.AppendActivity(r.Context(), e); err != nil {
		h.log.Warn("activity append failed", slog.String("err", err.Error()))
	}
}

func notFoundOr502(w http.ResponseWriter, log *slog.Logger, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	log.Error(what+" failed", slog.String("err", err.Error()))
	writeError(w, http.StatusBadGateway, what+" unavailable")
}
