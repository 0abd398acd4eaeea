package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adpulse/adpulse/internal/csvio"
	"github.com/adpulse/adpulse/internal/models"
)

func (h *Handlers) listContracts(w http.ResponseWriter, r *http.Request) {
	terms, err := h.st.ContractTerms(r.Context())
	if err != nil {
		h.log.Error("list contracts failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "contracts unavailable")
		return
	}
	if terms == nil {
		terms = []models.ContractTerms{}
	}
	writeJSON(w, http.StatusOK, terms)
}

func (h *Handlers) deleteContract(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.st.DeleteContractTerms(r.Context(), name); err != nil {
		notFoundOr502(w, h.log, err, "contract")
		return
	}
	h.recordActivity(r, "delete", "contract "+name)
	w.WriteHeader(http.StatusNoContent)
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

func (req taskRequest) apply(t *models.Task) error {
	if req.Title != "" {
		t.Title = req.Title
	}
	if req.Description != "" {
		t.Description = req.Description
	}
	if req.Status != "" {
		switch req.Status {
		case "todo", "in_progress", "done":
			t.Status = req.Status
		default:
			return errBadStatus
		}
	}
	if req.Priority != "" {
		switch req.Priority {
		case "low", "normal", "high":
			t.Priority = req.Priority
		default:
			return errBadPriority
		}
	}
	if req.DueDate != "" {
		due := csvio.ParseDate(req.DueDate)
		if due.IsZero() {
			return errBadDueDate
		}
		t.DueDate = &due
	}
	return nil
}

var (
	errBadStatus   = jsonFieldError("status must be todo, in_progress or done")
	errBadPriority = jsonFieldError("priority must be low, normal or high")
	errBadDueDate  = jsonFieldError("due_date is not a recognizable date")
)

type jsonFieldError string

func (e jsonFieldError) Error() string { return string(e) }

func (h *Handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.st.Tasks(r.Context())
	if err != nil {
		h.log.Error("list tasks failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "tasks unavailable")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	now := time.Now().UTC()
	t := models.Task{
		ID:        uuid.NewString(),
		Status:    "todo",
		Priority:  "normal",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := req.apply(&t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.st.CreateTask(r.Context(), t); err != nil {
		h.log.Error("create task failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "saving task failed")
		return
	}
	h.recordActivity(r, "create", "task "+t.Title)
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) updateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.st.Task(r.Context(), id)
	if err != nil {
		notFoundOr502(w, h.log, err, "task")
		return
	}
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if err := req.apply(&t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.UpdatedAt = time.Now().UTC()
	if err := h.st.UpdateTask(r.Context(), t); err != nil {
		notFoundOr502(w, h.log, err, "task")
		return
	}
	h.recordActivity(r, "update", "task "+t.Title)
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.st.DeleteTask(r.Context(), id); err != nil {
		notFoundOr502(w, h.log, err, "task")
		return
	}
	h.recordActivity(r, "delete", "task "+id)
	w.WriteHeader(http.StatusNoContent)
}

type announcementRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *Handlers) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	out, err := h.st.Announcements(r.Context())
	if err != nil {
		h.log.Error("list announcements failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "announcements unavailable")
		return
	}
	if out == nil {
		out = []models.Announcement{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	a := models.Announcement{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.st.CreateAnnouncement(r.Context(), a); err != nil {
		h.log.Error("create announcement failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "saving announcement failed")
		return
	}
	h.recordActivity(r, "create", "announcement "+a.Title)
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handlers) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.st.DeleteAnnouncement(r.Context(), id); err != nil {
		notFoundOr502(w, h.log, err, "announcement")
		return
	}
	h.recordActivity(r, "delete", "announcement "+id)
	w.WriteHeader(http.StatusNoContent)
}

type resourceRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

func (h *Handlers) listResources(w http.ResponseWriter, r *http.Request) {
	out, err := h.st.Resources(r.Context())
	if err != nil {
		h.log.Error("list resources failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "resources unavailable")
		return
	}
	if out == nil {
		out = []models.TeamResource{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "title and url are required")
		return
	}
	res := models.TeamResource{
		ID:        uuid.NewString(),
		Title:     req.Title,
		URL:       req.URL,
		Category:  req.Category,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.st.CreateResource(r.Context(), res); err != nil {
		h.log.Error("create resource failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "saving resource failed")
		return
	}
	h.recordActivity(r, "create", "resource "+res.Title)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) deleteResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.st.DeleteResource(r.Context(), id); err != nil {
		notFoundOr502(w, h.log, err, "resource")
		return
	}
	h.recordActivity(r, "delete", "resource "+id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.st.RecentActivity(r.Context(), limit)
	if err != nil {
		h.log.Error("list activity failed", slog.String("err", err.Error()))
		writeError(w, http.StatusBadGateway, "activity unavailable")
		return
	}
	if out == nil {
		out = []models.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, out)
}
