package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/garagelink/internal/api/middleware"
	"github.com/kiranshivaraju/garagelink/internal/api/response"
	"github.com/kiranshivaraju/garagelink/internal/jobs"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

// JobService is the job lifecycle the handlers drive. *jobs.Service satisfies it.
type JobService interface {
	Get(ctx context.Context, jobID string) (*models.Job, error)
	ByCustomer(ctx context.Context, customerID string) ([]*models.Job, error)
	ByMechanic(ctx context.Context, mechanicID string) ([]*models.Job, error)
	UpdateStatus(ctx context.Context, jobID string, to models.JobStatus) (*models.Job, error)
	RequestCancel(ctx context.Context, jobID string) (*models.Job, error)
	Assign(ctx context.Context, jobID, mechanicID string) (*models.Job, error)
}

// VehicleDescriber produces a display label for a vehicle reference.
type VehicleDescriber interface {
	Describe(ctx context.Context, ref models.VehicleRef) string
}

// StatusReader reads cached job statuses.
type StatusReader interface {
	GetJobStatus(ctx context.Context, jobID string) (string, bool, error)
}

// Jobs serves the job endpoints.
type Jobs struct {
	svc      JobService
	vehicles VehicleDescriber
	statuses StatusReader
}

// NewJobs creates the job handlers. statuses may be nil to always read the store.
func NewJobs(svc JobService, vehicles VehicleDescriber, statuses StatusReader) *Jobs {
	return &Jobs{svc: svc, vehicles: vehicles, statuses: statuses}
}

type jobResponse struct {
	Job          *models.Job `json:"job"`
	VehicleLabel string      `json:"vehicle_label"`
}

type statusResponse struct {
	JobID  string             `json:"job_id"`
	Status models.JobStatus   `json:"status"`
	Next   []models.JobStatus `json:"next_statuses"`
	Cached bool               `json:"cached"`
}

// ListByCustomer handles GET /api/v1/customers/{customerID}/jobs.
func (h *Jobs) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ByCustomer, chi.URLParam(r, "customerID"))
}

// ListByMechanic handles GET /api/v1/mechanics/{mechanicID}/jobs.
func (h *Jobs) ListByMechanic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ByMechanic, chi.URLParam(r, "mechanicID"))
}

func (h *Jobs) list(w http.ResponseWriter, r *http.Request, load func(context.Context, string) ([]*models.Job, error), ownerID string) {
	var partition jobs.Partition
	if raw := r.URL.Query().Get("partition"); raw != "" {
		p, ok := jobs.ParsePartition(raw)
		if !ok {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"partition must be one of completed, in_progress, pending", nil)
			return
		}
		partition = p
	}

	list, err := load(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if partition != "" {
		list = jobs.Filter(list, partition)
	}
	response.List(w, list, response.ListMeta{Count: len(list), Partition: string(partition)})
}

// Get handles GET /api/v1/jobs/{jobID}.
func (h *Jobs) Get(w http.ResponseWriter, r *http.Request) {
	job, ok := h.authorize(w, r)
	if !ok {
		return
	}
	response.JSON(w, h.withLabel(r.Context(), job))
}

// GetStatus handles GET /api/v1/jobs/{jobID}/status. The cache is consulted
// first; a miss or cache failure reads the store.
func (h *Jobs) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	if h.statuses != nil {
		status, ok, err := h.statuses.GetJobStatus(r.Context(), jobID)
		if err != nil {
			slog.Warn("job status cache read failed", "job_id", jobID, "error", err)
		}
		if ok && models.JobStatus(status).Valid() {
			s := models.JobStatus(status)
			response.JSON(w, statusResponse{JobID: jobID, Status: s, Next: jobs.NextStatuses(s), Cached: true})
			return
		}
	}

	job, err := h.svc.Get(r.Context(), jobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, statusResponse{JobID: job.ID, Status: job.Status, Next: jobs.NextStatuses(job.Status)})
}

// UpdateStatus handles PATCH /api/v1/jobs/{jobID}/status.
func (h *Jobs) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.Status == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "status is required", nil)
		return
	}

	if _, ok := h.authorize(w, r); !ok {
		return
	}

	job, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "jobID"), models.JobStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, h.withLabel(r.Context(), job))
}

// Cancel handles POST /api/v1/jobs/{jobID}/cancel.
func (h *Jobs) Cancel(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r); !ok {
		return
	}

	job, err := h.svc.RequestCancel(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, h.withLabel(r.Context(), job))
}

// Assign handles POST /api/v1/jobs/{jobID}/assign.
func (h *Jobs) Assign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MechanicID string `json:"mechanic_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	if _, ok := h.authorize(w, r); !ok {
		return
	}

	job, err := h.svc.Assign(r.Context(), chi.URLParam(r, "jobID"), req.MechanicID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, h.withLabel(r.Context(), job))
}

// authorize loads the job named in the URL and writes 403 unless the caller is
// its customer, its selected mechanic or an admin.
func (h *Jobs) authorize(w http.ResponseWriter, r *http.Request) (*models.Job, bool) {
	job, err := h.svc.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	ids := []string{job.CustomerID}
	if job.SelectedMechanicID != nil {
		ids = append(ids, *job.SelectedMechanicID)
	}
	if !mw.IsSelfOrAdmin(r.Context(), ids...) {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", nil)
		return nil, false
	}
	return job, true
}

func (h *Jobs) withLabel(ctx context.Context, job *models.Job) jobResponse {
	resp := jobResponse{Job: job}
	if h.vehicles != nil {
		resp.VehicleLabel = h.vehicles.Describe(ctx, job.Vehicle)
	}
	return resp
}
