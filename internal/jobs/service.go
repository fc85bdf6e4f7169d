// Package jobs owns the job status lifecycle. Every status change goes through
// Service, which validates it against the transition table and applies it as a
// single conditional write.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kiranshivaraju/garagelink/internal/store"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

// StatusCache receives the latest status after each transition.
type StatusCache interface {
	SetJobStatus(ctx context.Context, jobID string, status string, ttl time.Duration) error
}

// Service exposes job queries and status transitions.
type Service struct {
	store     store.Jobs
	cache     StatusCache
	statusTTL time.Duration
	locks     *keyLock
}

// NewService creates a new Service. c may be nil to disable status caching.
func NewService(st store.Jobs, c StatusCache, statusTTL time.Duration) *Service {
	return &Service{
		store:     st,
		cache:     c,
		statusTTL: statusTTL,
		locks:     newKeyLock(),
	}
}

// Get returns a single job.
func (s *Service) Get(ctx context.Context, jobID string) (*models.Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("%w: job id is required", ErrValidation)
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, mapStoreErr(err, jobID)
	}
	return job, nil
}

// ByCustomer returns every job the customer created, in creation order.
func (s *Service) ByCustomer(ctx context.Context, customerID string) ([]*models.Job, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrValidation)
	}
	jobs, err := s.store.ListJobsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer jobs: %w", err)
	}
	return jobs, nil
}

// ByMechanic returns every job assigned to the mechanic, in creation order.
func (s *Service) ByMechanic(ctx context.Context, mechanicID string) ([]*models.Job, error) {
	if strings.TrimSpace(mechanicID) == "" {
		return nil, fmt.Errorf("%w: mechanic id is required", ErrValidation)
	}
	jobs, err := s.store.ListJobsByMechanic(ctx, mechanicID)
	if err != nil {
		return nil, fmt.Errorf("list mechanic jobs: %w", err)
	}
	return jobs, nil
}

// UpdateStatus moves the job to status to. Moving to accepted requires a
// selected mechanic, which only Assign can set, so bidding jobs are accepted
// through Assign; UpdateStatus returns ErrValidation for them.
func (s *Service) UpdateStatus(ctx context.Context, jobID string, to models.JobStatus) (*models.Job, error) {
	return s.transition(ctx, jobID, to, "")
}

// RequestCancel cancels a job that has not yet been accepted.
func (s *Service) RequestCancel(ctx context.Context, jobID string) (*models.Job, error) {
	return s.transition(ctx, jobID, models.JobStatusCancelled, "")
}

// Assign selects mechanicID for a bidding job and accepts it in the same write.
func (s *Service) Assign(ctx context.Context, jobID, mechanicID string) (*models.Job, error) {
	if strings.TrimSpace(mechanicID) == "" {
		return nil, fmt.Errorf("%w: mechanic id is required", ErrValidation)
	}
	return s.transition(ctx, jobID, models.JobStatusAccepted, mechanicID)
}

func (s *Service) transition(ctx context.Context, jobID string, to models.JobStatus, mechanicID string) (*models.Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("%w: job id is required", ErrValidation)
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	unlock := s.locks.Lock(jobID)
	defer unlock()

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, mapStoreErr(err, jobID)
	}

	if !CanTransition(job.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, to)
	}

	var opts []store.JobUpdateOption
	if to == models.JobStatusAccepted {
		switch {
		case mechanicID != "":
			opts = append(opts, store.WithMechanicID(mechanicID))
		case job.SelectedMechanicID == nil:
			return nil, fmt.Errorf("%w: accepting a job requires a selected mechanic", ErrValidation)
		}
	}

	updated, err := s.store.UpdateJobStatus(ctx, jobID, job.Status, to, opts...)
	if err != nil {
		if errors.Is(err, store.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: %s -> %s: %v", ErrInvalidTransition, job.Status, to, err)
		}
		return nil, mapStoreErr(err, jobID)
	}

	slog.Info("job status updated",
		"job_id", jobID,
		"from", string(job.Status),
		"to", string(to),
	)

	if s.cache != nil {
		if err := s.cache.SetJobStatus(ctx, jobID, string(to), s.statusTTL); err != nil {
			slog.Warn("job status cache write failed", "job_id", jobID, "error", err)
		}
	}

	return updated, nil
}

func mapStoreErr(err error, jobID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return fmt.Errorf("job %s: %w", jobID, err)
}
