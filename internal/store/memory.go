package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps everything in process memory. It is used for local
// development and tests. Records are cloned on the way in and out.
type MemoryStore struct {
	mu            sync.RWMutex
	jobs          map[string]*models.Job
	jobOrder      []string
	vehicles      map[string]models.Vehicle
	conversations map[string]models.Conversation
	apiKeys       []*models.APIKey
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:          make(map[string]*models.Job),
		vehicles:      make(map[string]models.Vehicle),
		conversations: make(map[string]models.Conversation),
	}
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// --- Jobs ---

func (s *MemoryStore) CreateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return ErrDuplicateKey
	}
	s.jobs[job.ID] = job.Clone()
	s.jobOrder = append(s.jobOrder, job.ID)
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryStore) ListJobsByCustomer(_ context.Context, customerID string) ([]*models.Job, error) {
	return s.listJobs(func(j *models.Job) bool { return j.CustomerID == customerID }), nil
}

func (s *MemoryStore) ListJobsByMechanic(_ context.Context, mechanicID string) ([]*models.Job, error) {
	return s.listJobs(func(j *models.Job) bool {
		return j.SelectedMechanicID != nil && *j.SelectedMechanicID == mechanicID
	}), nil
}

func (s *MemoryStore) listJobs(match func(*models.Job) bool) []*models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := []*models.Job{}
	for _, id := range s.jobOrder {
		if j := s.jobs[id]; match(j) {
			jobs = append(jobs, j.Clone())
		}
	}
	return jobs
}

func (s *MemoryStore) UpdateJobStatus(_ context.Context, id string, from, to models.JobStatus, opts ...JobUpdateOption) (*models.Job, error) {
	params := applyOptions(opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if job.Status != from {
		return nil, fmt.Errorf("%w: expected %s, found %s", ErrStatusConflict, from, job.Status)
	}

	updated := job.Clone()
	updated.Status = to
	updated.UpdatedAt = time.Now().UTC()
	if params.MechanicID != nil {
		mechanicID := *params.MechanicID
		updated.SelectedMechanicID = &mechanicID
	}
	s.jobs[id] = updated
	return updated.Clone(), nil
}

// --- Vehicles ---

func (s *MemoryStore) CreateVehicle(_ context.Context, v *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[v.ID]; ok {
		return ErrDuplicateKey
	}
	s.vehicles[v.ID] = *v
	return nil
}

func (s *MemoryStore) GetVehicle(_ context.Context, id string) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

// --- Conversations ---

func (s *MemoryStore) FindConversationByKey(_ context.Context, key string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) CreateConversationIfAbsent(_ context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.conversations[conv.Key]; ok {
		return &existing, false, nil
	}
	c := *conv
	c.Persisted = true
	s.conversations[conv.Key] = c
	return &c, true, nil
}

// ConversationCount returns the number of stored conversations.
func (s *MemoryStore) ConversationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// --- API Keys ---

func (s *MemoryStore) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []*models.APIKey
	for _, k := range s.apiKeys {
		if k.KeyPrefix == prefix && k.DeletedAt == nil {
			c := *k
			keys = append(keys, &c)
		}
	}
	return keys, nil
}

func (s *MemoryStore) UpdateAPIKeyLastUsed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range s.apiKeys {
		if k.ID == id {
			now := time.Now().UTC()
			k.LastUsedAt = &now
			k.UpdatedAt = now
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range s.apiKeys {
		if k.ID == key.ID {
			return ErrDuplicateKey
		}
	}
	c := *key
	s.apiKeys = append(s.apiKeys, &c)
	return nil
}
