package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ErrStatusConflict is returned by UpdateJobStatus when the job is no longer
// in the expected status.
var ErrStatusConflict = errors.New("job status changed concurrently")

// Jobs is the job persistence collaborator.
type Jobs interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobsByCustomer(ctx context.Context, customerID string) ([]*models.Job, error)
	ListJobsByMechanic(ctx context.Context, mechanicID string) ([]*models.Job, error)
	// UpdateJobStatus moves the job from one status to another in a single
	// conditional write and returns the updated job.
	UpdateJobStatus(ctx context.Context, id string, from, to models.JobStatus, opts ...JobUpdateOption) (*models.Job, error)
}

// Vehicles is the vehicle catalog collaborator.
type Vehicles interface {
	CreateVehicle(ctx context.Context, v *models.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
}

// Conversations is the conversation persistence collaborator.
type Conversations interface {
	FindConversationByKey(ctx context.Context, key string) (*models.Conversation, error)
	// CreateConversationIfAbsent inserts conv unless a conversation with the
	// same key exists. It returns the stored conversation and whether this
	// call created it.
	CreateConversationIfAbsent(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error)
}

// APIKeys stores API credentials.
type APIKeys interface {
	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	Jobs
	Vehicles
	Conversations
	APIKeys
}

type jobUpdateParams struct {
	MechanicID *string
}

type JobUpdateOption func(*jobUpdateParams)

// WithMechanicID sets the selected mechanic in the same write as the status change.
func WithMechanicID(id string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.MechanicID = &id
	}
}

func applyOptions(opts []JobUpdateOption) *jobUpdateParams {
	params := &jobUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}
	return params
}
