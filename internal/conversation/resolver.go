// Package conversation finds or creates the single message thread between two
// participants about one job.
package conversation

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

const defaultPriority = models.UrgencyMedium

// Identity reports who is making the current request.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// JobLookup loads the job a conversation is about.
type JobLookup interface {
	GetJob(ctx context.Context, id string) (*models.Job, error)
}

// VehicleDescriber turns a job's vehicle reference into a display label.
type VehicleDescriber interface {
	Describe(ctx context.Context, ref models.VehicleRef) string
}

// Request identifies the conversation to open. ParticipantNames[i] is the
// display name of ParticipantIDs[i].
type Request struct {
	ParticipantIDs   [2]string
	JobID            string
	ParticipantNames [2]string
}

// Result is what Open returns. Degraded is set when the conversation could not
// be persisted and was built locally; such a conversation is not visible to
// any other caller.
type Result struct {
	Conversation *models.Conversation
	Degraded     bool
}

// Resolver finds or creates conversations.
type Resolver struct {
	store    store.Conversations
	jobs     JobLookup
	vehicles VehicleDescriber
	identity Identity
	now      func() time.Time
}

// NewResolver creates a Resolver. identity may be nil, in which case titles
// use the second participant's name.
func NewResolver(convs store.Conversations, jobs JobLookup, vehicles VehicleDescriber, identity Identity, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		store:    convs,
		jobs:     jobs,
		vehicles: vehicles,
		identity: identity,
		now:      now,
	}
}

// FindOrCreate returns the conversation for the job and participant pair,
// creating it on first use. An existing conversation is returned as stored,
// without refreshing its metadata.
func (r *Resolver) FindOrCreate(ctx context.Context, req Request) (*models.Conversation, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	key := CanonicalKey(req.JobID, req.ParticipantIDs[0], req.ParticipantIDs[1])

	existing, err := r.store.FindConversationByKey(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: find %s: %v", ErrConversationUnavailable, key, err)
	}

	job, err := r.jobs.GetJob(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, req.JobID)
		}
		return nil, fmt.Errorf("%w: load job %s: %v", ErrConversationUnavailable, req.JobID, err)
	}

	draft := r.newConversation(ctx, key, req, job, true)
	conv, created, err := r.store.CreateConversationIfAbsent(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrConversationUnavailable, key, err)
	}
	if created {
		slog.Info("conversation created", "conversation_id", conv.ID.String(), "job_id", req.JobID)
	}
	return conv, nil
}

// Open is FindOrCreate with a fallback: when the store is unavailable it
// returns a locally built conversation flagged as degraded. Validation and
// not-found errors are still returned.
func (r *Resolver) Open(ctx context.Context, req Request) (Result, error) {
	conv, err := r.FindOrCreate(ctx, req)
	if err == nil {
		return Result{Conversation: conv}, nil
	}
	if !errors.Is(err, ErrConversationUnavailable) {
		return Result{}, err
	}

	slog.Warn("conversation store unavailable, using local conversation",
		"job_id", req.JobID,
		"error", err,
	)

	// Metadata is best effort here; the job store may be the thing that is down.
	job, jobErr := r.jobs.GetJob(ctx, req.JobID)
	if jobErr != nil {
		job = nil
	}
	key := CanonicalKey(req.JobID, req.ParticipantIDs[0], req.ParticipantIDs[1])
	return Result{Conversation: r.newConversation(ctx, key, req, job, false), Degraded: true}, nil
}

// newConversation is the only place a Conversation is assembled, for both
// stored and local results. job may be nil.
func (r *Resolver) newConversation(ctx context.Context, key string, req Request, job *models.Job, persisted bool) *models.Conversation {
	now := r.now().UTC()

	participants := req.ParticipantIDs
	names := req.ParticipantNames
	if participants[1] < participants[0] {
		participants[0], participants[1] = participants[1], participants[0]
		names[0], names[1] = names[1], names[0]
	}

	metadata := models.ConversationMetadata{Priority: defaultPriority}
	if job != nil {
		metadata.JobTitle = job.DisplayTitle()
		if job.Urgency != "" {
			metadata.Priority = job.Urgency
		}
		if r.vehicles != nil {
			metadata.VehicleDescription = r.vehicles.Describe(ctx, job.Vehicle)
		}
	}

	return &models.Conversation{
		ID:               ConversationID(key),
		Key:              key,
		Participants:     participants,
		ParticipantNames: names,
		JobID:            req.JobID,
		Type:             models.ConversationTypeJobRelated,
		Title:            r.counterpartName(ctx, req),
		LastMessage:      "",
		LastMessageTime:  now,
		Metadata:         metadata,
		Persisted:        persisted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (r *Resolver) counterpartName(ctx context.Context, req Request) string {
	if r.identity != nil {
		if me, ok := r.identity.CurrentUserID(ctx); ok {
			switch me {
			case req.ParticipantIDs[0]:
				return req.ParticipantNames[1]
			case req.ParticipantIDs[1]:
				return req.ParticipantNames[0]
			}
		}
	}
	return req.ParticipantNames[1]
}

func validate(req Request) error {
	a := strings.TrimSpace(req.ParticipantIDs[0])
	b := strings.TrimSpace(req.ParticipantIDs[1])
	switch {
	case a == "" || b == "":
		return fmt.Errorf("%w: two participant ids are required", ErrValidation)
	case a != req.ParticipantIDs[0] || b != req.ParticipantIDs[1]:
		return fmt.Errorf("%w: participant ids must not have surrounding whitespace", ErrValidation)
	case a == b:
		return fmt.Errorf("%w: participants must be distinct", ErrValidation)
	case strings.TrimSpace(req.JobID) == "":
		return fmt.Errorf("%w: job id is required", ErrValidation)
	case strings.ContainsRune(a+b+req.JobID, '|'):
		return fmt.Errorf("%w: ids must not contain '|'", ErrValidation)
	}
	return nil
}
