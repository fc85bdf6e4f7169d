package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, role, name, key_hash, key_prefix, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Role, &k.Name, &k.KeyHash, &k.KeyPrefix,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, role, name, key_hash, key_prefix, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.UserID, key.Role, key.Name, key.KeyHash, key.KeyPrefix, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// --- Vehicles ---

func (s *PostgresStore) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vehicles (id, owner_id, make, model, year, trim, color, license_plate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.OwnerID, v.Make, v.Model, v.Year, v.Trim, v.Color, v.LicensePlate)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, make, model, year, trim, color, license_plate FROM vehicles WHERE id = $1`, id,
	).Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Year, &v.Trim, &v.Color, &v.LicensePlate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}

// --- Jobs ---

const jobColumns = `id, customer_id, selected_mechanic_id, status, vehicle_ref, title, description,
	price, category, subcategory, service_type, urgency, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var (
		j       models.Job
		status  string
		vehicle []byte
	)
	if err := row.Scan(&j.ID, &j.CustomerID, &j.SelectedMechanicID, &status, &vehicle, &j.Title,
		&j.Description, &j.Price, &j.Category, &j.Subcategory, &j.ServiceType, &j.Urgency,
		&j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Status = models.JobStatus(status)
	ref, err := models.ParseVehicleRef(vehicle)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", j.ID, err)
	}
	j.Vehicle = ref
	return &j, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	vehicle, err := models.MarshalVehicleRef(job.Vehicle)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, customer_id, selected_mechanic_id, status, vehicle_ref, title, description,
		   price, category, subcategory, service_type, urgency, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		job.ID, job.CustomerID, job.SelectedMechanicID, string(job.Status), vehicle, job.Title,
		job.Description, job.Price, job.Category, job.Subcategory, job.ServiceType, job.Urgency,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := scanJob(s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) ListJobsByCustomer(ctx context.Context, customerID string) ([]*models.Job, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE customer_id = $1 ORDER BY seq`, customerID)
}

func (s *PostgresStore) ListJobsByMechanic(ctx context.Context, mechanicID string) ([]*models.Job, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE selected_mechanic_id = $1 ORDER BY seq`, mechanicID)
}

func (s *PostgresStore) listJobs(ctx context.Context, query string, arg string) ([]*models.Job, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// UpdateJobStatus performs a compare-and-set on the job's status so concurrent
// writers in other processes cannot both apply a transition from the same state.
func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id string, from, to models.JobStatus, opts ...JobUpdateOption) (*models.Job, error) {
	params := applyOptions(opts)

	query := `UPDATE jobs SET status = $3, updated_at = $4`
	args := []any{id, string(from), string(to), time.Now().UTC()}
	if params.MechanicID != nil {
		query += `, selected_mechanic_id = $5`
		args = append(args, *params.MechanicID)
	}
	query += ` WHERE id = $1 AND status = $2 RETURNING ` + jobColumns

	job, err := scanJob(s.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update job status: %w", err)
	}

	// Nothing matched: either the job does not exist or its status moved on.
	var current string
	err = s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job status: %w", err)
	}
	return nil, fmt.Errorf("%w: expected %s, found %s", ErrStatusConflict, from, current)
}

// --- Conversations ---

const conversationColumns = `id, conversation_key, participants, participant_names, job_id, type, title,
	last_message, last_message_time, is_pinned, is_archived, is_muted, metadata, created_at, updated_at`

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var (
		c            models.Conversation
		participants []string
		names        []string
		metadata     []byte
	)
	if err := row.Scan(&c.ID, &c.Key, &participants, &names, &c.JobID, &c.Type, &c.Title,
		&c.LastMessage, &c.LastMessageTime, &c.IsPinned, &c.IsArchived, &c.IsMuted, &metadata,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	copy(c.Participants[:], participants)
	copy(c.ParticipantNames[:], names)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode conversation metadata: %w", err)
		}
	}
	c.Persisted = true
	return &c, nil
}

func (s *PostgresStore) FindConversationByKey(ctx context.Context, key string) (*models.Conversation, error) {
	c, err := scanConversation(s.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE conversation_key = $1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return c, nil
}

// CreateConversationIfAbsent relies on the unique id and conversation_key
// indexes: the loser of a concurrent insert gets no row back, or a unique
// violation if it raced past the arbiter check, and reads the winner's record.
func (s *PostgresStore) CreateConversationIfAbsent(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	metadata, err := json.Marshal(conv.Metadata)
	if err != nil {
		return nil, false, fmt.Errorf("encode conversation metadata: %w", err)
	}

	created, err := scanConversation(s.pool.QueryRow(ctx,
		`INSERT INTO conversations (id, conversation_key, participants, participant_names, job_id, type, title,
		   last_message, last_message_time, is_pinned, is_archived, is_muted, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT DO NOTHING
		 RETURNING `+conversationColumns,
		conv.ID, conv.Key, conv.Participants[:], conv.ParticipantNames[:], conv.JobID, conv.Type, conv.Title,
		conv.LastMessage, conv.LastMessageTime, conv.IsPinned, conv.IsArchived, conv.IsMuted, metadata,
		conv.CreatedAt, conv.UpdatedAt))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && !isDuplicateKeyError(err) {
		return nil, false, fmt.Errorf("create conversation: %w", err)
	}

	existing, err := s.FindConversationByKey(ctx, conv.Key)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
