package models

import (
	"time"

	"github.com/google/uuid"
)

const ConversationTypeJobRelated = "job_related"

// ConversationMetadata is a snapshot of the job taken when the conversation
// was created. It is not refreshed when the job changes.
type ConversationMetadata struct {
	JobTitle           string `json:"job_title"`
	VehicleDescription string `json:"vehicle_description"`
	Priority           string `json:"priority"`
}

// Conversation is a message thread between exactly two participants about one job.
type Conversation struct {
	ID               uuid.UUID            `db:"id"                json:"id"`
	Key              string               `db:"conversation_key"  json:"key"`
	Participants     [2]string            `db:"participants"      json:"participants"`
	ParticipantNames [2]string            `db:"participant_names" json:"participant_names"`
	JobID            string               `db:"job_id"            json:"job_id"`
	Type             string               `db:"type"              json:"type"`
	Title            string               `db:"title"             json:"title"`
	LastMessage      string               `db:"last_message"      json:"last_message"`
	LastMessageTime  time.Time            `db:"last_message_time" json:"last_message_time"`
	IsPinned         bool                 `db:"is_pinned"         json:"is_pinned"`
	IsArchived       bool                 `db:"is_archived"       json:"is_archived"`
	IsMuted          bool                 `db:"is_muted"          json:"is_muted"`
	Metadata         ConversationMetadata `db:"metadata"          json:"metadata"`
	Persisted        bool                 `db:"-"                 json:"persisted"`
	CreatedAt        time.Time            `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time            `db:"updated_at"        json:"updated_at"`
}
