package handler

import (
	"context"
	"encoding/json"
	"net/http"

	mw "github.com/kiranshivaraju/garagelink/internal/api/middleware"
	"github.com/kiranshivaraju/garagelink/internal/api/response"
	"github.com/kiranshivaraju/garagelink/internal/conversation"
	"github.com/kiranshivaraju/garagelink/pkg/models"
)

// ConversationOpener opens the conversation for a job and participant pair.
// *conversation.Resolver satisfies it.
type ConversationOpener interface {
	Open(ctx context.Context, req conversation.Request) (conversation.Result, error)
}

// Conversations serves the conversation endpoint.
type Conversations struct {
	svc ConversationOpener
}

// NewConversations creates the conversation handler.
func NewConversations(svc ConversationOpener) *Conversations {
	return &Conversations{svc: svc}
}

type participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type conversationResponse struct {
	Conversation *models.Conversation `json:"conversation"`
	Degraded     bool                 `json:"degraded"`
}

// Open handles POST /api/v1/conversations. The caller must be one of the two
// participants unless they are an admin.
func (h *Conversations) Open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID        string        `json:"job_id"`
		Participants []participant `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if len(req.Participants) != 2 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"exactly two participants are required", nil)
		return
	}

	if !mw.IsSelfOrAdmin(r.Context(), req.Participants[0].ID, req.Participants[1].ID) {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", nil)
		return
	}

	res, err := h.svc.Open(r.Context(), conversation.Request{
		ParticipantIDs:   [2]string{req.Participants[0].ID, req.Participants[1].ID},
		JobID:            req.JobID,
		ParticipantNames: [2]string{req.Participants[0].Name, req.Participants[1].Name},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, conversationResponse{Conversation: res.Conversation, Degraded: res.Degraded})
}
