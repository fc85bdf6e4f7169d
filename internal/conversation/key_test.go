package conversation_test

import (
	"testing"

	"github.com/kiranshivaraju/garagelink/internal/conversation"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "job:J1|A|B", conversation.CanonicalKey("J1", "A", "B"))
	assert.Equal(t, "job:J1|A|B", conversation.CanonicalKey("J1", "B", "A"))
	assert.NotEqual(t, conversation.CanonicalKey("J1", "A", "B"), conversation.CanonicalKey("J2", "A", "B"))
}

func TestConversationID_Deterministic(t *testing.T) {
	key := conversation.CanonicalKey("J1", "C1", "M1")
	assert.Equal(t, conversation.ConversationID(key), conversation.ConversationID(key))
	assert.NotEqual(t, conversation.ConversationID(key), conversation.ConversationID(conversation.CanonicalKey("J1", "C1", "M2")))
	assert.Equal(t, 5, int(conversation.ConversationID(key).Version()))
}
