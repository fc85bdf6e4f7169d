package conversation

import (
	"fmt"

	"github.com/google/uuid"
)

// namespace scopes conversation ids generated from canonical keys.
var namespace = uuid.MustParse("5b0f5d3e-8f5c-4a8e-9f6b-2c7d1e0a9b21")

// CanonicalKey identifies the conversation for a job and an unordered
// participant pair.
func CanonicalKey(jobID, a, b string) string {
	first, second := ordered(a, b)
	return fmt.Sprintf("job:%s|%s|%s", jobID, first, second)
}

// ConversationID derives the conversation id from its canonical key.
func ConversationID(key string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(key))
}

func ordered(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
