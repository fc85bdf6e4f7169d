package conversation

import "errors"

var (
	ErrNotFound                = errors.New("job not found")
	ErrValidation              = errors.New("invalid conversation request")
	ErrConversationUnavailable = errors.New("conversation store unavailable")
)
