package jobs

import "github.com/kiranshivaraju/garagelink/pkg/models"

// transitions is the only definition of which status changes are allowed.
// Cancellation is reachable only before a mechanic is accepted.
var transitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusPending:    {models.JobStatusPosted, models.JobStatusCancelled},
	models.JobStatusPosted:     {models.JobStatusBidding, models.JobStatusCancelled},
	models.JobStatusBidding:    {models.JobStatusAccepted, models.JobStatusCancelled},
	models.JobStatusAccepted:   {models.JobStatusInProgress},
	models.JobStatusInProgress: {models.JobStatusCompleted},
}

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to models.JobStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s models.JobStatus) []models.JobStatus {
	next := transitions[s]
	out := make([]models.JobStatus, len(next))
	copy(out, next)
	return out
}

// Cancellable reports whether a job in status s may be cancelled.
func Cancellable(s models.JobStatus) bool {
	return CanTransition(s, models.JobStatusCancelled)
}
