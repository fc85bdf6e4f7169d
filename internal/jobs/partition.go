package jobs

import "github.com/kiranshivaraju/garagelink/pkg/models"

// Partition names a caller-facing grouping of jobs by status.
type Partition string

const (
	PartitionCompleted  Partition = "completed"
	PartitionInProgress Partition = "in_progress"
	PartitionPending    Partition = "pending"
)

// ParsePartition validates a partition name.
func ParsePartition(s string) (Partition, bool) {
	switch p := Partition(s); p {
	case PartitionCompleted, PartitionInProgress, PartitionPending:
		return p, true
	}
	return "", false
}

// Filter returns the jobs in partition p, preserving order.
func Filter(jobs []*models.Job, p Partition) []*models.Job {
	switch p {
	case PartitionCompleted:
		return Completed(jobs)
	case PartitionInProgress:
		return InProgress(jobs)
	case PartitionPending:
		return PendingLike(jobs)
	default:
		return jobs
	}
}

// Completed returns jobs whose work is finished.
func Completed(jobs []*models.Job) []*models.Job {
	return where(jobs, func(s models.JobStatus) bool { return s == models.JobStatusCompleted })
}

// InProgress returns jobs actively being serviced (accepted or in_progress).
func InProgress(jobs []*models.Job) []*models.Job {
	return where(jobs, models.JobStatus.ActivelyServiced)
}

// PendingLike returns jobs still awaiting quotes (pending, posted or bidding).
func PendingLike(jobs []*models.Job) []*models.Job {
	return where(jobs, models.JobStatus.AwaitingQuotes)
}

func where(jobs []*models.Job, keep func(models.JobStatus) bool) []*models.Job {
	out := []*models.Job{}
	for _, j := range jobs {
		if keep(j.Status) {
			out = append(out, j)
		}
	}
	return out
}
