// Package analytics aggregates a customer's jobs into spend and status figures.
package analytics

import (
	"strings"
	"time"

	"github.com/kiranshivaraju/garagelink/pkg/models"
)

// Period selects the window of jobs, by creation time, that a Summary covers.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

var windows = map[Period]time.Duration{
	PeriodWeek:  7 * 24 * time.Hour,
	PeriodMonth: 30 * 24 * time.Hour,
	PeriodYear:  365 * 24 * time.Hour,
}

// ParsePeriod parses s case-insensitively. An empty string is PeriodAll.
// ok is false for unknown values, which Summarize treats as PeriodAll.
func ParsePeriod(s string) (p Period, ok bool) {
	p = Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PeriodAll, true
	}
	if p == PeriodAll {
		return p, true
	}
	if _, known := windows[p]; known {
		return p, true
	}
	return PeriodAll, false
}

// Summary is the aggregate view of a set of jobs.
type Summary struct {
	Period           Period             `json:"period"`
	TotalJobs        int                `json:"total_jobs"`
	Completed        int                `json:"completed"`
	ActivelyServiced int                `json:"actively_serviced"`
	AwaitingQuotes   int                `json:"awaiting_quotes"`
	Cancelled        int                `json:"cancelled"`
	TotalSpent       float64            `json:"total_spent"`
	AverageJobCost   float64            `json:"average_job_cost"`
	SpendByCategory  map[string]float64 `json:"spend_by_category"`
}

// Summarize aggregates the jobs created within period, ending at now. Only
// completed jobs count toward spend; a missing price counts as zero. jobs is
// not modified.
func Summarize(jobs []*models.Job, period Period, now time.Time) Summary {
	window, bounded := windows[period]
	if !bounded {
		period = PeriodAll
	}
	cutoff := now.Add(-window)

	s := Summary{
		Period:          period,
		SpendByCategory: map[string]float64{},
	}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		if bounded && job.CreatedAt.Before(cutoff) {
			continue
		}
		s.TotalJobs++

		switch {
		case job.Status == models.JobStatusCompleted:
			s.Completed++
			var price float64
			if job.Price != nil {
				price = *job.Price
			}
			s.TotalSpent += price
			s.SpendByCategory[job.Category] += price
		case job.Status.ActivelyServiced():
			s.ActivelyServiced++
		case job.Status.AwaitingQuotes():
			s.AwaitingQuotes++
		case job.Status == models.JobStatusCancelled:
			s.Cancelled++
		}
	}

	if s.Completed > 0 {
		s.AverageJobCost = s.TotalSpent / float64(s.Completed)
	}
	return s
}
